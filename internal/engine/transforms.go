package engine

import (
	"image"
	"image/color"
	"strings"
)

type transformFunc func(image.Image) image.Image

type directive struct {
	name     string
	keywords []string
	apply    transformFunc
}

// Order matters: the first directive whose keyword appears in the prompt
// wins, so the more specific entries come first.
var directives = []directive{
	{name: "grayscale", keywords: []string{"grayscale", "greyscale", "black and white"}, apply: toGrayscale},
	{name: "invert", keywords: []string{"invert", "negative"}, apply: invertColors},
	{name: "flip", keywords: []string{"flip", "mirror"}, apply: flipHorizontal},
	{name: "rotate", keywords: []string{"rotate", "upside down"}, apply: rotate180},
	{name: "brighten", keywords: []string{"brighten", "brighter", "lighter"}, apply: brightness(48)},
	{name: "darken", keywords: []string{"darken", "darker"}, apply: brightness(-48)},
	{name: "tint-blue", keywords: []string{"blue"}, apply: tint(0, 0, 80)},
	{name: "tint-red", keywords: []string{"red", "warm"}, apply: tint(80, 0, 0)},
	{name: "tint-green", keywords: []string{"green"}, apply: tint(0, 80, 0)},
}

// transformFor selects the pixel transform for a prompt. Unrecognized
// prompts fall back to a fixed stylize pass rather than failing, so the
// engine always produces a derived artifact for a valid request.
func transformFor(prompt string) (string, transformFunc) {
	lowered := strings.ToLower(prompt)
	for _, d := range directives {
		for _, keyword := range d.keywords {
			if strings.Contains(lowered, keyword) {
				return d.name, d.apply
			}
		}
	}
	return "stylize", sepia
}

func mapPixels(src image.Image, fn func(r, g, b, a uint8) (uint8, uint8, uint8, uint8)) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(src.At(x, y)).(color.RGBA)
			r, g, b, a := fn(c.R, c.G, c.B, c.A)
			dst.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: a})
		}
	}
	return dst
}

func toGrayscale(src image.Image) image.Image {
	return mapPixels(src, func(r, g, b, a uint8) (uint8, uint8, uint8, uint8) {
		// Rec. 601 luma weights.
		luma := uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000)
		return luma, luma, luma, a
	})
}

func invertColors(src image.Image) image.Image {
	return mapPixels(src, func(r, g, b, a uint8) (uint8, uint8, uint8, uint8) {
		return 255 - r, 255 - g, 255 - b, a
	})
}

func flipHorizontal(src image.Image) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(bounds.Max.X-1-(x-bounds.Min.X), y, src.At(x, y))
		}
	}
	return dst
}

func rotate180(src image.Image) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(bounds.Max.X-1-(x-bounds.Min.X), bounds.Max.Y-1-(y-bounds.Min.Y), src.At(x, y))
		}
	}
	return dst
}

func brightness(delta int) transformFunc {
	return func(src image.Image) image.Image {
		return mapPixels(src, func(r, g, b, a uint8) (uint8, uint8, uint8, uint8) {
			return clampAdd(r, delta), clampAdd(g, delta), clampAdd(b, delta), a
		})
	}
}

func tint(dr, dg, db int) transformFunc {
	return func(src image.Image) image.Image {
		return mapPixels(src, func(r, g, b, a uint8) (uint8, uint8, uint8, uint8) {
			return clampAdd(r, dr), clampAdd(g, dg), clampAdd(b, db), a
		})
	}
}

func sepia(src image.Image) image.Image {
	return mapPixels(src, func(r, g, b, a uint8) (uint8, uint8, uint8, uint8) {
		tr := clampScale(393*uint32(r) + 769*uint32(g) + 189*uint32(b))
		tg := clampScale(349*uint32(r) + 686*uint32(g) + 168*uint32(b))
		tb := clampScale(272*uint32(r) + 534*uint32(g) + 131*uint32(b))
		return tr, tg, tb, a
	})
}

func clampAdd(value uint8, delta int) uint8 {
	sum := int(value) + delta
	if sum < 0 {
		return 0
	}
	if sum > 255 {
		return 255
	}
	return uint8(sum)
}

func clampScale(scaled uint32) uint8 {
	scaled /= 1000
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
