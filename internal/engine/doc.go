// Package engine applies prompt-driven modifications to registered assets.
//
// The engine is deliberately deterministic: the prompt is scanned for known
// directives (grayscale, invert, flip, rotate, tints, brightness) and the
// matching pixel transform is applied. Unrecognized prompts fall back to a
// stylize pass so every valid request produces a derived artifact. Output is
// always PNG and is registered as a new derived asset linked to its parent.
package engine
