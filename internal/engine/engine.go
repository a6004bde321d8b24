package engine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"easel/internal/logging"
	"easel/internal/registry"
	"easel/internal/services"
)

// Engine transforms registered assets according to a text prompt.
type Engine struct {
	store  *registry.Store
	logger *slog.Logger
}

// New constructs an engine backed by the given registry store.
func New(store *registry.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logging.WithComponent(logger, "engine"),
	}
}

// Modify loads the asset, applies the transform selected by the prompt, and
// registers the result as a new derived asset.
func (e *Engine) Modify(ctx context.Context, assetID, prompt string) (*registry.Record, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil, services.Wrap(services.ErrValidation, "modify", "", "asset id is required", nil)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, services.Wrap(services.ErrValidation, "modify", "", "prompt must not be empty", nil)
	}

	record, err := e.store.GetByID(ctx, assetID)
	if err != nil {
		return nil, services.Wrap(services.ErrService, "modify", "load asset", "", err)
	}
	if record == nil {
		return nil, services.Wrap(services.ErrNotFound, "modify", "", fmt.Sprintf("asset %s not found", assetID), nil)
	}

	img, err := decodeImage(record.StoredPath)
	if err != nil {
		return nil, services.Wrap(services.ErrService, "modify", "decode image", "", err)
	}

	name, apply := transformFor(prompt)
	out := apply(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, services.Wrap(services.ErrService, "modify", "encode result", "", err)
	}

	derived, err := e.store.SaveDerived(ctx, record, prompt, derivedName(record), buf.Bytes())
	if err != nil {
		return nil, services.Wrap(services.ErrService, "modify", "register derived asset", "", err)
	}

	e.logger.Info("modification applied",
		logging.String("asset_id", record.AssetID),
		logging.String("derived_asset_id", derived.AssetID),
		logging.String("transform", name))
	return derived, nil
}

func decodeImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stored bytes: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func derivedName(record *registry.Record) string {
	base := strings.TrimSuffix(record.SourceName, filepath.Ext(record.SourceName))
	suffix := record.AssetID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("%s-%s.png", base, suffix)
}
