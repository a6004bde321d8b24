package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"easel/internal/logging"
)

// settleDelay is how long a file must stay quiet after its last write before
// it is considered complete and uploaded.
const settleDelay = 500 * time.Millisecond

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// Submitter runs the upload workflow for one file.
type Submitter interface {
	SubmitUpload(ctx context.Context, filePath string) error
}

// Watcher monitors a drop directory and submits new images for upload.
type Watcher struct {
	dir       string
	submitter Submitter
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New constructs a watcher over the given directory.
func New(dir string, submitter Submitter, logger *slog.Logger) (*Watcher, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch directory: %w", err)
	}
	return &Watcher{
		dir:       dir,
		submitter: submitter,
		logger:    logging.WithComponent(logger, "watcher"),
		pending:   make(map[string]*time.Timer),
	}, nil
}

// Run watches until the context is canceled. Each new image is submitted once
// its writes have settled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer fsw.Close()
	defer w.drainTimers()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching for images", logging.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !shouldUpload(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

// schedule arms (or re-arms) the settle timer for a path. Repeated writes
// keep pushing the upload back until the file goes quiet.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Reset(settleDelay)
		return
	}
	w.pending[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.submit(ctx, path)
	})
}

func (w *Watcher) submit(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return
	}
	w.logger.Info("submitting dropped image", logging.String("path", path))
	if err := w.submitter.SubmitUpload(ctx, path); err != nil {
		w.logger.Warn("upload of dropped image failed",
			logging.String("path", path),
			logging.Error(err))
	}
}

func (w *Watcher) drainTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// shouldUpload filters events down to completed-looking image files. Hidden
// files and common partial-download suffixes never qualify.
func shouldUpload(path string) bool {
	base := filepath.Base(path)
	if base == "" || strings.HasPrefix(base, ".") {
		return false
	}
	lower := strings.ToLower(base)
	if strings.HasSuffix(lower, ".tmp") || strings.HasSuffix(lower, ".part") || strings.HasSuffix(lower, ".crdownload") {
		return false
	}
	_, ok := imageExtensions[filepath.Ext(lower)]
	return ok
}
