package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"easel/internal/config"
	"easel/internal/engine"
	"easel/internal/logging"
	"easel/internal/registry"
	"easel/internal/server"
)

// Daemon owns the service lifecycle and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *registry.Store
	srv    *server.Server

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	httpSrv  *http.Server
	listener net.Listener
	serveErr chan error
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	ListenAddr   string
	DatabasePath string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *registry.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	eng := engine.New(store, logger)
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    store,
		srv:      server.New(cfg, store, eng, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and begins serving HTTP.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another easel daemon instance is already running")
	}

	listener, err := net.Listen("tcp", d.cfg.Paths.ListenAddr)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("listen on %s: %w", d.cfg.Paths.ListenAddr, err)
	}

	d.listener = listener
	d.httpSrv = &http.Server{
		Handler:           d.srv,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	d.serveErr = make(chan error, 1)
	httpSrv := d.httpSrv
	go func() {
		err := httpSrv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.serveErr <- err
		}
		close(d.serveErr)
	}()

	d.running.Store(true)
	d.logger.Info("easel daemon started",
		logging.String("listen", listener.Addr().String()),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the HTTP server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.httpSrv.Shutdown(ctx); err != nil {
			d.logger.Warn("http shutdown", logging.Error(err))
			_ = d.httpSrv.Close()
		}
		cancel()
		d.httpSrv = nil
	}
	d.listener = nil

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("easel daemon stopped")
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Wait blocks until the HTTP server exits or the context is canceled. A nil
// return means a clean shutdown.
func (d *Daemon) Wait(ctx context.Context) error {
	if d.serveErr == nil {
		return nil
	}
	select {
	case err := <-d.serveErr:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Addr returns the bound listen address, useful when the configured address
// uses an ephemeral port.
func (d *Daemon) Addr() string {
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

// Status reports runtime information for CLI display.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		ListenAddr:   d.cfg.Paths.ListenAddr,
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
	}
}
