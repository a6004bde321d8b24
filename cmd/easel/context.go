package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"easel/internal/client"
	"easel/internal/config"
	"easel/internal/logging"
	"easel/internal/notifications"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the CLI logger from the configured level and format. Output
// goes to the shared log file so diagnostics stay out of command output; when
// no config or log directory is available the logger is a no-op.
func (c *commandContext) logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		c.log = logging.NewNop()
		cfg, err := c.ensureConfig()
		if err != nil || cfg.Paths.LogDir == "" {
			return
		}
		built, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "easel.log")},
		})
		if err != nil {
			return
		}
		c.log = built
	})
	return c.log
}

func (c *commandContext) newClient() (*client.Client, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	return client.New(cfg, c.logger()), cfg, nil
}

func (c *commandContext) notifier() notifications.Service {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil
	}
	return notifications.NewService(cfg)
}
