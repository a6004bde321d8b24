package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"easel/internal/watcher"
	"easel/internal/workflow"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Upload images dropped into a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, cfg, err := ctx.newClient()
			if err != nil {
				return err
			}

			dir := cfg.Watch.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			if strings.TrimSpace(dir) == "" {
				return errors.New("no watch directory configured; pass one or set watch.dir")
			}

			session := workflow.NewSession()
			uploader := workflow.NewUploadCoordinator(session, apiClient, ctx.notifier(), ctx.logger())
			w, err := watcher.New(dir, uploader, ctx.logger())
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s, press Ctrl+C to stop.\n", dir)
			if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
