package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"easel/internal/services"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show Easel service status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, cfg, err := ctx.newClient()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			titler := cases.Title(language.English)

			for _, line := range renderSectionHeader("Easel Service", colorize) {
				fmt.Fprintln(out, line)
			}

			status, err := apiClient.Status(cmd.Context())
			if err != nil {
				message := services.UserMessage(err, "not reachable at "+cfg.Service.BaseURL)
				fmt.Fprintln(out, renderStatusLine("Daemon", statusError, message, colorize))
				return nil
			}

			fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, "running at "+cfg.Service.BaseURL, colorize))
			counts := []struct {
				kind  string
				value int
			}{
				{"original", status.Originals},
				{"derived", status.Derived},
			}
			for _, entry := range counts {
				label := titler.String(entry.kind) + "s"
				fmt.Fprintln(out, renderStatusLine(label, statusInfo, strconv.Itoa(entry.value)+" registered", colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Database", statusInfo, status.Database, colorize))
			return nil
		},
	}
}
