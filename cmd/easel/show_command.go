package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <asset-id>",
		Short: "Show details for one asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, cfg, err := ctx.newClient()
			if err != nil {
				return err
			}

			info, err := apiClient.Asset(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Asset ID:     %s\n", info.AssetID)
			fmt.Fprintf(out, "Kind:         %s\n", info.Kind)
			fmt.Fprintf(out, "Source name:  %s\n", info.SourceName)
			if info.ContentType != "" {
				fmt.Fprintf(out, "Content type: %s\n", info.ContentType)
			}
			fmt.Fprintf(out, "Size:         %s\n", formatSize(info.SizeBytes))
			if info.ParentAssetID != "" {
				fmt.Fprintf(out, "Derived from: %s\n", info.ParentAssetID)
			}
			if info.Prompt != "" {
				fmt.Fprintf(out, "Prompt:       %s\n", info.Prompt)
			}
			fmt.Fprintf(out, "Created:      %s\n", info.CreatedAt)
			fmt.Fprintf(out, "URL:          %s\n", absoluteURL(cfg.Service.BaseURL, info.URL))
			return nil
		},
	}
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
