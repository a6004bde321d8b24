package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"easel/internal/workflow"
)

func newModifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "modify <asset-id> <prompt...>",
		Short: "Apply a prompt-driven modification to a registered asset",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The asset id check comes first, then the prompt check; both
			// fail locally before anything goes over the wire.
			assetID := strings.TrimSpace(args[0])
			if assetID == "" {
				return workflow.ErrNoAssetRegistered
			}
			prompt := strings.TrimSpace(strings.Join(args[1:], " "))
			if prompt == "" {
				return workflow.ErrEmptyPrompt
			}

			apiClient, _, err := ctx.newClient()
			if err != nil {
				return err
			}

			result, err := apiClient.Modify(cmd.Context(), assetID, prompt)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			fmt.Fprintf(cmd.OutOrStdout(), "Derived asset: %s\n", result.AssetID)
			fmt.Fprintf(cmd.OutOrStdout(), "Modified: %s\n", result.ModifiedURL)
			return nil
		},
	}
}
