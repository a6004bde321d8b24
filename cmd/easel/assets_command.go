package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAssetsCommand(ctx *commandContext) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "List registered assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, _, err := ctx.newClient()
			if err != nil {
				return err
			}

			infos, err := apiClient.Assets(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No assets registered.")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderAssetTable(infos))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Filter by asset kind (original or derived)")
	return cmd
}
