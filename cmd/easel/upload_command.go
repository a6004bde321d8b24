package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"easel/internal/workflow"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var prompt string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image and register it as an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, _, err := ctx.newClient()
			if err != nil {
				return err
			}

			session := workflow.NewSession()
			uploader := workflow.NewUploadCoordinator(session, apiClient, ctx.notifier(), ctx.logger())
			if err := uploader.SubmitUpload(cmd.Context(), args[0]); err != nil {
				printNotification(cmd, session)
				return err
			}
			printNotification(cmd, session)

			current := session.CurrentAsset()
			fmt.Fprintf(cmd.OutOrStdout(), "Asset ID: %s\n", current.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Original: %s\n", current.OriginalURL)

			if prompt == "" {
				return nil
			}

			modifier := workflow.NewModificationCoordinator(session, apiClient, ctx.notifier(), ctx.logger())
			if err := modifier.SubmitModification(cmd.Context(), prompt); err != nil {
				printNotification(cmd, session)
				return err
			}
			printNotification(cmd, session)
			fmt.Fprintf(cmd.OutOrStdout(), "Modified: %s\n", session.CurrentAsset().ModifiedURL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Apply a modification prompt right after the upload")
	return cmd
}

func printNotification(cmd *cobra.Command, session *workflow.Session) {
	note, ok := session.Notification()
	if !ok {
		return
	}
	out := cmd.OutOrStdout()
	if note.Severity == workflow.SeverityError {
		out = cmd.ErrOrStderr()
	}
	fmt.Fprintln(out, note.Message)
}
