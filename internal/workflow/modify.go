package workflow

import (
	"context"
	"log/slog"
	"strings"

	"easel/internal/client"
	"easel/internal/logging"
	"easel/internal/notifications"
	"easel/internal/services"
)

var (
	// ErrNoAssetRegistered is returned when no registered asset exists to modify.
	ErrNoAssetRegistered = services.Wrap(services.ErrValidation, "", "", "Please upload an image first to get an asset ID.", nil)
	// ErrEmptyPrompt is returned when the prompt is empty after trimming.
	ErrEmptyPrompt = services.Wrap(services.ErrValidation, "", "", "Please enter a modification prompt.", nil)
)

const (
	msgModifying         = "Applying modification..."
	msgModifyFallback    = "Modification applied."
	msgModifyUnreachable = "Modification failed. Please check that the service is running."
)

// Modifier asks the service to apply a prompt-driven modification.
type Modifier interface {
	Modify(ctx context.Context, assetID, prompt string) (client.ModifyResult, error)
}

// ModificationCoordinator drives the modification workflow against a session.
type ModificationCoordinator struct {
	session  *Session
	modifier Modifier
	notifier notifications.Service
	logger   *slog.Logger
}

// NewModificationCoordinator wires a modification coordinator. The notifier
// may be nil.
func NewModificationCoordinator(session *Session, modifier Modifier, notifier notifications.Service, logger *slog.Logger) *ModificationCoordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ModificationCoordinator{
		session:  session,
		modifier: modifier,
		notifier: notifier,
		logger:   logging.WithComponent(logger, "modify"),
	}
}

// SubmitModification validates preconditions in order and runs the
// modification to completion. The asset check comes before the prompt check,
// and both happen before any network traffic. The trimmed prompt is what gets
// sent. On failure the asset rolls back to registered so a retry does not
// require a fresh upload.
func (m *ModificationCoordinator) SubmitModification(ctx context.Context, prompt string) error {
	current := m.session.CurrentAsset()
	if !current.Addressable() {
		m.session.Notify(services.UserMessage(ErrNoAssetRegistered, msgModifyUnreachable), SeverityError)
		return ErrNoAssetRegistered
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		m.session.Notify(services.UserMessage(ErrEmptyPrompt, msgModifyUnreachable), SeverityError)
		return ErrEmptyPrompt
	}

	token := m.session.beginModification(current.ID, prompt)
	m.session.Notify(msgModifying, SeverityInfo)

	result, err := m.modifier.Modify(ctx, current.ID, prompt)
	if err != nil {
		reason := services.UserMessage(err, msgModifyUnreachable)
		if m.session.failModification(token, reason) {
			m.session.Notify("Modification failed: "+reason, SeverityError)
			m.notifyError(ctx, err)
		} else {
			m.logger.Debug("discarding superseded modification failure", logging.Error(err))
		}
		return err
	}

	if !m.session.completeModification(token, result.ModifiedURL) {
		m.logger.Debug("discarding superseded modification response",
			logging.String("asset_id", current.ID))
		return nil
	}
	message := strings.TrimSpace(result.Message)
	if message == "" {
		message = msgModifyFallback
	}
	m.session.Notify(message, SeveritySuccess)
	m.logger.Info("modification applied",
		logging.String("asset_id", current.ID),
		logging.String("prompt", prompt))
	if m.notifier != nil {
		if err := m.notifier.NotifyModificationApplied(ctx, current.ID, prompt); err != nil {
			m.logger.Warn("modification notification failed", logging.Error(err))
		}
	}
	return nil
}

func (m *ModificationCoordinator) notifyError(ctx context.Context, err error) {
	if m.notifier == nil {
		return
	}
	if nerr := m.notifier.NotifyError(ctx, err, "modification"); nerr != nil {
		m.logger.Warn("error notification failed", logging.Error(nerr))
	}
}
