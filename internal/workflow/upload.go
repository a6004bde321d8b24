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

// ErrNoFileSelected is returned when an upload is submitted without a file.
var ErrNoFileSelected = services.Wrap(services.ErrValidation, "", "", "Please select an image file to upload.", nil)

const (
	msgUploading         = "Uploading image..."
	msgUploadFallback    = "Image uploaded successfully."
	msgUploadUnreachable = "Upload failed. Please check that the service is running."
)

// Uploader registers a local file with the service and returns the assigned
// asset identity.
type Uploader interface {
	Upload(ctx context.Context, filePath string) (client.UploadResult, error)
}

// UploadCoordinator drives the upload workflow against a session. It owns
// validation, state transitions, and user messaging for uploads.
type UploadCoordinator struct {
	session  *Session
	uploader Uploader
	notifier notifications.Service
	logger   *slog.Logger
}

// NewUploadCoordinator wires an upload coordinator. The notifier may be nil.
func NewUploadCoordinator(session *Session, uploader Uploader, notifier notifications.Service, logger *slog.Logger) *UploadCoordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &UploadCoordinator{
		session:  session,
		uploader: uploader,
		notifier: notifier,
		logger:   logging.WithComponent(logger, "upload"),
	}
}

// SubmitUpload validates the selection and runs the upload to completion.
// An empty selection is rejected before any network traffic. When the
// response arrives after a newer action has started, it is discarded and the
// session is left untouched.
func (u *UploadCoordinator) SubmitUpload(ctx context.Context, filePath string) error {
	if strings.TrimSpace(filePath) == "" {
		u.session.Notify(services.UserMessage(ErrNoFileSelected, msgUploadUnreachable), SeverityError)
		return ErrNoFileSelected
	}

	token := u.session.beginUpload(sourceNameOf(filePath))
	u.session.Notify(msgUploading, SeverityInfo)

	result, err := u.uploader.Upload(ctx, filePath)
	if err != nil {
		reason := services.UserMessage(err, msgUploadUnreachable)
		if u.session.failUpload(token, reason) {
			u.session.Notify("Upload failed: "+reason, SeverityError)
			u.notifyError(ctx, err)
		} else {
			u.logger.Debug("discarding superseded upload failure", logging.Error(err))
		}
		return err
	}

	message := strings.TrimSpace(result.Message)
	if message == "" {
		message = msgUploadFallback
	}
	if !u.session.completeUpload(token, result.AssetID, result.OriginalURL) {
		u.logger.Debug("discarding superseded upload response",
			logging.String("asset_id", result.AssetID))
		return nil
	}
	u.session.Notify(message, SeveritySuccess)
	u.logger.Info("asset registered",
		logging.String("asset_id", result.AssetID),
		logging.String("source_name", result.SourceName))
	if u.notifier != nil {
		if err := u.notifier.NotifyAssetRegistered(ctx, result.SourceName, result.AssetID); err != nil {
			u.logger.Warn("upload notification failed", logging.Error(err))
		}
	}
	return nil
}

func (u *UploadCoordinator) notifyError(ctx context.Context, err error) {
	if u.notifier == nil {
		return
	}
	if nerr := u.notifier.NotifyError(ctx, err, "upload"); nerr != nil {
		u.logger.Warn("error notification failed", logging.Error(nerr))
	}
}

func sourceNameOf(filePath string) string {
	if idx := strings.LastIndexAny(filePath, `/\`); idx >= 0 {
		return filePath[idx+1:]
	}
	return filePath
}
