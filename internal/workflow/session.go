package workflow

import (
	"sync"
	"time"

	"easel/internal/asset"
)

// Severity classifies a notification for presentation.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is the single user-facing message. A new notification always
// replaces the previous one; nothing ever stacks.
type Notification struct {
	Message  string
	Severity Severity
}

// Session owns the workflow state for one client session. Exactly one asset
// is current at a time; a successful upload replaces it wholesale.
//
// Every begin* call advances an action sequence and returns a token. The
// matching resolve call applies only while its token is still current, which
// is how late responses to superseded requests get discarded instead of
// clobbering newer state.
type Session struct {
	mu           sync.Mutex
	seq          uint64
	current      asset.Asset
	modification *asset.ModificationRequest
	note         *Notification
}

// NewSession returns a session with no asset selected.
func NewSession() *Session {
	return &Session{current: asset.Asset{Status: asset.StatusUnselected}}
}

// CurrentAsset returns a snapshot of the current asset.
func (s *Session) CurrentAsset() asset.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CurrentModification returns a snapshot of the in-flight or last resolved
// modification request, if any.
func (s *Session) CurrentModification() (asset.ModificationRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modification == nil {
		return asset.ModificationRequest{}, false
	}
	return *s.modification, true
}

// Notification returns the currently visible notification, if any.
func (s *Session) Notification() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.note == nil {
		return Notification{}, false
	}
	return *s.note, true
}

// Notify replaces the visible notification.
func (s *Session) Notify(message string, severity Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note = &Notification{Message: message, Severity: severity}
}

// OriginalVisible reports whether the original-image view should be shown.
func (s *Session) OriginalVisible() bool {
	return s.CurrentAsset().OriginalVisible()
}

// ModifiedVisible reports whether the modified-image view should be shown.
func (s *Session) ModifiedVisible() bool {
	return s.CurrentAsset().ModifiedVisible()
}

// beginUpload replaces the current asset with a fresh instance in the
// uploading state. Any in-flight action is superseded.
func (s *Session) beginUpload(sourceName string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.current = asset.Asset{
		SourceName: sourceName,
		Status:     asset.StatusUploading,
		UpdatedAt:  time.Now().UTC(),
	}
	s.modification = nil
	return s.seq
}

// completeUpload applies a successful registration. Returns false when the
// token has been superseded; the response is then discarded.
func (s *Session) completeUpload(token uint64, assetID, originalURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.seq {
		return false
	}
	s.current.ID = assetID
	s.current.Status = asset.StatusRegistered
	s.current.OriginalURL = originalURL
	s.current.ModifiedURL = ""
	s.current.ErrorMessage = ""
	s.current.UpdatedAt = time.Now().UTC()
	return true
}

// failUpload marks the current asset failed. Returns false when superseded.
func (s *Session) failUpload(token uint64, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.seq {
		return false
	}
	s.current.Status = asset.StatusFailed
	s.current.ErrorMessage = reason
	s.current.UpdatedAt = time.Now().UTC()
	return true
}

// beginModification records a new in-flight modification request targeting
// the current asset and moves the asset to modification_pending.
func (s *Session) beginModification(targetAssetID, prompt string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.modification = &asset.ModificationRequest{
		TargetAssetID: targetAssetID,
		Prompt:        prompt,
	}
	s.current.Status = asset.StatusModificationPending
	s.current.UpdatedAt = time.Now().UTC()
	return s.seq
}

// completeModification applies a successful modification. Returns false when
// superseded.
func (s *Session) completeModification(token uint64, ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.seq || s.modification == nil {
		return false
	}
	s.modification.Outcome = &asset.ModificationOutcome{Ref: ref}
	s.current.Status = asset.StatusModified
	s.current.ModifiedURL = ref
	s.current.ErrorMessage = ""
	s.current.UpdatedAt = time.Now().UTC()
	return true
}

// failModification records the failure on the request and rolls the asset
// back to registered: the registration itself is still good, so the user can
// retry without re-uploading.
func (s *Session) failModification(token uint64, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.seq || s.modification == nil {
		return false
	}
	s.modification.Outcome = &asset.ModificationOutcome{FailureReason: reason}
	s.current.Status = asset.StatusRegistered
	s.current.UpdatedAt = time.Now().UTC()
	return true
}
