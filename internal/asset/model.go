package asset

import (
	"strings"
	"time"
)

// Status represents the lifecycle of the current asset.
type Status string

const (
	StatusUnselected          Status = "unselected"
	StatusUploading           Status = "uploading"
	StatusRegistered          Status = "registered"
	StatusModificationPending Status = "modification_pending"
	StatusModified            Status = "modified"
	StatusFailed              Status = "failed"
)

var allStatuses = []Status{
	StatusUnselected,
	StatusUploading,
	StatusRegistered,
	StatusModificationPending,
	StatusModified,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// validTransitions encodes the monotonic lifecycle. There is no path out of
// failed; recovery means starting over with a new Asset value. A failed
// modification rolls the asset back to registered because the registration
// itself is still good.
var validTransitions = map[Status][]Status{
	StatusUnselected:          {StatusUploading},
	StatusUploading:           {StatusRegistered, StatusFailed},
	StatusRegistered:          {StatusModificationPending},
	StatusModificationPending: {StatusModified, StatusRegistered, StatusFailed},
	StatusModified:            {StatusModificationPending},
	StatusFailed:              {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Asset is the single unit of work tracked by a workflow session.
//
// ID is assigned exclusively by the registry and is the only valid handle for
// modification requests. SourceName is display-only: file names are neither
// unique nor stable across re-uploads and must never stand in for ID.
type Asset struct {
	ID           string
	SourceName   string
	Status       Status
	OriginalURL  string
	ModifiedURL  string
	ErrorMessage string
	UpdatedAt    time.Time
}

// Addressable reports whether the asset can be targeted by a modification
// request: it has a registry-assigned identifier and is in a settled state.
func (a Asset) Addressable() bool {
	if a.ID == "" {
		return false
	}
	return a.Status == StatusRegistered || a.Status == StatusModified
}

// OriginalVisible reports whether the original-image view should be shown.
func (a Asset) OriginalVisible() bool {
	switch a.Status {
	case StatusRegistered, StatusModificationPending, StatusModified:
		return true
	default:
		return false
	}
}

// ModifiedVisible reports whether the modified-image view should be shown.
func (a Asset) ModifiedVisible() bool {
	return a.Status == StatusModified
}

// ModificationRequest is the ephemeral record of one modify round trip. It is
// never persisted beyond the request it describes.
type ModificationRequest struct {
	TargetAssetID string
	Prompt        string
	Outcome       *ModificationOutcome
}

// ModificationOutcome records how a modification request resolved.
type ModificationOutcome struct {
	Ref           string
	FailureReason string
}

// Resolved reports whether the engine has responded to this request.
func (m ModificationRequest) Resolved() bool {
	return m.Outcome != nil
}

// Succeeded reports whether the request resolved with a derived artifact.
func (m ModificationRequest) Succeeded() bool {
	return m.Outcome != nil && m.Outcome.FailureReason == ""
}
