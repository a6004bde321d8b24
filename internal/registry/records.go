package registry

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind distinguishes originals from engine-derived artifacts.
type Kind string

const (
	KindOriginal Kind = "original"
	KindDerived  Kind = "derived"
)

// Record represents one registered asset.
type Record struct {
	AssetID       string
	Kind          Kind
	SourceName    string
	StoredPath    string
	ContentType   string
	SizeBytes     int64
	ParentAssetID string
	Prompt        string
	CreatedAt     time.Time
}

// IsDerived reports whether the record was produced by the modification engine.
func (r Record) IsDerived() bool {
	return r.Kind == KindDerived
}

// SanitizeSourceName reduces a client-supplied file name to a safe base name.
// Path separators and parent references never survive; an empty result falls
// back to a fixed name so the stored path is always valid.
func SanitizeSourceName(name string) string {
	name = strings.TrimSpace(name)
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(filepath.Separator), "")
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}
