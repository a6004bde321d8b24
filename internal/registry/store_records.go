package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const recordColumns = `asset_id, kind, source_name, stored_path, content_type, size_bytes, parent_asset_id, prompt, created_at`

// ErrUploadTooLarge indicates the upload exceeded the configured size limit.
var ErrUploadTooLarge = errors.New("upload exceeds size limit")

// SaveOriginal stores uploaded bytes under the uploads directory and inserts
// a record with a freshly assigned asset id. A re-upload under the same
// source name replaces the bytes on disk but always produces a new record;
// source names are display handles, never identifiers.
func (s *Store) SaveOriginal(ctx context.Context, sourceName, contentType string, r io.Reader, maxBytes int64) (*Record, error) {
	name := SanitizeSourceName(sourceName)
	storedPath := filepath.Join(s.uploadsDir, name)

	size, err := writeLimited(storedPath, r, maxBytes)
	if err != nil {
		return nil, err
	}

	record := &Record{
		AssetID:     uuid.NewString(),
		Kind:        KindOriginal,
		SourceName:  name,
		StoredPath:  storedPath,
		ContentType: contentType,
		SizeBytes:   size,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.insert(ctx, record); err != nil {
		_ = os.Remove(storedPath)
		return nil, err
	}
	return record, nil
}

// SaveDerived stores engine output under the derived directory and links the
// new record to the asset it was derived from.
func (s *Store) SaveDerived(ctx context.Context, parent *Record, prompt, name string, data []byte) (*Record, error) {
	if parent == nil {
		return nil, errors.New("derived record requires a parent")
	}
	name = SanitizeSourceName(name)
	storedPath := filepath.Join(s.derivedDir, name)
	if err := os.WriteFile(storedPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write derived artifact: %w", err)
	}

	record := &Record{
		AssetID:       uuid.NewString(),
		Kind:          KindDerived,
		SourceName:    name,
		StoredPath:    storedPath,
		ContentType:   "image/png",
		SizeBytes:     int64(len(data)),
		ParentAssetID: parent.AssetID,
		Prompt:        prompt,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.insert(ctx, record); err != nil {
		_ = os.Remove(storedPath)
		return nil, err
	}
	return record, nil
}

func (s *Store) insert(ctx context.Context, record *Record) error {
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO assets (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.AssetID,
		string(record.Kind),
		record.SourceName,
		record.StoredPath,
		nullableString(record.ContentType),
		record.SizeBytes,
		nullableString(record.ParentAssetID),
		nullableString(record.Prompt),
		record.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// GetByID fetches an asset record by identifier.
func (s *Store) GetByID(ctx context.Context, assetID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM assets WHERE asset_id = ?`, assetID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return record, nil
}

// GetBySourceName returns the most recently registered original with the
// given display name. Used only by the /uploads retrieval path.
func (s *Store) GetBySourceName(ctx context.Context, sourceName string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM assets WHERE source_name = ? AND kind = ? ORDER BY created_at DESC LIMIT 1`,
		SanitizeSourceName(sourceName),
		string(KindOriginal),
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset by source name: %w", err)
	}
	return record, nil
}

// List returns asset records filtered by kind (or all records when no kind is provided).
func (s *Store) List(ctx context.Context, kinds ...Kind) ([]*Record, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + recordColumns + ` FROM assets`
	orderClause := ` ORDER BY created_at`

	if len(kinds) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(kinds))
		args := make([]any, len(kinds))
		for i, kind := range kinds {
			args[i] = string(kind)
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE kind IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Stats returns asset counts per kind.
func (s *Store) Stats(ctx context.Context) (map[Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(1) FROM assets GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("asset stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Kind]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[Kind(kind)] = count
	}
	return stats, rows.Err()
}

// Remove deletes a record and its stored bytes.
func (s *Store) Remove(ctx context.Context, assetID string) (bool, error) {
	record, err := s.GetByID(ctx, assetID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM assets WHERE asset_id = ?`, assetID)
	if err != nil {
		return false, fmt.Errorf("delete asset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		_ = os.Remove(record.StoredPath)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		record      Record
		kind        string
		contentType sql.NullString
		parentID    sql.NullString
		prompt      sql.NullString
		createdAt   string
	)
	if err := row.Scan(
		&record.AssetID,
		&kind,
		&record.SourceName,
		&record.StoredPath,
		&contentType,
		&record.SizeBytes,
		&parentID,
		&prompt,
		&createdAt,
	); err != nil {
		return nil, err
	}
	record.Kind = Kind(kind)
	record.ContentType = contentType.String
	record.ParentAssetID = parentID.String
	record.Prompt = prompt.String
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		record.CreatedAt = ts
	}
	return &record, nil
}

func writeLimited(path string, r io.Reader, maxBytes int64) (int64, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close()

	limited := r
	if maxBytes > 0 {
		limited = io.LimitReader(r, maxBytes+1)
	}
	size, err := io.Copy(file, limited)
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("write upload: %w", err)
	}
	if maxBytes > 0 && size > maxBytes {
		_ = os.Remove(path)
		return 0, ErrUploadTooLarge
	}
	return size, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2-1)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
