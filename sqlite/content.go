package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/helpkb"
)

// Compile-time interface verification.
var _ helpkb.ContentStore = (*ContentStore)(nil)

// ContentStore implements helpkb.ContentStore using SQLite.
type ContentStore struct {
	db *DB
}

// NewContentStore creates a new ContentStore.
func NewContentStore(db *DB) *ContentStore {
	return &ContentStore{db: db}
}

// hashContent computes the xxHash of content as a hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

// syntheticSet marks in chunk_sets that synthetic chunks were written.
const syntheticSet = "synthetic"

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (s *ContentStore) CreateDocument(ctx context.Context, id string) error {
	if id == "" {
		return helpkb.Errorf(helpkb.EINVALID, "document id required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, status, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, string(helpkb.StatusUnvisited), now())
	return err
}

func (s *ContentStore) Status(ctx context.Context, id string) (helpkb.Status, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM documents WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", helpkb.Errorf(helpkb.ENOTFOUND, "document %s not found", id)
	} else if err != nil {
		return "", err
	}
	st := helpkb.Status(status)
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

func (s *ContentStore) SetStatus(ctx context.Context, id string, status helpkb.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, status, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
	`, id, string(status), now())
	return err
}

func (s *ContentStore) Source(ctx context.Context, id string) (string, error) {
	return s.text(ctx, id, "source")
}

func (s *ContentStore) SetSource(ctx context.Context, id string, source string) error {
	return s.update(ctx, id, `UPDATE documents SET source = ?, source_hash = ?, updated_at = ? WHERE id = ?`,
		source, hashContent(source), now(), id)
}

func (s *ContentStore) Trimmed(ctx context.Context, id string) (string, error) {
	return s.text(ctx, id, "trimmed")
}

func (s *ContentStore) SetTrimmed(ctx context.Context, id string, trimmed string) error {
	return s.update(ctx, id, `UPDATE documents SET trimmed = ?, updated_at = ? WHERE id = ?`,
		trimmed, now(), id)
}

// text reads a nullable text column. column is never user input.
func (s *ContentStore) text(ctx context.Context, id, column string) (string, error) {
	var v sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT `+column+` FROM documents WHERE id = ?`, id).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !v.Valid) {
		return "", helpkb.Errorf(helpkb.ENOTFOUND, "%s of document %s not found", column, id)
	} else if err != nil {
		return "", err
	}
	return v.String, nil
}

func (s *ContentStore) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return helpkb.Errorf(helpkb.ENOTFOUND, "document %s not found", id)
	}
	return nil
}

func (s *ContentStore) Chunks(ctx context.Context, id string, v helpkb.Variant) (helpkb.ChunkSet, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunk_sets WHERE document_id = ? AND variant = ?`,
		id, string(v)).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, helpkb.Errorf(helpkb.ENOTFOUND, "%s chunks of document %s not found", v, id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT granularity, content FROM chunks
		WHERE document_id = ? AND variant = ?
		ORDER BY granularity, position
	`, id, string(v))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := helpkb.ChunkSet{}
	for rows.Next() {
		var g, content string
		if err := rows.Scan(&g, &content); err != nil {
			return nil, err
		}
		set[helpkb.Granularity(g)] = append(set[helpkb.Granularity(g)], content)
	}
	return set, rows.Err()
}

// SetChunks replaces one variant of a document's chunks in a transaction.
func (s *ContentStore) SetChunks(ctx context.Context, id string, v helpkb.Variant, chunks helpkb.ChunkSet) error {
	if v != helpkb.VariantRaw && v != helpkb.VariantPretty {
		return helpkb.Errorf(helpkb.EINVALID, "unknown chunk variant %q", v)
	}
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ? AND variant = ?`, id, string(v)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO chunk_sets (document_id, variant) VALUES (?, ?)`, id, string(v)); err != nil {
		return err
	}
	for _, g := range helpkb.Granularities {
		for i, content := range chunks[g] {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO chunks (document_id, variant, granularity, position, content)
				VALUES (?, ?, ?, ?, ?)
			`, id, string(v), string(g), i, content); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (s *ContentStore) SyntheticChunks(ctx context.Context, id string) ([]helpkb.SyntheticChunk, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunk_sets WHERE document_id = ? AND variant = ?`,
		id, syntheticSet).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, helpkb.Errorf(helpkb.ENOTFOUND, "synthetic chunks of document %s not found", id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT question, content FROM synthetic_chunks WHERE document_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chunks := []helpkb.SyntheticChunk{}
	for rows.Next() {
		var c helpkb.SyntheticChunk
		if err := rows.Scan(&c.Question, &c.Text); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (s *ContentStore) SetSyntheticChunks(ctx context.Context, id string, chunks []helpkb.SyntheticChunk) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM synthetic_chunks WHERE document_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO chunk_sets (document_id, variant) VALUES (?, ?)`, id, syntheticSet); err != nil {
		return err
	}
	for i, c := range chunks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO synthetic_chunks (document_id, position, question, content) VALUES (?, ?, ?, ?)
		`, id, i, c.Question, c.Text); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *ContentStore) Records(ctx context.Context, id string) (*helpkb.RecordBundle, error) {
	data, err := s.text(ctx, id, "records")
	if err != nil {
		return nil, err
	}
	var b helpkb.RecordBundle
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return nil, helpkb.Errorf(helpkb.EINVALID, "records of document %s are corrupt: %s", id, err)
	}
	return &b, nil
}

func (s *ContentStore) SetRecords(ctx context.Context, id string, records *helpkb.RecordBundle) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.update(ctx, id, `UPDATE documents SET records = ?, updated_at = ? WHERE id = ?`,
		string(data), now(), id)
}

func (s *ContentStore) DocumentIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
