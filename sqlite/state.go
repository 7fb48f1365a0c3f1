package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/fwojciec/helpkb"
)

var (
	_ helpkb.StateStore = (*StateStore)(nil)
	_ helpkb.IndexStore = (*IndexStore)(nil)
)

// StateStore implements helpkb.StateStore using SQLite.
type StateStore struct {
	db *DB
}

// NewStateStore creates a new StateStore.
func NewStateStore(db *DB) *StateStore {
	return &StateStore{db: db}
}

func (s *StateStore) LoadState(ctx context.Context) (*helpkb.RunState, error) {
	var toVisit, toProcess string
	err := s.db.QueryRowContext(ctx, `SELECT to_visit, to_process FROM run_state WHERE id = 1`).Scan(&toVisit, &toProcess)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helpkb.Errorf(helpkb.ENOTFOUND, "run state not found")
	} else if err != nil {
		return nil, err
	}
	var state helpkb.RunState
	if err := json.Unmarshal([]byte(toVisit), &state.ToVisit); err != nil {
		return nil, helpkb.Errorf(helpkb.EINVALID, "run state is corrupt: %s", err)
	}
	if err := json.Unmarshal([]byte(toProcess), &state.ToProcess); err != nil {
		return nil, helpkb.Errorf(helpkb.EINVALID, "run state is corrupt: %s", err)
	}
	return &state, nil
}

func (s *StateStore) SaveState(ctx context.Context, state *helpkb.RunState) error {
	toVisit, err := json.Marshal(state.ToVisit)
	if err != nil {
		return err
	}
	toProcess, err := json.Marshal(state.ToProcess)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO run_state (id, to_visit, to_process) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET to_visit = excluded.to_visit, to_process = excluded.to_process
	`, string(toVisit), string(toProcess))
	return err
}

// IndexStore implements helpkb.IndexStore using SQLite.
type IndexStore struct {
	db *DB
}

// NewIndexStore creates a new IndexStore.
func NewIndexStore(db *DB) *IndexStore {
	return &IndexStore{db: db}
}

func (s *IndexStore) LoadIndex(ctx context.Context, f helpkb.Family) (*helpkb.IndexSnapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM indexes WHERE family = ?`, string(f)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helpkb.Errorf(helpkb.ENOTFOUND, "%s index not found", f)
	} else if err != nil {
		return nil, err
	}
	var snap helpkb.IndexSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, helpkb.Errorf(helpkb.EINVALID, "%s index is corrupt: %s", f, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *IndexStore) SaveIndex(ctx context.Context, f helpkb.Family, snapshot *helpkb.IndexSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO indexes (family, snapshot) VALUES (?, ?)
		ON CONFLICT(family) DO UPDATE SET snapshot = excluded.snapshot
	`, string(f), string(data))
	return err
}
