package fs

import (
	"context"
	"path/filepath"

	"github.com/fwojciec/helpkb"
)

var (
	_ helpkb.StateStore = (*StateStore)(nil)
	_ helpkb.IndexStore = (*IndexStore)(nil)
)

// StateStore keeps the run state in <project>/save.json.
type StateStore struct {
	path string
}

// NewStateStore returns a state store for the project in dir.
func NewStateStore(dir string) *StateStore {
	return &StateStore{path: filepath.Join(dir, "save.json")}
}

func (s *StateStore) LoadState(ctx context.Context) (*helpkb.RunState, error) {
	var state helpkb.RunState
	if err := readJSON(s.path, "run state", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *StateStore) SaveState(ctx context.Context, state *helpkb.RunState) error {
	return writeJSON(s.path, state)
}

// IndexStore keeps one snapshot file per family in <project>/index.
type IndexStore struct {
	dir string
}

// NewIndexStore returns an index store for the project in dir.
func NewIndexStore(dir string) *IndexStore {
	return &IndexStore{dir: filepath.Join(dir, "index")}
}

func (s *IndexStore) path(f helpkb.Family) string {
	return filepath.Join(s.dir, string(f)+".json")
}

func (s *IndexStore) LoadIndex(ctx context.Context, f helpkb.Family) (*helpkb.IndexSnapshot, error) {
	var snap helpkb.IndexSnapshot
	if err := readJSON(s.path(f), string(f)+" index", &snap); err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *IndexStore) SaveIndex(ctx context.Context, f helpkb.Family, snapshot *helpkb.IndexSnapshot) error {
	return writeJSON(s.path(f), snapshot)
}
