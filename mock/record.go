package mock

import (
	"context"

	"github.com/fwojciec/helpkb"
)

var (
	_ helpkb.Index      = (*Index)(nil)
	_ helpkb.IndexStore = (*IndexStore)(nil)
)

// Index is a mock implementation of helpkb.Index.
type Index struct {
	AddFn      func(ctx context.Context, id, filePath, label string) error
	ContainsFn func(id string) bool
	BuildFn    func(neighbors int, metric helpkb.Metric) error
	QueryFn    func(ctx context.Context, text string, k int) ([]helpkb.Match, error)
	SnapshotFn func() *helpkb.IndexSnapshot
	RestoreFn  func(snapshot *helpkb.IndexSnapshot) error
	LenFn      func() int
}

func (i *Index) Add(ctx context.Context, id, filePath, label string) error {
	return i.AddFn(ctx, id, filePath, label)
}

func (i *Index) Contains(id string) bool {
	return i.ContainsFn(id)
}

func (i *Index) Build(neighbors int, metric helpkb.Metric) error {
	return i.BuildFn(neighbors, metric)
}

func (i *Index) Query(ctx context.Context, text string, k int) ([]helpkb.Match, error) {
	return i.QueryFn(ctx, text, k)
}

func (i *Index) Snapshot() *helpkb.IndexSnapshot {
	return i.SnapshotFn()
}

func (i *Index) Restore(snapshot *helpkb.IndexSnapshot) error {
	return i.RestoreFn(snapshot)
}

func (i *Index) Len() int {
	return i.LenFn()
}

// IndexStore is a mock implementation of helpkb.IndexStore.
type IndexStore struct {
	LoadIndexFn func(ctx context.Context, f helpkb.Family) (*helpkb.IndexSnapshot, error)
	SaveIndexFn func(ctx context.Context, f helpkb.Family, snapshot *helpkb.IndexSnapshot) error
}

func (s *IndexStore) LoadIndex(ctx context.Context, f helpkb.Family) (*helpkb.IndexSnapshot, error) {
	return s.LoadIndexFn(ctx, f)
}

func (s *IndexStore) SaveIndex(ctx context.Context, f helpkb.Family, snapshot *helpkb.IndexSnapshot) error {
	return s.SaveIndexFn(ctx, f, snapshot)
}
