package mock

import (
	"context"

	"github.com/fwojciec/helpkb"
)

var _ helpkb.ContentStore = (*ContentStore)(nil)

// ContentStore is a mock implementation of helpkb.ContentStore.
type ContentStore struct {
	CreateDocumentFn     func(ctx context.Context, id string) error
	StatusFn             func(ctx context.Context, id string) (helpkb.Status, error)
	SetStatusFn          func(ctx context.Context, id string, status helpkb.Status) error
	SourceFn             func(ctx context.Context, id string) (string, error)
	SetSourceFn          func(ctx context.Context, id string, source string) error
	TrimmedFn            func(ctx context.Context, id string) (string, error)
	SetTrimmedFn         func(ctx context.Context, id string, trimmed string) error
	ChunksFn             func(ctx context.Context, id string, v helpkb.Variant) (helpkb.ChunkSet, error)
	SetChunksFn          func(ctx context.Context, id string, v helpkb.Variant, chunks helpkb.ChunkSet) error
	SyntheticChunksFn    func(ctx context.Context, id string) ([]helpkb.SyntheticChunk, error)
	SetSyntheticChunksFn func(ctx context.Context, id string, chunks []helpkb.SyntheticChunk) error
	RecordsFn            func(ctx context.Context, id string) (*helpkb.RecordBundle, error)
	SetRecordsFn         func(ctx context.Context, id string, records *helpkb.RecordBundle) error
	DocumentIDsFn        func(ctx context.Context) ([]string, error)
}

func (s *ContentStore) CreateDocument(ctx context.Context, id string) error {
	return s.CreateDocumentFn(ctx, id)
}

func (s *ContentStore) Status(ctx context.Context, id string) (helpkb.Status, error) {
	return s.StatusFn(ctx, id)
}

func (s *ContentStore) SetStatus(ctx context.Context, id string, status helpkb.Status) error {
	return s.SetStatusFn(ctx, id, status)
}

func (s *ContentStore) Source(ctx context.Context, id string) (string, error) {
	return s.SourceFn(ctx, id)
}

func (s *ContentStore) SetSource(ctx context.Context, id string, source string) error {
	return s.SetSourceFn(ctx, id, source)
}

func (s *ContentStore) Trimmed(ctx context.Context, id string) (string, error) {
	return s.TrimmedFn(ctx, id)
}

func (s *ContentStore) SetTrimmed(ctx context.Context, id string, trimmed string) error {
	return s.SetTrimmedFn(ctx, id, trimmed)
}

func (s *ContentStore) Chunks(ctx context.Context, id string, v helpkb.Variant) (helpkb.ChunkSet, error) {
	return s.ChunksFn(ctx, id, v)
}

func (s *ContentStore) SetChunks(ctx context.Context, id string, v helpkb.Variant, chunks helpkb.ChunkSet) error {
	return s.SetChunksFn(ctx, id, v, chunks)
}

func (s *ContentStore) SyntheticChunks(ctx context.Context, id string) ([]helpkb.SyntheticChunk, error) {
	return s.SyntheticChunksFn(ctx, id)
}

func (s *ContentStore) SetSyntheticChunks(ctx context.Context, id string, chunks []helpkb.SyntheticChunk) error {
	return s.SetSyntheticChunksFn(ctx, id, chunks)
}

func (s *ContentStore) Records(ctx context.Context, id string) (*helpkb.RecordBundle, error) {
	return s.RecordsFn(ctx, id)
}

func (s *ContentStore) SetRecords(ctx context.Context, id string, records *helpkb.RecordBundle) error {
	return s.SetRecordsFn(ctx, id, records)
}

func (s *ContentStore) DocumentIDs(ctx context.Context) ([]string, error) {
	return s.DocumentIDsFn(ctx)
}
