package mock

import (
	"context"

	"github.com/fwojciec/helpkb"
)

var _ helpkb.StateStore = (*StateStore)(nil)

// StateStore is a mock implementation of helpkb.StateStore.
type StateStore struct {
	LoadStateFn func(ctx context.Context) (*helpkb.RunState, error)
	SaveStateFn func(ctx context.Context, state *helpkb.RunState) error
}

func (s *StateStore) LoadState(ctx context.Context) (*helpkb.RunState, error) {
	return s.LoadStateFn(ctx)
}

func (s *StateStore) SaveState(ctx context.Context, state *helpkb.RunState) error {
	return s.SaveStateFn(ctx, state)
}
