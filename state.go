package helpkb

import "context"

// RunState is the resumable progress of a run: URLs still to crawl and
// documents still to refine. Both are stacks; the last entry is next.
type RunState struct {
	ToVisit   []string `json:"to_visit"`
	ToProcess []string `json:"to_process"`
}

// StateStore persists run state.
type StateStore interface {
	// LoadState returns ENOTFOUND if no state was ever saved.
	LoadState(ctx context.Context) (*RunState, error)
	SaveState(ctx context.Context, state *RunState) error
}
