package helpkb_test

import (
	"testing"

	"github.com/fwojciec/helpkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []helpkb.Status{
	helpkb.StatusUnvisited,
	helpkb.StatusDownloaded,
	helpkb.StatusTrimmed,
	helpkb.StatusChunked,
	helpkb.StatusProcessed,
	helpkb.StatusError,
}

func TestStatus_CanTransition(t *testing.T) {
	t.Parallel()

	t.Run("allows each forward step", func(t *testing.T) {
		t.Parallel()

		assert.True(t, helpkb.StatusUnvisited.CanTransition(helpkb.StatusDownloaded))
		assert.True(t, helpkb.StatusDownloaded.CanTransition(helpkb.StatusTrimmed))
		assert.True(t, helpkb.StatusTrimmed.CanTransition(helpkb.StatusChunked))
		assert.True(t, helpkb.StatusChunked.CanTransition(helpkb.StatusProcessed))
	})

	t.Run("allows error only from unvisited", func(t *testing.T) {
		t.Parallel()

		for _, s := range allStatuses {
			assert.Equal(t, s == helpkb.StatusUnvisited, s.CanTransition(helpkb.StatusError), s)
		}
	})

	t.Run("treats error as absorbing", func(t *testing.T) {
		t.Parallel()

		for _, s := range allStatuses {
			assert.False(t, helpkb.StatusError.CanTransition(s), s)
		}
	})

	t.Run("never allows a status to regress or repeat", func(t *testing.T) {
		t.Parallel()

		order := allStatuses[:5]
		for i, from := range order {
			for _, to := range order[:i+1] {
				assert.False(t, from.CanTransition(to), "%s -> %s", from, to)
			}
		}
	})

	t.Run("rejects skipping a stage", func(t *testing.T) {
		t.Parallel()

		assert.False(t, helpkb.StatusDownloaded.CanTransition(helpkb.StatusChunked))
		assert.False(t, helpkb.StatusUnvisited.CanTransition(helpkb.StatusProcessed))
	})
}

func TestStatus_Validate(t *testing.T) {
	t.Parallel()

	for _, s := range allStatuses {
		assert.NoError(t, s.Validate())
	}
	err := helpkb.Status("DONE").Validate()
	assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
}

func TestNextStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status helpkb.Status
		step   helpkb.Step
	}{
		{helpkb.StatusError, helpkb.StepNone},
		{helpkb.StatusDownloaded, helpkb.StepTrimAndChunk},
		{helpkb.StatusTrimmed, helpkb.StepChunk},
		{helpkb.StatusChunked, helpkb.StepEvaluate},
		{helpkb.StatusProcessed, helpkb.StepReplay},
	}
	for _, tt := range tests {
		step, err := helpkb.NextStep(tt.status)
		require.NoError(t, err)
		assert.Equal(t, tt.step, step, tt.status)
	}

	t.Run("rejects unvisited documents", func(t *testing.T) {
		t.Parallel()

		_, err := helpkb.NextStep(helpkb.StatusUnvisited)
		assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
	})

	t.Run("reports unknown statuses as internal errors", func(t *testing.T) {
		t.Parallel()

		_, err := helpkb.NextStep(helpkb.Status("bogus"))
		assert.Equal(t, helpkb.EINTERNAL, helpkb.ErrorCode(err))
	})
}
