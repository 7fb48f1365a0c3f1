package helpkb_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/helpkb"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := helpkb.Errorf(helpkb.ENOTFOUND, "document %q not found", "abc")

	assert.Equal(t, helpkb.ENOTFOUND, helpkb.ErrorCode(err))
	assert.Equal(t, "document \"abc\" not found", helpkb.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("evaluate: %w", helpkb.Errorf(helpkb.EPARSE, "bad list"))

	assert.Equal(t, helpkb.EPARSE, helpkb.ErrorCode(err))
	assert.Equal(t, "bad list", helpkb.ErrorMessage(err))
}

func TestErrorCode_ForeignError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("boom")

	assert.Equal(t, helpkb.EINTERNAL, helpkb.ErrorCode(err))
	assert.Equal(t, "Internal error.", helpkb.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, helpkb.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, helpkb.ErrorMessage(nil))
}
