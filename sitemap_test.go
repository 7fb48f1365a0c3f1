package helpkb_test

import (
	"testing"

	"github.com/fwojciec/helpkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLFilter_Match(t *testing.T) {
	t.Parallel()

	t.Run("nil filter matches everything", func(t *testing.T) {
		t.Parallel()

		var f *helpkb.URLFilter
		assert.True(t, f.Match("https://x.test/anything"))
	})

	t.Run("requires an include match and rejects exclude matches", func(t *testing.T) {
		t.Parallel()

		f, err := helpkb.NewURLFilter([]string{`/help/`}, []string{`/help/legacy`})
		require.NoError(t, err)

		assert.True(t, f.Match("https://x.test/help/start"))
		assert.False(t, f.Match("https://x.test/blog/post"))
		assert.False(t, f.Match("https://x.test/help/legacy/page"))
	})

	t.Run("rejects invalid patterns", func(t *testing.T) {
		t.Parallel()

		_, err := helpkb.NewURLFilter([]string{"("}, nil)
		assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
	})

	t.Run("returns nil without patterns", func(t *testing.T) {
		t.Parallel()

		f, err := helpkb.NewURLFilter(nil, nil)
		require.NoError(t, err)
		assert.Nil(t, f)
	})
}

func TestScope_Allows(t *testing.T) {
	t.Parallel()

	scope := &helpkb.Scope{
		BaseURL:   "https://www.notion.so/help",
		Blocklist: []string{"https://www.notion.so/help/notion.so/careers"},
	}

	assert.True(t, scope.Allows("https://www.notion.so/help"))
	assert.True(t, scope.Allows("https://www.notion.so/help/guides/start"))
	assert.False(t, scope.Allows("https://www.notion.so/pricing"))
	assert.False(t, scope.Allows("https://evil.test/https://www.notion.so/help"))
	assert.False(t, scope.Allows("https://www.notion.so/help/notion.so/careers/eng"))
}
