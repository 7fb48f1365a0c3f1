package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/helpkb"
	"github.com/fwojciec/helpkb/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts headings and paragraphs", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<h1>Billing</h1><h2>Refunds</h2><p>Refunds take five days.</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "# Billing")
		assert.Contains(t, md, "## Refunds")
		assert.Contains(t, md, "Refunds take five days.")
	})

	t.Run("converts lists and blockquotes", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<ul><li>One</li><li>Two</li></ul><blockquote><p>Note</p></blockquote>`)

		require.NoError(t, err)
		assert.Contains(t, md, "- One")
		assert.Contains(t, md, "- Two")
		assert.Contains(t, md, "> Note")
	})

	t.Run("converts tables", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<table><thead><tr><th>Plan</th><th>Price</th></tr></thead>
<tbody><tr><td>Free</td><td>$0</td></tr></tbody></table>`)

		require.NoError(t, err)
		assert.Contains(t, md, "| Plan")
		assert.Contains(t, md, "| Free")
	})

	t.Run("makes relative links absolute when a domain is set", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		conv.Domain = "https://x.test"
		md, err := conv.Convert(`<p><a href="/help/billing">Billing</a></p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "(https://x.test/help/billing)")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := htmltomarkdown.NewConverter().Convert("   ")

		assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
	})
}
