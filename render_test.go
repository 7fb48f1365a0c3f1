package helpkb_test

import (
	"testing"

	"github.com/fwojciec/helpkb"
	"github.com/stretchr/testify/assert"
)

func TestRenderBlocks(t *testing.T) {
	t.Parallel()

	t.Run("tags each block kind", func(t *testing.T) {
		t.Parallel()

		got := helpkb.RenderBlocks([]helpkb.Block{
			{Kind: helpkb.BlockHeading, Level: 1, Text: "Title"},
			{Kind: helpkb.BlockParagraph, Text: "Some   prose\n here."},
			{Kind: helpkb.BlockHeading, Level: 2, Text: "Sub"},
			{Kind: helpkb.BlockQuote, Text: "Quoted"},
			{Kind: helpkb.BlockList, Items: []string{"one", " two "}},
		})

		assert.Equal(t, "h1: Title\n\nSome prose here.\n\nh2: Sub\n\n> Quoted\n\n- one\n- two", got)
	})

	t.Run("renders a table with a separator row", func(t *testing.T) {
		t.Parallel()

		got := helpkb.RenderBlocks([]helpkb.Block{
			{Kind: helpkb.BlockTable, Rows: [][]string{{"Plan", "Price"}, {"Free", "$0"}, {"Pro", "$8"}}},
		})

		assert.Equal(t, "| Plan | Price |\n| --- | --- |\n| Free | $0 |\n| Pro | $8 |", got)
	})

	t.Run("drops empty blocks", func(t *testing.T) {
		t.Parallel()

		got := helpkb.RenderBlocks([]helpkb.Block{
			{Kind: helpkb.BlockHeading, Level: 1, Text: "Title"},
			{Kind: helpkb.BlockParagraph, Text: "   "},
			{Kind: helpkb.BlockList, Items: []string{" "}},
			{Kind: helpkb.BlockTable},
			{Kind: helpkb.BlockParagraph, Text: "Body"},
		})

		assert.Equal(t, "h1: Title\n\nBody", got)
	})

	t.Run("escapes pipes inside table cells", func(t *testing.T) {
		t.Parallel()

		got := helpkb.RenderBlocks([]helpkb.Block{
			{Kind: helpkb.BlockTable, Rows: [][]string{{"a|b"}}},
		})

		assert.Equal(t, "| a\\|b |\n| --- |", got)
	})
}
