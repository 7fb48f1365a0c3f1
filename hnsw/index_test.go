package hnsw_test

import (
	"context"
	"testing"

	"github.com/fwojciec/helpkb"
	"github.com/fwojciec/helpkb/hnsw"
	"github.com/fwojciec/helpkb/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vectors embeds each known text as a fixed vector.
func vectors(t *testing.T, m map[string][]float32) *mock.Embedder {
	t.Helper()
	return &mock.Embedder{EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
		v, ok := m[text]
		if !ok {
			t.Fatalf("unexpected text %q", text)
		}
		return v, nil
	}}
}

var axes = map[string][]float32{
	"billing":  {1, 0, 0},
	"refunds":  {0.9, 0.1, 0},
	"accounts": {0, 1, 0},
	"password": {0, 0.9, 0.1},
	"webhooks": {0, 0, 1},
}

func seeded(t *testing.T, labels ...string) *hnsw.Index {
	t.Helper()
	idx := hnsw.NewIndex(vectors(t, axes))
	for i, label := range labels {
		path := helpkb.ChunkPath("doc", helpkb.VariantPretty, helpkb.H1, i)
		require.NoError(t, idx.Add(context.Background(), helpkb.Record{FilePath: path}.ID(), path, label))
	}
	return idx
}

func labels(matches []helpkb.Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Label
	}
	return out
}

func TestIndex_Query(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns nearest records first", func(t *testing.T) {
		t.Parallel()

		idx := seeded(t, "billing", "password", "webhooks")
		require.NoError(t, idx.Build(3, helpkb.MetricCosine))

		matches, err := idx.Query(ctx, "refunds", 2)
		require.NoError(t, err)

		assert.Equal(t, []string{"billing", "password"}, labels(matches))
		assert.Less(t, matches[0].Distance, matches[1].Distance)
		assert.Equal(t, helpkb.ChunkPath("doc", helpkb.VariantPretty, helpkb.H1, 0), matches[0].FilePath)
	})

	t.Run("uses the build neighbor count when k is not positive", func(t *testing.T) {
		t.Parallel()

		idx := seeded(t, "refunds", "accounts", "webhooks")
		require.NoError(t, idx.Build(2, helpkb.MetricEuclidean))

		matches, err := idx.Query(ctx, "password", 0)
		require.NoError(t, err)

		assert.Equal(t, []string{"accounts", "refunds"}, labels(matches))
	})

	t.Run("clamps k to the number of records", func(t *testing.T) {
		t.Parallel()

		idx := seeded(t, "refunds", "accounts")
		require.NoError(t, idx.Build(3, helpkb.MetricCosine))

		matches, err := idx.Query(ctx, "billing", 10)
		require.NoError(t, err)

		assert.Len(t, matches, 2)
	})

	t.Run("reports an unbuilt index", func(t *testing.T) {
		t.Parallel()

		idx := seeded(t, "refunds")

		_, err := idx.Query(ctx, "billing", 1)

		assert.Equal(t, helpkb.EUNBUILT, helpkb.ErrorCode(err))
	})

	t.Run("rejects a query vector of the wrong size", func(t *testing.T) {
		t.Parallel()

		idx := hnsw.NewIndex(vectors(t, map[string][]float32{
			"refunds": {1, 0, 0},
			"short":   {1, 0},
		}))
		require.NoError(t, idx.Add(ctx, "a", "a/chunks/raw/h1/0.txt", "refunds"))
		require.NoError(t, idx.Build(1, helpkb.MetricCosine))

		_, err := idx.Query(ctx, "short", 1)

		assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
	})
}

func TestIndex_Add(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("keeps a label generated twice for one chunk", func(t *testing.T) {
		t.Parallel()

		calls := 0
		idx := hnsw.NewIndex(&mock.Embedder{EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			calls++
			return []float32{1, 0}, nil
		}})

		require.NoError(t, idx.Add(ctx, "a", "p", "refunds"))
		require.NoError(t, idx.Add(ctx, "a", "p", "refunds"))
		require.NoError(t, idx.Add(ctx, "a", "p", "billing"))

		assert.Equal(t, 3, idx.Len())
		assert.Equal(t, 3, calls)
	})

	t.Run("reports which ids it holds", func(t *testing.T) {
		t.Parallel()

		idx := seeded(t, "refunds")
		id := helpkb.Record{FilePath: helpkb.ChunkPath("doc", helpkb.VariantPretty, helpkb.H1, 0)}.ID()

		assert.True(t, idx.Contains(id))
		assert.False(t, idx.Contains("missing"))
	})

	t.Run("rejects embeddings of a different size", func(t *testing.T) {
		t.Parallel()

		idx := hnsw.NewIndex(vectors(t, map[string][]float32{
			"refunds": {1, 0, 0},
			"short":   {1, 0},
		}))

		require.NoError(t, idx.Add(ctx, "a", "p", "refunds"))
		err := idx.Add(ctx, "b", "q", "short")

		assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
		assert.Equal(t, 1, idx.Len())
	})
}

func TestIndex_Build(t *testing.T) {
	t.Parallel()

	t.Run("reports an empty index as unbuilt", func(t *testing.T) {
		t.Parallel()

		idx := hnsw.NewIndex(&mock.Embedder{})

		err := idx.Build(3, helpkb.MetricCosine)

		assert.Equal(t, helpkb.EUNBUILT, helpkb.ErrorCode(err))
	})

	t.Run("rejects an unknown metric", func(t *testing.T) {
		t.Parallel()

		idx := seeded(t, "refunds")

		err := idx.Build(3, helpkb.Metric("manhattan"))

		assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
	})
}

func TestIndex_Restore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("answers queries like the index it was saved from", func(t *testing.T) {
		t.Parallel()

		orig := seeded(t, "refunds", "accounts", "webhooks", "password")
		require.NoError(t, orig.Build(3, helpkb.MetricCosine))
		want, err := orig.Query(ctx, "password", 3)
		require.NoError(t, err)

		restored := hnsw.NewIndex(vectors(t, axes))
		require.NoError(t, restored.Restore(orig.Snapshot()))
		_, err = restored.Query(ctx, "password", 3)
		require.Equal(t, helpkb.EUNBUILT, helpkb.ErrorCode(err))
		require.NoError(t, restored.Build(3, helpkb.MetricCosine))

		got, err := restored.Query(ctx, "password", 3)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("holds the ids of restored records", func(t *testing.T) {
		t.Parallel()

		orig := seeded(t, "refunds", "accounts")
		restored := hnsw.NewIndex(vectors(t, axes))
		require.NoError(t, restored.Restore(orig.Snapshot()))

		for _, id := range orig.Snapshot().IDs {
			assert.True(t, restored.Contains(id))
		}
		assert.Equal(t, 2, restored.Len())
	})

	t.Run("rejects mismatched parallel slices", func(t *testing.T) {
		t.Parallel()

		idx := hnsw.NewIndex(&mock.Embedder{})
		err := idx.Restore(&helpkb.IndexSnapshot{
			IDs:       []string{"a", "b"},
			FilePaths: []string{"p"},
			Vectors:   [][]float32{{1}, {2}},
		})

		assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
	})
}
