package refine_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/helpkb"
	"github.com/fwojciec/helpkb/fs"
	"github.com/fwojciec/helpkb/goquery"
	"github.com/fwojciec/helpkb/mock"
	"github.com/fwojciec/helpkb/refine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const billingPage = `<html><head><title>Billing</title></head><body>
<nav><ul><li>Home</li></ul></nav>
<h2>Refunds</h2>
<p>Refunds take   5 days.</p>
<h3>Card refunds</h3>
<p>Cards are refunded to the original card.</p>
<footer>Copyright</footer>
</body></html>`

const billingTrimmed = "h1: Billing\n\nh2: Refunds\n\nRefunds take 5 days.\n\nh3: Card refunds\n\nCards are refunded to the original card."

const refundQuestion = "How long do refunds take?"

var docID = helpkb.DocumentID("https://x.test/billing")

// textService answers every call with fixed output. Correct returns its
// input unchanged.
func textService() *mock.TextService {
	return &mock.TextService{
		CorrectFn: func(ctx context.Context, text string) (string, error) {
			return text, nil
		},
		QuestionsFn: func(ctx context.Context, text string) ([]string, error) {
			return []string{refundQuestion}, nil
		},
		KeywordsFn: func(ctx context.Context, text string) ([]string, error) {
			return []string{"refunds", "billing"}, nil
		},
		RelevanceFn: func(ctx context.Context, question, text string) (int, error) {
			if strings.HasPrefix(text, "h3:") {
				return 9, nil
			}
			return 3, nil
		},
	}
}

// downloaded returns a store holding billingPage as a DOWNLOADED document.
func downloaded(t *testing.T) *fs.ContentStore {
	t.Helper()

	ctx := context.Background()
	store := fs.NewContentStore(t.TempDir())
	require.NoError(t, store.CreateDocument(ctx, docID))
	require.NoError(t, store.SetSource(ctx, docID, billingPage))
	require.NoError(t, helpkb.Advance(ctx, store, docID, helpkb.StatusUnvisited, helpkb.StatusDownloaded))
	return store
}

func status(t *testing.T, store helpkb.ContentStore) helpkb.Status {
	t.Helper()
	s, err := store.Status(context.Background(), docID)
	require.NoError(t, err)
	return s
}

func TestRefiner_Process(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("trims and chunks a downloaded page", func(t *testing.T) {
		t.Parallel()

		store := downloaded(t)
		r := refine.NewRefiner(store, goquery.NewBlockExtractor(), textService())

		res, err := r.Process(ctx, docID)
		require.NoError(t, err)

		assert.True(t, res.Advanced)
		assert.Nil(t, res.Records)
		assert.Equal(t, helpkb.StatusChunked, status(t, store))

		trimmed, err := store.Trimmed(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, billingTrimmed, trimmed)

		raw, err := store.Chunks(ctx, docID, helpkb.VariantRaw)
		require.NoError(t, err)
		assert.Equal(t, []string{billingTrimmed}, raw[helpkb.H1])
		assert.Equal(t, []string{"h3: Card refunds\n\nCards are refunded to the original card."}, raw[helpkb.H3])

		pretty, err := store.Chunks(ctx, docID, helpkb.VariantPretty)
		require.NoError(t, err)
		assert.Equal(t, raw, pretty)
	})

	t.Run("evaluates a chunked document into records", func(t *testing.T) {
		t.Parallel()

		store := downloaded(t)
		r := refine.NewRefiner(store, goquery.NewBlockExtractor(), textService())
		_, err := r.Process(ctx, docID)
		require.NoError(t, err)

		res, err := r.Process(ctx, docID)
		require.NoError(t, err)

		topicPath := helpkb.ChunkPath(docID, helpkb.VariantPretty, helpkb.H1, 0)
		assert.True(t, res.Advanced)
		assert.Equal(t, &helpkb.RecordBundle{
			Topics: []helpkb.Record{{Label: "Billing", FilePath: topicPath}},
			Keywords: []helpkb.Record{
				{Label: "refunds", FilePath: topicPath},
				{Label: "billing", FilePath: topicPath},
			},
			Questions: []helpkb.Record{{Label: refundQuestion, FilePath: helpkb.SyntheticPath(docID, 0)}},
		}, res.Records)
		assert.Equal(t, helpkb.StatusProcessed, status(t, store))

		passage, err := helpkb.ReadChunk(ctx, store, helpkb.SyntheticPath(docID, 0))
		require.NoError(t, err)
		assert.Equal(t, refundQuestion+"\nh3: Card refunds\n\nCards are refunded to the original card.", passage)
	})

	t.Run("replays stored records without calling the text service", func(t *testing.T) {
		t.Parallel()

		store := downloaded(t)
		r := refine.NewRefiner(store, goquery.NewBlockExtractor(), textService())
		_, err := r.Process(ctx, docID)
		require.NoError(t, err)
		first, err := r.Process(ctx, docID)
		require.NoError(t, err)

		r.Text = &mock.TextService{}
		again, err := r.Process(ctx, docID)
		require.NoError(t, err)

		assert.False(t, again.Advanced)
		assert.Equal(t, first.Records, again.Records)
		assert.Equal(t, helpkb.StatusProcessed, status(t, store))
	})

	t.Run("resumes a trimmed document at chunking", func(t *testing.T) {
		t.Parallel()

		store := fs.NewContentStore(t.TempDir())
		require.NoError(t, store.CreateDocument(ctx, docID))
		require.NoError(t, store.SetTrimmed(ctx, docID, billingTrimmed))
		require.NoError(t, store.SetStatus(ctx, docID, helpkb.StatusTrimmed))

		blocks := &mock.BlockExtractor{ExtractBlocksFn: func(html string) ([]helpkb.Block, error) {
			t.Fatal("trim must not run again")
			return nil, nil
		}}
		r := refine.NewRefiner(store, blocks, textService())

		res, err := r.Process(ctx, docID)
		require.NoError(t, err)
		assert.True(t, res.Advanced)
		assert.Equal(t, helpkb.StatusChunked, status(t, store))
	})

	t.Run("ignores documents in error", func(t *testing.T) {
		t.Parallel()

		store := fs.NewContentStore(t.TempDir())
		require.NoError(t, store.CreateDocument(ctx, docID))
		require.NoError(t, store.SetStatus(ctx, docID, helpkb.StatusError))
		r := refine.NewRefiner(store, goquery.NewBlockExtractor(), &mock.TextService{})

		res, err := r.Process(ctx, docID)
		require.NoError(t, err)
		assert.False(t, res.Advanced)
		assert.Nil(t, res.Records)
	})

	t.Run("rejects documents that were never downloaded", func(t *testing.T) {
		t.Parallel()

		store := fs.NewContentStore(t.TempDir())
		require.NoError(t, store.CreateDocument(ctx, docID))
		r := refine.NewRefiner(store, goquery.NewBlockExtractor(), &mock.TextService{})

		_, err := r.Process(ctx, docID)
		assert.Equal(t, helpkb.EINVALID, helpkb.ErrorCode(err))
	})

	t.Run("retries question generation when validation fails", func(t *testing.T) {
		t.Parallel()

		store := downloaded(t)
		text := textService()
		var calls atomic.Int32
		text.QuestionsFn = func(ctx context.Context, s string) ([]string, error) {
			if calls.Add(1) < 3 {
				return nil, helpkb.Errorf(helpkb.EPARSE, "questions not answerable")
			}
			return []string{refundQuestion}, nil
		}
		r := refine.NewRefiner(store, goquery.NewBlockExtractor(), text)
		_, err := r.Process(ctx, docID)
		require.NoError(t, err)

		res, err := r.Process(ctx, docID)
		require.NoError(t, err)
		assert.Len(t, res.Records.Questions, 1)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("leaves the document chunked when evaluation fails", func(t *testing.T) {
		t.Parallel()

		store := downloaded(t)
		text := textService()
		text.KeywordsFn = func(ctx context.Context, s string) ([]string, error) {
			return nil, errors.New("quota exceeded")
		}
		r := refine.NewRefiner(store, goquery.NewBlockExtractor(), text)
		_, err := r.Process(ctx, docID)
		require.NoError(t, err)

		_, err = r.Process(ctx, docID)
		require.Error(t, err)
		assert.Equal(t, helpkb.StatusChunked, status(t, store))
	})

	t.Run("regenerates pretty chunks missing after a failed prettify", func(t *testing.T) {
		t.Parallel()

		store := downloaded(t)
		text := textService()
		var fail atomic.Bool
		fail.Store(true)
		text.CorrectFn = func(ctx context.Context, s string) (string, error) {
			if fail.Load() {
				return "", errors.New("timeout")
			}
			return s, nil
		}
		r := refine.NewRefiner(store, goquery.NewBlockExtractor(), text)

		_, err := r.Process(ctx, docID)
		require.NoError(t, err)
		_, err = store.Chunks(ctx, docID, helpkb.VariantPretty)
		require.Equal(t, helpkb.ENOTFOUND, helpkb.ErrorCode(err))

		fail.Store(false)
		res, err := r.Process(ctx, docID)
		require.NoError(t, err)
		assert.Len(t, res.Records.Topics, 1)
	})

	t.Run("trims only the extracted main content", func(t *testing.T) {
		t.Parallel()

		store := downloaded(t)
		r := refine.NewRefiner(store, goquery.NewBlockExtractor(), textService())
		r.PreExtract = &mock.Extractor{ExtractFn: func(html string) (*helpkb.ExtractResult, error) {
			return &helpkb.ExtractResult{Title: "Billing", ContentHTML: "<p>Refunds take 5 days.</p>"}, nil
		}}
		r.Tokens = &mock.TokenCounter{CountTokensFn: func(ctx context.Context, text string) (int, error) {
			return 12, nil
		}}

		_, err := r.Process(ctx, docID)
		require.NoError(t, err)

		trimmed, err := store.Trimmed(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, "h1: Billing\n\nRefunds take 5 days.", trimmed)
	})
}
