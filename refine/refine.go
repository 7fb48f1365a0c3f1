// Package refine turns a downloaded page into trimmed text, aligned chunks
// and retrieval records, advancing the document one stage at a time.
package refine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/helpkb"
	"golang.org/x/sync/errgroup"
)

// Defaults for a Refiner.
const (
	DefaultConcurrency      = 4
	DefaultQuestionAttempts = 3
)

// Result is the outcome of processing one document.
type Result struct {
	// Records is set when the document was evaluated or replayed.
	Records *helpkb.RecordBundle

	// Advanced reports whether the document moved to a later status.
	Advanced bool
}

// Refiner processes documents through the trim, chunk and evaluate stages.
// Every stage persists its artifact and the new status before returning.
type Refiner struct {
	Store  helpkb.ContentStore
	Blocks helpkb.BlockExtractor
	Text   helpkb.TextService

	// PreExtract, if set, isolates the main content before trimming.
	PreExtract helpkb.Extractor

	// Tokens, if set, is used to log the size of trimmed text.
	Tokens helpkb.TokenCounter

	Logger *slog.Logger

	// Concurrency bounds the prettify calls in flight for one document.
	Concurrency int

	// QuestionAttempts is how often question generation is tried when the
	// generated list fails validation.
	QuestionAttempts int
}

// NewRefiner returns a Refiner with default limits and a discard logger.
func NewRefiner(store helpkb.ContentStore, blocks helpkb.BlockExtractor, text helpkb.TextService) *Refiner {
	return &Refiner{
		Store:            store,
		Blocks:           blocks,
		Text:             text,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		Concurrency:      DefaultConcurrency,
		QuestionAttempts: DefaultQuestionAttempts,
	}
}

// Process runs the stage that follows the document's persisted status.
// DOWNLOADED is trimmed and chunked, TRIMMED is chunked, CHUNKED is
// evaluated, PROCESSED returns the stored records and ERROR is a no-op.
// An UNVISITED document is EINVALID.
func (r *Refiner) Process(ctx context.Context, id string) (*Result, error) {
	status, err := r.Store.Status(ctx, id)
	if err != nil {
		return nil, err
	}
	step, err := helpkb.NextStep(status)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("refine", "id", id, "status", status, "step", step)

	switch step {
	case helpkb.StepTrimAndChunk:
		if err := r.trim(ctx, id); err != nil {
			return nil, err
		}
		if err := r.chunk(ctx, id); err != nil {
			return nil, err
		}
		return &Result{Advanced: true}, nil
	case helpkb.StepChunk:
		if err := r.chunk(ctx, id); err != nil {
			return nil, err
		}
		return &Result{Advanced: true}, nil
	case helpkb.StepEvaluate:
		records, err := r.evaluate(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Result{Records: records, Advanced: true}, nil
	case helpkb.StepReplay:
		records, err := r.Store.Records(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Result{Records: records}, nil
	}
	return &Result{}, nil
}

func (r *Refiner) trim(ctx context.Context, id string) error {
	page, err := r.Store.Source(ctx, id)
	if err != nil {
		return err
	}

	if r.PreExtract != nil {
		res, err := r.PreExtract.Extract(page)
		if err != nil {
			r.Logger.Warn("main content extraction failed, trimming full page", "id", id, "err", err)
		} else {
			page = res.Page()
		}
	}

	blocks, err := r.Blocks.ExtractBlocks(page)
	if err != nil {
		return fmt.Errorf("extracting blocks: %w", err)
	}
	trimmed := helpkb.RenderBlocks(blocks)
	if err := r.Store.SetTrimmed(ctx, id, trimmed); err != nil {
		return err
	}
	if err := helpkb.Advance(ctx, r.Store, id, helpkb.StatusDownloaded, helpkb.StatusTrimmed); err != nil {
		return err
	}

	attrs := []any{"id", id, "blocks", len(blocks), "bytes", len(trimmed)}
	if r.Tokens != nil {
		if n, err := r.Tokens.CountTokens(ctx, trimmed); err == nil {
			attrs = append(attrs, "tokens", n)
		}
	}
	r.Logger.Info("trimmed", attrs...)
	return nil
}

func (r *Refiner) chunk(ctx context.Context, id string) error {
	trimmed, err := r.Store.Trimmed(ctx, id)
	if err != nil {
		return err
	}
	raw := helpkb.ChunkText(trimmed)
	if err := r.Store.SetChunks(ctx, id, helpkb.VariantRaw, raw); err != nil {
		return err
	}
	if err := helpkb.Advance(ctx, r.Store, id, helpkb.StatusTrimmed, helpkb.StatusChunked); err != nil {
		return err
	}
	r.Logger.Info("chunked", "id", id,
		"h1", len(raw[helpkb.H1]), "h2", len(raw[helpkb.H2]), "h3", len(raw[helpkb.H3]))

	// Evaluation redoes a failed prettify pass.
	if _, err := r.prettify(ctx, id, raw); err != nil {
		r.Logger.Warn("prettify failed", "id", id, "err", err)
	}
	return nil
}

// prettify corrects every raw chunk and stores the pretty variant.
func (r *Refiner) prettify(ctx context.Context, id string, raw helpkb.ChunkSet) (helpkb.ChunkSet, error) {
	pretty := make(helpkb.ChunkSet, len(raw))
	for g, chunks := range raw {
		pretty[g] = make([]string, len(chunks))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Concurrency, 1))
	for gran, chunks := range raw {
		for i, chunk := range chunks {
			out := &pretty[gran][i]
			g.Go(func() error {
				text, err := r.Text.Correct(gctx, chunk)
				if err != nil {
					return fmt.Errorf("correcting %s chunk %d: %w", gran, i, err)
				}
				*out = text
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := r.Store.SetChunks(ctx, id, helpkb.VariantPretty, pretty); err != nil {
		return nil, err
	}
	return pretty, nil
}

// prettyChunks loads the pretty variant, regenerating it when missing.
func (r *Refiner) prettyChunks(ctx context.Context, id string) (helpkb.ChunkSet, error) {
	pretty, err := r.Store.Chunks(ctx, id, helpkb.VariantPretty)
	if err == nil {
		return pretty, nil
	} else if helpkb.ErrorCode(err) != helpkb.ENOTFOUND {
		return nil, err
	}
	raw, err := r.Store.Chunks(ctx, id, helpkb.VariantRaw)
	if err != nil {
		return nil, err
	}
	return r.prettify(ctx, id, raw)
}

func (r *Refiner) evaluate(ctx context.Context, id string) (*helpkb.RecordBundle, error) {
	pretty, err := r.prettyChunks(ctx, id)
	if err != nil {
		return nil, err
	}

	records := &helpkb.RecordBundle{}
	var questions []string
	for i, chunk := range pretty[helpkb.H1] {
		path := helpkb.ChunkPath(id, helpkb.VariantPretty, helpkb.H1, i)
		records.Topics = append(records.Topics, helpkb.Record{Label: helpkb.Topic(chunk), FilePath: path})

		qs, err := r.questions(ctx, chunk)
		if err != nil {
			return nil, err
		}
		questions = append(questions, qs...)

		keywords, err := r.Text.Keywords(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("generating keywords: %w", err)
		}
		for _, kw := range keywords {
			records.Keywords = append(records.Keywords, helpkb.Record{Label: kw, FilePath: path})
		}
	}

	// Finest evidence is scored first.
	var pool []string
	pool = append(pool, pretty[helpkb.H3]...)
	pool = append(pool, pretty[helpkb.H2]...)
	pool = append(pool, pretty[helpkb.H1]...)

	synthetic := make([]helpkb.SyntheticChunk, 0, len(questions))
	for i, q := range questions {
		scored, err := helpkb.ScoreCandidates(ctx, q, pool, helpkb.RelevancyThreshold, r.Text.Relevance)
		if err != nil {
			return nil, fmt.Errorf("scoring evidence: %w", err)
		}
		synthetic = append(synthetic, helpkb.AssembleSynthetic(q, scored, helpkb.RelevancyThreshold))
		records.Questions = append(records.Questions, helpkb.Record{Label: q, FilePath: helpkb.SyntheticPath(id, i)})
	}

	if err := r.Store.SetSyntheticChunks(ctx, id, synthetic); err != nil {
		return nil, err
	}
	if err := r.Store.SetRecords(ctx, id, records); err != nil {
		return nil, err
	}
	if err := helpkb.Advance(ctx, r.Store, id, helpkb.StatusChunked, helpkb.StatusProcessed); err != nil {
		return nil, err
	}
	r.Logger.Info("evaluated", "id", id,
		"topics", len(records.Topics), "keywords", len(records.Keywords), "questions", len(records.Questions))
	return records, nil
}

// questions retries generation while the model's list fails validation.
func (r *Refiner) questions(ctx context.Context, chunk string) ([]string, error) {
	attempts := max(r.QuestionAttempts, 1)
	var err error
	for range attempts {
		var qs []string
		qs, err = r.Text.Questions(ctx, chunk)
		if err == nil {
			return qs, nil
		}
		if helpkb.ErrorCode(err) != helpkb.EPARSE {
			break
		}
		r.Logger.Debug("question list rejected, retrying", "err", err)
	}
	return nil, fmt.Errorf("generating questions: %w", err)
}
