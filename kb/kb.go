// Package kb orchestrates a knowledge base: it drives the crawl frontier
// and the processing queue, keeps the three retrieval indices current and
// answers queries by fusing their results.
package kb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/helpkb"
	"github.com/fwojciec/helpkb/refine"
)

// Result counts per family for Search.
const (
	TopicsK    = 1
	QuestionsK = 5
	KeywordsK  = 10
)

// Neighbors is the default neighbor count each family's index is built
// with.
var Neighbors = map[helpkb.Family]int{
	helpkb.FamilyTopics:    3,
	helpkb.FamilyKeywords:  8,
	helpkb.FamilyQuestions: 3,
}

// Crawler visits one URL and reports the document id and new links.
type Crawler interface {
	Crawl(ctx context.Context, url string) (id string, links []string, err error)
}

// Refiner advances one document through the processing stages.
type Refiner interface {
	Process(ctx context.Context, id string) (*refine.Result, error)
}

// Progress receives queue progress. *progressbar.ProgressBar satisfies it.
type Progress interface {
	ChangeMax(max int)
	Add(n int) error
	Describe(description string)
}

// SearchResult holds the matches of each family in the configured order.
type SearchResult struct {
	Topics    []helpkb.Match `json:"topics"`
	Questions []helpkb.Match `json:"questions"`
	Keywords  []helpkb.Match `json:"keywords"`
}

// KnowledgeBase owns the run state and the indices of one project. It is
// not safe for concurrent use; every mutation of the frontier or queue is
// followed by a save.
type KnowledgeBase struct {
	Store      helpkb.ContentStore
	State      helpkb.StateStore
	IndexStore helpkb.IndexStore
	Indexes    map[helpkb.Family]helpkb.Index

	Crawler Crawler
	Refiner Refiner
	Text    helpkb.TextService

	// Sitemaps, if set, seeds the frontier on Build.
	Sitemaps helpkb.SitemapService
	Scope    *helpkb.Scope

	// Ordering sorts each family's matches in Search.
	Ordering helpkb.Ordering
	Metric   helpkb.Metric

	Progress Progress
	Logger   *slog.Logger

	state helpkb.RunState
}

// NewKnowledgeBase returns a KnowledgeBase with the historical descending
// distance ordering, cosine indices and a discard logger.
func NewKnowledgeBase(store helpkb.ContentStore, state helpkb.StateStore, indexStore helpkb.IndexStore, indexes map[helpkb.Family]helpkb.Index) *KnowledgeBase {
	return &KnowledgeBase{
		Store:      store,
		State:      state,
		IndexStore: indexStore,
		Indexes:    indexes,
		Ordering:   helpkb.OrderByDistanceDesc,
		Metric:     helpkb.MetricCosine,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// RunState returns a copy of the current frontier and queue.
func (kb *KnowledgeBase) RunState() helpkb.RunState {
	return helpkb.RunState{
		ToVisit:   append([]string(nil), kb.state.ToVisit...),
		ToProcess: append([]string(nil), kb.state.ToProcess...),
	}
}

// Load restores the run state and every index snapshot, then builds the
// indices. Missing or unreadable state leaves the defaults in place and an
// index that cannot be built stays unbuilt; both are logged.
func (kb *KnowledgeBase) Load(ctx context.Context) {
	state, err := kb.State.LoadState(ctx)
	switch {
	case err == nil:
		kb.state = *state
	case helpkb.ErrorCode(err) == helpkb.ENOTFOUND:
		kb.state = helpkb.RunState{}
	default:
		kb.Logger.Warn("loading run state failed", "err", err)
		kb.state = helpkb.RunState{}
	}

	for _, f := range helpkb.Families {
		snap, err := kb.IndexStore.LoadIndex(ctx, f)
		if helpkb.ErrorCode(err) == helpkb.ENOTFOUND {
			continue
		} else if err != nil {
			kb.Logger.Warn("loading index failed", "family", f, "err", err)
			continue
		}
		idx := kb.Indexes[f]
		if err := idx.Restore(snap); err != nil {
			kb.Logger.Warn("restoring index failed", "family", f, "err", err)
			continue
		}
		kb.build(f)
	}
}

// Save persists the run state and every index snapshot.
func (kb *KnowledgeBase) Save(ctx context.Context) error {
	var errs []error
	if err := kb.State.SaveState(ctx, &kb.state); err != nil {
		errs = append(errs, fmt.Errorf("saving run state: %w", err))
	}
	for _, f := range helpkb.Families {
		if err := kb.IndexStore.SaveIndex(ctx, f, kb.Indexes[f].Snapshot()); err != nil {
			errs = append(errs, fmt.Errorf("saving %s index: %w", f, err))
		}
	}
	return errors.Join(errs...)
}

// save persists progress. A failure is logged and in-memory progress
// continues.
func (kb *KnowledgeBase) save(ctx context.Context) {
	if err := kb.Save(context.WithoutCancel(ctx)); err != nil {
		kb.Logger.Error("save failed", "err", err)
	}
}

// Build seeds the frontier with baseURL, plus the sitemap URLs of the scope
// when Sitemaps is set, and runs Update. The base URL is crawled first.
func (kb *KnowledgeBase) Build(ctx context.Context, baseURL string) error {
	kb.state = helpkb.RunState{}
	if kb.Sitemaps != nil && kb.Scope != nil {
		urls, err := kb.Sitemaps.DiscoverURLs(ctx, kb.Scope)
		if err != nil {
			kb.Logger.Warn("sitemap discovery failed, crawling links only", "err", err)
		}
		for i := len(urls) - 1; i >= 0; i-- {
			kb.state.ToVisit = append(kb.state.ToVisit, urls[i])
		}
	}
	kb.state.ToVisit = append(kb.state.ToVisit, baseURL)
	kb.save(ctx)
	return kb.Update(ctx)
}

// Update drains the frontier, then the processing queue. Both are stacks:
// the most recently added entry is handled first. Progress is saved after
// every URL and every document, and once more on return. A failing URL or
// document is logged and skipped. Update returns early only when ctx is
// done.
func (kb *KnowledgeBase) Update(ctx context.Context) error {
	defer kb.save(ctx)

	if err := kb.explore(ctx); err != nil {
		return err
	}
	return kb.process(ctx)
}

func (kb *KnowledgeBase) explore(ctx context.Context) error {
	for len(kb.state.ToVisit) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		url := pop(&kb.state.ToVisit)

		id, links, err := kb.Crawler.Crawl(ctx, url)
		if err != nil {
			kb.Logger.Warn("crawl failed", "url", url, "err", err)
		}
		if id != "" {
			kb.state.ToProcess = append(kb.state.ToProcess, id)
		}
		kb.state.ToVisit = append(kb.state.ToVisit, links...)
		kb.save(ctx)
	}
	return nil
}

func (kb *KnowledgeBase) process(ctx context.Context) error {
	total := len(kb.state.ToProcess)
	if kb.Progress != nil {
		kb.Progress.ChangeMax(total)
	}

	for len(kb.state.ToProcess) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := pop(&kb.state.ToProcess)
		if kb.Progress != nil {
			kb.Progress.Describe(shortID(id))
		}

		res, err := kb.Refiner.Process(ctx, id)
		switch {
		case err != nil:
			kb.Logger.Warn("processing failed", "id", id, "err", err)
		case res.Records != nil:
			if err := kb.index(ctx, res.Records); err != nil {
				kb.Logger.Warn("indexing failed", "id", id, "err", err)
			}
		case res.Advanced:
			// Chunked but not yet evaluated.
			kb.state.ToProcess = append(kb.state.ToProcess, id)
			total++
			if kb.Progress != nil {
				kb.Progress.ChangeMax(total)
			}
		}
		kb.save(ctx)
		if kb.Progress != nil {
			_ = kb.Progress.Add(1)
		}
	}
	return nil
}

// ProcessAll replaces the queue with every stored document that was
// downloaded but not yet processed, then runs Update.
func (kb *KnowledgeBase) ProcessAll(ctx context.Context) error {
	ids, err := kb.Store.DocumentIDs(ctx)
	if err != nil {
		return err
	}
	queue := []string{}
	for _, id := range ids {
		status, err := kb.Store.Status(ctx, id)
		if err != nil {
			kb.Logger.Warn("reading status failed", "id", id, "err", err)
			continue
		}
		switch status {
		case helpkb.StatusDownloaded, helpkb.StatusTrimmed, helpkb.StatusChunked:
			queue = append(queue, id)
		}
	}
	kb.state.ToProcess = queue
	kb.Logger.Info("requeued documents", "count", len(queue))
	kb.save(ctx)
	return kb.Update(ctx)
}

// index adds a document's records and rebuilds the affected indices.
// Questions are indexed only alongside keywords.
func (kb *KnowledgeBase) index(ctx context.Context, records *helpkb.RecordBundle) error {
	if err := kb.add(ctx, helpkb.FamilyTopics, records.Topics); err != nil {
		return err
	}
	if err := kb.add(ctx, helpkb.FamilyKeywords, records.Keywords); err != nil {
		return err
	}
	if len(records.Keywords) > 0 {
		if err := kb.add(ctx, helpkb.FamilyQuestions, records.Questions); err != nil {
			return err
		}
	}
	return nil
}

// add indexes records whose ids the family does not hold yet. A chunk's
// records are added together, so a held id means its document was already
// indexed and is being replayed.
func (kb *KnowledgeBase) add(ctx context.Context, f helpkb.Family, records []helpkb.Record) error {
	idx := kb.Indexes[f]
	fresh := records[:0:0]
	for _, r := range records {
		if !idx.Contains(r.ID()) {
			fresh = append(fresh, r)
		}
	}
	if len(fresh) == 0 {
		return nil
	}
	for _, r := range fresh {
		if err := idx.Add(ctx, r.ID(), r.FilePath, r.Label); err != nil {
			return fmt.Errorf("adding to %s index: %w", f, err)
		}
	}
	kb.build(f)
	return nil
}

func (kb *KnowledgeBase) build(f helpkb.Family) {
	if err := kb.Indexes[f].Build(Neighbors[f], kb.Metric); err != nil {
		kb.Logger.Warn("index left unbuilt", "family", f, "err", err)
	}
}

// Search queries each family and sorts every result list with Ordering.
// An unbuilt family fails the search with EUNBUILT.
func (kb *KnowledgeBase) Search(ctx context.Context, query string) (*SearchResult, error) {
	var res SearchResult
	for _, q := range []struct {
		family helpkb.Family
		k      int
		out    *[]helpkb.Match
	}{
		{helpkb.FamilyTopics, TopicsK, &res.Topics},
		{helpkb.FamilyQuestions, QuestionsK, &res.Questions},
		{helpkb.FamilyKeywords, KeywordsK, &res.Keywords},
	} {
		matches, err := kb.Indexes[q.family].Query(ctx, query, q.k)
		if err != nil {
			return nil, fmt.Errorf("searching %s: %w", q.family, err)
		}
		kb.Ordering.Sort(matches)
		*q.out = matches
	}
	return &res, nil
}

// Answer searches for query, then asks the text service to answer from
// each topic passage paired with each question passage. When no pair
// yields an answer, each keyword passage is tried alone. It returns "" when
// nothing answers the query. Passages that cannot be read are skipped.
func (kb *KnowledgeBase) Answer(ctx context.Context, query string) (string, error) {
	res, err := kb.Search(ctx, query)
	if err != nil {
		return "", err
	}

	for _, topic := range res.Topics {
		primary, ok := kb.passage(ctx, topic)
		if !ok {
			continue
		}
		for _, question := range res.Questions {
			secondary, ok := kb.passage(ctx, question)
			if !ok {
				continue
			}
			answer, err := kb.Text.Answer(ctx, query, primary, secondary)
			if err != nil {
				return "", err
			}
			if answer != "" {
				return answer, nil
			}
		}
	}

	kb.Logger.Debug("no topic and question pair answered, trying keywords", "query", query)
	for _, keyword := range res.Keywords {
		text, ok := kb.passage(ctx, keyword)
		if !ok {
			continue
		}
		answer, err := kb.Text.AnswerSingle(ctx, query, text)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
	return "", nil
}

func (kb *KnowledgeBase) passage(ctx context.Context, m helpkb.Match) (string, bool) {
	text, err := helpkb.ReadChunk(ctx, kb.Store, m.FilePath)
	if err != nil {
		kb.Logger.Warn("reading passage failed", "filepath", m.FilePath, "err", err)
		return "", false
	}
	return text, true
}

func pop(stack *[]string) string {
	s := *stack
	last := s[len(s)-1]
	*stack = s[:len(s)-1]
	return last
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
