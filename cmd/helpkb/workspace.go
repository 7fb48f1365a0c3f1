package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/fwojciec/helpkb"
	"github.com/fwojciec/helpkb/crawl"
	"github.com/fwojciec/helpkb/fs"
	"github.com/fwojciec/helpkb/gemini"
	"github.com/fwojciec/helpkb/goquery"
	"github.com/fwojciec/helpkb/hnsw"
	"github.com/fwojciec/helpkb/htmltomarkdown"
	helpkbhttp "github.com/fwojciec/helpkb/http"
	"github.com/fwojciec/helpkb/kb"
	"github.com/fwojciec/helpkb/langchaingo"
	"github.com/fwojciec/helpkb/llm"
	"github.com/fwojciec/helpkb/lru"
	"github.com/fwojciec/helpkb/readability"
	"github.com/fwojciec/helpkb/refine"
	"github.com/fwojciec/helpkb/rod"
	helpkbslog "github.com/fwojciec/helpkb/slog"
	"github.com/fwojciec/helpkb/sqlite"
	"github.com/fwojciec/helpkb/trafilatura"
	"github.com/fwojciec/helpkb/xxhash"
	"github.com/tmc/langchaingo/llms/ollama"
	"google.golang.org/genai"
)

// Workspace is an opened project: its settings, its content and its
// knowledge base.
type Workspace struct {
	Project  *helpkb.Project
	Store    helpkb.ContentStore
	KB       *kb.KnowledgeBase
	Markdown helpkb.Converter

	closers []func() error
}

// Close releases the fetcher, the database and the writer lock.
func (w *Workspace) Close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	w.closers = nil
	return errors.Join(errs...)
}

// Opener creates and opens project workspaces.
type Opener interface {
	// Create saves a new project and opens it for writing. Returns
	// ECONFLICT if the project exists.
	Create(ctx context.Context, p *helpkb.Project) (*Workspace, error)

	// Open opens an existing project. A writable workspace holds the
	// project's writer lock and can crawl. Returns ENOTFOUND if the project
	// does not exist.
	Open(ctx context.Context, name string, writable bool) (*Workspace, error)
}

var _ Opener = (*DirOpener)(nil)

// DirOpener keeps each project in a directory under Root.
type DirOpener struct {
	Root   string
	Getenv func(string) string
	Logger *slog.Logger
}

func (o *DirOpener) dir(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", helpkb.Errorf(helpkb.EINVALID, "invalid project name %q", name)
	}
	return filepath.Join(o.Root, name), nil
}

func (o *DirOpener) Create(ctx context.Context, p *helpkb.Project) (*Workspace, error) {
	dir, err := o.dir(p.Name)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	lock, err := fs.AcquireLock(dir)
	if err != nil {
		return nil, err
	}
	if err := fs.NewProjectStore(dir).CreateProject(ctx, p); err != nil {
		_ = lock.Release()
		return nil, err
	}
	return o.wire(ctx, dir, p, lock)
}

func (o *DirOpener) Open(ctx context.Context, name string, writable bool) (*Workspace, error) {
	dir, err := o.dir(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(dir, fs.ProjectFile)); errors.Is(err, os.ErrNotExist) {
		return nil, helpkb.Errorf(helpkb.ENOTFOUND, "project %q not found. Create it with 'helpkb build %s <base-url>'", name, name)
	}

	var lock *fs.Lock
	if writable {
		if lock, err = fs.AcquireLock(dir); err != nil {
			return nil, err
		}
	}
	p, err := fs.NewProjectStore(dir).FindProject(ctx)
	if err != nil {
		if lock != nil {
			_ = lock.Release()
		}
		return nil, err
	}
	return o.wire(ctx, dir, p, lock)
}

// wire builds the knowledge base described by p. A nil lock opens the
// project read-only, without a fetcher.
func (o *DirOpener) wire(ctx context.Context, dir string, p *helpkb.Project, lock *fs.Lock) (*Workspace, error) {
	ws := &Workspace{Project: p}
	if lock != nil {
		ws.closers = append(ws.closers, lock.Release)
	}
	wired := false
	defer func() {
		if !wired {
			_ = ws.Close()
		}
	}()
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("project", p.Name)

	var states helpkb.StateStore
	var indexes helpkb.IndexStore
	switch p.Store {
	case "sqlite":
		db := sqlite.NewDB(filepath.Join(dir, "helpkb.db"))
		if err := db.Open(); err != nil {
			return nil, err
		}
		ws.closers = append(ws.closers, db.Close)
		ws.Store, states, indexes = sqlite.NewContentStore(db), sqlite.NewStateStore(db), sqlite.NewIndexStore(db)
	default:
		ws.Store = fs.NewContentStore(dir)
		states, indexes = fs.NewStateStore(dir), fs.NewIndexStore(dir)
	}

	chat, embedder, err := o.provider(ctx, p)
	if err != nil {
		return nil, err
	}
	cached, err := lru.NewCachedEmbedder(helpkbslog.NewLoggingEmbedder(embedder, logger), lru.DefaultSize)
	if err != nil {
		return nil, err
	}
	text := helpkbslog.NewLoggingTextService(llm.NewTextService(chat), logger)

	families := make(map[helpkb.Family]helpkb.Index, len(helpkb.Families))
	for _, f := range helpkb.Families {
		idx := hnsw.NewIndex(cached)
		idx.ApproximateAbove = p.ApproximateAbove
		families[f] = idx
	}
	base := kb.NewKnowledgeBase(ws.Store, states, indexes, families)
	base.Text = text
	base.Logger = logger
	ws.KB = base

	markdown := htmltomarkdown.NewConverter()
	if u, err := url.Parse(p.BaseURL); err == nil {
		markdown.Domain = u.Scheme + "://" + u.Host
	}
	ws.Markdown = markdown

	if lock != nil {
		if err := o.wireWriter(ctx, ws, text, logger); err != nil {
			return nil, err
		}
	}

	base.Load(ctx)
	wired = true
	return ws, nil
}

// wireWriter adds the crawler, the refiner and sitemap seeding.
func (o *DirOpener) wireWriter(ctx context.Context, ws *Workspace, text helpkb.TextService, logger *slog.Logger) error {
	p := ws.Project
	scope, err := p.Scope()
	if err != nil {
		return err
	}

	var fetcher helpkb.Fetcher
	switch p.Fetcher {
	case "rod":
		f, err := rod.NewFetcher()
		if err != nil {
			return fmt.Errorf("starting browser (Chrome or Chromium must be installed): %w", err)
		}
		fetcher = f
	default:
		fetcher = helpkbhttp.NewFetcher()
	}
	ws.closers = append(ws.closers, fetcher.Close)

	crawler := crawl.NewCrawler(ws.Store, helpkbslog.NewLoggingFetcher(fetcher, logger), goquery.NewLinkExtractor(), scope)
	crawler.Limiter = crawl.NewDomainLimiter(p.RequestsPerSecond)
	crawler.Logger = logger

	refiner := refine.NewRefiner(ws.Store, goquery.NewBlockExtractor(), text)
	refiner.Logger = logger
	switch p.PreExtract {
	case "trafilatura":
		refiner.PreExtract = trafilatura.NewExtractor()
	case "readability":
		e := readability.NewExtractor()
		e.PageURL, _ = url.Parse(p.BaseURL)
		refiner.PreExtract = e
	}
	if tokens, err := gemini.NewTokenCounter(""); err == nil {
		refiner.Tokens = tokens
	} else {
		logger.Debug("token counting disabled", "err", err)
	}

	ws.KB.Crawler = crawler
	ws.KB.Refiner = refiner
	ws.KB.Scope = scope
	ws.KB.Sitemaps = helpkbslog.NewLoggingSitemapService(helpkbhttp.NewSitemapService(nil), logger)
	return nil
}

// provider connects the chat and embedding models chosen by the project.
// The static provider embeds offline and chats through Ollama.
func (o *DirOpener) provider(ctx context.Context, p *helpkb.Project) (helpkb.ChatModel, helpkb.Embedder, error) {
	switch p.Provider {
	case "gemini":
		key := o.Getenv("GEMINI_API_KEY")
		if key == "" {
			return nil, nil, helpkb.Errorf(helpkb.EINVALID, "GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		return gemini.NewChatModel(client, p.ChatModel), gemini.NewEmbedder(client, p.EmbeddingModel), nil
	}

	chat, err := o.ollama(p.ChatModel, langchaingo.DefaultChatModel)
	if err != nil {
		return nil, nil, err
	}
	if p.Provider == "static" {
		return langchaingo.NewChatModel(chat), xxhash.NewStaticEmbedder(), nil
	}
	embed, err := o.ollama(p.EmbeddingModel, langchaingo.DefaultEmbeddingModel)
	if err != nil {
		return nil, nil, err
	}
	return langchaingo.NewChatModel(chat), langchaingo.NewEmbedder(embed), nil
}

func (o *DirOpener) ollama(model, fallback string) (*ollama.LLM, error) {
	if model == "" {
		model = fallback
	}
	return langchaingo.NewOllama(o.Getenv("OLLAMA_HOST"), model)
}
