// Package crawl visits pages of a knowledge base: it downloads a page once,
// records its status and source, and reports the in-scope links it found.
package crawl

import (
	"context"
	"io"
	"log/slog"
	"net/url"

	"github.com/fwojciec/helpkb"
)

// Crawler visits URLs for one knowledge base. The visited set lives only
// for the Crawler's lifetime; resumption across runs relies on document
// status. A Crawler is not safe for concurrent use.
type Crawler struct {
	Store   helpkb.ContentStore
	Fetcher helpkb.Fetcher
	Links   helpkb.LinkExtractor
	Scope   *helpkb.Scope

	// Limiter, if set, is waited on before every download attempt.
	Limiter helpkb.DomainLimiter
	Retry   RetryPolicy
	Logger  *slog.Logger

	visited map[string]bool
}

// NewCrawler returns a Crawler with the default retry policy and a discard
// logger.
func NewCrawler(store helpkb.ContentStore, fetcher helpkb.Fetcher, links helpkb.LinkExtractor, scope *helpkb.Scope) *Crawler {
	return &Crawler{
		Store:   store,
		Fetcher: fetcher,
		Links:   links,
		Scope:   scope,
		Retry:   DefaultRetryPolicy(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Visited reports whether the document id was crawled by this Crawler.
func (c *Crawler) Visited(id string) bool {
	return c.visited[id]
}

// Crawl visits rawURL. It returns "" and no links when the URL is out of
// scope, the id and no links when the document was already visited or is in
// ERROR, and otherwise the id with the new in-scope links of the page.
// A page is downloaded only while its document is UNVISITED; a failed
// download marks it ERROR and returns an EFETCH error.
func (c *Crawler) Crawl(ctx context.Context, rawURL string) (string, []string, error) {
	if !c.Scope.Allows(rawURL) {
		c.Logger.Debug("url out of scope", "url", rawURL)
		return "", nil, nil
	}

	id := helpkb.DocumentID(rawURL)
	if c.visited[id] {
		return id, nil, nil
	}

	if err := c.Store.CreateDocument(ctx, id); err != nil {
		return "", nil, err
	}
	status, err := c.Store.Status(ctx, id)
	if err != nil {
		return "", nil, err
	}

	var source string
	switch status {
	case helpkb.StatusError:
		return id, nil, nil
	case helpkb.StatusUnvisited:
		if source, err = c.download(ctx, id, rawURL); err != nil {
			return "", nil, err
		}
	default:
		if source, err = c.Store.Source(ctx, id); err != nil {
			return "", nil, err
		}
	}

	if c.visited == nil {
		c.visited = make(map[string]bool)
	}
	c.visited[id] = true

	links, err := c.Links.ExtractLinks(source, rawURL)
	if err != nil {
		c.Logger.Warn("extracting links", "id", id, "url", rawURL, "err", err)
		return id, nil, nil
	}
	return id, c.newLinks(links), nil
}

// newLinks keeps the links that are in scope, unvisited, and not repeated
// within links.
func (c *Crawler) newLinks(links []string) []string {
	out := make([]string, 0, len(links))
	seen := make(map[string]bool, len(links))
	for _, link := range links {
		if !c.Scope.Allows(link) {
			continue
		}
		lid := helpkb.DocumentID(link)
		if c.visited[lid] || seen[lid] {
			continue
		}
		seen[lid] = true
		out = append(out, link)
	}
	return out
}

func (c *Crawler) download(ctx context.Context, id, rawURL string) (string, error) {
	retry := c.Retry
	retry.OnRetry = func(attempt int, err error) {
		c.Logger.Info("retrying download", "id", id, "url", rawURL, "attempt", attempt, "err", err)
	}

	source, err := retry.Fetch(ctx, rawURL, c.fetch)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.Logger.Error("download failed, marking document ERROR", "id", id, "url", rawURL, "err", err)
		if serr := helpkb.Advance(ctx, c.Store, id, helpkb.StatusUnvisited, helpkb.StatusError); serr != nil {
			return "", serr
		}
		return "", helpkb.Errorf(helpkb.EFETCH, "download failed after %d attempts: %s", max(retry.Attempts, 1), rawURL)
	}

	if err := c.Store.SetSource(ctx, id, source); err != nil {
		return "", err
	}
	if err := helpkb.Advance(ctx, c.Store, id, helpkb.StatusUnvisited, helpkb.StatusDownloaded); err != nil {
		return "", err
	}
	return source, nil
}

func (c *Crawler) fetch(ctx context.Context, rawURL string) (string, error) {
	if c.Limiter != nil {
		host := rawURL
		if u, err := url.Parse(rawURL); err == nil {
			host = u.Host
		}
		if err := c.Limiter.Wait(ctx, host); err != nil {
			return "", err
		}
	}
	return c.Fetcher.Fetch(ctx, rawURL)
}
