// Package readability isolates the main article of a page with
// go-readability before block extraction.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/helpkb"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements helpkb.Extractor at compile time.
var _ helpkb.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct {
	// PageURL resolves relative links inside the article. Optional.
	PageURL *url.URL
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the readable article of rawHTML.
func (e *Extractor) Extract(rawHTML string) (*helpkb.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, helpkb.Errorf(helpkb.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), e.PageURL)
	if err != nil {
		return nil, helpkb.Errorf(helpkb.EPARSE, "readability: %v", err)
	}

	return &helpkb.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
