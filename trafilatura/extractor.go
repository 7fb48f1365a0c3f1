// Package trafilatura isolates the main article of a page with
// go-trafilatura before block extraction.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/helpkb"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements helpkb.Extractor at compile time.
var _ helpkb.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	// KeepComments retains user comment sections found under the article.
	KeepComments bool
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page title and the main content as HTML. A page with
// no detectable main content is an EPARSE error.
func (e *Extractor) Extract(rawHTML string) (*helpkb.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, helpkb.Errorf(helpkb.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: !e.KeepComments,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, helpkb.Errorf(helpkb.EPARSE, "trafilatura: %v", err)
	}
	if result.ContentNode == nil {
		return nil, helpkb.Errorf(helpkb.EPARSE, "trafilatura: no main content")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, err
	}

	return &helpkb.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: buf.String(),
	}, nil
}
