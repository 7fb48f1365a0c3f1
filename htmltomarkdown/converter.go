// Package htmltomarkdown renders stored page sources as Markdown for display.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/helpkb"
)

// Ensure Converter implements helpkb.Converter at compile time.
var _ helpkb.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter

	// Domain, when set, turns relative links into absolute ones.
	Domain string
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", helpkb.Errorf(helpkb.EINVALID, "empty HTML input")
	}

	var opts []converter.ConvertOptionFunc
	if c.Domain != "" {
		opts = append(opts, converter.WithDomain(c.Domain))
	}
	md, err := c.conv.ConvertString(html, opts...)
	if err != nil {
		return "", helpkb.Errorf(helpkb.EPARSE, "converting to markdown: %v", err)
	}
	return strings.TrimSpace(md), nil
}
