package mock

import "github.com/fwojciec/helpkb"

var (
	_ helpkb.Extractor      = (*Extractor)(nil)
	_ helpkb.BlockExtractor = (*BlockExtractor)(nil)
	_ helpkb.LinkExtractor  = (*LinkExtractor)(nil)
	_ helpkb.Converter      = (*Converter)(nil)
)

// Extractor is a mock implementation of helpkb.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*helpkb.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*helpkb.ExtractResult, error) {
	return e.ExtractFn(html)
}

// BlockExtractor is a mock implementation of helpkb.BlockExtractor.
type BlockExtractor struct {
	ExtractBlocksFn func(html string) ([]helpkb.Block, error)
}

func (e *BlockExtractor) ExtractBlocks(html string) ([]helpkb.Block, error) {
	return e.ExtractBlocksFn(html)
}

// LinkExtractor is a mock implementation of helpkb.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html, baseURL string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html, baseURL string) ([]string, error) {
	return e.ExtractLinksFn(html, baseURL)
}

// Converter is a mock implementation of helpkb.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
