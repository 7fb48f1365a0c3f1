package helpkb

import "html"

// ExtractResult holds the main content of an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML with boilerplate removed.
	ContentHTML string
}

// Page wraps the extracted content in a minimal HTML document so block
// extraction still sees the title.
func (r *ExtractResult) Page() string {
	return "<html><head><title>" + html.EscapeString(r.Title) + "</title></head><body>" +
		r.ContentHTML + "</body></html>"
}

// Extractor isolates the main content of an HTML page. It runs before
// block extraction when a site wraps its articles in heavy chrome.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// BlockKind is the structural type of a Block.
type BlockKind int

// Block kinds.
const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockQuote
	BlockList
	BlockTable
)

// Block is one structural element of a trimmed page.
type Block struct {
	Kind BlockKind

	// Level is the heading level (1-6) of a heading block.
	Level int

	// Text is the content of heading, paragraph and quote blocks.
	Text string

	// Items holds list entries.
	Items []string

	// Rows holds table cells. The first row is the header.
	Rows [][]string
}

// BlockExtractor turns raw HTML into an ordered list of blocks with
// structural noise removed.
type BlockExtractor interface {
	ExtractBlocks(html string) ([]Block, error)
}

// LinkExtractor returns the absolute URLs linked from a page, with
// fragments stripped, in document order.
type LinkExtractor interface {
	ExtractLinks(html, baseURL string) ([]string, error)
}
