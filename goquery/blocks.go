// Package goquery extracts structural blocks and links from HTML using
// goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/helpkb"
	"golang.org/x/net/html"
)

// Ensure BlockExtractor implements helpkb.BlockExtractor at compile time.
var _ helpkb.BlockExtractor = (*BlockExtractor)(nil)

// noiseSelector matches elements dropped before traversal.
const noiseSelector = "head, header, script, style, noscript, nav, footer, meta, template, svg"

// DefaultListMarkers are class substrings that identify navigation lists.
var DefaultListMarkers = []string{"nav", "learnMoreSection"}

// BlockExtractor walks a page body in document order and emits heading,
// paragraph, quote, list and table blocks.
type BlockExtractor struct {
	// ListMarkers are class substrings marking lists as structural chrome.
	ListMarkers []string
}

// NewBlockExtractor creates a BlockExtractor with DefaultListMarkers.
func NewBlockExtractor() *BlockExtractor {
	return &BlockExtractor{ListMarkers: DefaultListMarkers}
}

// ExtractBlocks parses html and returns its blocks. The page title, when
// present, becomes the leading level-1 heading.
func (e *BlockExtractor) ExtractBlocks(rawHTML string) ([]helpkb.Block, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, helpkb.Errorf(helpkb.EPARSE, "failed to parse HTML: %v", err)
	}

	var blocks []helpkb.Block
	if title := clean(doc.Find("title").First().Text()); title != "" {
		blocks = append(blocks, helpkb.Block{Kind: helpkb.BlockHeading, Level: 1, Text: title})
	}

	doc.Find(noiseSelector).Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	e.walk(body.Contents(), &blocks)
	return blocks, nil
}

func (e *BlockExtractor) walk(nodes *goquery.Selection, blocks *[]helpkb.Block) {
	nodes.Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		if node.Type != html.ElementNode {
			return
		}
		switch name := goquery.NodeName(sel); name {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if text := clean(sel.Text()); text != "" {
				*blocks = append(*blocks, helpkb.Block{Kind: helpkb.BlockHeading, Level: int(name[1] - '0'), Text: text})
			}
		case "p":
			if text := clean(sel.Text()); text != "" {
				*blocks = append(*blocks, helpkb.Block{Kind: helpkb.BlockParagraph, Text: text})
			}
		case "blockquote":
			if text := clean(sel.Text()); text != "" {
				*blocks = append(*blocks, helpkb.Block{Kind: helpkb.BlockQuote, Text: text})
			}
		case "ul", "ol":
			if e.isChrome(sel) {
				return
			}
			var items []string
			sel.Find("li").Each(func(_ int, li *goquery.Selection) {
				if text := clean(li.Text()); text != "" {
					items = append(items, text)
				}
			})
			if len(items) > 0 {
				*blocks = append(*blocks, helpkb.Block{Kind: helpkb.BlockList, Items: items})
			}
		case "table":
			if rows := tableRows(sel); len(rows) > 0 {
				*blocks = append(*blocks, helpkb.Block{Kind: helpkb.BlockTable, Rows: rows})
			}
		default:
			e.walk(sel.Contents(), blocks)
		}
	})
}

func (e *BlockExtractor) isChrome(list *goquery.Selection) bool {
	class, ok := list.Attr("class")
	if !ok {
		return false
	}
	for _, marker := range e.ListMarkers {
		if strings.Contains(class, marker) {
			return true
		}
	}
	return false
}

// tableRows returns the header row followed by the body rows. The header
// is the th cells of the first row, or its td cells when it has no th.
func tableRows(table *goquery.Selection) [][]string {
	trs := table.Find("tr")
	if trs.Length() == 0 {
		return nil
	}

	first := trs.First()
	header := cells(first.Find("th"))
	if len(header) == 0 {
		header = cells(first.Find("td"))
	}
	if len(header) == 0 {
		return nil
	}

	rows := [][]string{header}
	trs.Slice(1, trs.Length()).Each(func(_ int, tr *goquery.Selection) {
		rows = append(rows, cells(tr.Find("td, th")))
	})
	return rows
}

func cells(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, c *goquery.Selection) {
		out = append(out, clean(c.Text()))
	})
	return out
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
