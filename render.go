package helpkb

import (
	"strconv"
	"strings"
)

// RenderBlocks flattens blocks into trimmed text: one tagged block per
// paragraph, separated by exactly one blank line. Headings become
// "hN: text", quotes "> text", list items "- item", and tables a pipe grid
// with a separator row under the header.
func RenderBlocks(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := renderBlock(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderBlock(b Block) string {
	switch b.Kind {
	case BlockHeading:
		text := collapseSpace(b.Text)
		if text == "" {
			return ""
		}
		level := b.Level
		if level < 1 || level > 6 {
			level = 1
		}
		return "h" + strconv.Itoa(level) + ": " + text
	case BlockParagraph:
		return collapseSpace(b.Text)
	case BlockQuote:
		text := collapseSpace(b.Text)
		if text == "" {
			return ""
		}
		return "> " + text
	case BlockList:
		lines := make([]string, 0, len(b.Items))
		for _, item := range b.Items {
			if item = collapseSpace(item); item != "" {
				lines = append(lines, "- "+item)
			}
		}
		return strings.Join(lines, "\n")
	case BlockTable:
		return renderTable(b.Rows)
	}
	return ""
}

func renderTable(rows [][]string) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ""
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, tableRow(rows[0]))
	sep := make([]string, len(rows[0]))
	for i := range sep {
		sep[i] = "---"
	}
	lines = append(lines, tableRow(sep))
	for _, row := range rows[1:] {
		lines = append(lines, tableRow(row))
	}
	return strings.Join(lines, "\n")
}

func tableRow(cells []string) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(collapseSpace(c), "|", `\|`)
	}
	return "| " + strings.Join(out, " | ") + " |"
}

// collapseSpace trims s and replaces every whitespace run with one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
