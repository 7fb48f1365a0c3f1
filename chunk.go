package helpkb

import (
	"regexp"
	"strings"
)

var blankLineRe = regexp.MustCompile(`\n\s*\n+`)

// section is the open chunk at one granularity.
type section struct {
	open   bool
	blocks []string
}

func (s *section) start(block string) {
	s.open = true
	s.blocks = []string{block}
}

func (s *section) add(block string) {
	if s.open {
		s.blocks = append(s.blocks, block)
	}
}

// ChunkText groups trimmed text into aligned h1, h2 and h3 chunks.
//
// The text is split on blank lines into blocks. An "h1:" block starts a new
// h1 chunk and closes the open h2 and h3 chunks. An "h2:" block joins the
// open h1 chunk, starts a new h2 chunk and closes the open h3 chunk. An
// "h3:" block joins the open h1 and h2 chunks, starting an h2 chunk when
// none is open, and starts a new h3 chunk.
// Any other block joins every open chunk. Blocks that precede the first
// heading start an untagged h1 chunk. Blocks within a chunk are separated
// by a blank line.
func ChunkText(trimmed string) ChunkSet {
	set := ChunkSet{H1: nil, H2: nil, H3: nil}
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return set
	}

	var h1, h2, h3 section
	emit := func(g Granularity, s *section) {
		if s.open && len(s.blocks) > 0 {
			set[g] = append(set[g], strings.Join(s.blocks, "\n\n"))
		}
		*s = section{}
	}

	// Opening h1 before a plain or lower-level block keeps text that
	// precedes the first h1 heading.
	for _, block := range blankLineRe.Split(trimmed, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		switch {
		case strings.HasPrefix(block, "h1:"):
			emit(H1, &h1)
			emit(H2, &h2)
			emit(H3, &h3)
			h1.start(block)
		case strings.HasPrefix(block, "h2:"):
			h1.open = true
			h1.add(block)
			emit(H2, &h2)
			emit(H3, &h3)
			h2.start(block)
		case strings.HasPrefix(block, "h3:"):
			h1.open = true
			h1.add(block)
			if h2.open {
				h2.add(block)
			} else {
				h2.start(block)
			}
			emit(H3, &h3)
			h3.start(block)
		default:
			h1.open = true
			h1.add(block)
			h2.add(block)
			h3.add(block)
		}
	}
	emit(H1, &h1)
	emit(H2, &h2)
	emit(H3, &h3)
	return set
}

// Topic returns the topic label of an h1 chunk: its first line with the
// "h1:" tag stripped.
func Topic(chunk string) string {
	line, _, _ := strings.Cut(chunk, "\n")
	line = strings.TrimSpace(line)
	if rest, ok := strings.CutPrefix(line, "h1:"); ok {
		return strings.TrimSpace(rest)
	}
	return line
}
