package llm

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/fwojciec/helpkb"
)

// parseList decodes a JSON array of strings from a model reply. Code fences
// and text around the array are ignored. Blank entries are dropped.
func parseList(reply string) ([]string, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end < start {
		return nil, helpkb.Errorf(helpkb.EPARSE, "expected a JSON array, got %q", truncate(reply))
	}

	var raw []string
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return nil, helpkb.Errorf(helpkb.EPARSE, "invalid JSON array: %s", err)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// parseBool reports whether the reply affirms. The first "true" or "false"
// word decides; "not" right before it flips the verdict. A reply without
// either word is a no.
func parseBool(reply string) bool {
	words := strings.FieldsFunc(strings.ToLower(reply), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for i, w := range words {
		if w != "true" && w != "false" {
			continue
		}
		negated := i > 0 && words[i-1] == "not"
		return (w == "true") != negated
	}
	return false
}

// parseScore reads an integer relevance score in [0,10].
func parseScore(reply string) (int, error) {
	s := strings.Trim(strings.TrimSpace(reply), ".`*\"")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, helpkb.Errorf(helpkb.EPARSE, "expected an integer score, got %q", truncate(reply))
	}
	if n < 0 || n > 10 {
		return 0, helpkb.Errorf(helpkb.EPARSE, "score %d outside [0,10]", n)
	}
	return n, nil
}

func truncate(s string) string {
	const limit = 80
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
