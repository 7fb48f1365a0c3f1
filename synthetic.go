package helpkb

import (
	"context"
	"sort"
	"strings"
)

// RelevancyThreshold is the score that stops a candidate scan and caps the
// evidence gathered into a synthetic chunk.
const RelevancyThreshold = 8

// ScoredChunk is a candidate chunk with its relevance score.
type ScoredChunk struct {
	Text  string
	Score int
}

// ScoreFunc scores how well text answers question.
type ScoreFunc func(ctx context.Context, question, text string) (int, error)

// ScoreCandidates scores candidates in order and returns those with a
// positive score. The scan stops after the first candidate scoring at least
// threshold.
func ScoreCandidates(ctx context.Context, question string, candidates []string, threshold int, score ScoreFunc) ([]ScoredChunk, error) {
	var scored []ScoredChunk
	for _, c := range candidates {
		s, err := score(ctx, question, c)
		if err != nil {
			return nil, err
		}
		if s > 0 {
			scored = append(scored, ScoredChunk{Text: c, Score: s})
		}
		if s >= threshold {
			break
		}
	}
	return scored, nil
}

// AssembleSynthetic builds the answer passage for question. Scored chunks
// are taken highest score first until their running total reaches
// threshold. The passage is the question line followed by the chosen
// chunks separated by blank lines.
func AssembleSynthetic(question string, scored []ScoredChunk, threshold int) SyntheticChunk {
	sorted := make([]ScoredChunk, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	var total int
	var parts []string
	for _, c := range sorted {
		if total >= threshold {
			break
		}
		parts = append(parts, c.Text)
		total += c.Score
	}
	return SyntheticChunk{
		Question: question,
		Text:     question + "\n" + strings.Join(parts, "\n\n"),
	}
}
