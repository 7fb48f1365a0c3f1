// Package xxhash provides a dependency-free embedder that hashes words and
// character trigrams into a fixed-size vector with xxhash. It needs no
// network or model and is deterministic, at the cost of semantic quality.
package xxhash

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/helpkb"
)

// DefaultDimensions is the vector length of a StaticEmbedder.
const DefaultDimensions = 256

const (
	wordWeight    = 0.7
	trigramWeight = 0.3
)

// stopWords are dropped before hashing words.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "for": true, "is": true, "are": true,
	"do": true, "does": true, "i": true, "my": true, "can": true, "how": true,
}

// Ensure StaticEmbedder implements helpkb.Embedder at compile time.
var _ helpkb.Embedder = (*StaticEmbedder)(nil)

// StaticEmbedder is a feature-hashing embedder.
type StaticEmbedder struct {
	Dimensions int
}

// NewStaticEmbedder returns a StaticEmbedder with DefaultDimensions.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{Dimensions: DefaultDimensions}
}

// Embed returns the unit-length feature vector of text. Text without any
// letters or digits is EINVALID.
func (e *StaticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	dims := e.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return nil, helpkb.Errorf(helpkb.EINVALID, "cannot embed text without words")
	}

	vec := make([]float32, dims)
	for _, w := range words {
		if !stopWords[w] {
			vec[xxhash.Sum64String("w:"+w)%uint64(dims)] += wordWeight
		}
		padded := []rune(" " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			vec[xxhash.Sum64String("t:"+string(padded[i:i+3]))%uint64(dims)] += trigramWeight
		}
	}

	var sum float64
	for _, f := range vec {
		sum += float64(f) * float64(f)
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
	return vec, nil
}
