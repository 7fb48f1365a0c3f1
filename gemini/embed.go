package gemini

import (
	"context"
	"time"

	"github.com/fwojciec/helpkb"
	"google.golang.org/genai"
)

// Ensure Embedder implements helpkb.Embedder at compile time.
var _ helpkb.Embedder = (*Embedder)(nil)

// Embedder implements helpkb.Embedder using Gemini embeddings.
type Embedder struct {
	client *genai.Client
	model  string

	// Timeout bounds each embedding call. Zero means no limit.
	Timeout time.Duration
}

// DefaultEmbedTimeout bounds one embedding request.
const DefaultEmbedTimeout = 30 * time.Second

// NewEmbedder creates an Embedder. An empty model selects
// DefaultEmbeddingModel.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model, Timeout: DefaultEmbedTimeout}
}

// Embed returns the embedding of text. Labels and queries are embedded with
// the same task type so their vectors are comparable.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, helpkb.Errorf(helpkb.EINVALID, "cannot embed empty text")
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"},
	)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, helpkb.Errorf(helpkb.EPARSE, "gemini returned no embedding")
	}
	return resp.Embeddings[0].Values, nil
}
