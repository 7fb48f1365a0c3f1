// Package langchaingo connects helpkb to local models served by Ollama
// through langchaingo.
package langchaingo

import (
	"context"
	"time"

	"github.com/fwojciec/helpkb"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Defaults for a local Ollama server.
const (
	DefaultServerURL      = "http://localhost:11434"
	DefaultChatModel      = "mistral"
	DefaultEmbeddingModel = "nomic-embed-text:latest"
)

// NewOllama connects to an Ollama server. Empty arguments select the
// defaults.
func NewOllama(serverURL, model string) (*ollama.LLM, error) {
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	llm, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(serverURL))
	if err != nil {
		return nil, helpkb.Errorf(helpkb.EINVALID, "failed to initialize ollama: %v", err)
	}
	return llm, nil
}

// Ensure ChatModel implements helpkb.ChatModel at compile time.
var _ helpkb.ChatModel = (*ChatModel)(nil)

// ChatModel implements helpkb.ChatModel on any langchaingo model.
type ChatModel struct {
	llm         llms.Model
	Temperature float64
}

// NewChatModel wraps llm.
func NewChatModel(llm llms.Model) *ChatModel {
	return &ChatModel{llm: llm, Temperature: 0.2}
}

// Chat sends the system prompt and the conversation and returns the first
// choice.
func (m *ChatModel) Chat(ctx context.Context, system string, messages []helpkb.Message) (string, error) {
	if len(messages) == 0 {
		return "", helpkb.Errorf(helpkb.EINVALID, "empty conversation")
	}

	resp, err := m.llm.GenerateContent(ctx, BuildMessages(system, messages), llms.WithTemperature(m.Temperature))
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", helpkb.Errorf(helpkb.EPARSE, "model returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// BuildMessages converts a system prompt and helpkb messages into
// langchaingo message contents.
func BuildMessages(system string, messages []helpkb.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages)+1)
	if system != "" {
		out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	for _, msg := range messages {
		kind := llms.ChatMessageTypeHuman
		if msg.Role == helpkb.RoleModel {
			kind = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(kind, msg.Text))
	}
	return out
}

// EmbeddingModel is the part of a langchaingo model that creates embeddings.
type EmbeddingModel interface {
	CreateEmbedding(ctx context.Context, inputTexts []string) ([][]float32, error)
}

// Ensure Embedder implements helpkb.Embedder at compile time.
var _ helpkb.Embedder = (*Embedder)(nil)

// Embedder implements helpkb.Embedder on a langchaingo embedding model.
type Embedder struct {
	model EmbeddingModel

	// Timeout bounds each embedding call. Zero means no limit.
	Timeout time.Duration
}

// DefaultEmbedTimeout bounds one embedding request.
const DefaultEmbedTimeout = 30 * time.Second

// NewEmbedder wraps model.
func NewEmbedder(model EmbeddingModel) *Embedder {
	return &Embedder{model: model, Timeout: DefaultEmbedTimeout}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, helpkb.Errorf(helpkb.EINVALID, "cannot embed empty text")
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	vectors, err := e.model.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, helpkb.Errorf(helpkb.EPARSE, "model returned no embedding")
	}
	return vectors[0], nil
}
