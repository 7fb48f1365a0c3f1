package mock

import (
	"context"

	"github.com/fwojciec/helpkb"
)

var (
	_ helpkb.TextService = (*TextService)(nil)
	_ helpkb.ChatModel   = (*ChatModel)(nil)
	_ helpkb.Embedder    = (*Embedder)(nil)
)

// TextService is a mock implementation of helpkb.TextService.
type TextService struct {
	CorrectFn      func(ctx context.Context, text string) (string, error)
	KeywordsFn     func(ctx context.Context, text string) ([]string, error)
	QuestionsFn    func(ctx context.Context, text string) ([]string, error)
	RelevanceFn    func(ctx context.Context, question, text string) (int, error)
	AnswerFn       func(ctx context.Context, query, primary, secondary string) (string, error)
	AnswerSingleFn func(ctx context.Context, query, passage string) (string, error)
}

func (s *TextService) Correct(ctx context.Context, text string) (string, error) {
	return s.CorrectFn(ctx, text)
}

func (s *TextService) Keywords(ctx context.Context, text string) ([]string, error) {
	return s.KeywordsFn(ctx, text)
}

func (s *TextService) Questions(ctx context.Context, text string) ([]string, error) {
	return s.QuestionsFn(ctx, text)
}

func (s *TextService) Relevance(ctx context.Context, question, text string) (int, error) {
	return s.RelevanceFn(ctx, question, text)
}

func (s *TextService) Answer(ctx context.Context, query, primary, secondary string) (string, error) {
	return s.AnswerFn(ctx, query, primary, secondary)
}

func (s *TextService) AnswerSingle(ctx context.Context, query, passage string) (string, error) {
	return s.AnswerSingleFn(ctx, query, passage)
}

// ChatModel is a mock implementation of helpkb.ChatModel.
type ChatModel struct {
	ChatFn func(ctx context.Context, system string, messages []helpkb.Message) (string, error)
}

func (m *ChatModel) Chat(ctx context.Context, system string, messages []helpkb.Message) (string, error) {
	return m.ChatFn(ctx, system, messages)
}

// Embedder is a mock implementation of helpkb.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, text string) ([]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}
