package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/helpkb"
)

var (
	_ helpkb.TextService = (*LoggingTextService)(nil)
	_ helpkb.Embedder    = (*LoggingEmbedder)(nil)
)

// LoggingTextService wraps a TextService with debug logging of each model
// call.
type LoggingTextService struct {
	next   helpkb.TextService
	logger *slog.Logger
}

// NewLoggingTextService creates a new LoggingTextService.
func NewLoggingTextService(next helpkb.TextService, logger *slog.Logger) *LoggingTextService {
	return &LoggingTextService{next: next, logger: logger}
}

func (s *LoggingTextService) log(op string, begin time.Time, err error, attrs ...any) {
	attrs = append(attrs, "duration", time.Since(begin), "err", err)
	s.logger.Debug(op, attrs...)
}

func (s *LoggingTextService) Correct(ctx context.Context, text string) (out string, err error) {
	defer func(begin time.Time) {
		s.log("correct", begin, err, "in", len(text), "out", len(out))
	}(time.Now())
	return s.next.Correct(ctx, text)
}

func (s *LoggingTextService) Keywords(ctx context.Context, text string) (keywords []string, err error) {
	defer func(begin time.Time) {
		s.log("keywords", begin, err, "count", len(keywords))
	}(time.Now())
	return s.next.Keywords(ctx, text)
}

func (s *LoggingTextService) Questions(ctx context.Context, text string) (questions []string, err error) {
	defer func(begin time.Time) {
		s.log("questions", begin, err, "count", len(questions))
	}(time.Now())
	return s.next.Questions(ctx, text)
}

func (s *LoggingTextService) Relevance(ctx context.Context, question, text string) (score int, err error) {
	defer func(begin time.Time) {
		s.log("relevance", begin, err, "question", question, "score", score)
	}(time.Now())
	return s.next.Relevance(ctx, question, text)
}

func (s *LoggingTextService) Answer(ctx context.Context, query, primary, secondary string) (answer string, err error) {
	defer func(begin time.Time) {
		s.log("answer", begin, err, "query", query, "answered", answer != "")
	}(time.Now())
	return s.next.Answer(ctx, query, primary, secondary)
}

func (s *LoggingTextService) AnswerSingle(ctx context.Context, query, passage string) (answer string, err error) {
	defer func(begin time.Time) {
		s.log("answer single", begin, err, "query", query, "answered", answer != "")
	}(time.Now())
	return s.next.AnswerSingle(ctx, query, passage)
}

// LoggingEmbedder wraps an Embedder with debug logging.
type LoggingEmbedder struct {
	next   helpkb.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next helpkb.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder and logs the call.
func (e *LoggingEmbedder) Embed(ctx context.Context, text string) (vec []float32, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed",
			"chars", len(text),
			"dims", len(vec),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, text)
}
