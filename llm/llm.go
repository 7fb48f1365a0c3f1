// Package llm implements helpkb.TextService on top of any chat model. It
// owns the prompts and the parsing of model replies.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/helpkb"
)

// DefaultTimeout bounds a single chat call.
const DefaultTimeout = 60 * time.Second

// Ensure TextService implements helpkb.TextService at compile time.
var _ helpkb.TextService = (*TextService)(nil)

// TextService prompts a chat model for corrections, retrieval metadata,
// relevance scores and grounded answers.
type TextService struct {
	Chat    helpkb.ChatModel
	Timeout time.Duration
}

// NewTextService returns a TextService with DefaultTimeout.
func NewTextService(chat helpkb.ChatModel) *TextService {
	return &TextService{Chat: chat, Timeout: DefaultTimeout}
}

func (s *TextService) Correct(ctx context.Context, text string) (string, error) {
	reply, err := s.send(ctx, correctSystem, user(text))
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", helpkb.Errorf(helpkb.EPARSE, "empty correction")
	}
	return reply, nil
}

func (s *TextService) Keywords(ctx context.Context, text string) ([]string, error) {
	reply, err := s.send(ctx, guideSystem, user(article(text)+"\n\n"+keywordsPrompt))
	if err != nil {
		return nil, err
	}
	return parseList(reply)
}

// Questions generates questions, then asks the model in the same
// conversation whether they cover the article. A negative check is EPARSE.
func (s *TextService) Questions(ctx context.Context, text string) ([]string, error) {
	ask := user(article(text) + "\n\n" + questionsPrompt)
	reply, err := s.send(ctx, guideSystem, ask)
	if err != nil {
		return nil, err
	}
	questions, err := parseList(reply)
	if err != nil {
		return nil, err
	}

	check, err := s.send(ctx, guideSystem, ask, model(reply), user(questionsCheck))
	if err != nil {
		return nil, err
	}
	if !parseBool(check) {
		return nil, helpkb.Errorf(helpkb.EPARSE, "generated questions failed validation")
	}
	return questions, nil
}

// Relevance first asks whether text can answer question at all; a negative
// reply scores 0 without a second call.
func (s *TextService) Relevance(ctx context.Context, question, text string) (int, error) {
	ask := user(relevanceQuestion(question, text))
	reply, err := s.send(ctx, groundedSystem, ask)
	if err != nil {
		return 0, err
	}
	if !parseBool(reply) {
		return 0, nil
	}

	reply, err = s.send(ctx, groundedSystem, ask, model("True"), user(scorePrompt))
	if err != nil {
		return 0, err
	}
	return parseScore(reply)
}

func (s *TextService) Answer(ctx context.Context, query, primary, secondary string) (string, error) {
	return s.answer(ctx, query, primary, secondary)
}

func (s *TextService) AnswerSingle(ctx context.Context, query, passage string) (string, error) {
	return s.answer(ctx, query, passage)
}

// answer returns "" unless the model first confirms the contexts can answer
// query.
func (s *TextService) answer(ctx context.Context, query string, contexts ...string) (string, error) {
	ask := user(contextQuestion(query, contexts...))
	reply, err := s.send(ctx, groundedSystem, ask)
	if err != nil {
		return "", err
	}
	if !parseBool(reply) {
		return "", nil
	}
	return s.send(ctx, groundedSystem, ask, model("True"), user(answerPrompt))
}

func (s *TextService) send(ctx context.Context, system string, messages ...helpkb.Message) (string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	reply, err := s.Chat.Chat(ctx, system, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func user(text string) helpkb.Message {
	return helpkb.Message{Role: helpkb.RoleUser, Text: text}
}

func model(text string) helpkb.Message {
	return helpkb.Message{Role: helpkb.RoleModel, Text: text}
}
