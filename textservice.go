package helpkb

import "context"

// TextService is the language-model collaborator used during refinement
// and answering.
type TextService interface {
	// Correct returns text with grammar and typos fixed.
	Correct(ctx context.Context, text string) (string, error)

	// Keywords returns search keywords that text directly answers.
	Keywords(ctx context.Context, text string) ([]string, error)

	// Questions returns simple questions that text directly answers.
	// Returns EPARSE when the generated list fails validation; callers
	// may retry.
	Questions(ctx context.Context, text string) ([]string, error)

	// Relevance scores how well text answers question, from 0 (irrelevant)
	// to 10 (fully answers it).
	Relevance(ctx context.Context, question, text string) (int, error)

	// Answer answers query from a primary and a secondary context.
	// Returns an empty string when the contexts cannot answer the query.
	Answer(ctx context.Context, query, primary, secondary string) (string, error)

	// AnswerSingle answers query from one context.
	// Returns an empty string when the context cannot answer the query.
	AnswerSingle(ctx context.Context, query, passage string) (string, error)
}

// Role identifies the author of a chat message.
type Role string

// Chat roles.
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role Role
	Text string
}

// ChatModel sends a conversation to a language model and returns the reply.
type ChatModel interface {
	Chat(ctx context.Context, system string, messages []Message) (string, error)
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
