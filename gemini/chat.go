// Package gemini connects helpkb to Google Gemini for chat, embeddings and
// token counting.
package gemini

import (
	"context"

	"github.com/fwojciec/helpkb"
	"google.golang.org/genai"
)

// Default models.
const (
	DefaultChatModel      = "gemini-2.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"
)

// Ensure ChatModel implements helpkb.ChatModel at compile time.
var _ helpkb.ChatModel = (*ChatModel)(nil)

// ChatModel implements helpkb.ChatModel using Gemini.
type ChatModel struct {
	client *genai.Client
	model  string
}

// NewChatModel creates a ChatModel. An empty model selects DefaultChatModel.
func NewChatModel(client *genai.Client, model string) *ChatModel {
	if model == "" {
		model = DefaultChatModel
	}
	return &ChatModel{client: client, model: model}
}

// Chat sends the conversation and returns the text of the reply.
func (m *ChatModel) Chat(ctx context.Context, system string, messages []helpkb.Message) (string, error) {
	if len(messages) == 0 {
		return "", helpkb.Errorf(helpkb.EINVALID, "empty conversation")
	}

	result, err := m.client.Models.GenerateContent(ctx, m.model, BuildContents(messages), BuildConfig(system))
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", helpkb.Errorf(helpkb.EINTERNAL, "gemini returned nil result")
	}
	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for a chat call. Replies
// feed parsers, so the temperature is kept low.
func BuildConfig(system string) *genai.GenerateContentConfig {
	temp := float32(0.2)
	config := &genai.GenerateContentConfig{Temperature: &temp}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return config
}

// BuildContents converts helpkb messages into Gemini contents.
func BuildContents(messages []helpkb.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.RoleUser
		if msg.Role == helpkb.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Text, role))
	}
	return contents
}
