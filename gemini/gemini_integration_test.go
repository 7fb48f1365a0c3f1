//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/helpkb"
	"github.com/fwojciec/helpkb/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newClient(t *testing.T) *genai.Client {
	t.Helper()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	require.NoError(t, err)
	return client
}

func TestChatModel_Integration(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chat := gemini.NewChatModel(newClient(t), "")
	reply, err := chat.Chat(ctx, "Respond with only True or False.", []helpkb.Message{
		{Role: helpkb.RoleUser, Text: "Is the sky blue on a clear day?"},
	})

	require.NoError(t, err)
	assert.Contains(t, reply, "True")
}

func TestEmbedder_Integration(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	embedder := gemini.NewEmbedder(newClient(t), "")
	a, err := embedder.Embed(ctx, "reset password")
	require.NoError(t, err)
	b, err := embedder.Embed(ctx, "change billing address")
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.Len(t, b, len(a))
}
