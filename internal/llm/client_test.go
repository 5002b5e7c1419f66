package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_GetModel(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
}

func TestConfig_GetModel_FallsBackToLite(t *testing.T) {
	config := &Config{Models: map[ModelTier]string{TierLite: "model-a"}}
	assert.Equal(t, "model-a", config.GetModel(TierStandard))
}

func TestConfig_GetModel_NoModels(t *testing.T) {
	config := &Config{Models: map[ModelTier]string{}}
	assert.Equal(t, "", config.GetModel(TierLite))
}

func TestConfig_WithModel_DoesNotMutate(t *testing.T) {
	config := DefaultConfig()
	updated := config.WithModel(TierLite, "custom-model")

	assert.Equal(t, "custom-model", updated.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{
						genai.Text("This paper introduces "),
						genai.Text("a new attention mechanism."),
					},
				},
			},
		},
	}

	text, err := ExtractText(resp)
	require.NoError(t, err)
	assert.Equal(t, "This paper introduces a new attention mechanism.", text)
}

func TestExtractText_NoCandidates(t *testing.T) {
	_, err := ExtractText(&genai.GenerateContentResponse{})
	assert.ErrorContains(t, err, "no candidates")
}

func TestExtractText_NoContent(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: nil}},
	}
	_, err := ExtractText(resp)
	assert.ErrorContains(t, err, "no content")
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(t.Context(), DefaultConfig(), "")
	assert.ErrorContains(t, err, "API key")
}
