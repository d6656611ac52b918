package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, DefaultTemperature, config.Temperature)
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "fallback-model",
			TierAdvanced: "",
		},
	}

	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
	assert.Equal(t, "fallback-model", config.GetModel(TierAdvanced))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
	assert.Equal(t, config.Temperature, newConfig.Temperature)
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, TierLite, ParseTier("lite"))
	assert.Equal(t, TierAdvanced, ParseTier("advanced"))
	assert.Equal(t, TierStandard, ParseTier(""))
	assert.Equal(t, TierStandard, ParseTier("huge"))
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewClient(context.Background(), &Config{Provider: "openai"}, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestMockClient_RecordsPrompts(t *testing.T) {
	m := &MockClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ ModelTier) (string, error) {
			return strings.ToUpper(prompt), nil
		},
	}
	out, err := m.GenerateContent(context.Background(), "hi", TierLite)
	require.NoError(t, err)
	assert.Equal(t, "HI", out)

	js, err := m.GenerateJSON(context.Background(), "json please", TierLite)
	require.NoError(t, err)
	assert.Equal(t, "{}", js)
	assert.Equal(t, []string{"hi", "json please"}, m.Prompts)
	assert.Equal(t, "mock-model", m.GetModel(TierLite))
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := BuildExtractionPrompt(JobSpecSchema(), "Senior Go Engineer at Acme")

	assert.Contains(t, prompt, `"title": "string" (required)`)
	assert.Contains(t, prompt, `"requirements": ["string"] (required)`)
	assert.Contains(t, prompt, "Senior Go Engineer at Acme")
	assert.True(t, strings.HasSuffix(prompt, "\"\"\"\n"))

	profile := BuildExtractionPrompt(CandidateProfileSchema(), "Ada")
	assert.Contains(t, profile, `"skills": ["string"] (required)`)
}
