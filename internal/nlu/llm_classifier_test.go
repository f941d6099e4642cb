package nlu

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Harikishanth/healbee/internal/models"
)

type stubCompletion struct {
	content string
	err     error
}

func (s *stubCompletion) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func TestLLMClassifierParsesStructuredResult(t *testing.T) {
	stub := &stubCompletion{content: `{
		"intent": "medication_info",
		"is_emergency": false,
		"language": "en-US",
		"entities": [{"text": "ibuprofen", "label": "medication"}]
	}`}
	c := NewLLMClassifier(stub, "test-model", zap.NewNop())

	result := c.Classify(context.Background(), "what is ibuprofen used for")

	assert.Equal(t, models.IntentMedicationInfo, result.Intent)
	assert.False(t, result.IsEmergency)
	assert.Equal(t, "en-US", result.LanguageDetected)
	assert.Equal(t, []models.Entity{{Text: "ibuprofen", Label: "medication"}}, result.Entities)
	assert.Equal(t, "what is ibuprofen used for", result.OriginalText)
}

func TestLLMClassifierUnknownIntentMapsToOther(t *testing.T) {
	stub := &stubCompletion{content: `{"intent": "astrology", "language": "en-US"}`}
	c := NewLLMClassifier(stub, "test-model", zap.NewNop())

	result := c.Classify(context.Background(), "anything")
	assert.Equal(t, models.IntentOther, result.Intent)
}

func TestLLMClassifierFallsBackOnError(t *testing.T) {
	stub := &stubCompletion{err: errors.New("provider down")}
	c := NewLLMClassifier(stub, "test-model", zap.NewNop())

	result := c.Classify(context.Background(), "I have severe chest pain")

	// Rule-based fallback still catches the emergency.
	assert.True(t, result.IsEmergency)
	assert.Equal(t, models.IntentEmergency, result.Intent)
}

func TestLLMClassifierFallsBackOnGarbage(t *testing.T) {
	stub := &stubCompletion{content: "sorry, I cannot help with that"}
	c := NewLLMClassifier(stub, "test-model", zap.NewNop())

	result := c.Classify(context.Background(), "I have a fever")
	assert.Equal(t, models.IntentSymptomQuery, result.Intent)
	assert.Equal(t, "en-US", result.LanguageDetected)
}
