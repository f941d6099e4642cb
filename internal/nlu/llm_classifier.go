package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Harikishanth/healbee/internal/models"
)

// completionAPI is the slice of the OpenAI-compatible client used here.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// llmClassification is the JSON shape requested from the model.
type llmClassification struct {
	Intent      string          `json:"intent"`
	IsEmergency bool            `json:"is_emergency"`
	Language    string          `json:"language"`
	Entities    []models.Entity `json:"entities"`
}

// LLMClassifier asks the model provider for a structured classification
// and falls back to the rule classifier on any failure, so callers
// always get a usable result.
type LLMClassifier struct {
	client   completionAPI
	model    string
	fallback *RuleClassifier
	logger   *zap.Logger
}

func NewLLMClassifier(client completionAPI, model string, logger *zap.Logger) *LLMClassifier {
	return &LLMClassifier{
		client:   client,
		model:    model,
		fallback: NewRuleClassifier(),
		logger:   logger,
	}
}

const classificationPrompt = `Classify the health-related user message below.

Return ONLY a JSON object with this structure:
{
    "intent": "emergency|diagnosis_request|medication_info|symptom_query|general_health_info|greeting|other",
    "is_emergency": true/false,
    "language": "BCP-47 tag of the message language, e.g. en-US or hi-IN",
    "entities": [{"text": "span from the message", "label": "symptom|condition|medication|body_part"}]
}

Message: %s`

func (c *LLMClassifier) Classify(ctx context.Context, text string) models.ClassificationResult {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(classificationPrompt, text)},
		},
		MaxTokens:   300,
		Temperature: 0,
	})
	if err != nil {
		c.logger.Error("llm classification failed", zap.Error(err))
		return c.fallback.Classify(ctx, text)
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn("llm classification returned no choices")
		return c.fallback.Classify(ctx, text)
	}

	var parsed llmClassification
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		c.logger.Error("failed to parse llm classification",
			zap.Error(err),
			zap.String("response", raw))
		return c.fallback.Classify(ctx, text)
	}

	intent := models.IntentOther
	if models.KnownIntent(parsed.Intent) {
		intent = models.HealthIntent(parsed.Intent)
	}
	return models.ClassificationResult{
		Intent:           intent,
		Entities:         parsed.Entities,
		LanguageDetected: parsed.Language,
		IsEmergency:      parsed.IsEmergency || intent == models.IntentEmergency,
		OriginalText:     text,
	}
}
