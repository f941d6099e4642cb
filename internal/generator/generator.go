package generator

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Harikishanth/healbee/internal/models"
)

// Sampling parameters for the single model call. Fixed on purpose:
// health replies should stay short and factual.
const (
	samplingTemperature = 0.5
	maxResponseTokens   = 500
)

// Localized fallback strings. The fallback pair answers a transport-level
// success with unusable content; the error pair answers a failed call.
const (
	fallbackResponseEN = "Sorry, I am unable to assist you at the moment. Please try again later."
	fallbackResponseHI = "माफ़ कीजिए, मैं अभी आपकी मदद नहीं कर सकता। कृपया बाद में प्रयास करें।"
	errorResponseEN    = "Sorry, an error occurred while generating the response."
	errorResponseHI    = "क्षमा करें, प्रतिक्रिया उत्पन्न करते समय एक त्रुटि हुई।"
)

// CompletionClient is the slice of the OpenAI-compatible API the
// generator needs. *openai.Client satisfies it.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// completionOutcome classifies one model call so that failure is turned
// into user-facing text in exactly one place.
type completionOutcome int

const (
	outcomeOK completionOutcome = iota
	outcomeMalformed
	outcomeFailed
)

// Generator is the single entry point of the response pipeline. It holds
// no per-request state; concurrent Generate calls are independent.
type Generator struct {
	client       CompletionClient
	model        string
	systemPrompt string
	logger       *zap.Logger
}

// New builds a Generator. The client is constructed once at startup and
// shared across calls; systemPrompt may be empty to use the default
// policy.
func New(client CompletionClient, model, systemPrompt string, logger *zap.Logger) *Generator {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Generator{
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// Generate answers one user query. It always returns a user-facing
// string and never an error: either a fixed safety response, the
// generated text, or a localized fallback. sess may be nil.
func (g *Generator) Generate(ctx context.Context, query string, cls models.ClassificationResult, sess *models.SessionContext) string {
	if resp, ok := safetyOverride(cls); ok {
		g.logger.Info("applying hardcoded safety response",
			zap.String("intent", string(cls.Intent)),
			zap.Bool("is_emergency", cls.IsEmergency))
		return resp
	}

	rendered := RenderUserContext(BuildUserContext(sess))
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(g.systemPrompt, rendered)},
		{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(query, cls, sess)},
	}

	text, outcome := g.complete(ctx, messages)
	hindi := strings.HasPrefix(cls.LanguageDetected, "hi")
	switch outcome {
	case outcomeOK:
		return text
	case outcomeMalformed:
		if hindi {
			return fallbackResponseHI
		}
		return fallbackResponseEN
	default:
		if hindi {
			return errorResponseHI
		}
		return errorResponseEN
	}
}

// complete runs the single model call. No retries at this level; the
// client owns the timeout.
func (g *Generator) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, completionOutcome) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   maxResponseTokens,
		Temperature: samplingTemperature,
	})
	if err != nil {
		g.logger.Error("model completion failed", zap.Error(err))
		return "", outcomeFailed
	}
	if len(resp.Choices) == 0 {
		g.logger.Warn("model response had no choices")
		return "", outcomeMalformed
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		g.logger.Warn("model response was empty")
		return "", outcomeMalformed
	}
	return text, outcomeOK
}
