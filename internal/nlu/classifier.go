package nlu

import (
	"context"
	"strings"

	"github.com/Harikishanth/healbee/internal/models"
)

// Classifier turns a raw query into a ClassificationResult. It never
// fails: implementations degrade to a best-effort result instead.
type Classifier interface {
	Classify(ctx context.Context, text string) models.ClassificationResult
}

// RuleClassifier is a keyword and script heuristic classifier. It is the
// fallback for the LLM classifier and a standalone option for offline
// runs.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Emergency markers. Matching any of these sets the emergency flag
// regardless of the detected intent.
var emergencyKeywords = []string{
	"chest pain", "can't breathe", "cannot breathe", "not breathing",
	"unconscious", "severe bleeding", "heart attack", "stroke",
	"seizure", "overdose", "suicide", "poisoned",
	"सीने में दर्द", "सांस नहीं", "बेहोश", "दौरा",
}

var intentKeywords = map[models.HealthIntent][]string{
	models.IntentDiagnosisRequest: {
		"diagnose", "diagnosis", "what disease", "what condition",
		"do i have", "is it cancer", "क्या बीमारी", "निदान",
	},
	models.IntentMedicationInfo: {
		"medicine", "medication", "tablet", "pill", "dose", "dosage",
		"drug", "paracetamol", "ibuprofen", "antibiotic", "दवा", "दवाई",
	},
	models.IntentSymptomQuery: {
		"symptom", "fever", "cough", "headache", "pain", "ache",
		"rash", "vomit", "dizzy", "tired", "बुखार", "खांसी", "दर्द",
	},
	models.IntentGreeting: {
		"hello", "hi there", "namaste", "good morning", "good evening",
		"नमस्ते",
	},
}

// symptomLexicon backs entity extraction. Order is fixed so entity
// output stays deterministic.
var symptomLexicon = []string{
	"fever", "cough", "headache", "cold", "sore throat", "vomiting",
	"diarrhea", "nausea", "rash", "dizziness", "fatigue", "chest pain",
	"back pain", "stomach ache",
	"बुखार", "खांसी", "सिरदर्द", "उल्टी", "दस्त",
}

func (c *RuleClassifier) Classify(_ context.Context, text string) models.ClassificationResult {
	lower := strings.ToLower(text)
	result := models.ClassificationResult{
		Intent:           models.IntentOther,
		LanguageDetected: detectLanguage(text),
		OriginalText:     text,
	}

	for _, kw := range emergencyKeywords {
		if strings.Contains(lower, kw) {
			result.IsEmergency = true
			result.Intent = models.IntentEmergency
			break
		}
	}
	if !result.IsEmergency {
		// First matching intent wins, checked in a fixed order.
		for _, intent := range []models.HealthIntent{
			models.IntentDiagnosisRequest,
			models.IntentMedicationInfo,
			models.IntentSymptomQuery,
			models.IntentGreeting,
		} {
			if containsAny(lower, intentKeywords[intent]) {
				result.Intent = intent
				break
			}
		}
	}

	for _, sym := range symptomLexicon {
		if strings.Contains(lower, sym) {
			result.Entities = append(result.Entities, models.Entity{Text: sym, Label: "symptom"})
		}
	}
	return result
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// detectLanguage reports "hi-IN" when the text contains Devanagari,
// "en-US" otherwise. Only the two supported locales are distinguished.
func detectLanguage(text string) string {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return "hi-IN"
		}
	}
	return "en-US"
}
