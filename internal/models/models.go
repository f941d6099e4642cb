package models

import "time"

// HealthIntent is the closed set of intents the NLU layer can report.
// Unrecognized classifier output maps to IntentOther.
type HealthIntent string

const (
	IntentEmergency        HealthIntent = "emergency"
	IntentDiagnosisRequest HealthIntent = "diagnosis_request"
	IntentMedicationInfo   HealthIntent = "medication_info"
	IntentSymptomQuery     HealthIntent = "symptom_query"
	IntentGeneralInfo      HealthIntent = "general_health_info"
	IntentGreeting         HealthIntent = "greeting"
	IntentOther            HealthIntent = "other"
)

// KnownIntent reports whether v is one of the recognized intent values.
func KnownIntent(v string) bool {
	switch HealthIntent(v) {
	case IntentEmergency, IntentDiagnosisRequest, IntentMedicationInfo,
		IntentSymptomQuery, IntentGeneralInfo, IntentGreeting, IntentOther:
		return true
	}
	return false
}

// Entity is a text span the NLU layer extracted from the query.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// ClassificationResult is the NLU output consumed by the response
// pipeline. It is read-only from the pipeline's point of view.
type ClassificationResult struct {
	Intent           HealthIntent `json:"intent"`
	Entities         []Entity     `json:"entities"`
	LanguageDetected string       `json:"language_detected"`
	IsEmergency      bool         `json:"is_emergency"`
	OriginalText     string       `json:"original_text"`
}

// Chat message roles as sent to the model provider and stored in history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat is one persisted conversation of a user.
type Chat struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is one stored turn of a chat.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Cross-chat memory keys written after every answered query.
const (
	MemoryKeyLastSymptoms = "last_symptoms"
	MemoryKeyLastAdvice   = "last_advice"
)
