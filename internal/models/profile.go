package models

import "strings"

// Canonical gender values. The profile editor offers these plus
// "prefer_not_to_say"; anything else a user typed is kept verbatim
// (lowercased) rather than rejected.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// NormalizeGender trims and lowercases a raw profile value. ok is false
// when the value must be omitted entirely (empty or "prefer_not_to_say").
func NormalizeGender(raw string) (string, bool) {
	g := strings.ToLower(strings.TrimSpace(raw))
	if g == "" || g == "prefer_not_to_say" {
		return "", false
	}
	return g, true
}

// AllergyField tolerates both historical encodings of allergies: a single
// comma separated string and a proper list. Exactly one of the two is set.
type AllergyField struct {
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"`
}

// IsZero reports whether no allergy data is present.
func (a AllergyField) IsZero() bool {
	return strings.TrimSpace(a.Text) == "" && len(a.Items) == 0
}

// List returns the entries capped at max. The string form is split on
// commas with empty tokens dropped; the list form is capped as-is.
func (a AllergyField) List(max int) []string {
	var out []string
	if s := strings.TrimSpace(a.Text); s != "" {
		for _, tok := range strings.Split(s, ",") {
			if t := strings.TrimSpace(tok); t != "" {
				out = append(out, t)
			}
		}
	} else {
		out = append(out, a.Items...)
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// Excerpt returns a single-line form for continuity text.
func (a AllergyField) Excerpt() string {
	if s := strings.TrimSpace(a.Text); s != "" {
		return s
	}
	return strings.Join(a.Items, ", ")
}

// UserProfile is the persisted per-user record. Every field is optional;
// the pipeline never draws medical conclusions from it.
//
// MedicalHistory and KnownConditions are legacy aliases of
// ChronicConditions kept for rows written by earlier versions; when
// merging, the canonical list comes first and MedicalHistory shadows
// KnownConditions.
type UserProfile struct {
	Name              string       `json:"name,omitempty"`
	Age               *int         `json:"age,omitempty"`
	Gender            string       `json:"gender,omitempty"`
	HeightCm          *float64     `json:"height_cm,omitempty"`
	WeightKg          *float64     `json:"weight_kg,omitempty"`
	ChronicConditions []string     `json:"chronic_conditions,omitempty"`
	MedicalHistory    []string     `json:"medical_history,omitempty"`
	KnownConditions   []string     `json:"known_conditions,omitempty"`
	Allergies         AllergyField `json:"allergies,omitempty"`
	PregnancyStatus   *bool        `json:"pregnancy_status,omitempty"`
	AdditionalNotes   string       `json:"additional_notes,omitempty"`
	Location          string       `json:"location,omitempty"`
	PreferredLanguage string       `json:"preferred_language,omitempty"`
}

// FollowUpAnswer is one answered follow-up question within a session.
type FollowUpAnswer struct {
	SymptomName string `json:"symptom_name"`
	Answer      string `json:"answer"`
}

// SessionContext is everything a single request may draw on for
// continuity: ephemeral session state plus whatever the persistence
// layer could supply. Every field is optional; an absent value simply
// contributes nothing downstream.
type SessionContext struct {
	ExtractedSymptoms []string          `json:"extracted_symptoms,omitempty"`
	FollowUpAnswers   []FollowUpAnswer  `json:"follow_up_answers,omitempty"`
	LastAdviceGiven   string            `json:"last_advice_given,omitempty"`
	Profile           *UserProfile      `json:"user_profile,omitempty"`
	Memory            map[string]string `json:"user_memory,omitempty"`
	PastMessages      []ChatMessage     `json:"past_messages,omitempty"`
}
