package generator

import (
	"strings"

	"github.com/Harikishanth/healbee/internal/models"
)

// UserContext is the bounded, privacy-scoped projection of a session
// that may be injected into the system prompt. It is rebuilt from
// scratch on every call and stays within roughly 200-300 tokens; each
// field carries its own hard cap. Empty sub-objects are nil.
type UserContext struct {
	Identity *Identity
	Health   *HealthBackground
	Memory   *ConversationMemory
}

// Identity holds the non-medical facts about the user.
type Identity struct {
	Name   string
	Age    *int
	Gender string
}

// HealthBackground holds the curated medical facts from the profile.
type HealthBackground struct {
	ChronicConditions []string
	Allergies         []string
	PregnancyStatus   *bool
	AdditionalNotes   string
}

// ConversationMemory summarizes cross-session history as one string.
type ConversationMemory struct {
	RecentHealthSummary string
}

// IsEmpty reports whether nothing was projected.
func (u UserContext) IsEmpty() bool {
	return u.Identity == nil && u.Health == nil && u.Memory == nil
}

// Per-field caps. Truncation is by rune so Devanagari text is never cut
// mid-code-point; no ellipsis marker is appended.
const (
	maxChronicConditions = 15
	maxAllergies         = 10
	maxNotesChars        = 300
	maxSymptomsChars     = 200
	maxAdviceChars       = 150
	maxPastMessages      = 5
	maxPastMessageChars  = 100
	maxSummaryChars      = 400
)

// BuildUserContext projects a session onto the bounded context shape.
// A nil session, or one with no profile, memory and past messages,
// yields an empty context. Absent inputs are omissions, never errors.
func BuildUserContext(sess *models.SessionContext) UserContext {
	var uc UserContext
	if sess == nil {
		return uc
	}
	if sess.Profile == nil && len(sess.Memory) == 0 && len(sess.PastMessages) == 0 {
		return uc
	}

	var profile models.UserProfile
	if sess.Profile != nil {
		profile = *sess.Profile
	}

	ident := Identity{Age: profile.Age}
	ident.Name = strings.TrimSpace(profile.Name)
	if g, ok := models.NormalizeGender(profile.Gender); ok {
		ident.Gender = g
	}
	if ident.Name != "" || ident.Age != nil || ident.Gender != "" {
		uc.Identity = &ident
	}

	health := HealthBackground{PregnancyStatus: profile.PregnancyStatus}
	legacy := profile.MedicalHistory
	if len(legacy) == 0 {
		legacy = profile.KnownConditions
	}
	chronic := append([]string(nil), profile.ChronicConditions...)
	for _, c := range legacy {
		if c != "" {
			chronic = append(chronic, c)
		}
	}
	if len(chronic) > maxChronicConditions {
		chronic = chronic[:maxChronicConditions]
	}
	health.ChronicConditions = chronic
	health.Allergies = profile.Allergies.List(maxAllergies)
	if notes := strings.TrimSpace(profile.AdditionalNotes); notes != "" {
		health.AdditionalNotes = truncateRunes(notes, maxNotesChars)
	}
	if len(health.ChronicConditions) > 0 || len(health.Allergies) > 0 ||
		health.PregnancyStatus != nil || health.AdditionalNotes != "" {
		uc.Health = &health
	}

	if summary := recentHealthSummary(sess); summary != "" {
		uc.Memory = &ConversationMemory{RecentHealthSummary: summary}
	}

	return uc
}

// recentHealthSummary joins the cross-chat memory keys and the most
// recent past messages into a single capped line. Summaries only; raw
// history never flows through here.
func recentHealthSummary(sess *models.SessionContext) string {
	var parts []string
	if v := sess.Memory[models.MemoryKeyLastSymptoms]; v != "" {
		parts = append(parts, truncateRunes(v, maxSymptomsChars))
	}
	if v := sess.Memory[models.MemoryKeyLastAdvice]; v != "" {
		parts = append(parts, "Last advice: "+truncateRunes(v, maxAdviceChars))
	}
	for i, m := range sess.PastMessages {
		if i == maxPastMessages {
			break
		}
		role := m.Role
		if role == "" {
			role = models.RoleUser
		}
		if content := truncateRunes(strings.TrimSpace(m.Content), maxPastMessageChars); content != "" {
			parts = append(parts, role+": "+content)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return truncateRunes(strings.Join(parts, " "), maxSummaryChars)
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
