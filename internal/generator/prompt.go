package generator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Harikishanth/healbee/internal/models"
)

// Caps applied to the continuity block of the user turn.
const (
	maxSessionSymptoms    = 20
	maxFollowUpAnswers    = 10
	maxFollowUpChars      = 80
	maxLastAdviceChars    = 400
	maxProfileKnownConds  = 15
	maxProfileAllergyLen  = 200
	maxMemoryEntries      = 10
	maxMemoryValueChars   = 200
	maxOtherChatMessages  = 8
	maxOtherChatMsgChars  = 150
)

// buildSystemPrompt appends the rendered, hand-curated context to the
// base policy text. The block is clearly delimited so the model treats
// it as trusted information distinct from the policy itself.
func buildSystemPrompt(base, renderedContext string) string {
	if renderedContext == "" {
		return base
	}
	return base + "\n\n---\n\nCURRENT USER CONTEXT (trusted information):\n\n" + renderedContext
}

// buildUserPrompt writes the user turn: the literal query with the NLU
// metadata, then an optional continuity block. Continuity data goes
// here, not into the system prompt; it is lower-trust and always
// carries a non-diagnostic disclaimer.
func buildUserPrompt(query string, cls models.ClassificationResult, sess *models.SessionContext) string {
	entityTexts := make([]string, len(cls.Entities))
	for i, e := range cls.Entities {
		entityTexts[i] = e.Text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User query: %q\n", query)
	fmt.Fprintf(&b, "Detected language: %s\n", cls.LanguageDetected)
	fmt.Fprintf(&b, "NLU Intent: %s\n", cls.Intent)
	fmt.Fprintf(&b, "NLU Entities: %v", entityTexts)

	if sess == nil {
		return b.String()
	}

	var parts []string
	if len(sess.ExtractedSymptoms) > 0 {
		syms := sess.ExtractedSymptoms
		if len(syms) > maxSessionSymptoms {
			syms = syms[:maxSessionSymptoms]
		}
		parts = append(parts, "Previously mentioned symptoms in this session: "+strings.Join(syms, ", "))
	}
	if n := len(sess.FollowUpAnswers); n > 0 {
		fa := sess.FollowUpAnswers
		if n > maxFollowUpAnswers {
			fa = fa[n-maxFollowUpAnswers:]
		}
		answers := make([]string, len(fa))
		for i, f := range fa {
			answers[i] = f.SymptomName + ": " + truncateRunes(f.Answer, maxFollowUpChars)
		}
		parts = append(parts, "Follow-up answers from this session: "+strings.Join(answers, "; "))
	}
	if sess.LastAdviceGiven != "" {
		parts = append(parts, "Last advice given (summary): "+truncateRunes(sess.LastAdviceGiven, maxLastAdviceChars))
	}
	if excerpt := profileExcerpt(sess.Profile); excerpt != "" {
		parts = append(parts, profileDisclaimer+" "+excerpt)
	}
	if len(sess.Memory) > 0 {
		parts = append(parts, memoryDisclaimer+" "+memoryExcerpt(sess.Memory))
	}
	if len(sess.PastMessages) > 0 {
		pm := sess.PastMessages
		if len(pm) > maxOtherChatMessages {
			pm = pm[:maxOtherChatMessages]
		}
		entries := make([]string, 0, len(pm))
		for _, m := range pm {
			role := m.Role
			if role == "" {
				role = models.RoleUser
			}
			entries = append(entries, role+": "+truncateRunes(m.Content, maxOtherChatMsgChars))
		}
		parts = append(parts, pastMessagesDisclaimer+" "+strings.Join(entries, " | "))
	}

	if len(parts) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sessionContextDisclaimer)
		b.WriteString("\n")
		b.WriteString(strings.Join(parts, "\n"))
	}
	return b.String()
}

// profileExcerpt renders the whitelisted profile fields as one line.
// Nothing outside the whitelist ever reaches the prompt.
func profileExcerpt(p *models.UserProfile) string {
	if p == nil {
		return ""
	}
	var parts []string
	if p.Name != "" {
		parts = append(parts, "Name: "+p.Name)
	}
	if p.Age != nil {
		parts = append(parts, "Age: "+strconv.Itoa(*p.Age))
	}
	if p.Gender != "" {
		parts = append(parts, "Gender: "+p.Gender)
	}
	if p.HeightCm != nil {
		parts = append(parts, fmt.Sprintf("Height: %g cm", *p.HeightCm))
	}
	if p.WeightKg != nil {
		parts = append(parts, fmt.Sprintf("Weight: %g kg", *p.WeightKg))
	}
	if p.Location != "" {
		parts = append(parts, "Location: "+p.Location)
	}
	if len(p.KnownConditions) > 0 {
		kc := p.KnownConditions
		if len(kc) > maxProfileKnownConds {
			kc = kc[:maxProfileKnownConds]
		}
		parts = append(parts, "Known conditions (user-reported): "+strings.Join(kc, ", "))
	}
	if !p.Allergies.IsZero() {
		parts = append(parts, "Allergies (user-reported): "+truncateRunes(p.Allergies.Excerpt(), maxProfileAllergyLen))
	}
	if p.PreferredLanguage != "" {
		parts = append(parts, "Preferred language: "+p.PreferredLanguage)
	}
	return strings.Join(parts, " | ")
}

// memoryExcerpt renders up to maxMemoryEntries key/value pairs in key
// order so the prompt stays deterministic across calls.
func memoryExcerpt(mem map[string]string) string {
	keys := make([]string, 0, len(mem))
	for k := range mem {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > maxMemoryEntries {
		keys = keys[:maxMemoryEntries]
	}
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+": "+truncateRunes(mem[k], maxMemoryValueChars))
	}
	return strings.Join(pairs, "; ")
}
