package generator

import (
	"strconv"
	"strings"

	"github.com/Harikishanth/healbee/internal/models"
)

// contextHeading opens every rendered context block.
const contextHeading = "KNOWN USER INFORMATION (use only when relevant):"

// Render-side caps. They intentionally differ from the build-side caps:
// the builder keeps up to 15 chronic conditions and 300 note characters,
// the rendering lists at most 10 and 200.
const (
	renderMaxConditions = 10
	renderMaxNotesChars = 200
	renderMaxSummary    = 300
)

// RenderUserContext turns a bounded context into neutral bullet-point
// text for the system prompt: a fixed heading, then Identity, Health
// background and Recent health history sections in that order. Sections
// with nothing to say are dropped, label included. A context with no
// bullet content renders to the empty string. Deterministic: the same
// input always yields byte-identical output.
func RenderUserContext(uc UserContext) string {
	if uc.IsEmpty() {
		return ""
	}
	lines := []string{contextHeading, ""}

	if id := uc.Identity; id != nil {
		lines = append(lines, "Identity:")
		if id.Name != "" {
			lines = append(lines, "- Name: "+id.Name)
		}
		if id.Age != nil {
			lines = append(lines, "- Age: "+strconv.Itoa(*id.Age))
		}
		switch id.Gender {
		case "":
		case models.GenderMale:
			lines = append(lines, "- Gender: Male")
		case models.GenderFemale:
			lines = append(lines, "- Gender: Female")
		case models.GenderOther:
			lines = append(lines, "- Gender: Other")
		default:
			lines = append(lines, "- Gender: "+id.Gender)
		}
		lines = append(lines, "")
	}

	if h := uc.Health; h != nil {
		lines = append(lines, "Health background:")
		for i, c := range h.ChronicConditions {
			if i == renderMaxConditions {
				break
			}
			if s := strings.TrimSpace(c); s != "" {
				lines = append(lines, "- Chronic condition: "+s)
			}
		}
		for _, a := range h.Allergies {
			if s := strings.TrimSpace(a); s != "" {
				lines = append(lines, "- Allergy: "+s)
			}
		}
		if h.PregnancyStatus != nil {
			if *h.PregnancyStatus {
				lines = append(lines, "- Pregnancy status: Yes")
			} else {
				lines = append(lines, "- Pregnancy status: No")
			}
		}
		if h.AdditionalNotes != "" {
			lines = append(lines, "- Additional notes: "+strings.TrimSpace(truncateRunes(h.AdditionalNotes, renderMaxNotesChars)))
		}
		lines = append(lines, "")
	}

	if m := uc.Memory; m != nil {
		if s := strings.TrimSpace(m.RecentHealthSummary); s != "" {
			lines = append(lines, "Recent health history:")
			lines = append(lines, "- "+truncateRunes(s, renderMaxSummary))
			lines = append(lines, "")
		}
	}

	// Heading plus blank line only means no section contributed.
	if len(lines) <= 2 {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
