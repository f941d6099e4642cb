package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Harikishanth/healbee/internal/models"
)

func TestRenderUserContextEmpty(t *testing.T) {
	assert.Equal(t, "", RenderUserContext(UserContext{}))
}

func TestRenderUserContextFull(t *testing.T) {
	age := 34
	pregnant := false
	uc := UserContext{
		Identity: &Identity{Name: "Asha", Age: &age, Gender: models.GenderFemale},
		Health: &HealthBackground{
			ChronicConditions: []string{"asthma", "diabetes"},
			Allergies:         []string{"peanuts"},
			PregnancyStatus:   &pregnant,
			AdditionalNotes:   "avoids dairy",
		},
		Memory: &ConversationMemory{RecentHealthSummary: "fever last week"},
	}

	want := strings.Join([]string{
		"KNOWN USER INFORMATION (use only when relevant):",
		"",
		"Identity:",
		"- Name: Asha",
		"- Age: 34",
		"- Gender: Female",
		"",
		"Health background:",
		"- Chronic condition: asthma",
		"- Chronic condition: diabetes",
		"- Allergy: peanuts",
		"- Pregnancy status: No",
		"- Additional notes: avoids dairy",
		"",
		"Recent health history:",
		"- fever last week",
	}, "\n")

	assert.Equal(t, want, RenderUserContext(uc))
}

func TestRenderUserContextIdempotent(t *testing.T) {
	age := 60
	uc := UserContext{
		Identity: &Identity{Name: "Ravi", Age: &age},
		Memory:   &ConversationMemory{RecentHealthSummary: "knee pain"},
	}

	first := RenderUserContext(uc)
	second := RenderUserContext(uc)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestRenderUserContextGenderForms(t *testing.T) {
	tests := []struct {
		gender string
		want   string
	}{
		{models.GenderMale, "- Gender: Male"},
		{models.GenderFemale, "- Gender: Female"},
		{models.GenderOther, "- Gender: Other"},
		{"nonbinary", "- Gender: nonbinary"},
	}

	for _, tt := range tests {
		t.Run(tt.gender, func(t *testing.T) {
			out := RenderUserContext(UserContext{Identity: &Identity{Gender: tt.gender}})
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestRenderUserContextPregnancyLine(t *testing.T) {
	yes := true
	out := RenderUserContext(UserContext{Health: &HealthBackground{PregnancyStatus: &yes}})
	assert.Contains(t, out, "- Pregnancy status: Yes")

	out = RenderUserContext(UserContext{Health: &HealthBackground{AdditionalNotes: "n"}})
	assert.NotContains(t, out, "Pregnancy status")
}

func TestRenderUserContextSectionsOmitted(t *testing.T) {
	out := RenderUserContext(UserContext{Identity: &Identity{Name: "Asha"}})
	assert.Contains(t, out, "Identity:")
	assert.NotContains(t, out, "Health background:")
	assert.NotContains(t, out, "Recent health history:")
}

func TestRenderUserContextConditionListCap(t *testing.T) {
	conditions := make([]string, 15)
	for i := range conditions {
		conditions[i] = "c"
	}
	out := RenderUserContext(UserContext{Health: &HealthBackground{ChronicConditions: conditions}})
	assert.Equal(t, renderMaxConditions, strings.Count(out, "- Chronic condition: c"))
}

func TestRenderUserContextNoBulletContent(t *testing.T) {
	// A summary of pure whitespace leaves only the heading, which must
	// collapse to an empty string.
	out := RenderUserContext(UserContext{Memory: &ConversationMemory{RecentHealthSummary: "   "}})
	assert.Equal(t, "", out)
}
