package prompt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ojashyadav101/lucy-sub000/internal/workspace"
)

func TestDetectRelevantSkills_RanksByTriggerMatchCount(t *testing.T) {
	skills := []workspace.Skill{
		{Name: "invoice-review", Triggers: []string{"invoice", "billing"}},
		{Name: "onboarding", Triggers: []string{"onboard", "new hire", "invoice"}},
		{Name: "unrelated", Triggers: []string{"weather"}},
	}
	got := DetectRelevantSkills("can you help review this invoice for the new hire onboarding", skills)
	require.Len(t, got, 2)
	require.Equal(t, "onboarding", got[0].Name)
	require.Equal(t, "invoice-review", got[1].Name)
}

func TestDetectRelevantSkills_DropsSkillsWithNoMatch(t *testing.T) {
	skills := []workspace.Skill{{Name: "unrelated", Triggers: []string{"weather"}}}
	require.Empty(t, DetectRelevantSkills("let's talk about invoices", skills))
}

func TestDetectRelevantSkills_CapsAtThree(t *testing.T) {
	skills := []workspace.Skill{
		{Name: "a", Triggers: []string{"invoice"}},
		{Name: "b", Triggers: []string{"invoice"}},
		{Name: "c", Triggers: []string{"invoice"}},
		{Name: "d", Triggers: []string{"invoice"}},
	}
	require.Len(t, DetectRelevantSkills("invoice invoice invoice", skills), 3)
}

func TestDetectRelevantSkills_CaseInsensitiveMatch(t *testing.T) {
	skills := []workspace.Skill{{Name: "invoice-review", Triggers: []string{"Invoice"}}}
	require.Len(t, DetectRelevantSkills("new INVOICE just came in", skills), 1)
}

func TestDetectRelevantSkills_EmptyTriggerIgnored(t *testing.T) {
	skills := []workspace.Skill{{Name: "broken", Triggers: []string{""}}}
	require.Empty(t, DetectRelevantSkills("anything", skills))
}
