package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ojashyadav101/lucy-sub000/internal/pipeline"
	"github.com/ojashyadav101/lucy-sub000/internal/workspace"
)

func TestAssemble_IncludesStaticDocsInOrder(t *testing.T) {
	static := StaticContext{
		PersonalityDoc: "PERSONALITY",
		BehaviorDoc:    "BEHAVIOR",
		ToolUseModule:  "TOOLUSE",
		MemoryModule:   "MEMORY",
	}
	out := Assemble(static, DynamicContext{}, "hello", nil)

	pIdx := strings.Index(out, "PERSONALITY")
	bIdx := strings.Index(out, "BEHAVIOR")
	tIdx := strings.Index(out, "TOOLUSE")
	mIdx := strings.Index(out, "MEMORY")
	require.True(t, pIdx < bIdx && bIdx < tIdx && tIdx < mIdx)
}

func TestAssemble_EnvironmentBlockListsConnectedServices(t *testing.T) {
	out := Assemble(StaticContext{}, DynamicContext{ConnectedServices: []string{"slack", "calendar"}}, "hi", nil)
	require.Contains(t, out, "Connected services: slack, calendar")
}

func TestAssemble_EnvironmentBlockNoneWhenEmpty(t *testing.T) {
	out := Assemble(StaticContext{}, DynamicContext{}, "hi", nil)
	require.Contains(t, out, "Connected services: none")
}

func TestAssemble_CapabilityLinesOnlyWhenEnabled(t *testing.T) {
	out := Assemble(StaticContext{}, DynamicContext{HasEmailCapability: true}, "hi", nil)
	require.Contains(t, out, "send and read email")
	require.NotContains(t, out, "shared spaces")
}

func TestAssemble_IntentModuleAppearsForCodeIntent(t *testing.T) {
	out := Assemble(StaticContext{}, DynamicContext{Intent: pipeline.IntentCode}, "refactor this", nil)
	require.Contains(t, out, "Active focus: coding")
}

func TestAssemble_NoActiveFocusLineForChatIntent(t *testing.T) {
	out := Assemble(StaticContext{}, DynamicContext{Intent: pipeline.IntentChat}, "hi", nil)
	require.NotContains(t, out, "Active focus:")
}

func TestAssemble_IncludesCustomIntegrationBlock(t *testing.T) {
	out := Assemble(StaticContext{}, DynamicContext{CustomIntegration: "CUSTOM_BLOCK"}, "hi", nil)
	require.Contains(t, out, "CUSTOM_BLOCK")
}

func TestAssemble_IncludesRelevantSkillsAfterIntegrationBlock(t *testing.T) {
	skills := []workspace.Skill{{Name: "invoice-review", Triggers: []string{"invoice"}, Body: "Check line items."}}
	out := Assemble(StaticContext{}, DynamicContext{CustomIntegration: "CUSTOM"}, "review this invoice", skills)
	require.True(t, strings.Index(out, "CUSTOM") < strings.Index(out, "invoice-review"))
	require.Contains(t, out, "Check line items.")
}

func TestAssemble_SkillBlockRespectsCharBudget(t *testing.T) {
	long := strings.Repeat("x", 9000)
	skills := []workspace.Skill{{Name: "huge", Triggers: []string{"invoice"}, Body: long}}
	out := Assemble(StaticContext{}, DynamicContext{}, "invoice", skills)
	idx := strings.Index(out, "huge")
	require.True(t, idx >= 0)
	require.LessOrEqual(t, len(out)-idx, maxSkillContentChars+len("### huge\n")+1)
}

func TestAssemble_CompanyKnowledgeAppearsLast(t *testing.T) {
	out := Assemble(StaticContext{}, DynamicContext{CompanyKnowledge: "COMPANY_FACT"}, "hi", nil)
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "COMPANY_FACT"))
}
