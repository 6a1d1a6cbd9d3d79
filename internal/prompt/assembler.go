// Package prompt assembles Lucy's system prompt as a static prefix plus a
// dynamic suffix (spec §4.4), so a provider's prompt cache can hit on the
// unchanging prefix across turns and across users in the same workspace.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ojashyadav101/lucy-sub000/internal/pipeline"
	"github.com/ojashyadav101/lucy-sub000/internal/workspace"
)

// StaticContext carries the pieces of the static prefix that are fixed per
// deployment (personality/behavior docs, the two common modules) rather
// than computed per request.
type StaticContext struct {
	PersonalityDoc string
	BehaviorDoc    string
	ToolUseModule  string
	MemoryModule   string
}

// DynamicContext carries the per-request pieces of the dynamic suffix.
type DynamicContext struct {
	Intent              pipeline.Intent
	ConnectedServices   []string
	HasEmailCapability  bool
	HasSpacesCapability bool
	CustomIntegration   string
	CompanyKnowledge    string
}

// intentModules maps an intent to the named module text it contributes to
// the dynamic suffix (spec §4.4: "intent-specific modules (coding |
// research | data-tasks | integrations | none)").
var intentModules = map[pipeline.Intent]string{
	pipeline.IntentCode:      "coding",
	pipeline.IntentReasoning: "research",
	pipeline.IntentData:      "data-tasks",
	pipeline.IntentToolUse:   "integrations",
	pipeline.IntentLookup:    "integrations",
}

// maxSkillContentChars caps the total character budget the skill block may
// spend (spec §4.4: "capped at 8,000 characters total skill content").
const maxSkillContentChars = 8_000

// Assemble builds the full system prompt: static prefix, then dynamic
// suffix (intent module, custom-integration block, up to 3 relevant
// skills, then permanent company knowledge).
func Assemble(static StaticContext, dynamic DynamicContext, message string, skills []workspace.Skill) string {
	var b strings.Builder

	b.WriteString(staticPrefix(static, dynamic))
	b.WriteString("\n\n")
	b.WriteString(dynamicSuffix(dynamic, message, skills))

	return strings.TrimSpace(b.String())
}

func staticPrefix(static StaticContext, dynamic DynamicContext) string {
	var b strings.Builder
	if static.PersonalityDoc != "" {
		b.WriteString(static.PersonalityDoc)
		b.WriteString("\n\n")
	}
	if static.BehaviorDoc != "" {
		b.WriteString(static.BehaviorDoc)
		b.WriteString("\n\n")
	}
	if static.ToolUseModule != "" {
		b.WriteString(static.ToolUseModule)
		b.WriteString("\n\n")
	}
	if static.MemoryModule != "" {
		b.WriteString(static.MemoryModule)
		b.WriteString("\n\n")
	}
	b.WriteString(environmentBlock(dynamic))
	return strings.TrimRight(b.String(), "\n")
}

func environmentBlock(dynamic DynamicContext) string {
	var b strings.Builder
	b.WriteString("Connected services: ")
	if len(dynamic.ConnectedServices) == 0 {
		b.WriteString("none")
	} else {
		b.WriteString(strings.Join(dynamic.ConnectedServices, ", "))
	}
	b.WriteString("\n")
	if dynamic.HasEmailCapability {
		b.WriteString("You can send and read email on the user's behalf.\n")
	}
	if dynamic.HasSpacesCapability {
		b.WriteString("You can post to and read shared spaces.\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func dynamicSuffix(dynamic DynamicContext, message string, skills []workspace.Skill) string {
	var b strings.Builder

	if module, ok := intentModules[dynamic.Intent]; ok {
		fmt.Fprintf(&b, "Active focus: %s\n\n", module)
	}
	if dynamic.CustomIntegration != "" {
		b.WriteString(dynamic.CustomIntegration)
		b.WriteString("\n\n")
	}

	relevant := DetectRelevantSkills(message, skills)
	if len(relevant) > 0 {
		b.WriteString(renderSkillBlock(relevant))
		b.WriteString("\n\n")
	}

	if dynamic.CompanyKnowledge != "" {
		b.WriteString(dynamic.CompanyKnowledge)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSkillBlock(skills []workspace.Skill) string {
	var b strings.Builder
	remaining := maxSkillContentChars
	for _, s := range skills {
		if remaining <= 0 {
			break
		}
		entry := fmt.Sprintf("### %s\n%s\n", s.Name, s.Body)
		if len(entry) > remaining {
			entry = entry[:remaining]
		}
		b.WriteString(entry)
		remaining -= len(entry)
	}
	return strings.TrimRight(b.String(), "\n")
}
