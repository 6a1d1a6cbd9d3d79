package prompt

import (
	"sort"
	"strings"

	"github.com/ojashyadav101/lucy-sub000/internal/workspace"
)

// maxRelevantSkills caps how many skills DetectRelevantSkills returns (spec
// §4.4: "up to 3 relevant skills").
const maxRelevantSkills = 3

// DetectRelevantSkills ranks a workspace's skills by how many of each
// skill's trigger keywords appear in message, and returns the top matches
// (ties broken by original order, per sort.SliceStable). Skills with zero
// matching triggers are dropped entirely.
func DetectRelevantSkills(message string, skills []workspace.Skill) []workspace.Skill {
	lower := strings.ToLower(message)

	type scored struct {
		skill workspace.Skill
		count int
	}

	var candidates []scored
	for _, s := range skills {
		count := 0
		for _, trigger := range s.Triggers {
			if trigger == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(trigger)) {
				count++
			}
		}
		if count > 0 {
			candidates = append(candidates, scored{skill: s, count: count})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].count > candidates[j].count
	})

	if len(candidates) > maxRelevantSkills {
		candidates = candidates[:maxRelevantSkills]
	}

	result := make([]workspace.Skill, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.skill)
	}
	return result
}
