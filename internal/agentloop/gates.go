package agentloop

import "strings"

// qualityScore computes the spec §4.6 post-loop confidence heuristic
// (1-10, starting at 10 and penalized), used to decide whether a
// non-frontier final response deserves an escalated re-run.
func qualityScore(userMessage, finalText string) int {
	score := 10
	if mentionsUnrequestedService(userMessage, finalText) {
		score -= 3
	}
	if isGenericCantFind(finalText) && looksActionable(userMessage) {
		score -= 2
	}
	if len(finalText) < 80 && isComplexQuestion(userMessage) {
		score -= 2
	}
	if score < 1 {
		score = 1
	}
	return score
}

func mentionsUnrequestedService(userMessage, finalText string) bool {
	services := []string{"jira", "linear", "github", "google calendar", "notion"}
	lowerUser := strings.ToLower(userMessage)
	lowerFinal := strings.ToLower(finalText)
	for _, s := range services {
		if strings.Contains(lowerFinal, s) && !strings.Contains(lowerUser, s) {
			return true
		}
	}
	return false
}

func isGenericCantFind(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "i can't find") || strings.Contains(lower, "i couldn't find") ||
		strings.Contains(lower, "unable to find")
}

func looksActionable(userMessage string) bool {
	lower := strings.ToLower(userMessage)
	for _, verb := range []string{"find", "get", "look up", "check", "search", "show me"} {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

func isComplexQuestion(userMessage string) bool {
	return len(strings.Fields(userMessage)) > 15
}

// needsVerification flags incomplete multi-part deliverables (spec §4.6
// "Verification" gate).
func needsVerification(userMessage, finalText string) (bool, string) {
	lower := strings.ToLower(userMessage)
	if strings.Contains(lower, "all ") && looksLikeSample(finalText) {
		return true, "user asked for all items but response reads like a partial sample"
	}
	if wantsMultipleArtifacts(lower) && countArtifactMarkers(finalText) < 2 {
		return true, "user asked for multiple artifacts but only one is present"
	}
	if isDataIntent(lower) && len(finalText) < 80 {
		return true, "data request answered with an unexpectedly short response"
	}
	return false, ""
}

func looksLikeSample(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "for example") || strings.Contains(lower, "such as") ||
		strings.Contains(lower, "a few examples")
}

func wantsMultipleArtifacts(lowerUserMessage string) bool {
	for _, p := range []string{"both", "each of", "all of the following", "and also"} {
		if strings.Contains(lowerUserMessage, p) {
			return true
		}
	}
	return false
}

func countArtifactMarkers(text string) int {
	return strings.Count(text, "\n#") + strings.Count(text, "\n1.") + 1
}

func isDataIntent(lowerUserMessage string) bool {
	for _, p := range []string{"report", "summary", "list of", "metrics", "numbers"} {
		if strings.Contains(lowerUserMessage, p) {
			return true
		}
	}
	return false
}
