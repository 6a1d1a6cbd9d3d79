// Package pipeline implements the message pipeline's pure-function contracts
// (spec §4.1): intent/tier classification, fast-path short-circuiting,
// edge-case routing, tool-call deduplication, and degradation classification.
// None of these touch I/O. Within this module only package prompt imports
// pipeline (for its Intent type); no non-test code calls these functions.
package pipeline

import (
	"regexp"
	"strings"
)

// Intent is the closed set of message intents spec §4.1 classifies into.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentConfirmation Intent = "confirmation"
	IntentFollowup     Intent = "followup"
	IntentChat         Intent = "chat"
	IntentLookup       Intent = "lookup"
	IntentToolUse      Intent = "tool_use"
	IntentCommand      Intent = "command"
	IntentMonitoring   Intent = "monitoring"
	IntentCode         Intent = "code"
	IntentReasoning    Intent = "reasoning"
	IntentData         Intent = "data"
	IntentDocument     Intent = "document"
)

// Tier is the closed set of model tiers Classify routes a message to. This
// is the pipeline's classification vocabulary, distinct from (but feeding
// into) agentloop.ModelTier's runtime escalation ladder — spec §4.1 adds a
// `document` tier the agent loop's escalation ladder has no rung for, since
// a document-intent task starts and stays at that tier rather than
// escalating through it.
type Tier string

const (
	TierFast     Tier = "fast"
	TierDefault  Tier = "default"
	TierCode     Tier = "code"
	TierResearch Tier = "research"
	TierDocument Tier = "document"
	TierFrontier Tier = "frontier"
)

// Classification is Classify's result.
type Classification struct {
	Intent  Intent
	Tier    Tier
	Modules []string
}

// matcher is one priority-ordered intent rule: first match wins.
type matcher struct {
	intent  Intent
	tier    Tier
	modules []string
	pattern *regexp.Regexp
}

// classifyMatchers is evaluated top to bottom; order encodes spec §4.1's
// "priority-ordered regex matchers; first-match wins".
var classifyMatchers = []matcher{
	{IntentGreeting, TierFast, nil, regexp.MustCompile(`(?i)^\s*(hi|hey|hello|good (morning|afternoon|evening))\b`)},
	{IntentConfirmation, TierFast, nil, regexp.MustCompile(`(?i)^\s*(yes|yep|yeah|sure|ok(ay)?|sounds good|go ahead|no(pe)?|cancel that)\s*\.?\s*$`)},
	{IntentFollowup, TierFast, nil, regexp.MustCompile(`(?i)^\s*(and|also|what about|one more thing)\b`)},
	{IntentMonitoring, TierFast, []string{"monitoring"}, regexp.MustCompile(`(?i)\b(what are you working on|status update|any progress|still there)\b`)},
	{IntentCommand, TierDefault, []string{"tool-use"}, regexp.MustCompile(`(?i)^\s*/\w+`)},
	{IntentCode, TierCode, []string{"coding"}, regexp.MustCompile(`(?i)\b(refactor|write (a |the )?(function|script|code)|debug|stack trace|compile|unit test)\b`)},
	{IntentDocument, TierDocument, []string{"document"}, regexp.MustCompile(`(?i)\b(summarize|draft|write up|document|spec out)\b.*\b(doc|document|report|memo|spec)\b`)},
	{IntentData, TierDefault, []string{"data-tasks"}, regexp.MustCompile(`(?i)\b(spreadsheet|csv|report|metrics|numbers|chart|pivot table)\b`)},
	{IntentReasoning, TierResearch, []string{"research"}, regexp.MustCompile(`(?i)\b(why (does|is|do)|compare|trade-?off|analyze|research|think through)\b`)},
	{IntentToolUse, TierDefault, []string{"tool-use", "integrations"}, regexp.MustCompile(`(?i)\b(send|post|create|schedule|delete|update|email|slack|calendar|invite|ticket)\b`)},
	{IntentLookup, TierDefault, []string{"tool-use"}, regexp.MustCompile(`(?i)\b(find|look up|search|what is|when is|where is|show me)\b`)},
}

// backgroundTaskPattern takes precedence over ordinary intent classification
// (spec §4.1: "Background-task signals ... take precedence").
var backgroundTaskPattern = regexp.MustCompile(`(?i)\b(what are you working on|where are we|status on that)\b`)

// Classify maps a raw message to an intent/tier/module triple. It is a pure
// function: no I/O, sub-millisecond, and never fails (malformed or empty
// input maps to the chat/fast default per spec §4.1).
func Classify(message string, threadDepth int, priorHadTools bool) Classification {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return Classification{Intent: IntentChat, Tier: TierFast}
	}

	if backgroundTaskPattern.MatchString(trimmed) {
		return promoteByThreadDepth(Classification{Intent: IntentMonitoring, Tier: TierFast, Modules: []string{"monitoring"}}, threadDepth)
	}

	for _, m := range classifyMatchers {
		if m.pattern.MatchString(trimmed) {
			return promoteByThreadDepth(Classification{Intent: m.intent, Tier: m.tier, Modules: m.modules}, threadDepth)
		}
	}

	modules := []string(nil)
	if priorHadTools {
		modules = []string{"tool-use"}
	}
	return promoteByThreadDepth(Classification{Intent: IntentChat, Tier: TierFast, Modules: modules}, threadDepth)
}

// promoteByThreadDepth applies spec §4.1's "thread-depth adjustments promote
// fast -> default when depth > 3".
func promoteByThreadDepth(c Classification, threadDepth int) Classification {
	if c.Tier == TierFast && threadDepth > 3 {
		c.Tier = TierDefault
	}
	return c
}
