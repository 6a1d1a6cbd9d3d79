package pipeline

import (
	"math/rand"
	"regexp"
	"strings"
)

// FastPathResult is EvaluateFastPath's verdict for a single message.
type FastPathResult struct {
	IsFast   bool
	Response string
	Reason   string
}

// toolInvokingKeywords disqualify a message from the fast path even if it
// otherwise matches a trigger (spec §4.1: "message contains a tool-invoking
// keyword").
var toolInvokingKeywords = []string{
	"send", "post", "create", "schedule", "delete", "update", "email",
	"calendar", "search", "find", "remind", "invite", "ticket", "upload",
}

// fastPathTriggers maps a category to the regex that recognizes it.
var fastPathTriggers = []struct {
	category string
	pattern  *regexp.Regexp
}{
	{"greeting", regexp.MustCompile(`(?i)^\s*(hi|hey|hello|good (morning|afternoon|evening))\s*!?\s*$`)},
	{"thanks", regexp.MustCompile(`(?i)^\s*(thanks|thank you|thx|ty)\b`)},
	{"farewell", regexp.MustCompile(`(?i)^\s*(bye|goodbye|see you|later|gotta go)\b`)},
	{"affirmation", regexp.MustCompile(`(?i)^\s*(ok(ay)?|sure|sounds good|got it|cool|nice)\s*!?\s*$`)},
}

// fastPathPool holds the pre-generated variation pool per category. When a
// category's pool is cold (no entries), EvaluateFastPath falls back to a
// single hardcoded line rather than refusing the fast path.
var fastPathPool = map[string][]string{
	"greeting":    {"Hey! What can I help with?", "Hi there — what's up?", "Hello! How can I help today?"},
	"thanks":      {"You're welcome!", "Anytime!", "Happy to help."},
	"farewell":    {"Talk soon!", "See you later!", "Bye for now!"},
	"affirmation": {"Got it.", "Sounds good.", "On it."},
}

var fastPathFallback = map[string]string{
	"greeting":    "Hi! What can I help with?",
	"thanks":      "You're welcome!",
	"farewell":    "See you later!",
	"affirmation": "Got it.",
}

// EvaluateFastPath decides whether message short-circuits the agent loop
// entirely with a canned response (spec §4.1). Disqualifiers: length > 80
// chars, thread depth > 0, or a tool-invoking keyword present.
func EvaluateFastPath(message string, threadDepth int, hasThreadContext bool) FastPathResult {
	trimmed := strings.TrimSpace(message)
	if len(trimmed) > 80 {
		return FastPathResult{Reason: "message too long for fast path"}
	}
	if threadDepth > 0 || hasThreadContext {
		return FastPathResult{Reason: "message has thread context"}
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range toolInvokingKeywords {
		if strings.Contains(lower, kw) {
			return FastPathResult{Reason: "message contains a tool-invoking keyword"}
		}
	}

	for _, trig := range fastPathTriggers {
		if trig.pattern.MatchString(trimmed) {
			return FastPathResult{IsFast: true, Response: pickFastPathResponse(trig.category), Reason: trig.category}
		}
	}
	return FastPathResult{Reason: "no fast-path trigger matched"}
}

func pickFastPathResponse(category string) string {
	pool := fastPathPool[category]
	if len(pool) == 0 {
		return fastPathFallback[category]
	}
	return pool[rand.Intn(len(pool))]
}
