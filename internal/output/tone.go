package output

import "regexp"

// toneRule pairs a rejected phrase pattern with the neutral replacement
// text it is swapped for.
type toneRule struct {
	category    string
	pattern     *regexp.Regexp
	replacement string
}

// toneRules covers the four rejected-phrase categories spec §4.5 names:
// defeatist, internal-leak, vague-error, and sycophantic.
var toneRules = []toneRule{
	{"defeatist", regexp.MustCompile(`(?i)\bi('m| am) (just |only )?an ai( language model)?( and can't really help)?\b`), "here's what I can do"},
	{"defeatist", regexp.MustCompile(`(?i)\bi('m| am) not able to help with that\b`), "I can take a narrower pass at this"},
	{"internal-leak", regexp.MustCompile(`(?i)\b(according to my (system prompt|instructions)|as (an? )?(ai )?assistant,? i (was|am) (instructed|told|configured) to)\b`), "here's how I'm approaching this"},
	{"vague-error", regexp.MustCompile(`(?i)\bsomething went wrong\b`), "that step failed"},
	{"vague-error", regexp.MustCompile(`(?i)\ban? error occurred\b`), "that step failed"},
	{"sycophantic", regexp.MustCompile(`(?i)\bwhat an? (great|excellent|fantastic|wonderful) question\b`), "here's the answer"},
	{"sycophantic", regexp.MustCompile(`(?i)\bi('d| would) be (happy|delighted|thrilled) to\b`), "I'll"},
}

// ValidateTone is layer 3: it rewrites rejected phrase patterns to neutral
// replacements. It never changes message length dramatically and never
// fails; an unmatched message passes through unchanged.
func ValidateTone(text string) string {
	for _, rule := range toneRules {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return text
}
