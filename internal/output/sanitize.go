// Package output implements the four-layer deterministic output processor
// (spec §4.5): sanitize, markdown-to-chat formatting, tone validation, and
// a de-AI regex pass. Each layer is a pure string transform; Process runs
// them in sequence and is idempotent — running it again on its own output
// yields the same string.
package output

import (
	"regexp"
	"strings"
)

// filesystemPathPattern catches absolute and home-relative paths so internal
// workspace layout never leaks into a chat message.
var filesystemPathPattern = regexp.MustCompile(`(?:/[\w.\-]+){2,}|~/[\w./\-]+`)

// apiKeyPattern catches common API-key/token shapes (sk-..., Bearer tokens,
// long hex/base64-looking secrets) so a tool result never surfaces one.
var apiKeyPattern = regexp.MustCompile(`\b(?:sk-[A-Za-z0-9]{10,}|Bearer\s+[A-Za-z0-9._\-]{10,}|[A-Fa-f0-9]{32,})\b`)

// internalTagPattern catches XML-like internal framing tags such as
// <system-reminder> or <task-plan> that should never reach the end user.
var internalTagPattern = regexp.MustCompile(`</?(?:system-reminder|task-plan|tool_use|tool_result)[^>]*>`)

// opaqueIDPattern catches UUID-shaped and similarly opaque identifiers.
var opaqueIDPattern = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)

// toolNamePattern matches Lucy's internal tool-name convention.
var toolNamePattern = regexp.MustCompile(`\blucy_[a-z0-9_]+\b`)

// toolHumanization maps a handful of tool names whose plain-English phrase
// reads more naturally than the generic underscore-to-space conversion.
var toolHumanization = map[string]string{
	"lucy_slack_post_message":  "sending a message",
	"lucy_slack_search_messages": "searching messages",
	"lucy_calendar_create_event": "creating a calendar event",
	"lucy_email_send":          "sending an email",
}

// Sanitize is layer 1: it redacts filesystem paths, API keys, opaque
// identifiers, internal XML-like tags, and rewrites internal tool names to
// a plain-English phrase (or, failing a known mapping, a humanized form of
// the tool name) so nothing about Lucy's internal implementation leaks.
func Sanitize(text string) string {
	text = internalTagPattern.ReplaceAllString(text, "")
	text = apiKeyPattern.ReplaceAllString(text, "[redacted]")
	text = opaqueIDPattern.ReplaceAllString(text, "[id]")
	text = filesystemPathPattern.ReplaceAllString(text, "[path]")
	text = toolNamePattern.ReplaceAllStringFunc(text, humanizeToolMention)
	return text
}

func humanizeToolMention(name string) string {
	if phrase, ok := toolHumanization[name]; ok {
		return phrase
	}
	n := strings.TrimPrefix(name, "lucy_")
	return strings.ReplaceAll(n, "_", " ")
}
