package pipeline

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// RecentCall is one prior tool invocation within the dedup window.
type RecentCall struct {
	Name     string
	ParamsJS json.RawMessage
	CalledAt time.Time
}

// idempotentVerbs never dedup (spec §4.1: "Idempotent verbs (get/list/
// search/fetch/read) never dedup").
var idempotentVerbs = []string{"get", "list", "search", "fetch", "read"}

func isIdempotent(name string) bool {
	lower := strings.ToLower(name)
	for _, v := range idempotentVerbs {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}

// ShouldDeduplicateToolCall reports whether a tool call should be suppressed
// as a duplicate of a recent call to the same mutating tool with identical
// parameters within window (spec §4.1).
func ShouldDeduplicateToolCall(name string, paramsJS json.RawMessage, recentCalls []RecentCall, window time.Duration) bool {
	if isIdempotent(name) {
		return false
	}
	normalized := normalizeParams(paramsJS)
	cutoff := time.Now().Add(-window)
	for _, rc := range recentCalls {
		if rc.Name != name {
			continue
		}
		if rc.CalledAt.Before(cutoff) {
			continue
		}
		if normalizeParams(rc.ParamsJS) == normalized {
			return true
		}
	}
	return false
}

// normalizeParams re-marshals a params document with sorted keys so
// semantically identical payloads compare equal regardless of key order.
func normalizeParams(raw json.RawMessage) string {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return string(raw)
	}
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		if v, err := json.Marshal(doc[k]); err == nil {
			b.Write(v)
		}
		b.WriteByte('|')
	}
	return b.String()
}
