package agentloop

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ojashyadav101/lucy-sub000/internal/tools"
)

// callSignature hashes a tool call's (name, normalized-args) pair for loop
// detection (spec §4.6 item 5). Arguments are re-marshaled with sorted keys
// so semantically identical payloads hash identically regardless of
// incoming key order.
func callSignature(call tools.Call) string {
	var keys []string
	var normalized map[string]any
	_ = json.Unmarshal(call.ArgumentsJS, &normalized)
	for k := range normalized {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(string(call.Name))
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%v", k, normalized[k])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

// exemptFromPerToolCap holds tools spec §4.6 excludes from the per-tool-name
// cap ("search/workbench tools are exempt").
func exemptFromPerToolCap(name tools.ID) bool {
	n := strings.ToLower(string(name))
	return strings.Contains(n, "search") || strings.Contains(n, "workbench")
}

// narrationPhrases are configurable markers of the model describing an
// action in prose instead of calling a tool (spec §4.6 item 3).
var narrationPhrases = []string{
	"i will now", "let me go ahead and", "i'm going to call",
	"i'll use the", "next i will", "i will use the tool",
}

func looksLikeNarration(content string) bool {
	lower := strings.ToLower(content)
	for _, p := range narrationPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// resultHasErrorMarker flags a tool-result message as carrying an error, for stuck
// detection (spec §4.6 item 11: "3 consecutive tool-result messages contain
// error markers").
func resultHasErrorMarker(content string, isError bool) bool {
	if isError {
		return true
	}
	lower := strings.ToLower(content)
	for _, m := range []string{"error:", "failed", "exception", "timeout", "unauthorized"} {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// isCodeExecutionTool/isEditFileTool drive the mid-loop tier shifts of spec
// §4.6 item 13.
func isCodeExecutionTool(name tools.ID) bool {
	return strings.Contains(strings.ToLower(string(name)), "execute_code") ||
		strings.Contains(strings.ToLower(string(name)), "run_code")
}

func isEditFileTool(name tools.ID) bool {
	n := strings.ToLower(string(name))
	return strings.Contains(n, "edit_file") || strings.Contains(n, "write_file")
}
