package pipeline

import (
	"errors"
	"strings"

	"github.com/ojashyadav101/lucy-sub000/internal/toolerrors"
)

// DegradationClass is ClassifyErrorForDegradation's closed output set,
// driving which user-facing apology message gets selected (spec §4.1).
type DegradationClass string

const (
	DegradeRateLimited        DegradationClass = "rateLimited"
	DegradeToolTimeout        DegradationClass = "toolTimeout"
	DegradeServiceUnavailable DegradationClass = "serviceUnavailable"
	DegradeContextOverflow    DegradationClass = "contextOverflow"
	DegradeUnknown            DegradationClass = "unknown"
)

// ClassifyErrorForDegradation maps an error to the degradation class that
// selects the user-facing apology message. It prefers the structured
// *toolerrors.ToolError kind when present, falling back to substring
// matching on the error text for errors that never passed through the tool
// dispatch layer (e.g. a raw LLM client error).
func ClassifyErrorForDegradation(err error) DegradationClass {
	if err == nil {
		return DegradeUnknown
	}

	var terr *toolerrors.ToolError
	if errors.As(err, &terr) {
		switch terr.Kind {
		case "llm-transient", "tool-transient":
			if strings.Contains(strings.ToLower(terr.Message), "rate limit") {
				return DegradeRateLimited
			}
			return DegradeServiceUnavailable
		}
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "429"):
		return DegradeRateLimited
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		return DegradeToolTimeout
	case strings.Contains(lower, "unavailable") || strings.Contains(lower, "connection refused") || strings.Contains(lower, "5xx") || strings.Contains(lower, "503"):
		return DegradeServiceUnavailable
	case strings.Contains(lower, "context") && (strings.Contains(lower, "too long") || strings.Contains(lower, "overflow") || strings.Contains(lower, "maximum context")):
		return DegradeContextOverflow
	default:
		return DegradeUnknown
	}
}

// degradationMessages holds one neutral, non-technical apology per class;
// the output processor's tone-validation layer also guards against any
// internal leak slipping past this selection.
var degradationMessages = map[DegradationClass]string{
	DegradeRateLimited:        "I'm getting rate limited right now — give me a moment and try again.",
	DegradeToolTimeout:        "That's taking longer than expected. Let me know if you'd like me to keep trying.",
	DegradeServiceUnavailable: "One of the services I rely on is unavailable right now. I'll let you know when it's back.",
	DegradeContextOverflow:    "This conversation has grown too long for me to keep full context. Could you summarize what you need?",
	DegradeUnknown:            "Something went wrong on my end. Mind trying that again?",
}

// DegradationMessage returns the canned user-facing message for a class.
func DegradationMessage(class DegradationClass) string {
	if msg, ok := degradationMessages[class]; ok {
		return msg
	}
	return degradationMessages[DegradeUnknown]
}
