package pipeline

import "regexp"

// EdgeDecision is DecideEdgeCase's closed output set (spec §4.1).
type EdgeDecision string

const (
	EdgeStatusReply          EdgeDecision = "statusReply"
	EdgeCancelTask           EdgeDecision = "cancelTask"
	EdgeRespondIndependently EdgeDecision = "respondIndependently"
	EdgeQueue                EdgeDecision = "queue"
)

var (
	statusPattern = regexp.MustCompile(`(?i)\b(what are you working on|status|any progress|how's it going|still (there|working))\b`)
	cancelPattern = regexp.MustCompile(`(?i)\b(cancel (that|it)|stop that|never ?mind|forget (it|that))\b`)
)

// DecideEdgeCase routes a message that arrives while a background task may
// already be in flight for the same thread (spec §4.1). It is regex-driven
// and never fails.
func DecideEdgeCase(message string, hasActiveBackgroundTask bool, threadDepth int) EdgeDecision {
	if !hasActiveBackgroundTask {
		return EdgeQueue
	}
	if statusPattern.MatchString(message) {
		return EdgeStatusReply
	}
	if cancelPattern.MatchString(message) {
		return EdgeCancelTask
	}
	if threadDepth == 0 {
		return EdgeRespondIndependently
	}
	return EdgeQueue
}
