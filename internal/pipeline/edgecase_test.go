package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecideEdgeCase_NoBackgroundTaskAlwaysQueues(t *testing.T) {
	require.Equal(t, EdgeQueue, DecideEdgeCase("anything at all", false, 0))
}

func TestDecideEdgeCase_StatusRequest(t *testing.T) {
	require.Equal(t, EdgeStatusReply, DecideEdgeCase("what's the status on that", true, 0))
}

func TestDecideEdgeCase_CancelRequest(t *testing.T) {
	require.Equal(t, EdgeCancelTask, DecideEdgeCase("actually, cancel that", true, 0))
}

func TestDecideEdgeCase_UnrelatedMessageAtThreadRootRespondsIndependently(t *testing.T) {
	require.Equal(t, EdgeRespondIndependently, DecideEdgeCase("what's the weather like", true, 0))
}

func TestDecideEdgeCase_UnrelatedMessageInThreadQueues(t *testing.T) {
	require.Equal(t, EdgeQueue, DecideEdgeCase("what's the weather like", true, 2))
}
