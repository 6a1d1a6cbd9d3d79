package agentloop

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ojashyadav101/lucy-sub000/internal/tools"
)

func TestRunDelegate_UsesDelegateCapsAndReturnsSubPlannerResult(t *testing.T) {
	sub := &scriptedPlanner{steps: []PlanResult{{FinalResponse: "sub-agent answer"}}}
	reg := tools.NewStaticRegistry(nil)
	ctx := newRunContext(reg, noopDispatcher(), nil)

	out := RunDelegate(ctx, sub, reg, noopDispatcher(), "research the topic")
	require.Equal(t, "sub-agent answer", out.Text)
	require.Equal(t, []ModelTier{TierDefault}, sub.tiersSeen)
}

func TestDelegateCallArgument_ExtractsInstructionField(t *testing.T) {
	raw, err := json.Marshal(map[string]string{"instruction": "summarize the thread"})
	require.NoError(t, err)
	call := tools.Call{ArgumentsJS: raw}
	require.Equal(t, "summarize the thread", delegateCallArgument(call))
}
