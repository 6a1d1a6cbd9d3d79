package tools

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ojashyadav101/lucy-sub000/internal/errkind"
)

const testSchema = `{
	"type": "object",
	"required": ["channel"],
	"properties": {
		"channel": {"type": "string"}
	}
}`

func TestValidateArguments_AcceptsConformingPayload(t *testing.T) {
	err := ValidateArguments("lucy_slack_post_message", []byte(testSchema), []byte(`{"channel":"C123"}`))
	require.Nil(t, err)
}

func TestValidateArguments_RejectsMissingRequiredField(t *testing.T) {
	err := ValidateArguments("lucy_slack_post_message", []byte(testSchema), []byte(`{}`))
	require.NotNil(t, err)
	require.Equal(t, errkind.ArgumentParse, err.Kind)
	require.True(t, err.Retryable())
}

func TestValidateArguments_NoSchemaSkipsValidation(t *testing.T) {
	err := ValidateArguments("lucy_noop", nil, []byte(`{"anything":true}`))
	require.Nil(t, err)
}

func TestStaticRegistry_LookupAndList(t *testing.T) {
	reg := NewStaticRegistry([]Spec{
		{Name: "lucy_slack_post_message", Dispatch: DispatchExternal},
		{Name: "delegate_to_research_agent", Dispatch: DispatchDelegated, DelegateAgentID: "lucy.research"},
	})

	spec, ok := reg.Lookup("lucy_slack_post_message")
	require.True(t, ok)
	require.Equal(t, DispatchExternal, spec.Dispatch)

	_, ok = reg.Lookup("missing")
	require.False(t, ok)

	require.Len(t, reg.List(), 2)
}
