package output

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripAIPhrasing_RemovesEmDash(t *testing.T) {
	out := StripAIPhrasing("the fix is simple — just restart the worker")
	require.NotContains(t, out, "—")
}

func TestStripAIPhrasing_ReplacesBlacklistedVocabulary(t *testing.T) {
	out := StripAIPhrasing("let's delve into the tapestry of causes")
	require.NotContains(t, out, "delve")
	require.NotContains(t, out, "tapestry")
}

func TestStripAIPhrasing_RemovesSycophanticOpener(t *testing.T) {
	out := StripAIPhrasing("Great question! The answer is 42.")
	require.NotContains(t, out, "Great question")
}

func TestStripAIPhrasing_RemovesChatbotCloser(t *testing.T) {
	out := StripAIPhrasing("Deploy finished. Let me know if you have any other questions!")
	require.NotContains(t, out, "Let me know")
}

func TestStripAIPhrasing_SecondTierNeverFires(t *testing.T) {
	require.Greater(t, secondTierThreshold, 1000000)
}
