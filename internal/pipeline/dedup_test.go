package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShouldDeduplicateToolCall_IdempotentVerbNeverDedups(t *testing.T) {
	recent := []RecentCall{{Name: "lucy_slack_search_messages", ParamsJS: []byte(`{"q":"x"}`), CalledAt: time.Now()}}
	require.False(t, ShouldDeduplicateToolCall("lucy_slack_search_messages", []byte(`{"q":"x"}`), recent, 5*time.Second))
}

func TestShouldDeduplicateToolCall_ExactMatchWithinWindowDedups(t *testing.T) {
	recent := []RecentCall{{Name: "lucy_slack_post_message", ParamsJS: []byte(`{"channel":"C1","text":"hi"}`), CalledAt: time.Now()}}
	dup := ShouldDeduplicateToolCall("lucy_slack_post_message", []byte(`{"text":"hi","channel":"C1"}`), recent, 5*time.Second)
	require.True(t, dup)
}

func TestShouldDeduplicateToolCall_OutsideWindowDoesNotDedup(t *testing.T) {
	recent := []RecentCall{{Name: "lucy_slack_post_message", ParamsJS: []byte(`{"channel":"C1"}`), CalledAt: time.Now().Add(-10 * time.Second)}}
	require.False(t, ShouldDeduplicateToolCall("lucy_slack_post_message", []byte(`{"channel":"C1"}`), recent, 5*time.Second))
}

func TestShouldDeduplicateToolCall_DifferentParamsDoesNotDedup(t *testing.T) {
	recent := []RecentCall{{Name: "lucy_slack_post_message", ParamsJS: []byte(`{"channel":"C1"}`), CalledAt: time.Now()}}
	require.False(t, ShouldDeduplicateToolCall("lucy_slack_post_message", []byte(`{"channel":"C2"}`), recent, 5*time.Second))
}
