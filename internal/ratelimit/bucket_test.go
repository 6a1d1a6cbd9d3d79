package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/ojashyadav101/lucy-sub000/internal/telemetry"
)

func TestModelBucketFor_PrefixMatch(t *testing.T) {
	t.Helper()

	cases := []struct {
		family    string
		wantKey   string
		wantRate  float64
		wantBurst int
	}{
		{"google-gemini-2.5", "google", 5.0, 15},
		{"anthropic-claude-opus", "anthropic", 2.0, 8},
		{"openai-gpt-5", "openai", 3.0, 10},
		{"minimax-m2", "minimax", 3.0, 10},
		{"some-unknown-family", "default", 2.0, 8},
	}
	for _, c := range cases {
		key, cfg := ModelBucketFor(c.family)
		if key != c.wantKey {
			t.Errorf("ModelBucketFor(%q) key = %q, want %q", c.family, key, c.wantKey)
		}
		if cfg.RatePerSecond != c.wantRate || cfg.Burst != c.wantBurst {
			t.Errorf("ModelBucketFor(%q) cfg = %+v, want rate=%v burst=%v", c.family, cfg, c.wantRate, c.wantBurst)
		}
	}
}

func TestClassifyToolAPI(t *testing.T) {
	t.Helper()

	cases := []struct {
		tool string
		want string
	}{
		{"lucy_slack_post_message", "slack"},
		{"lucy_github_create_issue", "github"},
		{"lucy_gmail_send", "gmail"},
		{"lucy_filesystem_read", ""},
	}
	for _, c := range cases {
		if got := ClassifyToolAPI(c.tool); got != c.want {
			t.Errorf("ClassifyToolAPI(%q) = %q, want %q", c.tool, got, c.want)
		}
	}
}

func TestLimiter_AcquireAPI_UnblockedByModelBucket(t *testing.T) {
	t.Helper()

	l := New(telemetry.NewNoopLogger(), telemetry.NewNoopMetrics())
	ctx := context.Background()

	// Exhaust the slack API bucket's burst.
	for i := 0; i < 10; i++ {
		if !l.AcquireAPI(ctx, "lucy_slack_post_message", 1, time.Second) {
			t.Fatalf("expected burst capacity to satisfy call %d", i)
		}
	}
	if l.AcquireAPI(ctx, "lucy_slack_post_message", 1, 10*time.Millisecond) {
		t.Fatal("expected API bucket to be exhausted")
	}

	// A model-family acquire is independent of the exhausted API bucket.
	if !l.AcquireModel(ctx, "anthropic-claude-opus", 1, time.Second) {
		t.Fatal("expected model bucket to be independently available")
	}
}

func TestLimiter_AcquireAPI_NoClassification(t *testing.T) {
	t.Helper()

	l := New(telemetry.NewNoopLogger(), telemetry.NewNoopMetrics())
	for i := 0; i < 100; i++ {
		if !l.AcquireAPI(context.Background(), "lucy_filesystem_read", 1, time.Second) {
			t.Fatalf("unclassified tool call %d should never be blocked", i)
		}
	}
}

func TestLimiter_AcquireModel_TimesOutWhenExhausted(t *testing.T) {
	t.Helper()

	l := New(telemetry.NewNoopLogger(), telemetry.NewNoopMetrics())
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		if !l.AcquireModel(ctx, "anthropic-claude", 1, time.Second) {
			t.Fatalf("expected burst capacity to satisfy call %d", i)
		}
	}
	start := time.Now()
	acquired := l.AcquireModel(ctx, "anthropic-claude", 1, 20*time.Millisecond)
	elapsed := time.Since(start)
	if acquired {
		t.Fatal("expected bucket to be exhausted past burst")
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("acquire took too long to respect timeout: %v", elapsed)
	}
}
