package heartbeat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPIHealthEvaluator_TriggersOnUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	eval := APIHealthEvaluator{}
	result, err := eval.Evaluate(context.Background(), map[string]any{"url": srv.URL, "expectedStatus": 200})
	require.NoError(t, err)
	require.True(t, result.Triggered)
}

func TestAPIHealthEvaluator_NoTriggerOnExpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	eval := APIHealthEvaluator{}
	result, err := eval.Evaluate(context.Background(), map[string]any{"url": srv.URL, "expectedStatus": 200})
	require.NoError(t, err)
	require.False(t, result.Triggered)
}

func TestAPIHealthEvaluator_TriggersOnConnectionError(t *testing.T) {
	eval := APIHealthEvaluator{}
	result, err := eval.Evaluate(context.Background(), map[string]any{"url": "http://127.0.0.1:1"})
	require.NoError(t, err)
	require.True(t, result.Triggered)
}

func TestPageContentEvaluator_TriggersOnContainsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("the site is under maintenance"))
	}))
	defer srv.Close()

	eval := PageContentEvaluator{}
	result, err := eval.Evaluate(context.Background(), map[string]any{"url": srv.URL, "containsText": "maintenance"})
	require.NoError(t, err)
	require.True(t, result.Triggered)
}

func TestPageContentEvaluator_NoTriggerWhenNotContainsTextPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("all systems nominal"))
	}))
	defer srv.Close()

	eval := PageContentEvaluator{}
	result, err := eval.Evaluate(context.Background(), map[string]any{"url": srv.URL, "notContainsText": "nominal"})
	require.NoError(t, err)
	require.False(t, result.Triggered)
}

func TestPageContentEvaluator_TriggersOnRegexMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("error code 503 returned"))
	}))
	defer srv.Close()

	eval := PageContentEvaluator{}
	result, err := eval.Evaluate(context.Background(), map[string]any{"url": srv.URL, "regex": `\d{3}`})
	require.NoError(t, err)
	require.True(t, result.Triggered)
}

func TestMetricThresholdEvaluator_TriggersWhenOverThreshold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"metrics":{"cpu":92}}`))
	}))
	defer srv.Close()

	eval := MetricThresholdEvaluator{}
	result, err := eval.Evaluate(context.Background(), map[string]any{
		"url": srv.URL, "jsonPath": "metrics.cpu", "operator": "gt", "threshold": float64(80),
	})
	require.NoError(t, err)
	require.True(t, result.Triggered)
}

func TestMetricThresholdEvaluator_NoTriggerUnderThreshold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"metrics":{"cpu":10}}`))
	}))
	defer srv.Close()

	eval := MetricThresholdEvaluator{}
	result, err := eval.Evaluate(context.Background(), map[string]any{
		"url": srv.URL, "jsonPath": "metrics.cpu", "operator": "gt", "threshold": float64(80),
	})
	require.NoError(t, err)
	require.False(t, result.Triggered)
}

func TestMetricThresholdEvaluator_TriggersOnMissingJSONPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"metrics":{}}`))
	}))
	defer srv.Close()

	eval := MetricThresholdEvaluator{}
	result, err := eval.Evaluate(context.Background(), map[string]any{
		"url": srv.URL, "jsonPath": "metrics.cpu", "operator": "gt", "threshold": float64(80),
	})
	require.NoError(t, err)
	require.True(t, result.Triggered)
}

type fakeScriptRunner struct {
	output string
	err    error
}

func (f *fakeScriptRunner) RunScript(ctx context.Context, workspaceID, script string) (string, error) {
	return f.output, f.err
}

func TestCustomEvaluator_ParsesTriggeredField(t *testing.T) {
	eval := CustomEvaluator{WorkspaceID: "ws1", Scripts: &fakeScriptRunner{output: `{"triggered":true,"reason":"disk full"}`}}
	result, err := eval.Evaluate(context.Background(), map[string]any{"script": "check_disk()"})
	require.NoError(t, err)
	require.True(t, result.Triggered)
}

func TestCustomEvaluator_ErrorsWhenTriggeredFieldMissing(t *testing.T) {
	eval := CustomEvaluator{WorkspaceID: "ws1", Scripts: &fakeScriptRunner{output: `{"reason":"no field"}`}}
	_, err := eval.Evaluate(context.Background(), map[string]any{"script": "check()"})
	require.Error(t, err)
}
