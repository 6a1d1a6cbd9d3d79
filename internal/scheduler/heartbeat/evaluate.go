// Package heartbeat implements spec §4.8.2: cheap, periodic, non-LLM
// condition monitors with four evaluator kinds, cooldown-gated alerting,
// and a consecutive-failure circuit breaker.
package heartbeat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Evaluation is one evaluator run's outcome.
type Evaluation struct {
	Triggered bool
	Detail    string
}

// Evaluator checks one heartbeat's condition. None of the four kinds
// spec §4.8.2 names ever invoke the agent loop.
type Evaluator interface {
	Evaluate(ctx context.Context, config map[string]any) (Evaluation, error)
}

func stringField(config map[string]any, key string) string {
	v, _ := config[key].(string)
	return v
}

func intField(config map[string]any, key string, fallback int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

// APIHealthEvaluator issues an HTTP GET and triggers on an unexpected
// status code or a connection error/timeout.
type APIHealthEvaluator struct {
	Client *http.Client
}

func (e APIHealthEvaluator) Evaluate(ctx context.Context, config map[string]any) (Evaluation, error) {
	url := stringField(config, "url")
	expected := intField(config, "expectedStatus", http.StatusOK)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Evaluation{}, err
	}
	resp, err := e.client().Do(req)
	if err != nil {
		return Evaluation{Triggered: true, Detail: fmt.Sprintf("request failed: %v", err)}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		return Evaluation{Triggered: true, Detail: fmt.Sprintf("status %d, expected %d", resp.StatusCode, expected)}, nil
	}
	return Evaluation{}, nil
}

func (e APIHealthEvaluator) client() *http.Client {
	if e.Client != nil {
		return e.Client
	}
	return http.DefaultClient
}

// PageContentEvaluator fetches a URL and triggers on a contains-text
// match, a not-contains-text miss, or a regex match.
type PageContentEvaluator struct {
	Client *http.Client
}

func (e PageContentEvaluator) Evaluate(ctx context.Context, config map[string]any) (Evaluation, error) {
	url := stringField(config, "url")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Evaluation{}, err
	}
	resp, err := e.client().Do(req)
	if err != nil {
		return Evaluation{Triggered: true, Detail: fmt.Sprintf("request failed: %v", err)}, nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Evaluation{}, err
	}
	text := string(body)

	if contains := stringField(config, "containsText"); contains != "" && strings.Contains(text, contains) {
		return Evaluation{Triggered: true, Detail: "contains-text matched"}, nil
	}
	if notContains := stringField(config, "notContainsText"); notContains != "" && !strings.Contains(text, notContains) {
		return Evaluation{Triggered: true, Detail: "not-contains-text missing"}, nil
	}
	if pattern := stringField(config, "regex"); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Evaluation{}, err
		}
		if re.MatchString(text) {
			return Evaluation{Triggered: true, Detail: "regex matched"}, nil
		}
	}
	return Evaluation{}, nil
}

func (e PageContentEvaluator) client() *http.Client {
	if e.Client != nil {
		return e.Client
	}
	return http.DefaultClient
}

// MetricThresholdEvaluator fetches JSON, navigates a dot-separated
// jsonPath, and compares the value to a threshold using a configured
// operator (gt, gte, lt, lte, eq, neq).
type MetricThresholdEvaluator struct {
	Client *http.Client
}

func (e MetricThresholdEvaluator) Evaluate(ctx context.Context, config map[string]any) (Evaluation, error) {
	url := stringField(config, "url")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Evaluation{}, err
	}
	resp, err := e.client().Do(req)
	if err != nil {
		return Evaluation{Triggered: true, Detail: fmt.Sprintf("request failed: %v", err)}, nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Evaluation{}, err
	}

	path := stringField(config, "jsonPath")
	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return Evaluation{Triggered: true, Detail: fmt.Sprintf("jsonPath %q not found", path)}, nil
	}

	operator := stringField(config, "operator")
	threshold, _ := config["threshold"].(float64)
	triggered, err := compare(result.Float(), operator, threshold)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{Triggered: triggered, Detail: fmt.Sprintf("%v %s %v", result.Float(), operator, threshold)}, nil
}

func (e MetricThresholdEvaluator) client() *http.Client {
	if e.Client != nil {
		return e.Client
	}
	return http.DefaultClient
}

func compare(value float64, operator string, threshold float64) (bool, error) {
	switch operator {
	case "gt":
		return value > threshold, nil
	case "gte":
		return value >= threshold, nil
	case "lt":
		return value < threshold, nil
	case "lte":
		return value <= threshold, nil
	case "eq":
		return value == threshold, nil
	case "neq":
		return value != threshold, nil
	default:
		return false, fmt.Errorf("heartbeat: unknown comparison operator %q", operator)
	}
}

// ScriptRunner executes a per-workspace custom heartbeat script.
type ScriptRunner interface {
	RunScript(ctx context.Context, workspaceID, script string) (string, error)
}

// CustomEvaluator executes a per-workspace script that must return JSON
// shaped `{"triggered": bool, ...}`.
type CustomEvaluator struct {
	WorkspaceID string
	Scripts     ScriptRunner
}

func (e CustomEvaluator) Evaluate(ctx context.Context, config map[string]any) (Evaluation, error) {
	script := stringField(config, "script")
	out, err := e.Scripts.RunScript(ctx, e.WorkspaceID, script)
	if err != nil {
		return Evaluation{}, err
	}
	result := gjson.Get(out, "triggered")
	if !result.Exists() {
		return Evaluation{}, fmt.Errorf("heartbeat: custom script output missing \"triggered\" field")
	}
	detail := strconv.FormatBool(result.Bool())
	return Evaluation{Triggered: result.Bool(), Detail: detail}, nil
}
