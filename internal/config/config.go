// Package config loads Lucy's flat runtime configuration from
// environment variables with sensible defaults, the same envOr pattern
// the teacher's registry command uses (registry/cmd/registry/main.go),
// generalized into a reusable struct instead of a handful of local vars
// in func main.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every tunable referenced across the message pipeline,
// rate limiter, request queue, agent loop, and scheduling fabric (spec
// §2 "Configuration"). There is deliberately no nested structure: a flat
// set of fields loaded once at process start and passed down by value or
// pointer, matching the teacher's habit of keeping runtime configuration
// as plain exported fields rather than a layered options tree.
type Config struct {
	// Chat/LLM credentials (required; Load returns an error if absent).
	SlackBotToken string
	AnthropicKey  string
	OpenAIKey     string

	// ModelDefault/ModelFast/ModelDeep name provider models for the three
	// tiers. cmd/lucy passes only ModelFast on (to the supervisor);
	// ModelDefault and ModelDeep are loaded but not read elsewhere.
	ModelDefault string
	ModelFast    string
	ModelDeep    string

	// AbsoluteMaxSeconds is loaded but not passed to the agent loop, which
	// takes its wall-clock cap from agentloop.DefaultCaps().
	AbsoluteMaxSeconds int

	// QueueWorkers is the fixed worker pool size package queue starts.
	QueueWorkers int
	// QueuePerWorkspaceMaxDepth/QueueGlobalMaxDepth cap pending requests.
	QueuePerWorkspaceMaxDepth int
	QueueGlobalMaxDepth       int

	// RateLimitModelRPS/RateLimitAPIRPS are loaded but not read by package
	// ratelimit, whose bucket rates come from its fixed per-family and
	// per-API tables.
	RateLimitModelRPS float64
	RateLimitAPIRPS   float64

	// WorkspaceRoot is the filesystem store's base directory (spec §6's
	// "<root>/<workspaceId>/" layout).
	WorkspaceRoot string
	// MongoURI selects the Mongo-backed workspace.Store when set; the
	// filesystem store is used otherwise.
	MongoURI string
	// RedisURL is loaded but not used: cmd/lucy never calls
	// ratelimit.Limiter.WithCluster.
	RedisURL string

	// GRPCAddr is the gateway package's listen address for the remote
	// integration broker.
	GRPCAddr string

	// CronTick/HeartbeatTick are loaded but not passed to the scheduler
	// fabric; the cron scheduler and heartbeat loop both tick every 30s.
	CronTick      time.Duration
	HeartbeatTick time.Duration
}

// defaults mirrors the values spec §2 calls out by name.
func defaults() Config {
	return Config{
		ModelDefault:              "claude-sonnet-4-5",
		ModelFast:                 "claude-haiku-4-5",
		ModelDeep:                 "claude-opus-4-5",
		AbsoluteMaxSeconds:        14_400,
		QueueWorkers:              10,
		QueuePerWorkspaceMaxDepth: 50,
		QueueGlobalMaxDepth:       200,
		RateLimitModelRPS:         1,
		RateLimitAPIRPS:           5,
		WorkspaceRoot:             "./data/workspaces",
		GRPCAddr:                  ":9091",
	}
}

// Load reads Config fields from the environment, falling back to
// defaults() for anything unset, then validates the chat/LLM
// credentials required fields (spec §2: "required-field validation only
// for chat/LLM credentials").
func Load() (Config, error) {
	cfg := defaults()

	cfg.SlackBotToken = os.Getenv("LUCY_SLACK_BOT_TOKEN")
	cfg.AnthropicKey = os.Getenv("LUCY_ANTHROPIC_API_KEY")
	cfg.OpenAIKey = os.Getenv("LUCY_OPENAI_API_KEY")

	cfg.ModelDefault = envOr("LUCY_MODEL_DEFAULT", cfg.ModelDefault)
	cfg.ModelFast = envOr("LUCY_MODEL_FAST", cfg.ModelFast)
	cfg.ModelDeep = envOr("LUCY_MODEL_DEEP", cfg.ModelDeep)
	cfg.AbsoluteMaxSeconds = envIntOr("LUCY_ABSOLUTE_MAX_SECONDS", cfg.AbsoluteMaxSeconds)

	cfg.QueueWorkers = envIntOr("LUCY_QUEUE_WORKERS", cfg.QueueWorkers)
	cfg.QueuePerWorkspaceMaxDepth = envIntOr("LUCY_QUEUE_PER_WORKSPACE_MAX_DEPTH", cfg.QueuePerWorkspaceMaxDepth)
	cfg.QueueGlobalMaxDepth = envIntOr("LUCY_QUEUE_GLOBAL_MAX_DEPTH", cfg.QueueGlobalMaxDepth)

	cfg.RateLimitModelRPS = envFloatOr("LUCY_RATE_LIMIT_MODEL_RPS", cfg.RateLimitModelRPS)
	cfg.RateLimitAPIRPS = envFloatOr("LUCY_RATE_LIMIT_API_RPS", cfg.RateLimitAPIRPS)

	cfg.WorkspaceRoot = envOr("LUCY_WORKSPACE_ROOT", cfg.WorkspaceRoot)
	cfg.MongoURI = os.Getenv("LUCY_MONGO_URI")
	cfg.RedisURL = os.Getenv("LUCY_REDIS_URL")
	cfg.GRPCAddr = envOr("LUCY_GRPC_ADDR", cfg.GRPCAddr)

	cfg.CronTick = envDurationOr("LUCY_CRON_TICK", cfg.CronTick)
	cfg.HeartbeatTick = envDurationOr("LUCY_HEARTBEAT_TICK", cfg.HeartbeatTick)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SlackBotToken == "" {
		return fmt.Errorf("config: LUCY_SLACK_BOT_TOKEN is required")
	}
	if c.AnthropicKey == "" && c.OpenAIKey == "" {
		return fmt.Errorf("config: at least one of LUCY_ANTHROPIC_API_KEY or LUCY_OPENAI_API_KEY is required")
	}
	return nil
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOr(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envFloatOr(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envDurationOr(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
