// Package ratelimit enforces per-model and per-API request ceilings using
// token buckets held per process. With a Pulse replicated map attached, each
// acquire timeout is also counted per key in that map; the buckets
// themselves are not shared across processes.
package ratelimit

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"goa.design/pulse/rmap"

	"github.com/ojashyadav101/lucy-sub000/internal/telemetry"
)

// BucketConfig describes the steady-state rate and burst capacity of a
// single token bucket, expressed in tokens (requests) per second.
type BucketConfig struct {
	RatePerSecond float64
	Burst         int
}

// modelBuckets is the closed, prefix-matched set of model-family buckets
// from spec §4.2. ModelBucketFor takes the first entry whose prefix matches,
// in the order declared here.
var modelBuckets = []struct {
	prefix string
	cfg    BucketConfig
}{
	{"google", BucketConfig{RatePerSecond: 5.0, Burst: 15}},
	{"anthropic", BucketConfig{RatePerSecond: 2.0, Burst: 8}},
	{"openai", BucketConfig{RatePerSecond: 3.0, Burst: 10}},
	{"minimax", BucketConfig{RatePerSecond: 3.0, Burst: 10}},
}

var defaultModelBucket = BucketConfig{RatePerSecond: 2.0, Burst: 8}

// apiBuckets is the closed set of external-API buckets from spec §4.2.
var apiBuckets = map[string]BucketConfig{
	"google-calendar": {RatePerSecond: 2.0, Burst: 5},
	"google-sheets":   {RatePerSecond: 2.0, Burst: 5},
	"google-drive":    {RatePerSecond: 2.0, Burst: 5},
	"gmail":           {RatePerSecond: 2.0, Burst: 5},
	"github":          {RatePerSecond: 5.0, Burst: 15},
	"linear":          {RatePerSecond: 3.0, Burst: 10},
	"slack":           {RatePerSecond: 3.0, Burst: 10},
}

// toolAPIPrefixes is the static tool-name -> API-bucket classification map
// from spec §4.2. Tools not matched here carry no API bucket and are
// governed by the model bucket alone.
var toolAPIPrefixes = []struct {
	prefix string
	api    string
}{
	{"lucy_calendar_", "google-calendar"},
	{"lucy_sheets_", "google-sheets"},
	{"lucy_drive_", "google-drive"},
	{"lucy_gmail_", "gmail"},
	{"lucy_github_", "github"},
	{"lucy_linear_", "linear"},
	{"lucy_slack_", "slack"},
}

// ClassifyToolAPI returns the API bucket key a tool call should be charged
// against, or "" if the tool has no associated external API.
func ClassifyToolAPI(toolName string) string {
	for _, p := range toolAPIPrefixes {
		if strings.HasPrefix(toolName, p.prefix) {
			return p.api
		}
	}
	return ""
}

// ModelBucketFor resolves the bucket key and configuration for a model
// family name from the first modelBuckets prefix that matches, in
// declaration order, falling back to the default bucket.
func ModelBucketFor(modelFamily string) (string, BucketConfig) {
	for _, m := range modelBuckets {
		if strings.HasPrefix(modelFamily, m.prefix) {
			return m.prefix, m.cfg
		}
	}
	return "default", defaultModelBucket
}

// bucket is a single serialized token bucket. It wraps x/time/rate.Limiter,
// which already implements the refill-then-deduct algorithm from spec §4.2
// (refill min(capacity, tokens + elapsed*rate); deduct if sufficient).
type bucket struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

func newBucket(cfg BucketConfig) *bucket {
	return &bucket{limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst)}
}

// acquire blocks until tokens are available or timeout elapses, returning
// whether the reservation was made in time.
func (b *bucket) acquire(ctx context.Context, tokens int, timeout time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reservation := b.limiter.ReserveN(time.Now(), tokens)
	if !reservation.OK() {
		return false
	}
	delay := reservation.Delay()
	if delay <= 0 {
		return true
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-waitCtx.Done():
		reservation.Cancel()
		return false
	}
}

// Limiter enforces the full per-model and per-API token-bucket contract. A
// single Limiter instance is process-wide; construct once in cmd/lucy and
// share it across the agent loop and gateway.
type Limiter struct {
	mu           sync.Mutex
	modelBuckets map[string]*bucket
	apiBuckets   map[string]*bucket

	cluster *clusterCoordinator
	log     telemetry.Logger
	metrics telemetry.Metrics
}

// New constructs a Limiter with all API buckets pre-populated and model
// buckets created lazily on first use (the model-family set is open-ended
// via prefix matching, so buckets are created on demand and cached).
func New(log telemetry.Logger, metrics telemetry.Metrics) *Limiter {
	l := &Limiter{
		modelBuckets: make(map[string]*bucket),
		apiBuckets:   make(map[string]*bucket),
		log:          log,
		metrics:      metrics,
	}
	for name, cfg := range apiBuckets {
		l.apiBuckets[name] = newBucket(cfg)
	}
	return l
}

// WithCluster makes the Limiter count acquire timeouts per key in a Pulse
// replicated map; token budgets stay per process. Pass the process-wide
// rmap.Map and a namespace prefix for bucket keys; nil m disables
// clustering (the default).
func (l *Limiter) WithCluster(ctx context.Context, m *rmap.Map, namespace string) *Limiter {
	if m != nil {
		l.cluster = newClusterCoordinator(ctx, m, namespace)
	}
	return l
}

func (l *Limiter) modelBucket(family string) *bucket {
	key, cfg := ModelBucketFor(family)

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.modelBuckets[key]
	if !ok {
		b = newBucket(cfg)
		l.modelBuckets[key] = b
	}
	return b
}

// AcquireModel blocks until a model-bucket token is available for the given
// model family, or timeout elapses.
func (l *Limiter) AcquireModel(ctx context.Context, modelFamily string, tokens int, timeout time.Duration) bool {
	if tokens <= 0 {
		tokens = 1
	}
	ok := l.modelBucket(modelFamily).acquire(ctx, tokens, timeout)
	l.observe("model", modelFamily, ok)
	if !ok && l.cluster != nil {
		l.cluster.signalPressure(ctx, "model:"+modelFamily)
	}
	return ok
}

// AcquireAPI blocks until an API-bucket token is available for the given
// tool call, or timeout elapses. Tools with no API classification always
// acquire immediately (true) since they carry no external-API ceiling.
//
// A call blocked by the API bucket does not consume the model bucket: the
// caller is expected to call AcquireAPI before AcquireModel, and to skip
// AcquireModel entirely if AcquireAPI returns false.
func (l *Limiter) AcquireAPI(ctx context.Context, toolName string, tokens int, timeout time.Duration) bool {
	api := ClassifyToolAPI(toolName)
	if api == "" {
		return true
	}
	if tokens <= 0 {
		tokens = 1
	}
	b, ok := l.apiBuckets[api]
	if !ok {
		return true
	}
	acquired := b.acquire(ctx, tokens, timeout)
	l.observe("api", api, acquired)
	if !acquired && l.cluster != nil {
		l.cluster.signalPressure(ctx, "api:"+api)
	}
	return acquired
}

// Acquire implements the generic contract from spec §4.2:
// Acquire(key, tokens, timeout) -> acquired. key is either a model family
// name or a classified API name; the caller decides which namespace a key
// belongs to via AcquireModel/AcquireAPI. Acquire itself is kept for
// call sites that already know which bucket a key addresses and don't
// need the model/API split.
func (l *Limiter) Acquire(ctx context.Context, key string, tokens int, timeout time.Duration) bool {
	if tokens <= 0 {
		tokens = 1
	}
	if b, ok := l.apiBuckets[key]; ok {
		ok := b.acquire(ctx, tokens, timeout)
		l.observe("api", key, ok)
		return ok
	}
	ok := l.modelBucket(key).acquire(ctx, tokens, timeout)
	l.observe("model", key, ok)
	return ok
}

func (l *Limiter) observe(kind, key string, acquired bool) {
	if l.metrics == nil {
		return
	}
	status := "acquired"
	if !acquired {
		status = "timeout"
	}
	l.metrics.IncCounter("ratelimit_acquire_total", 1, "kind", kind, "key", key, "status", status)
}

// clusterCoordinator records budget exhaustion signals in a Pulse
// replicated map; the Limiter never reads them back, so no process changes
// its own acquisition because of them. It mirrors the
// AIMD coordination shape the teacher implements for its adaptive TPM
// budget, narrowed to a simple shared exhaustion counter: Lucy's buckets
// are fixed-rate rather than adaptive, so there is no budget value to
// reconcile, only a "someone is seeing pressure on this key" signal other
// workers can use to log/alert.
type clusterCoordinator struct {
	m         *rmap.Map
	namespace string
}

func newClusterCoordinator(ctx context.Context, m *rmap.Map, namespace string) *clusterCoordinator {
	return &clusterCoordinator{m: m, namespace: namespace}
}

// signalPressure records that this process saw a timeout on key, so other
// processes sharing the map can surface a combined pressure metric.
func (c *clusterCoordinator) signalPressure(ctx context.Context, key string) {
	if c == nil {
		return
	}
	field := c.namespace + ":" + key
	cur, _ := c.m.Get(field)
	n, _ := strconv.Atoi(cur)
	_, _ = c.m.TestAndSet(ctx, field, cur, strconv.Itoa(n+1))
}
