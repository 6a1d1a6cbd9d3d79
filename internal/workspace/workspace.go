// Package workspace implements the multi-tenant substrate every other Lucy
// component reads and writes through: session facts, skills, cron/heartbeat
// documents, and workspace-scoped locks. Two backends satisfy the same
// Store interface — a local atomic-write filesystem tree (the default) and
// a MongoDB-backed store — selected by configuration.
package workspace

import (
	"context"
	"time"
)

// SessionFact is a short, timestamped note attached to a workspace's rolling
// memory window (spec §3: "SessionFact").
type SessionFact struct {
	Text      string
	Category  string // "company" | "team" | "session"
	Source    string
	Timestamp time.Time
}

// MaxSessionFacts bounds the per-workspace rolling window (spec §3
// invariant: "SessionFact ring is FIFO-bounded... inserting the 51st evicts
// the oldest").
const MaxSessionFacts = 50

// Skill is a plaintext document with frontmatter describing when it applies.
type Skill struct {
	Name        string
	Description string
	Triggers    []string
	Body        string
}

// CronDoc is the persisted representation of a CronJob (spec §4.8.1).
type CronDoc struct {
	Slug            string
	Path            string
	CronExpr        string
	Title           string
	Description     string
	Type            string // "agent" | "script"
	DependsOn       string
	ConditionScript string
	MaxRuns         int
	RunCount        int
	Timezone        string
	Retries         int
	NotifyOnFailure bool
	DeliveryChannel string
	DeliveryMode    string // "channel" | "directMessage"
	RequestingUser  string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// LastSuccessDate is the date (YYYY-MM-DD, job timezone) this cron last
	// completed successfully, used to evaluate DependsOn.
	LastSuccessDate string
}

// HeartbeatDoc is the persisted representation of a Heartbeat (spec §4.8.2).
type HeartbeatDoc struct {
	Slug                string
	Kind                string // "api-health" | "page-content" | "metric-threshold" | "custom"
	Config              map[string]any
	IntervalSeconds     int
	CooldownSeconds     int
	ConsecutiveFailures int
	LastChecked         time.Time
	LastAlerted         time.Time
	LastResult          string
	Status              string // "active" | "error"
	AlertChannel        string
}

// Store is the full workspace persistence contract. Every method is scoped
// to a single workspaceID; no method accepts cross-workspace identifiers, by
// design — this is the enforcement point for spec §3's tenant-isolation
// invariant: the Store interface itself offers no way to address another
// workspace's data from a given call.
type Store interface {
	// EnsureWorkspace creates the workspace's root scope lazily if absent.
	EnsureWorkspace(ctx context.Context, workspaceID string) error
	// ListWorkspaces enumerates every known workspace, used by the cron
	// scheduler and heartbeat loop to find documents on each tick.
	ListWorkspaces(ctx context.Context) ([]string, error)

	// AppendSessionFact inserts a fact into the workspace's FIFO ring,
	// evicting the oldest entry once the 51st is inserted. Implementations
	// must hold the workspace's logical write lock for the duration.
	AppendSessionFact(ctx context.Context, workspaceID string, fact SessionFact) error
	// ListSessionFacts returns all facts currently in the ring, oldest first.
	ListSessionFacts(ctx context.Context, workspaceID string) ([]SessionFact, error)

	// PutSkill writes (creating or overwriting) a named skill document.
	PutSkill(ctx context.Context, workspaceID string, skill Skill) error
	// ListSkills returns every skill document in the workspace.
	ListSkills(ctx context.Context, workspaceID string) ([]Skill, error)

	// PutCron creates or updates a cron document.
	PutCron(ctx context.Context, workspaceID string, doc CronDoc) error
	// GetCron loads a single cron document by slug.
	GetCron(ctx context.Context, workspaceID, slug string) (CronDoc, error)
	// ListCrons returns every cron document in the workspace.
	ListCrons(ctx context.Context, workspaceID string) ([]CronDoc, error)
	// DeleteCron removes a cron document (and its LEARNINGS sibling).
	DeleteCron(ctx context.Context, workspaceID, slug string) error
	// AppendLearning appends an observation line to a cron's LEARNINGS doc.
	AppendLearning(ctx context.Context, workspaceID, slug, note string) error
	// LoadLearnings returns the accumulated LEARNINGS text for a cron.
	LoadLearnings(ctx context.Context, workspaceID, slug string) (string, error)

	// PutHeartbeat creates or updates a heartbeat document.
	PutHeartbeat(ctx context.Context, workspaceID string, doc HeartbeatDoc) error
	// ListHeartbeats returns every heartbeat document in the workspace.
	ListHeartbeats(ctx context.Context, workspaceID string) ([]HeartbeatDoc, error)
	// DeleteHeartbeat removes a heartbeat document.
	DeleteHeartbeat(ctx context.Context, workspaceID, slug string) error

	// Lock acquires the workspace's logical write lock, returning a release
	// function. AppendSessionFact (both stores) and FSStore's other mutating
	// methods acquire it themselves; the lock is not reentrant, so a caller
	// holding it must not call them.
	Lock(ctx context.Context, workspaceID string) (release func(), err error)
}
