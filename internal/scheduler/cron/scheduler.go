package cron

import (
	"context"
	"time"

	"github.com/ojashyadav101/lucy-sub000/internal/workspace"
)

// SystemJob is a cron document registered at startup regardless of any
// workspace's own CRUD surface (spec §4.8.1: "System jobs (message sync,
// pool refresh, memory consolidation, heartbeat loop) are always
// registered"). It carries its own workspace scope since system jobs run
// per workspace just like user crons.
type SystemJob struct {
	WorkspaceID string
	Doc         workspace.CronDoc
}

// Scheduler lists every workspace's cron documents on each tick, adds the
// fixed system jobs, and fires due jobs as their cron expressions come due.
type Scheduler struct {
	deps        Deps
	tick        time.Duration
	systemJobs  []SystemJob
	clock       func() time.Time
	nextFireFor map[string]time.Time // keyed by workspaceID+"/"+slug
}

const defaultTick = 30 * time.Second

// New constructs a Scheduler. systemJobs are evaluated unconditionally in
// addition to the user cron documents fireDue lists on each tick.
func New(deps Deps, systemJobs []SystemJob) *Scheduler {
	return &Scheduler{
		deps:        deps,
		tick:        defaultTick,
		systemJobs:  systemJobs,
		clock:       time.Now,
		nextFireFor: make(map[string]time.Time),
	}
}

// Run ticks every s.tick (or, in tests, whatever clock/tick the caller has
// configured) until ctx is cancelled, firing any job whose schedule has
// come due. It never returns an error; per-job failures are handled
// inside RunJob.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.fireDue(ctx, s.clock())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.fireDue(ctx, now)
		}
	}
}

// fireDue evaluates every discovered workspace's crons plus the fixed
// system jobs, firing (concurrently, per spec §5: "Scheduler fires jobs
// as they come due; simultaneous fires run concurrently") whichever ones
// are due as of now.
func (s *Scheduler) fireDue(ctx context.Context, now time.Time) {
	workspaces, err := s.deps.Store.ListWorkspaces(ctx)
	if err != nil {
		if s.deps.Logger != nil {
			s.deps.Logger.Warn(ctx, "cron: failed to list workspaces", "error", err)
		}
		return
	}

	for _, ws := range workspaces {
		docs, err := s.deps.Store.ListCrons(ctx, ws)
		if err != nil {
			continue
		}
		for _, doc := range docs {
			s.maybeFire(ctx, ws, doc, now)
		}
	}

	for _, job := range s.systemJobs {
		s.maybeFire(ctx, job.WorkspaceID, job.Doc, now)
	}
}

func (s *Scheduler) maybeFire(ctx context.Context, workspaceID string, doc workspace.CronDoc, now time.Time) {
	key := workspaceID + "/" + doc.Slug
	due, ok := s.nextFireFor[key]
	if !ok {
		next, err := nextFire(doc.CronExpr, now)
		if err != nil {
			return
		}
		s.nextFireFor[key] = next
		return
	}
	if now.Before(due) {
		return
	}

	next, err := nextFire(doc.CronExpr, now)
	if err == nil {
		s.nextFireFor[key] = next
	}

	go func() {
		if err := RunJob(ctx, s.deps, workspaceID, doc, now); err != nil && s.deps.Logger != nil {
			s.deps.Logger.Warn(ctx, "cron: job run failed", "slug", doc.Slug, "workspace", workspaceID, "error", err)
		}
	}()
}
