package workspace

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/ojashyadav101/lucy-sub000/internal/telemetry"
)

// ChangeKind identifies which workspace-scoped document category changed.
type ChangeKind string

const (
	// ChangeSkill fires when a skill document under skills/ changes.
	ChangeSkill ChangeKind = "skill"
	// ChangeCron fires when a cron document under crons/ changes.
	ChangeCron ChangeKind = "cron"
	// ChangeHeartbeat fires when a heartbeat document under heartbeats/ changes.
	ChangeHeartbeat ChangeKind = "heartbeat"
)

// Change describes one externally observed filesystem mutation.
type Change struct {
	WorkspaceID string
	Kind        ChangeKind
	Path        string
}

// Watcher observes a workspace root for out-of-band edits (an operator
// editing a skill file by hand, or a cron document dropped in by another
// process) and emits Change notifications so in-memory caches (the prompt
// assembler's skill index, the scheduler's registered triggers) can
// refresh without a restart.
type Watcher struct {
	root string
	fsw  *fsnotify.Watcher
	log  telemetry.Logger
}

// NewWatcher constructs a Watcher rooted at the same directory as an
// FSStore. It watches only that filesystem tree; a Mongo-backed Store has
// no watcher (Mongo change streams would be the equivalent mechanism there,
// but its documents are mutated exclusively through Store, never
// hand-edited).
func NewWatcher(root string, log telemetry.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{root: root, fsw: fsw, log: log}, nil
}

// Watch adds workspaceID's skills/crons/heartbeats directories to the
// watch set. Safe to call even if the directories do not exist yet.
func (w *Watcher) Watch(workspaceID string) error {
	dir := filepath.Join(w.root, sanitizeID(workspaceID))
	for _, sub := range []string{skillsDir, cronsDir, heartbeatsDir} {
		_ = w.fsw.Add(filepath.Join(dir, sub))
	}
	return nil
}

// Run blocks, emitting Changes on out until ctx is cancelled or Close is
// called.
func (w *Watcher) Run(ctx context.Context, out chan<- Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			change, ok := classify(w.root, event.Name)
			if !ok {
				continue
			}
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.Warn(ctx, "workspace: watcher error", "error", err.Error())
			}
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }

func classify(root, path string) (Change, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Change{}, false
	}
	parts := splitPath(rel)
	if len(parts) < 2 {
		return Change{}, false
	}
	workspaceID := parts[0]
	switch parts[1] {
	case skillsDir:
		return Change{WorkspaceID: workspaceID, Kind: ChangeSkill, Path: path}, true
	case cronsDir:
		return Change{WorkspaceID: workspaceID, Kind: ChangeCron, Path: path}, true
	case heartbeatsDir:
		return Change{WorkspaceID: workspaceID, Kind: ChangeHeartbeat, Path: path}, true
	default:
		return Change{}, false
	}
}

func splitPath(rel string) []string {
	return strings.Split(filepath.ToSlash(rel), "/")
}
