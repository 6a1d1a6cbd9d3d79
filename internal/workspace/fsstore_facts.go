package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// sessionFactsFile matches spec's stable on-disk layout: data/session_memory
// (a JSON array, capped at MaxSessionFacts entries).
const sessionFactsFile = "data/session_memory"

func (s *FSStore) sessionFactsPath(workspaceID string) string {
	return filepath.Join(s.workspaceDir(workspaceID), sessionFactsFile)
}

func (s *FSStore) loadSessionFacts(workspaceID string) ([]SessionFact, error) {
	raw, err := os.ReadFile(s.sessionFactsPath(workspaceID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var facts []SessionFact
	if err := json.Unmarshal(raw, &facts); err != nil {
		return nil, fmt.Errorf("workspace: parse session facts: %w", err)
	}
	return facts, nil
}

// AppendSessionFact implements Store. It holds the workspace lock for the
// read-modify-write cycle so concurrent appends never race on the ring
// eviction.
func (s *FSStore) AppendSessionFact(ctx context.Context, workspaceID string, fact SessionFact) error {
	release, err := s.Lock(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer release()

	facts, err := s.loadSessionFacts(workspaceID)
	if err != nil {
		return err
	}
	facts = append(facts, fact)
	if len(facts) > MaxSessionFacts {
		facts = facts[len(facts)-MaxSessionFacts:]
	}
	raw, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.sessionFactsPath(workspaceID), raw)
}

// ListSessionFacts implements Store.
func (s *FSStore) ListSessionFacts(_ context.Context, workspaceID string) ([]SessionFact, error) {
	return s.loadSessionFacts(workspaceID)
}
