package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	cronsDir        = "crons"
	cronTaskFile    = "task"
	cronLearnings   = "LEARNINGS"
	heartbeatsDir   = "heartbeats"
	heartbeatFile   = "heartbeat"
)

func (s *FSStore) cronDir(workspaceID, slug string) string {
	return filepath.Join(s.workspaceDir(workspaceID), cronsDir, sanitizeID(slug))
}

func (s *FSStore) cronTaskPath(workspaceID, slug string) string {
	return filepath.Join(s.cronDir(workspaceID, slug), cronTaskFile)
}

func (s *FSStore) cronLearningsPath(workspaceID, slug string) string {
	return filepath.Join(s.cronDir(workspaceID, slug), cronLearnings)
}

// PutCron implements Store.
func (s *FSStore) PutCron(ctx context.Context, workspaceID string, doc CronDoc) error {
	release, err := s.Lock(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer release()

	doc.Path = filepath.Join(cronsDir, sanitizeID(doc.Slug), cronTaskFile)
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.cronTaskPath(workspaceID, doc.Slug), raw)
}

// GetCron implements Store.
func (s *FSStore) GetCron(_ context.Context, workspaceID, slug string) (CronDoc, error) {
	raw, err := os.ReadFile(s.cronTaskPath(workspaceID, slug))
	if err != nil {
		return CronDoc{}, err
	}
	var doc CronDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return CronDoc{}, fmt.Errorf("workspace: parse cron %q: %w", slug, err)
	}
	return doc, nil
}

// ListCrons implements Store.
func (s *FSStore) ListCrons(ctx context.Context, workspaceID string) ([]CronDoc, error) {
	dir := filepath.Join(s.workspaceDir(workspaceID), cronsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var slugs []string
	for _, e := range entries {
		if e.IsDir() {
			slugs = append(slugs, e.Name())
		}
	}
	sort.Strings(slugs)

	docs := make([]CronDoc, 0, len(slugs))
	for _, slug := range slugs {
		doc, err := s.GetCron(ctx, workspaceID, slug)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// DeleteCron implements Store.
func (s *FSStore) DeleteCron(ctx context.Context, workspaceID, slug string) error {
	release, err := s.Lock(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer release()
	return os.RemoveAll(s.cronDir(workspaceID, slug))
}

// AppendLearning implements Store.
func (s *FSStore) AppendLearning(ctx context.Context, workspaceID, slug, note string) error {
	release, err := s.Lock(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer release()

	path := s.cronLearningsPath(workspaceID, slug)
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(note)
	b.WriteByte('\n')
	return writeFileAtomic(path, []byte(b.String()))
}

// LoadLearnings implements Store.
func (s *FSStore) LoadLearnings(_ context.Context, workspaceID, slug string) (string, error) {
	raw, err := os.ReadFile(s.cronLearningsPath(workspaceID, slug))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *FSStore) heartbeatPath(workspaceID, slug string) string {
	return filepath.Join(s.workspaceDir(workspaceID), heartbeatsDir, sanitizeID(slug), heartbeatFile)
}

// PutHeartbeat implements Store.
func (s *FSStore) PutHeartbeat(ctx context.Context, workspaceID string, doc HeartbeatDoc) error {
	release, err := s.Lock(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer release()

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.heartbeatPath(workspaceID, doc.Slug), raw)
}

// ListHeartbeats implements Store.
func (s *FSStore) ListHeartbeats(_ context.Context, workspaceID string) ([]HeartbeatDoc, error) {
	dir := filepath.Join(s.workspaceDir(workspaceID), heartbeatsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var slugs []string
	for _, e := range entries {
		if e.IsDir() {
			slugs = append(slugs, e.Name())
		}
	}
	sort.Strings(slugs)

	docs := make([]HeartbeatDoc, 0, len(slugs))
	for _, slug := range slugs {
		raw, err := os.ReadFile(filepath.Join(dir, slug, heartbeatFile))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		var doc HeartbeatDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("workspace: parse heartbeat %q: %w", slug, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// DeleteHeartbeat implements Store.
func (s *FSStore) DeleteHeartbeat(ctx context.Context, workspaceID, slug string) error {
	release, err := s.Lock(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer release()
	return os.RemoveAll(filepath.Join(s.workspaceDir(workspaceID), heartbeatsDir, sanitizeID(slug)))
}
