package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const skillsDir = "skills"

type skillFrontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Triggers    []string `yaml:"triggers"`
}

const frontmatterDelim = "---"

// renderSkill serializes a Skill as frontmatter + body, the same shape
// PutSkill accepts back from disk via parseSkill.
func renderSkill(skill Skill) []byte {
	fm := skillFrontmatter{Name: skill.Name, Description: skill.Description, Triggers: skill.Triggers}
	raw, _ := yaml.Marshal(fm)
	var b strings.Builder
	b.WriteString(frontmatterDelim)
	b.WriteByte('\n')
	b.Write(raw)
	b.WriteString(frontmatterDelim)
	b.WriteByte('\n')
	b.WriteString(skill.Body)
	return []byte(b.String())
}

// parseSkill splits a document into YAML frontmatter and free-form body.
// Documents without a leading frontmatter delimiter are treated as a
// body-only skill with no triggers (never matched by DetectRelevantSkills).
func parseSkill(filename string, raw []byte) (Skill, error) {
	text := string(raw)
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if !strings.HasPrefix(text, frontmatterDelim) {
		return Skill{Name: name, Body: text}, nil
	}
	rest := strings.TrimPrefix(text, frontmatterDelim+"\n")
	idx := strings.Index(rest, "\n"+frontmatterDelim)
	if idx < 0 {
		return Skill{Name: name, Body: text}, nil
	}
	fmBlock := rest[:idx]
	body := strings.TrimPrefix(rest[idx+len(frontmatterDelim)+1:], "\n")

	var fm skillFrontmatter
	if err := yaml.Unmarshal([]byte(fmBlock), &fm); err != nil {
		return Skill{}, fmt.Errorf("workspace: parse skill frontmatter %q: %w", filename, err)
	}
	if fm.Name == "" {
		fm.Name = name
	}
	return Skill{Name: fm.Name, Description: fm.Description, Triggers: fm.Triggers, Body: body}, nil
}

func (s *FSStore) skillPath(workspaceID, name string) string {
	return filepath.Join(s.workspaceDir(workspaceID), skillsDir, sanitizeID(name)+".md")
}

// PutSkill implements Store.
func (s *FSStore) PutSkill(ctx context.Context, workspaceID string, skill Skill) error {
	release, err := s.Lock(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer release()
	return writeFileAtomic(s.skillPath(workspaceID, skill.Name), renderSkill(skill))
}

// ListSkills implements Store.
func (s *FSStore) ListSkills(_ context.Context, workspaceID string) ([]Skill, error) {
	dir := filepath.Join(s.workspaceDir(workspaceID), skillsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	skills := make([]Skill, 0, len(names))
	for _, n := range names {
		raw, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		skill, err := parseSkill(n, raw)
		if err != nil {
			return nil, err
		}
		skills = append(skills, skill)
	}
	return skills, nil
}
