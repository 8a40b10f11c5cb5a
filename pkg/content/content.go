// Package content reads a section's content tree from disk and classifies its
// files into index, guide, agent and decision artifacts. Reading is
// side-effect-free; classification happens exactly once here and the tagged
// role travels with the artifact from then on.
package content

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/rulesmith/pkg/logger"
	"github.com/jingkaihe/rulesmith/pkg/types/rules"
)

const (
	// IndexFileName is the fixed, well-known name of a section's index file
	IndexFileName = "index.md"
	// SectionConfigFileName is the optional per-section configuration file
	SectionConfigFileName = "section.yaml"

	guidesDirName    = "guides"
	agentsDirName    = "agents"
	decisionsDirName = "decisions"
)

// SectionContent is the classified artifact tree of one section
type SectionContent struct {
	Section   *rules.Section
	Index     *rules.Artifact
	Guides    []*rules.Artifact
	Agents    []*rules.Artifact
	Decisions []*rules.Artifact
	// Warnings records non-fatal content observations, such as an artifact
	// with no extractable title
	Warnings []string
}

// ReadSection reads and classifies the section rooted at root. A missing role
// sub-directory yields an empty list for that role; a missing root is a
// ConfigurationError; an unreadable file is an IOError.
func ReadSection(ctx context.Context, id, root string) (*SectionContent, error) {
	log := logger.G(ctx).WithField("section", id)

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, rules.NewConfigurationError(id, "section root %s does not exist", root)
	}

	section, err := loadSectionConfig(id, root)
	if err != nil {
		return nil, err
	}

	sc := &SectionContent{Section: section}

	indexPath := filepath.Join(root, IndexFileName)
	if _, err := os.Stat(indexPath); err == nil {
		index, warn, err := loadArtifact(indexPath, rules.RoleIndex)
		if err != nil {
			return nil, err
		}
		if warn != "" {
			sc.Warnings = append(sc.Warnings, warn)
		}
		sc.Index = index
	}

	roleDirs := []struct {
		dir  string
		role rules.Role
		dst  *[]*rules.Artifact
	}{
		{guidesDirName, rules.RoleGuide, &sc.Guides},
		{agentsDirName, rules.RoleAgent, &sc.Agents},
		{decisionsDirName, rules.RoleDecision, &sc.Decisions},
	}

	for _, rd := range roleDirs {
		artifacts, warnings, err := readRoleDir(filepath.Join(root, rd.dir), rd.role)
		if err != nil {
			return nil, err
		}
		*rd.dst = artifacts
		sc.Warnings = append(sc.Warnings, warnings...)
	}

	log.WithFields(map[string]interface{}{
		"guides":    len(sc.Guides),
		"agents":    len(sc.Agents),
		"decisions": len(sc.Decisions),
		"has_index": sc.Index != nil,
	}).Debug("Read section content tree")

	return sc, nil
}

// loadSectionConfig reads the optional section.yaml; absence is valid and
// yields a section with no attachment configuration.
func loadSectionConfig(id, root string) (*rules.Section, error) {
	section := &rules.Section{ID: id, Title: id}

	configPath := filepath.Join(root, SectionConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return section, nil
		}
		return nil, rules.NewIOError("read", configPath, err)
	}

	if err := yaml.Unmarshal(data, section); err != nil {
		return nil, rules.NewConfigurationError(id, "invalid %s: %v", SectionConfigFileName, err)
	}
	section.ID = id
	if section.Title == "" {
		section.Title = id
	}

	if err := validateGlobs(section); err != nil {
		return nil, err
	}

	return section, nil
}

// validateGlobs checks every configured glob pattern up front so a typo in
// section.yaml surfaces before any file is written
func validateGlobs(section *rules.Section) error {
	if section.Attachment == nil {
		return nil
	}

	check := func(subject, pattern string) error {
		if pattern == "" {
			return nil
		}
		if !doublestar.ValidatePattern(pattern) {
			return rules.NewConfigurationError(section.ID, "invalid glob pattern %q for %s", pattern, subject)
		}
		return nil
	}

	if err := check("default_glob", section.Attachment.DefaultGlob); err != nil {
		return err
	}
	for guideID, pattern := range section.Attachment.GuideGlobs {
		if err := check(fmt.Sprintf("guide %s", guideID), pattern); err != nil {
			return err
		}
	}
	return nil
}

// readRoleDir reads all markdown files of one role sub-directory in
// lexicographic order. A missing directory is not an error.
func readRoleDir(dir string, role rules.Role) ([]*rules.Artifact, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, rules.NewIOError("read", dir, err)
	}

	var artifacts []*rules.Artifact
	var warnings []string
	// os.ReadDir returns entries sorted by filename, which gives the
	// deterministic lexicographic artifact order
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		artifact, warn, err := loadArtifact(filepath.Join(dir, entry.Name()), role)
		if err != nil {
			return nil, nil, err
		}
		if warn != "" {
			warnings = append(warnings, warn)
		}
		artifacts = append(artifacts, artifact)
	}

	return artifacts, warnings, nil
}

// loadArtifact reads one content file and extracts its title. The body is
// treated as opaque text apart from optional YAML frontmatter and the first
// markdown heading.
func loadArtifact(path string, role rules.Role) (*rules.Artifact, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", rules.NewIOError("read", path, err)
	}

	id := strings.TrimSuffix(filepath.Base(path), ".md")
	if role == rules.RoleIndex {
		id = "index"
	}

	title, err := frontmatterTitle(data)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to parse frontmatter in '%s'", path)
	}

	body := extractBodyContent(string(data))
	if title == "" {
		title = firstHeading([]byte(body))
	}

	var warning string
	if title == "" {
		warning = fmt.Sprintf("%s %s has no extractable title, using identifier %q", role, path, id)
	}

	return &rules.Artifact{
		Role:  role,
		ID:    id,
		Title: title,
		Body:  body,
	}, warning, nil
}

// frontmatterTitle returns the title declared in YAML frontmatter, if any
func frontmatterTitle(source []byte) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(source, &buf, parser.WithContext(pctx)); err != nil {
		return "", errors.Wrap(err, "failed to convert markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return "", nil
	}
	title, _ := metaData["title"].(string)
	return title, nil
}

// firstHeading returns the text of the first markdown heading in source
func firstHeading(source []byte) string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.Heading); ok {
			title = string(n.Text(source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(title)
}

// extractBodyContent removes YAML frontmatter and returns the body
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}
