package emitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/rulesmith/pkg/content"
	"github.com/jingkaihe/rulesmith/pkg/types/rules"
)

// testSection builds the reference section of the end-to-end scenarios: one
// index referencing two guides, a config overriding one guide's glob, three
// decisions and no agents.
func testSection(defaultGlob string) *content.SectionContent {
	section := &rules.Section{
		ID:    "tanstack-query",
		Title: "TanStack Query",
		Attachment: &rules.AttachmentConfig{
			DefaultGlob: defaultGlob,
			GuideGlobs:  map[string]string{"01-query-keys": "src/queries/**"},
		},
	}

	return &content.SectionContent{
		Section: section,
		Index: &rules.Artifact{
			Role:  rules.RoleIndex,
			ID:    "index",
			Title: "TanStack Query",
			Body: "# TanStack Query\n\nSee [Query keys](guides/01-query-keys.md) and " +
				"[Mutations](guides/02-mutations.md).\n",
		},
		Guides: []*rules.Artifact{
			{Role: rules.RoleGuide, ID: "01-query-keys", Title: "Query keys", Body: "# Query keys\n\nFactory only.\n"},
			{Role: rules.RoleGuide, ID: "02-mutations", Title: "Mutations", Body: "# Mutations\n\nInvalidate.\n"},
		},
		Decisions: []*rules.Artifact{
			{Role: rules.RoleDecision, ID: "0001-a", Title: "0001: A", Body: "# 0001: A\n\nAccepted.\n"},
			{Role: rules.RoleDecision, ID: "0002-b", Title: "0002: B", Body: "# 0002: B\n\nAccepted.\n"},
			{Role: rules.RoleDecision, ID: "0003-c", Title: "0003: C", Body: "# 0003: C\n\nAccepted.\n"},
		},
	}
}

func entryByPath(t *testing.T, plan *Plan, name string) rules.PlanEntry {
	t.Helper()
	for _, entry := range plan.Entries {
		if filepath.Base(entry.Path) == name {
			return entry
		}
	}
	t.Fatalf("plan has no entry %q, got %v", name, plan.Paths())
	return rules.PlanEntry{}
}

func TestYamlScalar(t *testing.T) {
	assert.Equal(t, "src/**/*.ts", yamlScalar("src/**/*.ts"))
	assert.Equal(t, `""`, yamlScalar(""))
	assert.Equal(t, `"TanStack Query guide: Mutations"`, yamlScalar("TanStack Query guide: Mutations"))
	assert.Equal(t, `"false"`, yamlScalar("false"))
	assert.Equal(t, `"a # comment"`, yamlScalar("a # comment"))
}

func TestRenderFrontmatter(t *testing.T) {
	out := renderFrontmatter([]field{
		{"description", "Agent: Query refactor"},
		{"alwaysApply", false},
	}, "body text\n\n\n")

	assert.Equal(t, "---\ndescription: \"Agent: Query refactor\"\nalwaysApply: false\n---\n\nbody text\n", out)
}

func TestRenderFrontmatter_BooleanStaysUnquoted(t *testing.T) {
	// a boolean attribute is a YAML boolean literal, not a string scalar
	out := renderFrontmatter([]field{{"alwaysApply", false}}, "body\n")
	assert.Equal(t, "---\nalwaysApply: false\n---\n\nbody\n", out)

	out = renderFrontmatter([]field{{"alwaysApply", true}}, "body\n")
	assert.Equal(t, "---\nalwaysApply: true\n---\n\nbody\n", out)

	// a string that merely looks boolean still gets quoted
	out = renderFrontmatter([]field{{"description", "false"}}, "body\n")
	assert.Equal(t, "---\ndescription: \"false\"\n---\n\nbody\n", out)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"copilot", "cursor"}, Names())

	e, err := Get("cursor")
	require.NoError(t, err)
	assert.Equal(t, "cursor", e.Name())

	_, err = Get("zed")
	var configErr *rules.ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, configErr.Error(), "unknown output format")

	all := All()
	require.Len(t, all, 2)
	assert.Equal(t, "copilot", all[0].Name())
}

func TestWrite(t *testing.T) {
	root := t.TempDir()
	plan := NewPlan("cursor", "tanstack-query", filepath.Join(root, ".cursor", "rules"))
	plan.Add("a.mdc", "alpha\n")
	plan.Add("b.mdc", "beta\n")

	written, err := Write(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, written, 2)

	data, err := os.ReadFile(filepath.Join(root, ".cursor", "rules", "a.mdc"))
	require.NoError(t, err)
	assert.Equal(t, "alpha\n", string(data))
}

func TestWrite_OverwritesPriorRun(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".cursor", "rules")

	plan := NewPlan("cursor", "s", dir)
	plan.Add("a.mdc", "first\n")
	_, err := Write(context.Background(), plan)
	require.NoError(t, err)

	plan = NewPlan("cursor", "s", dir)
	plan.Add("a.mdc", "second\n")
	_, err = Write(context.Background(), plan)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "a.mdc"))
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))
}

func TestWrite_EmptyPlanCreatesNothing(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".cursor", "rules")

	written, err := Write(context.Background(), NewPlan("cursor", "s", dir))
	require.NoError(t, err)
	assert.Empty(t, written)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestWrite_ReportsIOError(t *testing.T) {
	root := t.TempDir()
	// a file where the output directory should be
	blocked := filepath.Join(root, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	plan := NewPlan("cursor", "s", blocked)
	plan.Add("a.mdc", "alpha\n")

	_, err := Write(context.Background(), plan)
	var ioErr *rules.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "mkdir", ioErr.Op)
}

func TestWrite_MidPlanFailureReportsPartial(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".cursor", "rules")

	plan := NewPlan("cursor", "s", dir)
	plan.Add("a.mdc", "alpha\n")
	plan.Add("b.mdc", "beta\n")

	// a directory occupying the second entry's path makes its write fail
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "b.mdc"), 0o755))

	written, err := Write(context.Background(), plan)
	var ioErr *rules.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "write", ioErr.Op)
	assert.Equal(t, filepath.Join(dir, "b.mdc"), ioErr.Path)

	// the entry written before the failure is reported
	require.Equal(t, []string{filepath.Join(dir, "a.mdc")}, written)
	data, readErr := os.ReadFile(filepath.Join(dir, "a.mdc"))
	require.NoError(t, readErr)
	assert.Equal(t, "alpha\n", string(data))
}

func TestEmit_UnresolvedReferenceWarns(t *testing.T) {
	sc := testSection("src/**/*.ts")
	sc.Index.Body += "\nAlso [future](guides/09-suspense.md).\n"

	e, err := Get("cursor")
	require.NoError(t, err)

	plan, warnings, err := Emit(context.Background(), e, sc, t.TempDir())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "09-suspense")

	// the unresolved link survives untouched
	index := entryByPath(t, plan, "tanstack-query-index.mdc")
	assert.Contains(t, index.Content, "(guides/09-suspense.md)")
}
