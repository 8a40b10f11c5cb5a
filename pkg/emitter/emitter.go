// Package emitter encodes the output formats of the rule distribution engine.
// Each emitter declares its frontmatter attributes, its aggregation rules per
// artifact role and its file-naming convention; the shared Emit/Write pipeline
// is format-agnostic. Adding a target format means implementing the Emitter
// interface, not duplicating the pipeline.
package emitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jingkaihe/rulesmith/pkg/content"
	"github.com/jingkaihe/rulesmith/pkg/logger"
	"github.com/jingkaihe/rulesmith/pkg/types/rules"
	"github.com/jingkaihe/rulesmith/pkg/xref"
)

// groupSeparator is the visible rule between aggregated artifact bodies
const groupSeparator = "\n\n---\n\n"

// Plan is the ordered list of output files an emitter intends to write for
// one section. It is built during Emit and discarded after Write.
type Plan struct {
	Emitter string
	Section string
	Dir     string
	Entries []rules.PlanEntry

	// pendingIndex carries the rewritten index between PlanIndex and
	// PlanGuides for formats that merge the index into the guides group
	pendingIndex *rules.Artifact
}

// NewPlan creates an empty emission plan for the given output directory
func NewPlan(emitterName, sectionID, dir string) *Plan {
	return &Plan{Emitter: emitterName, Section: sectionID, Dir: dir}
}

// Add appends one pending output file to the plan
func (p *Plan) Add(name, fileContent string) {
	p.Entries = append(p.Entries, rules.PlanEntry{
		Path:    filepath.Join(p.Dir, name),
		Content: fileContent,
	})
}

// Paths returns the output paths of the plan in emission order
func (p *Plan) Paths() []string {
	paths := make([]string, 0, len(p.Entries))
	for _, entry := range p.Entries {
		paths = append(paths, entry.Path)
	}
	return paths
}

// Emitter encodes one output format's layout, frontmatter and naming rules
type Emitter interface {
	// Name is the identifier callers select the format by
	Name() string
	// Description is a one-line summary shown by the formats listing
	Description() string
	// Dir returns the output directory under the installation root
	Dir(root string) string
	// GuideLinks maps each guide identifier to the link target valid inside
	// this format's output directory, used to rewrite index cross-references
	GuideLinks(sectionID string, guides []*rules.Artifact) map[string]string
	// PlanIndex plans the section index (or defers it for merged formats)
	PlanIndex(plan *Plan, section *rules.Section, index *rules.Artifact)
	// PlanGuides plans the guide artifacts per the format's aggregation rule
	PlanGuides(plan *Plan, section *rules.Section, guides []*rules.Artifact)
	// PlanAgents plans the agent artifacts
	PlanAgents(plan *Plan, section *rules.Section, agents []*rules.Artifact)
	// PlanDecisions plans the aggregated decision records
	PlanDecisions(plan *Plan, section *rules.Section, decisions []*rules.Artifact)
}

// Emit builds the emission plan for one section without touching the
// filesystem. Returned warnings cover unresolved index cross-references.
func Emit(ctx context.Context, e Emitter, sc *content.SectionContent, root string) (*Plan, []string, error) {
	section := sc.Section
	plan := NewPlan(e.Name(), section.ID, e.Dir(root))

	var warnings []string
	if sc.Index != nil {
		links := e.GuideLinks(section.ID, sc.Guides)
		body, unresolved := xref.Rewrite(sc.Index.Body, links)
		for _, id := range unresolved {
			warnings = append(warnings, fmt.Sprintf("index references guide %q outside this section, link left as-is", id))
		}

		rewritten := *sc.Index
		rewritten.Body = body
		e.PlanIndex(plan, section, &rewritten)
	}

	e.PlanGuides(plan, section, sc.Guides)
	e.PlanAgents(plan, section, sc.Agents)
	e.PlanDecisions(plan, section, sc.Decisions)

	logger.G(ctx).WithFields(map[string]interface{}{
		"section": section.ID,
		"emitter": e.Name(),
		"files":   len(plan.Entries),
	}).Debug("Built emission plan")

	return plan, warnings, nil
}

// Write executes the plan: creates the output directory and writes every
// entry, overwriting existing files. Returns the written paths. The first
// write failure aborts the remaining entries of this plan.
func Write(ctx context.Context, plan *Plan) ([]string, error) {
	if len(plan.Entries) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(plan.Dir, 0o755); err != nil {
		return nil, rules.NewIOError("mkdir", plan.Dir, err)
	}

	log := logger.G(ctx).WithField("section", plan.Section)

	var written []string
	for _, entry := range plan.Entries {
		if err := os.WriteFile(entry.Path, []byte(entry.Content), 0o644); err != nil {
			return written, rules.NewIOError("write", entry.Path, err)
		}
		log.WithField("path", entry.Path).Debug("Wrote rule file")
		written = append(written, entry.Path)
	}

	return written, nil
}

// field is one frontmatter attribute; renders in declaration order. Boolean
// values render as YAML boolean literals, everything else as a string scalar.
type field struct {
	key   string
	value any
}

// renderFrontmatter renders the structured attribute block followed by a
// blank line and the body. String values are quoted only when plain YAML
// scalars would be ambiguous.
func renderFrontmatter(fields []field, body string) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	for _, f := range fields {
		sb.WriteString(f.key)
		sb.WriteString(": ")
		switch v := f.value.(type) {
		case bool:
			sb.WriteString(strconv.FormatBool(v))
		default:
			sb.WriteString(yamlScalar(fmt.Sprint(v)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("---\n\n")
	sb.WriteString(strings.TrimRight(body, " \t\n"))
	sb.WriteString("\n")
	return sb.String()
}

// yamlScalar quotes a value when it would not survive as a plain YAML scalar:
// indicator characters are only special at the start of a scalar, ": " and
// " #" anywhere, booleans and empty strings always
func yamlScalar(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, "\n\"'") ||
		strings.Contains(s, ": ") || strings.HasSuffix(s, ":") ||
		strings.Contains(s, " #") ||
		strings.ContainsAny(s[:1], "!&*|>%@`#{}[],?:- ") ||
		s != strings.TrimSpace(s) {
		return strconv.Quote(s)
	}
	switch s {
	case "true", "false", "null", "yes", "no":
		return strconv.Quote(s)
	}
	return s
}

// aggregate concatenates artifact bodies with the visible group separator,
// preserving the lexicographic order established by the content reader
func aggregate(artifacts []*rules.Artifact) string {
	bodies := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		bodies = append(bodies, strings.TrimSpace(artifact.Body))
	}
	return strings.Join(bodies, groupSeparator)
}

var registry = map[string]Emitter{}

// Register adds an emitter to the registry; called from package init
func Register(e Emitter) {
	registry[e.Name()] = e
}

// Get returns the emitter registered under name
func Get(name string) (Emitter, error) {
	e, ok := registry[name]
	if !ok {
		return nil, rules.NewConfigurationError(name, "unknown output format, available: %s", strings.Join(Names(), ", "))
	}
	return e, nil
}

// Names returns the registered emitter names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered emitter, sorted by name
func All() []Emitter {
	emitters := make([]Emitter, 0, len(registry))
	for _, name := range Names() {
		emitters = append(emitters, registry[name])
	}
	return emitters
}
