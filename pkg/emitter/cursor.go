package emitter

import (
	"fmt"
	"path/filepath"

	"github.com/jingkaihe/rulesmith/pkg/policy"
	"github.com/jingkaihe/rulesmith/pkg/types/rules"
)

const cursorExt = ".mdc"

// CursorEmitter emits Cursor rule files: one file per guide and per agent,
// one auto-attached index file and one aggregated decisions file, all under
// a dot-prefixed rules directory.
type CursorEmitter struct{}

func init() {
	Register(&CursorEmitter{})
}

// Name implements Emitter
func (e *CursorEmitter) Name() string { return "cursor" }

// Description implements Emitter
func (e *CursorEmitter) Description() string {
	return "Cursor rule files (.cursor/rules/*.mdc)"
}

// Dir implements Emitter
func (e *CursorEmitter) Dir(root string) string {
	return filepath.Join(root, ".cursor", "rules")
}

func (e *CursorEmitter) fileName(sectionID, artifactID string) string {
	return sectionID + "-" + artifactID + cursorExt
}

// GuideLinks implements Emitter. Every guide gets its own output file, so
// each identifier links to its sibling rule file.
func (e *CursorEmitter) GuideLinks(sectionID string, guides []*rules.Artifact) map[string]string {
	links := make(map[string]string, len(guides))
	for _, guide := range guides {
		links[guide.ID] = "./" + e.fileName(sectionID, guide.ID)
	}
	return links
}

// PlanIndex implements Emitter. The index carries the section default glob
// when configured; with no glob it falls back to on-demand semantics, which
// Cursor expresses as alwaysApply: false plus a description.
func (e *CursorEmitter) PlanIndex(plan *Plan, section *rules.Section, index *rules.Artifact) {
	att := policy.Resolve(index, section)

	fields := []field{{"description", att.Description}}
	if att.Glob != "" {
		fields = append(fields, field{"globs", att.Glob})
	}
	fields = append(fields, field{"alwaysApply", false})

	plan.Add(e.fileName(section.ID, index.ID), renderFrontmatter(fields, index.Body))
}

// PlanGuides implements Emitter. One output file per guide: auto-attached
// guides carry their override glob, on-demand guides carry a description.
func (e *CursorEmitter) PlanGuides(plan *Plan, section *rules.Section, guides []*rules.Artifact) {
	for _, guide := range guides {
		att := policy.Resolve(guide, section)

		var fields []field
		if att.Mode == rules.ModeAuto {
			fields = []field{{"globs", att.Glob}, {"alwaysApply", false}}
		} else {
			fields = []field{{"description", att.Description}, {"alwaysApply", false}}
		}

		plan.Add(e.fileName(section.ID, guide.ID), renderFrontmatter(fields, guide.Body))
	}
}

// PlanAgents implements Emitter. One on-demand output file per agent.
func (e *CursorEmitter) PlanAgents(plan *Plan, section *rules.Section, agents []*rules.Artifact) {
	for _, agent := range agents {
		att := policy.Resolve(agent, section)

		fields := []field{
			{"description", att.Description},
			{"alwaysApply", false},
		}

		plan.Add(e.fileName(section.ID, agent.ID), renderFrontmatter(fields, agent.Body))
	}
}

// PlanDecisions implements Emitter. All decision records are concatenated
// into a single manual-reference file, separated by a horizontal rule.
func (e *CursorEmitter) PlanDecisions(plan *Plan, section *rules.Section, decisions []*rules.Artifact) {
	if len(decisions) == 0 {
		return
	}

	fields := []field{
		{"description", fmt.Sprintf("%s decision records", section.Title)},
		{"alwaysApply", false},
	}

	plan.Add(e.fileName(section.ID, "decisions"), renderFrontmatter(fields, aggregate(decisions)))
}
