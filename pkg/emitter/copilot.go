package emitter

import (
	"path/filepath"
	"strings"

	"github.com/jingkaihe/rulesmith/pkg/types/rules"
)

// copilotMatchAll is the path matcher applied when a section declares no
// default glob; instruction files always carry an applyTo attribute.
const copilotMatchAll = "**"

// CopilotEmitter emits GitHub Copilot instruction files: the index and all
// guides merged into one file, one file per agent and one aggregated
// decisions file, each carrying an applyTo path matcher, under the nested
// .github/instructions directory.
type CopilotEmitter struct{}

func init() {
	Register(&CopilotEmitter{})
}

// Name implements Emitter
func (e *CopilotEmitter) Name() string { return "copilot" }

// Description implements Emitter
func (e *CopilotEmitter) Description() string {
	return "GitHub Copilot instruction files (.github/instructions/*.instructions.md)"
}

// Dir implements Emitter
func (e *CopilotEmitter) Dir(root string) string {
	return filepath.Join(root, ".github", "instructions")
}

func (e *CopilotEmitter) fileName(sectionID, group string) string {
	return sectionID + "-" + group + ".instructions.md"
}

// GuideLinks implements Emitter. All guides land in the merged guides file,
// so every identifier links to that single sibling.
func (e *CopilotEmitter) GuideLinks(sectionID string, guides []*rules.Artifact) map[string]string {
	links := make(map[string]string, len(guides))
	merged := "./" + e.fileName(sectionID, "guides")
	for _, guide := range guides {
		links[guide.ID] = merged
	}
	return links
}

// sectionMatcher returns the applyTo matcher for a section's content groups
func (e *CopilotEmitter) sectionMatcher(section *rules.Section) string {
	if glob := section.DefaultGlob(); glob != "" {
		return glob
	}
	return copilotMatchAll
}

// PlanIndex implements Emitter. The index is not emitted on its own; it is
// deferred and merged at the head of the guides file.
func (e *CopilotEmitter) PlanIndex(plan *Plan, _ *rules.Section, index *rules.Artifact) {
	plan.pendingIndex = index
}

// PlanGuides implements Emitter. The deferred index, if any, and all guides
// are concatenated into a single instructions file with one path matcher.
func (e *CopilotEmitter) PlanGuides(plan *Plan, section *rules.Section, guides []*rules.Artifact) {
	var bodies []string
	if plan.pendingIndex != nil {
		bodies = append(bodies, strings.TrimSpace(plan.pendingIndex.Body))
		plan.pendingIndex = nil
	}
	for _, guide := range guides {
		bodies = append(bodies, strings.TrimSpace(guide.Body))
	}
	if len(bodies) == 0 {
		return
	}

	fields := []field{{"applyTo", e.sectionMatcher(section)}}
	body := strings.Join(bodies, groupSeparator)

	plan.Add(e.fileName(section.ID, "guides"), renderFrontmatter(fields, body))
}

// PlanAgents implements Emitter. One instructions file per agent with the
// fixed match-all path matcher; agents apply regardless of the open file.
func (e *CopilotEmitter) PlanAgents(plan *Plan, section *rules.Section, agents []*rules.Artifact) {
	for _, agent := range agents {
		fields := []field{{"applyTo", copilotMatchAll}}
		plan.Add(e.fileName(section.ID, "agent-"+agent.ID), renderFrontmatter(fields, agent.Body))
	}
}

// PlanDecisions implements Emitter. All decision records are concatenated
// into one instructions file with the fixed match-all path matcher.
func (e *CopilotEmitter) PlanDecisions(plan *Plan, section *rules.Section, decisions []*rules.Artifact) {
	if len(decisions) == 0 {
		return
	}

	fields := []field{{"applyTo", copilotMatchAll}}
	plan.Add(e.fileName(section.ID, "decisions"), renderFrontmatter(fields, aggregate(decisions)))
}
