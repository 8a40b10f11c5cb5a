// Package policy derives the attachment behavior of an artifact: auto-attached
// via a file-path glob, or on-demand via a one-line description. Resolution is
// pure and deterministic so every emitter agrees on what an artifact's nature
// is, even though each format renders the policy differently.
package policy

import (
	"fmt"

	"github.com/jingkaihe/rulesmith/pkg/types/rules"
)

// Resolve computes the attachment policy for one artifact. Decision artifacts
// are never resolved individually; emitters aggregate them under a role-level
// description of their own.
func Resolve(artifact *rules.Artifact, section *rules.Section) rules.Attachment {
	switch artifact.Role {
	case rules.RoleIndex:
		// The index is always auto-attached. An empty glob means "always
		// active", which is distinct from being filtered by a pattern.
		return rules.Attachment{
			Mode:        rules.ModeAuto,
			Glob:        section.DefaultGlob(),
			Description: fmt.Sprintf("%s documentation index", section.Title),
		}
	case rules.RoleGuide:
		if glob, ok := section.GuideGlob(artifact.ID); ok {
			return rules.Attachment{Mode: rules.ModeAuto, Glob: glob}
		}
		return rules.Attachment{
			Mode:        rules.ModeOnDemand,
			Description: fmt.Sprintf("%s guide: %s", section.Title, artifact.DisplayTitle()),
		}
	case rules.RoleAgent:
		return rules.Attachment{
			Mode:        rules.ModeOnDemand,
			Description: fmt.Sprintf("Agent: %s", artifact.DisplayTitle()),
		}
	default:
		return rules.Attachment{
			Mode:        rules.ModeOnDemand,
			Description: artifact.DisplayTitle(),
		}
	}
}
