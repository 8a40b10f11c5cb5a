// Package installer orchestrates a full installation run: for each selected
// section it reads the content tree, builds the emission plan for the chosen
// format and writes the output files, isolating failures per section. Runs
// are stateless; every invocation is a full regeneration of the targeted
// output files, last write wins.
package installer

import (
	"context"
	"fmt"
	"os"

	"github.com/jingkaihe/rulesmith/pkg/content"
	"github.com/jingkaihe/rulesmith/pkg/emitter"
	"github.com/jingkaihe/rulesmith/pkg/logger"
	"github.com/jingkaihe/rulesmith/pkg/registry"
	"github.com/jingkaihe/rulesmith/pkg/types/rules"
)

// Target is the resolved installation destination plus the chosen format
type Target struct {
	// Root is the installation root directory; must already exist
	Root string
	// Format is the emitter identifier
	Format string
}

// SectionResult reports the outcome of one section's installation
type SectionResult struct {
	SectionID string
	// Written lists the output paths written for this section, in emission
	// order. On failure it contains the paths written before the failure.
	Written []string
	// Warnings are non-fatal content observations (unresolved
	// cross-references, missing titles)
	Warnings []string
	Err      error
}

// Success reports whether the section installed without error
func (r *SectionResult) Success() bool {
	return r.Err == nil
}

// Installer runs installations against a section registry
type Installer struct {
	registry *registry.Registry
}

// New creates an installer backed by the given registry
func New(reg *registry.Registry) *Installer {
	return &Installer{registry: reg}
}

// Run installs the selected sections, in the given order, into the target.
// Target-level problems (missing root, unknown format) fail the whole run;
// section-level failures are recorded in that section's result and the
// remaining sections continue. A partially written section is reported via
// its result's Written list alongside its error, never silently swallowed.
func (i *Installer) Run(ctx context.Context, target Target, sectionIDs []string) ([]SectionResult, error) {
	// The target is validated here even when the invoking surface already
	// checked it, so non-interactive callers get the same guarantee
	info, err := os.Stat(target.Root)
	if err != nil || !info.IsDir() {
		return nil, rules.NewConfigurationError(target.Root, "installation target directory does not exist")
	}

	e, err := emitter.Get(target.Format)
	if err != nil {
		return nil, err
	}

	log := logger.G(ctx).WithField("emitter", e.Name())

	results := make([]SectionResult, 0, len(sectionIDs))
	for _, id := range sectionIDs {
		result := i.installSection(logger.WithLogger(ctx, log.WithField("section", id)), e, target.Root, id)
		if result.Err != nil {
			log.WithField("section", id).WithError(result.Err).Error("Section installation failed")
		}
		results = append(results, result)
	}

	return results, nil
}

// installSection runs the read → emit → write pipeline for one section
func (i *Installer) installSection(ctx context.Context, e emitter.Emitter, root, id string) SectionResult {
	result := SectionResult{SectionID: id}

	sectionRoot, err := i.registry.Resolve(ctx, id)
	if err != nil {
		result.Err = err
		return result
	}

	sc, err := content.ReadSection(ctx, id, sectionRoot)
	if err != nil {
		result.Err = err
		return result
	}
	result.Warnings = append(result.Warnings, sc.Warnings...)

	plan, warnings, err := emitter.Emit(ctx, e, sc, root)
	if err != nil {
		result.Err = err
		return result
	}
	result.Warnings = append(result.Warnings, warnings...)

	written, err := emitter.Write(ctx, plan)
	result.Written = written
	if err != nil {
		result.Err = err
		return result
	}

	logger.G(ctx).WithField("files", len(written)).Info("Installed section")
	return result
}

// Summary renders a one-line human-readable outcome for a result
func Summary(result *SectionResult) string {
	if result.Err != nil {
		return fmt.Sprintf("%s: %v", result.SectionID, result.Err)
	}
	return fmt.Sprintf("%s: %d files", result.SectionID, len(result.Written))
}
