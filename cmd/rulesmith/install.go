package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/rulesmith/pkg/emitter"
	"github.com/jingkaihe/rulesmith/pkg/installer"
	"github.com/jingkaihe/rulesmith/pkg/presenter"
	"github.com/jingkaihe/rulesmith/pkg/registry"
)

// InstallConfig carries the resolved install parameters
type InstallConfig struct {
	Dir      string
	Sections []string
	Format   string
	Yes      bool
}

// NewInstallConfig returns the defaults for the install command
func NewInstallConfig() *InstallConfig {
	return &InstallConfig{
		Dir:    ".",
		Format: "cursor",
	}
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install documentation sections as IDE rule files",
	Long: `Install compiles the selected documentation sections into the chosen
output format and writes the rule files under the target directory.

Without --yes an interactive form collects the target directory, sections
and format. Each run is a full regeneration of the selected sections'
output files; prior output is overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := NewInstallConfig()
		config.Dir, _ = cmd.Flags().GetString("dir")
		config.Sections, _ = cmd.Flags().GetStringSlice("sections")
		config.Format, _ = cmd.Flags().GetString("format")
		config.Yes, _ = cmd.Flags().GetBool("yes")

		return runInstall(cmd.Context(), config)
	},
}

func init() {
	installCmd.Flags().StringP("dir", "d", ".", "Installation target directory")
	installCmd.Flags().StringSliceP("sections", "s", nil, "Section identifiers to install (default: all)")
	installCmd.Flags().StringP("format", "f", "cursor", "Output format")
	installCmd.Flags().BoolP("yes", "y", false, "Skip the interactive form and use the flag values")
}

func runInstall(ctx context.Context, config *InstallConfig) error {
	reg, err := registry.New(registry.WithContentDirs(viper.GetStringSlice("content_dirs")...))
	if err != nil {
		return errors.Wrap(err, "failed to create section registry")
	}
	defer reg.Close()

	available, err := reg.List(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list sections")
	}
	if len(available) == 0 {
		return errors.New("no sections available to install")
	}

	if len(config.Sections) == 0 && config.Yes {
		for _, entry := range available {
			config.Sections = append(config.Sections, entry.ID)
		}
	}

	if !config.Yes {
		if err := promptInstall(config, available); err != nil {
			return err
		}
	}

	dir, err := filepath.Abs(config.Dir)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve directory '%s'", config.Dir)
	}

	results, err := installer.New(reg).Run(ctx, installer.Target{Root: dir, Format: config.Format}, config.Sections)
	if err != nil {
		return err
	}

	renderResults(results)

	for _, result := range results {
		if !result.Success() {
			return errors.Errorf("%d of %d sections failed", countFailed(results), len(results))
		}
	}
	return nil
}

// promptInstall collects directory, sections and format interactively. It
// owns no transformation logic; it only resolves parameters for the engine.
func promptInstall(config *InstallConfig, available []registry.Entry) error {
	sectionOptions := make([]huh.Option[string], 0, len(available))
	for _, entry := range available {
		label := entry.Title
		if entry.Description != "" {
			label = fmt.Sprintf("%s — %s", entry.Title, entry.Description)
		}
		option := huh.NewOption(label, entry.ID)
		if len(config.Sections) == 0 || slices.Contains(config.Sections, entry.ID) {
			option = option.Selected(true)
		}
		sectionOptions = append(sectionOptions, option)
	}

	formatOptions := make([]huh.Option[string], 0)
	for _, e := range emitter.All() {
		formatOptions = append(formatOptions, huh.NewOption(e.Description(), e.Name()))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Target directory").
				Description("Rule files are written under this directory").
				Value(&config.Dir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("directory is required")
					}
					if info, err := os.Stat(s); err != nil || !info.IsDir() {
						return fmt.Errorf("directory does not exist")
					}
					return nil
				}),

			huh.NewMultiSelect[string]().
				Title("Sections").
				Description("Documentation sections to install").
				Options(sectionOptions...).
				Validate(func(selected []string) error {
					if len(selected) == 0 {
						return fmt.Errorf("select at least one section")
					}
					return nil
				}).
				Value(&config.Sections),

			huh.NewSelect[string]().
				Title("Format").
				Description("Output format for the rule files").
				Options(formatOptions...).
				Value(&config.Format),
		),
	)

	if err := form.Run(); err != nil {
		return errors.Wrap(err, "install form aborted")
	}
	return nil
}

// renderResults presents per-section outcomes: a success marker with the
// written paths, or a failure marker with the reason
func renderResults(results []installer.SectionResult) {
	presenter.Section("Results")

	for i := range results {
		result := &results[i]
		if result.Success() {
			presenter.Success(installer.Summary(result))
			for _, path := range result.Written {
				presenter.Info("  " + path)
			}
		} else {
			presenter.Error(result.Err, result.SectionID)
			for _, path := range result.Written {
				presenter.Info("  (partial) " + path)
			}
		}
		for _, warning := range result.Warnings {
			presenter.Warning(warning)
		}
	}
}

func countFailed(results []installer.SectionResult) int {
	failed := 0
	for i := range results {
		if !results[i].Success() {
			failed++
		}
	}
	return failed
}
