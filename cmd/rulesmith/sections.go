package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/rulesmith/pkg/presenter"
	"github.com/jingkaihe/rulesmith/pkg/registry"
)

type SectionsListConfig struct {
	JSONOutput bool
}

type SectionsListOutput struct {
	Sections []registry.Entry
	JSON     bool
}

func (o *SectionsListOutput) Render(w io.Writer) error {
	if o.JSON {
		return o.renderJSON(w)
	}
	return o.renderTable(w)
}

func (o *SectionsListOutput) renderJSON(w io.Writer) error {
	type jsonOutput struct {
		Sections []registry.Entry `json:"sections"`
	}

	jsonData, err := json.MarshalIndent(jsonOutput{Sections: o.Sections}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error generating JSON output")
	}

	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func (o *SectionsListOutput) renderTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tTitle\tDescription\tSource")
	fmt.Fprintln(tw, "--\t-----\t-----------\t------")

	for _, entry := range o.Sections {
		source := "builtin"
		if !entry.Builtin {
			source = entry.Path
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", entry.ID, entry.Title, entry.Description, source)
	}

	return tw.Flush()
}

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List installable documentation sections",
	Long:  `List every section known to the content registry, builtin and external`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := &SectionsListConfig{}
		config.JSONOutput, _ = cmd.Flags().GetBool("json")

		return runSectionsList(cmd.Context(), config)
	},
}

func init() {
	sectionsCmd.Flags().Bool("json", false, "Output in JSON format")
}

func runSectionsList(ctx context.Context, config *SectionsListConfig) error {
	reg, err := registry.New(registry.WithContentDirs(viper.GetStringSlice("content_dirs")...))
	if err != nil {
		return errors.Wrap(err, "failed to create section registry")
	}
	defer reg.Close()

	sections, err := reg.List(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list sections")
	}

	if len(sections) == 0 {
		presenter.Info("No sections found")
		return nil
	}

	output := &SectionsListOutput{Sections: sections, JSON: config.JSONOutput}
	if err := output.Render(os.Stdout); err != nil {
		return errors.Wrap(err, "failed to render section list")
	}

	return nil
}
