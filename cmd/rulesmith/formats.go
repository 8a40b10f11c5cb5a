package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/rulesmith/pkg/emitter"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List available output formats",
	Long:  `List the registered output formats and the directory layout each one emits`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		fmt.Fprintln(tw, "Name\tDescription")
		fmt.Fprintln(tw, "----\t-----------")
		for _, e := range emitter.All() {
			fmt.Fprintf(tw, "%s\t%s\n", e.Name(), e.Description())
		}

		return tw.Flush()
	},
}
