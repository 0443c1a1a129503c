package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/ggbench/surface"
	"github.com/gogpu/ggbench/workload"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workloads and surface backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, "Workloads:")
			for _, name := range workload.Names() {
				info, _ := workload.Describe(name)
				line := fmt.Sprintf("  %-8s %s", name, info.Description)
				if len(info.Requires) > 0 {
					line += " (requires " + strings.Join(info.Requires, ", ") + ")"
				}
				fmt.Fprintln(w, line)
			}

			fmt.Fprintln(w, "\nSurface backends:")
			available := surface.Available()
			for _, name := range surface.List() {
				entry, _ := surface.Backend(name)
				state := "available"
				if !slices.Contains(available, name) {
					state = "unavailable"
				}
				fmt.Fprintf(w, "  %-8s priority %d, %s\n", name, entry.Priority, state)
			}
			return nil
		},
	}
}
