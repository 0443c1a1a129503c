package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ggbench",
		Short: "Frame-time benchmarks for gg rendering workloads",
		Long: `ggbench runs rendering workloads against a gg surface frame after frame,
filters out scheduler artifacts and reports the median frame duration.

Frames are pumped either by a refresh-aligned loop (requestAnimationFrame)
or back to back with the surface drained around each frame (setTimeoutZero).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newListCmd(), newVersionCmd())
	return root
}
