package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "graphgate",
	Short: "GraphGate fronts an embedded graph-storage engine over HTTP",
	Long: `GraphGate layers session-based authentication, a credential registry, and
single-active-instance database lifecycle management on top of an embedded
graph-storage engine.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
