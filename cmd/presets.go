package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcv-sim/rcv-sim/sim/scenario"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in presets and their cohesion scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range scenario.PresetNames() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n  scenarios: %s\n", name, strings.Join(scenario.ScenarioNames(name), ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
