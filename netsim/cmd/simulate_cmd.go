package cmd

import (
	"github.com/spf13/cobra"
)

var simulateArgs struct {
	run     runOptions
	seconds int
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the simulation for a number of seconds",
	Args:  cobra.NoArgs,
	PreRun: func(cmd *cobra.Command, _ []string) {
		simulateArgs.run.applyEnv(cmd)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := startSession(cmd.OutOrStdout(),
			&simulateArgs.run, simulateArgs.seconds)
		if err != nil {
			return err
		}

		s.wait(cmd.Context(), simulateArgs.seconds)

		return s.stop()
	},
}

func init() {
	simulateArgs.run.addFlags(simulateCmd, true)
	simulateCmd.Flags().IntVar(&simulateArgs.seconds, "seconds", 5,
		"How long the simulation runs.")

	rootCmd.AddCommand(simulateCmd)
}
