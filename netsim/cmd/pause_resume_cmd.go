package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// pauseDuration is how long pause-resume keeps the simulation paused.
const pauseDuration = 2 * time.Second

var pauseResumeArgs struct {
	run     runOptions
	seconds int
}

var pauseResumeCmd = &cobra.Command{
	Use:   "pause-resume",
	Short: "Run the simulation and pause it for two seconds halfway",
	Args:  cobra.NoArgs,
	PreRun: func(cmd *cobra.Command, _ []string) {
		pauseResumeArgs.run.applyEnv(cmd)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		half := pauseResumeArgs.seconds / 2

		s, err := startSession(cmd.OutOrStdout(),
			&pauseResumeArgs.run, 2*half)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if s.wait(ctx, half) {
			s.sim.Pause()
			fmt.Fprintln(s.out, "PAUSED")

			resumed := s.pause(ctx, pauseDuration)

			s.sim.Resume()
			fmt.Fprintln(s.out, "RESUMED")

			if resumed {
				s.wait(ctx, half)
			}
		}

		return s.stop()
	},
}

func init() {
	pauseResumeArgs.run.addFlags(pauseResumeCmd, true)
	pauseResumeCmd.Flags().IntVar(&pauseResumeArgs.seconds, "seconds", 6,
		"How long the simulation runs, not counting the pause.")

	rootCmd.AddCommand(pauseResumeCmd)
}
