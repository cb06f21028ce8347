package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var failLinkArgs struct {
	run     runOptions
	a, b    string
	seconds int
}

var failLinkCmd = &cobra.Command{
	Use:   "fail-link",
	Short: "Run the simulation and take one link down after a second",
	Args:  cobra.NoArgs,
	PreRun: func(cmd *cobra.Command, _ []string) {
		failLinkArgs.run.applyEnv(cmd)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := startSession(cmd.OutOrStdout(),
			&failLinkArgs.run, failLinkArgs.seconds+1)
		if err != nil {
			return err
		}

		if s.wait(cmd.Context(), 1) {
			a, b := failLinkArgs.a, failLinkArgs.b

			err = s.sim.FailLink(a, b, true)
			if err == nil {
				fmt.Fprintf(s.out, "Link %s<->%s DOWN\n", a, b)
				s.wait(cmd.Context(), failLinkArgs.seconds)
			}
		}

		stopErr := s.stop()
		if err != nil {
			return err
		}

		return stopErr
	},
}

func init() {
	failLinkArgs.run.addFlags(failLinkCmd, true)
	failLinkCmd.Flags().StringVar(&failLinkArgs.a, "a", "",
		"One end of the link to take down.")
	failLinkCmd.Flags().StringVar(&failLinkArgs.b, "b", "",
		"The other end of the link to take down.")
	failLinkCmd.Flags().IntVar(&failLinkArgs.seconds, "seconds", 5,
		"How long the simulation runs after the link is down.")
	_ = failLinkCmd.MarkFlagRequired("a")
	_ = failLinkCmd.MarkFlagRequired("b")

	rootCmd.AddCommand(failLinkCmd)
}
