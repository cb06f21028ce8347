package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/netsim/loadplan"
)

var planLoadArgs struct {
	conf    string
	traffic string
	out     string
}

var planLoadCmd = &cobra.Command{
	Use:   "plan-load",
	Short: "Estimate the load of every link and recommend rebalancing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPlanLoad(cmd.OutOrStdout(),
			planLoadArgs.conf, planLoadArgs.traffic, planLoadArgs.out)
	},
}

func init() {
	planLoadCmd.Flags().StringVar(&planLoadArgs.conf, "conf", "",
		"The directory that holds one <device>/config.dump per device.")
	planLoadCmd.Flags().StringVar(&planLoadArgs.traffic, "traffic", "",
		"The JSON or YAML file that describes the traffic endpoints.")
	planLoadCmd.Flags().StringVar(&planLoadArgs.out, "out", "",
		"The JSON file to write the plan into.")
	_ = planLoadCmd.MarkFlagRequired("conf")
	_ = planLoadCmd.MarkFlagRequired("traffic")
	_ = planLoadCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(planLoadCmd)
}

func runPlanLoad(w io.Writer, conf, traffic, out string) error {
	_, g, err := loadConfDir(conf)
	if err != nil {
		return err
	}

	demands, err := loadplan.LoadTraffic(traffic)
	if err != nil {
		return err
	}

	report := loadplan.Plan(g, demands)

	err = writeJSONFile(out, report)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote load plan to %s (%d overloaded links)\n",
		out, len(report.Recommendations))

	return nil
}
