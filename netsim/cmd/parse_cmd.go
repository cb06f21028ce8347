package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/netsim/devconfig"
)

var parseArgs struct {
	conf string
	out  string
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse the device configurations into a JSON file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runParse(cmd.OutOrStdout(), parseArgs.conf, parseArgs.out)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseArgs.conf, "conf", "",
		"The directory that holds one <device>/config.dump per device.")
	parseCmd.Flags().StringVar(&parseArgs.out, "out", "",
		"The JSON file to write.")
	_ = parseCmd.MarkFlagRequired("conf")
	_ = parseCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(parseCmd)
}

func runParse(w io.Writer, conf, out string) error {
	devices, err := devconfig.ParseConfDir(conf)
	if err != nil {
		return err
	}

	err = writeJSONFile(out, devices)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Parsed %d devices. Wrote %s\n", len(devices), out)

	return nil
}
