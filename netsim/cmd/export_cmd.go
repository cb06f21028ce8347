package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/netsim/topology"
)

var exportArgs struct {
	source graphSource
	out    string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the topology as a YAML or JSON file",
	Long: `Write the topology as a YAML or JSON file, chosen by the extension ` +
		`of the output file. The file can be edited and given to the ` +
		`simulate command with --topology.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runExport(cmd.OutOrStdout(), &exportArgs.source, exportArgs.out)
	},
}

func init() {
	exportArgs.source.addFlags(exportCmd, true)
	exportCmd.Flags().StringVar(&exportArgs.out, "out", "",
		"The .yaml, .yml or .json file to write.")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(exportCmd)
}

func runExport(w io.Writer, source *graphSource, out string) error {
	g, err := source.graph()
	if err != nil {
		return err
	}

	err = topology.DescFromGraph(source.name(), g).WriteToFile(out)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Exported topology %s to %s\n", source.name(), out)

	return nil
}
