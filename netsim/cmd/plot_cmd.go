package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var plotArgs struct {
	source graphSource
	out    string
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Write the topology as a Graphviz DOT file",
	Long: `Write the topology as a Graphviz DOT file. Render it with, for ` +
		`example, "dot -Tpng -o topology.png topology.dot".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPlot(cmd.OutOrStdout(), &plotArgs.source, plotArgs.out)
	},
}

func init() {
	plotArgs.source.addFlags(plotCmd, true)
	plotCmd.Flags().StringVar(&plotArgs.out, "out", "",
		"The DOT file to write.")
	_ = plotCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(plotCmd)
}

func runPlot(w io.Writer, source *graphSource, out string) error {
	g, err := source.graph()
	if err != nil {
		return err
	}

	bytes, err := g.MarshalDOT(source.name())
	if err != nil {
		return err
	}

	err = writeFile(out, bytes)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %d devices and %d links to %s\n",
		g.NumDevices(), g.NumLinks(), out)

	return nil
}
