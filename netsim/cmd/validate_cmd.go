package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/netsim/validation"
)

// numPrintedIssues is how many findings validate prints.
const numPrintedIssues = 10

var validateArgs struct {
	conf string
	out  string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configurations and the topology for common mistakes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runValidate(cmd.OutOrStdout(),
			validateArgs.conf, validateArgs.out)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateArgs.conf, "conf", "",
		"The directory that holds one <device>/config.dump per device.")
	validateCmd.Flags().StringVar(&validateArgs.out, "out", "",
		"The JSON file to write the findings into.")
	_ = validateCmd.MarkFlagRequired("conf")
	_ = validateCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(validateCmd)
}

type validationReport struct {
	Issues []validation.Issue `json:"issues"`
}

func runValidate(w io.Writer, conf, out string) error {
	devices, g, err := loadConfDir(conf)
	if err != nil {
		return err
	}

	issues := validation.ValidateAll(g, devices)
	if issues == nil {
		issues = []validation.Issue{}
	}

	err = writeJSONFile(out, validationReport{Issues: issues})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%d findings written to %s\n", len(issues), out)

	for i, issue := range issues {
		if i == numPrintedIssues {
			break
		}

		line, err := json.Marshal(issue)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, string(line))
	}

	return nil
}
