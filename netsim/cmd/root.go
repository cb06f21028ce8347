// Package cmd provides the command-line interface of netsim.
package cmd

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/netsim/logging"
)

// Environment variables that provide flag defaults. They may also be set in
// the env file.
const (
	EnvLogDir      = "NETSIM_LOG_DIR"
	EnvLogLevel    = "NETSIM_LOG_LEVEL"
	EnvMonitorPort = "NETSIM_MONITOR_PORT"
)

// DefaultLogDir is where the simulation commands write the node logs.
const DefaultLogDir = "./outputs/reports"

var (
	logLevel string
	envFile  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "netsim",
	Short: "netsim parses device configurations and simulates the network they form.",
	Long: `netsim turns a directory of device configuration dumps into a ` +
		`topology, checks it for common mistakes, plans link loads and runs ` +
		`a concurrent simulation in which every device exchanges hello ` +
		`messages with its neighbors.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}

		applyEnv(cmd.Flags(), "log-level", EnvLogLevel)

		return logging.SetLevel(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"The level of the process log (debug, info, warning, error). "+
			"Defaults to $"+EnvLogLevel+".")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"The file that sets environment variables. It is optional.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It returns the exit code of the process.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logging.CLILog.Error(err)
		return 1
	}

	return 0
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// applyEnv sets a flag from an environment variable unless the flag is given
// on the command line.
func applyEnv(flags *pflag.FlagSet, name, env string) {
	f := flags.Lookup(name)
	if f == nil || f.Changed {
		return
	}

	value, found := os.LookupEnv(env)
	if !found || value == "" {
		return
	}

	err := f.Value.Set(value)
	if err != nil {
		logging.CLILog.WithError(err).
			Warnf("Ignoring $%s=%s", env, strconv.Quote(value))
	}
}
