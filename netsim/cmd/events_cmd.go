package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/netsim/datarecording"
)

var eventsArgs struct {
	db     string
	filter datarecording.NodeEventFilter
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the node events recorded by simulate --record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runEvents(cmd.Context(), cmd.OutOrStdout(),
			eventsArgs.db, eventsArgs.filter)
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsArgs.db, "db", "",
		"The recording database, including the .sqlite3 extension.")
	eventsCmd.Flags().StringVar(&eventsArgs.filter.Node, "node", "",
		"Only list the events of this node.")
	eventsCmd.Flags().StringVar(&eventsArgs.filter.Event, "event", "",
		`Only list this event, for example "Node Msg Dropped".`)
	eventsCmd.Flags().StringVar(&eventsArgs.filter.Kind, "kind", "",
		"Only list events about messages of this kind, for example HELLO.")
	eventsCmd.Flags().IntVar(&eventsArgs.filter.Limit, "limit", 50,
		"The maximum number of events listed. 0 lists all.")
	_ = eventsCmd.MarkFlagRequired("db")

	rootCmd.AddCommand(eventsCmd)
}

func runEvents(
	ctx context.Context,
	w io.Writer,
	db string,
	filter datarecording.NodeEventFilter,
) error {
	if _, err := os.Stat(db); err != nil {
		return err
	}

	reader := datarecording.NewReader(db)
	defer reader.Close()

	events, total, err := datarecording.ReadNodeEvents(ctx, reader, filter)
	if err != nil {
		return err
	}

	for _, e := range events {
		fmt.Fprintf(w, "%s %-8s %-16s %s\n", e.Time, e.Node, e.Event, e.Detail)
	}

	fmt.Fprintf(w, "%d of %d events\n", len(events), total)

	return nil
}
