package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rendez/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Channel  string // filter by channel ID
	Scenario string // filter by scenario name
}

// TraceStats holds summary statistics for a trace.
type TraceStats struct {
	TotalEvents int  `json:"total_events"`
	Posts       int  `json:"posts"`
	Delivered   int  `json:"delivered"`
	Dropped     int  `json:"dropped"`
	Latched     bool `json:"latched"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Channel  string              `json:"channel,omitempty"`
	Scenario string              `json:"scenario,omitempty"`
	Events   []store.StoredEvent `json:"events"`
	Stats    TraceStats          `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect persisted traces",
		Long: `Inspect traces persisted by 'rendez run --db'.

With --channel, shows one channel's event log in seq order. With
--scenario, shows every event a scenario recorded. Without either,
lists the channels present in the database.

Examples:
  rendez trace --db ./traces.db
  rendez trace --db ./traces.db --channel chan-1
  rendez trace --db ./traces.db --scenario fifo-flood --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Channel, "channel", "", "channel ID to inspect")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "scenario name to inspect")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	if opts.Channel != "" && opts.Scenario != "" {
		return NewExitError(ExitCommandError, "--channel and --scenario are mutually exclusive")
	}

	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Channel == "" && opts.Scenario == "" {
		return listChannels(ctx, st, formatter, cmd)
	}

	var events []store.StoredEvent
	if opts.Channel != "" {
		events, err = st.ReadChannel(ctx, opts.Channel)
	} else {
		events, err = st.ReadScenario(ctx, opts.Scenario)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read trace", err)
	}

	if len(events) == 0 {
		return NewExitError(ExitCommandError, "no events found")
	}

	result := TraceResult{
		Channel:  opts.Channel,
		Scenario: opts.Scenario,
		Events:   events,
		Stats:    computeStats(events),
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return printTraceText(cmd, result)
}

func listChannels(ctx context.Context, st *store.Store, formatter *OutputFormatter, cmd *cobra.Command) error {
	ids, err := st.ListChannels(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list channels", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"channels": ids})
	}

	w := cmd.OutOrStdout()
	if len(ids) == 0 {
		fmt.Fprintln(w, "No channels recorded.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}

// computeStats summarizes an event list. Latched means an error event is
// present; posts count both value and error postings.
func computeStats(events []store.StoredEvent) TraceStats {
	stats := TraceStats{TotalEvents: len(events)}
	for _, ev := range events {
		switch ev.Kind {
		case "post":
			stats.Posts++
		case "ack":
			stats.Delivered++
		case "drop":
			stats.Dropped++
		case "error":
			stats.Latched = true
		}
	}
	return stats
}

func printTraceText(cmd *cobra.Command, result TraceResult) error {
	w := cmd.OutOrStdout()

	for _, ev := range result.Events {
		if ev.Err != "" {
			fmt.Fprintf(w, "[%d] %s %s error=%q\n", ev.Seq, ev.Channel, ev.Kind, ev.Err)
		} else {
			fmt.Fprintf(w, "[%d] %s %s %s\n", ev.Seq, ev.Channel, ev.Kind, ev.Value)
		}
	}

	fmt.Fprintf(w, "\nEvents: %d, Posts: %d, Delivered: %d, Dropped: %d, Latched: %v\n",
		result.Stats.TotalEvents, result.Stats.Posts, result.Stats.Delivered,
		result.Stats.Dropped, result.Stats.Latched)
	return nil
}
