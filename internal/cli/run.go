package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rendez/internal/harness"
	"github.com/roach88/rendez/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string // optional trace persistence
	Filter   string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name         string   `json:"name"`
	Pass         bool     `json:"pass"`
	Reads        []any    `json:"reads,omitempty"`
	LatchedError string   `json:"latched_error,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

// RunResult holds the overall run result.
type RunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run conformance scenarios against a fresh channel each.

Every scenario file is schema-validated, executed step by step, and its
assertions checked. With --db, the recorded trace of each scenario is
persisted to SQLite for later inspection with 'rendez trace'.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  rendez run ./scenarios
  rendez run ./scenarios --filter "fifo-*"
  rendez run ./scenarios --db ./traces.db
  rendez run ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for trace persistence")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runScenarios(opts *RunOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	logger := newLogger(opts.Verbose)

	var st *store.Store
	if opts.Database != "" {
		var err error
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return formatter.Success(RunResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := RunResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, file := range scenarioFiles {
		scenResult := runOneScenario(context.Background(), file, st, logger, opts, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "\nPassed: %d, Failed: %d, Total: %d\n",
			result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// runOneScenario validates, executes and optionally persists a single
// scenario file. Load and execution errors become failed results rather
// than aborting the whole run.
func runOneScenario(ctx context.Context, file string, st *store.Store, logger *slog.Logger, opts *RunOptions, cmd *cobra.Command) ScenarioResult {
	w := cmd.OutOrStdout()
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	fail := func(msg string) ScenarioResult {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✗ %s\n", name)
			fmt.Fprintf(w, "  %s\n", msg)
		}
		return ScenarioResult{Name: name, Pass: false, Errors: []string{msg}}
	}

	if err := harness.ValidateScenarioFile(file); err != nil {
		return fail(fmt.Sprintf("schema validation failed: %v", err))
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return fail(fmt.Sprintf("failed to load scenario: %v", err))
	}
	name = scenario.Name

	result, err := harness.RunWithLogger(scenario, logger)
	if err != nil {
		return fail(fmt.Sprintf("execution failed: %v", err))
	}

	if st != nil {
		if err := st.WriteEvents(ctx, scenario.Name, result.Trace); err != nil {
			return fail(fmt.Sprintf("failed to persist trace: %v", err))
		}
	}

	if opts.Format != "json" {
		if result.Pass {
			fmt.Fprintf(w, "✓ %s\n", scenario.Name)
		} else {
			fmt.Fprintf(w, "✗ %s\n", scenario.Name)
			for _, e := range result.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}

	return ScenarioResult{
		Name:         scenario.Name,
		Pass:         result.Pass,
		Reads:        result.Reads,
		LatchedError: result.LatchedError,
		Errors:       result.Errors,
	}
}

// findScenarioFiles finds all YAML scenario files in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// newLogger builds the step logger: debug level when verbose, info
// otherwise, always to stderr so JSON output stays clean.
func newLogger(verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
}
