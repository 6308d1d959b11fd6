package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rendez/internal/harness"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// FileValidation holds the validation outcome for one scenario file.
type FileValidation struct {
	File   string `json:"file"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ValidateResult holds the overall validation result.
type ValidateResult struct {
	Files   []FileValidation `json:"files"`
	Valid   int              `json:"valid"`
	Invalid int              `json:"invalid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <scenario-file-or-dir>",
		Short: "Validate scenario files",
		Long: `Validate scenario files without running them.

Each file is checked structurally against the scenario schema (field
types, known ops and assertion kinds) and semantically (required fields,
step combinations). Nothing is executed.

Exit codes:
  0 - All files valid
  1 - One or more files invalid
  2 - Command error (path not found, etc.)

Examples:
  rendez validate ./scenarios
  rendez validate ./scenarios/fifo-flood.yaml
  rendez validate ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("path not found: %s", path))
	} else if err != nil {
		return WrapExitError(ExitCommandError, "failed to stat path", err)
	}

	var files []string
	if info.IsDir() {
		files, err = findScenarioFiles(path, "")
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scenarios", err)
		}
		if len(files) == 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("no scenario files in %s", path))
		}
	} else {
		files = []string{path}
	}

	w := cmd.OutOrStdout()
	result := ValidateResult{Files: make([]FileValidation, 0, len(files))}

	for _, file := range files {
		fv := FileValidation{File: file, Valid: true}

		err := harness.ValidateScenarioFile(file)
		if err == nil {
			_, err = harness.LoadScenario(file)
		}
		if err != nil {
			fv.Valid = false
			fv.Reason = err.Error()
		}

		if fv.Valid {
			result.Valid++
			if opts.Format != "json" {
				fmt.Fprintf(w, "✓ %s\n", file)
			}
		} else {
			result.Invalid++
			if opts.Format != "json" {
				fmt.Fprintf(w, "✗ %s\n", file)
				fmt.Fprintf(w, "  %s\n", fv.Reason)
			}
		}
		result.Files = append(result.Files, fv)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: w, Verbose: opts.Verbose}
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "\nValid: %d, Invalid: %d\n", result.Valid, result.Invalid)
	}

	if result.Invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) invalid", result.Invalid))
	}
	return nil
}
