package harness

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

// ValidateScenarioFile checks a scenario YAML file against the embedded
// CUE schema. This is the structural half of validation: it rejects
// wrong field types, unknown ops and unknown assertion kinds with CUE's
// path-qualified error messages, before the Go validator sees the file.
func ValidateScenarioFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read scenario file: %w", err)
	}
	return validateScenarioBytes(path, data)
}

func validateScenarioBytes(path string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("failed to compile scenario schema: %w", err)
	}

	if err := cueyaml.Validate(data, schema); err != nil {
		return fmt.Errorf("%s: schema validation failed: %w", path, err)
	}
	return nil
}
