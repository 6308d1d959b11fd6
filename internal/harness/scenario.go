package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios drive a sequence of channel operations and assert on the
// values read and the resulting trace.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// ChannelID fixes the channel identity for deterministic traces.
	// Defaults to "chan-1".
	ChannelID string `yaml:"channel_id,omitempty"`

	// Scheduler selects the dispatch policy: "immediate" (default) or
	// "deferred". Both must produce the same trace for the same steps.
	Scheduler string `yaml:"scheduler,omitempty"`

	// Steps is the operation sequence, executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the reads and the final trace.
	// Supported types: reads_order, trace_count, error_latched.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is a single channel operation.
type Step struct {
	// Op is the operation: "post", "recv" or "fail".
	Op string `yaml:"op"`

	// Value is the payload for post.
	Value any `yaml:"value,omitempty"`

	// Wrap boxes the posted value so the channel treats it as plain data
	// (errors stay deliverable, awaitables stay unresolved).
	Wrap bool `yaml:"wrap,omitempty"`

	// Unwrap unboxes a wrapped value after recv, before expect comparison.
	Unwrap bool `yaml:"unwrap,omitempty"`

	// Expect is the value a recv must read. Nil means no validation.
	Expect any `yaml:"expect,omitempty"`

	// ExpectError is the error text a recv must fail with.
	// Mutually exclusive with Expect.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Error is the terminal error text for fail.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates reads or trace after all steps ran.
type Assertion struct {
	// Type specifies the assertion type:
	// - "reads_order": values read match exactly, in order
	// - "trace_count": events of a kind appear exactly N times
	// - "error_latched": the channel latched with this error text
	Type string `yaml:"type"`

	// Reads is the expected read sequence (reads_order).
	Reads []any `yaml:"reads,omitempty"`

	// Kind is the event kind to count (trace_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of events (trace_count).
	Count int `yaml:"count,omitempty"`

	// Error is the expected latched error text (error_latched).
	Error string `yaml:"error,omitempty"`
}

// Step op constants.
const (
	OpPost = "post"
	OpRecv = "recv"
	OpFail = "fail"
)

// Assertion type constants.
const (
	AssertReadsOrder   = "reads_order"
	AssertTraceCount   = "trace_count"
	AssertErrorLatched = "error_latched"
)

// Scheduler name constants.
const (
	SchedImmediate = "immediate"
	SchedDeferred  = "deferred"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml scenario in a directory, sorted by
// file name so suite order is stable across platforms.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenario dir: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Scheduler {
	case "", SchedImmediate, SchedDeferred:
	default:
		return fmt.Errorf("unknown scheduler %q", s.Scheduler)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its op.
func validateStep(index int, step *Step) error {
	switch step.Op {
	case OpPost:
		if step.Value == nil {
			return fmt.Errorf("steps[%d]: value is required for post", index)
		}
		if step.Unwrap {
			return fmt.Errorf("steps[%d]: unwrap is only valid on recv", index)
		}
	case OpRecv:
		if step.Expect != nil && step.ExpectError != "" {
			return fmt.Errorf("steps[%d]: expect and expect_error are mutually exclusive", index)
		}
		if step.Wrap {
			return fmt.Errorf("steps[%d]: wrap is only valid on post", index)
		}
	case OpFail:
		if step.Error == "" {
			return fmt.Errorf("steps[%d]: error is required for fail", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertReadsOrder:
		if a.Reads == nil {
			return fmt.Errorf("assertions[%d]: reads is required for reads_order", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertErrorLatched:
		if a.Error == "" {
			return fmt.Errorf("assertions[%d]: error is required for error_latched", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
