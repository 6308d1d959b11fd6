package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/rendez"
	"github.com/roach88/rendez/internal/trace"
)

// TraceSnapshot captures the observable outcome of a scenario run.
// Serialized as canonical JSON, so the golden bytes are deterministic.
type TraceSnapshot struct {
	ScenarioName string         `json:"scenario_name"`
	Reads        []any          `json:"reads"`
	Trace        []rendez.Event `json:"trace"`
	LatchedError string         `json:"latched_error,omitempty"`
}

// toCanonicalMap converts the snapshot to the map shape MarshalCanonical
// accepts. Reads pass through canonicalValue the same way trace payloads
// do, so wrapped values render as {"$wrapped": inner} in both places.
func (s *TraceSnapshot) toCanonicalMap() (map[string]any, error) {
	reads := make([]any, len(s.Reads))
	for i, v := range s.Reads {
		c, err := trace.CanonicalValue(v)
		if err != nil {
			return nil, err
		}
		reads[i] = c
	}

	traceList, err := trace.EventMaps(s.Trace)
	if err != nil {
		return nil, err
	}

	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"reads":         reads,
		"trace":         traceList,
	}
	if s.LatchedError != "" {
		m["latched_error"] = s.LatchedError
	}
	return m, nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. A snapshot mismatch fails
// the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-obtained result against the golden
// file for scenarioName.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Reads:        result.Reads,
		Trace:        result.Trace,
		LatchedError: result.LatchedError,
	}

	m, err := snapshot.toCanonicalMap()
	if err != nil {
		return err
	}
	traceJSON, err := trace.MarshalCanonical(m)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
