package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestGolden_AllScenarios runs every scenario in testdata/scenarios and
// compares its snapshot against the golden file of the same name.
// Regenerate with: go test ./internal/harness -update
func TestGolden_AllScenarios(t *testing.T) {
	scenarios, err := LoadScenarioDir(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

// TestGolden_SchedulersConverge checks the core delivery guarantee at
// the snapshot level: immediate and deferred runs of the same step
// sequence produce identical observable outcomes.
func TestGolden_SchedulersConverge(t *testing.T) {
	immediate := loadTestScenario(t, "fifo-flood.yaml")
	deferred := loadTestScenario(t, "deferred-fifo.yaml")

	ri, err := Run(immediate)
	require.NoError(t, err)
	rd, err := Run(deferred)
	require.NoError(t, err)

	require.Equal(t, ri.Reads, rd.Reads)
	require.Equal(t, ri.Trace, rd.Trace)
}
