package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
	require.NoError(t, err)
	return s
}

func TestRun_FifoFlood(t *testing.T) {
	scenario := loadTestScenario(t, "fifo-flood.yaml")

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []any{1, 2, 3}, result.Reads)
	assert.Empty(t, result.Errors)
	// 3 posts + 3 deliver/ack pairs
	assert.Len(t, result.Trace, 9)
	assert.Empty(t, result.LatchedError)
}

func TestRun_ErrorLatch(t *testing.T) {
	scenario := loadTestScenario(t, "error-latch.yaml")

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []any{"a"}, result.Reads)
	assert.Equal(t, "pipe burst", result.LatchedError)
}

func TestRun_WrapShield(t *testing.T) {
	scenario := loadTestScenario(t, "wrap-shield.yaml")

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []any{"x"}, result.Reads)
	assert.Empty(t, result.LatchedError)
}

func TestRun_DeferredFifo(t *testing.T) {
	scenario := loadTestScenario(t, "deferred-fifo.yaml")

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []any{1, 2, 3}, result.Reads)
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "expect clause mismatch is reported, not fatal",
		Steps: []Step{
			{Op: OpPost, Value: 1},
			{Op: OpRecv, Expect: 2},
		},
		Assertions: []Assertion{
			{Type: AssertReadsOrder, Reads: []any{1}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected 2")
	// The read itself still happened and still matches reads_order.
	assert.Equal(t, []any{1}, result.Reads)
}

func TestRun_ExpectedErrorButRead(t *testing.T) {
	scenario := &Scenario{
		Name:        "expected-error",
		Description: "a recv that expected an error but read a value fails",
		Steps: []Step{
			{Op: OpPost, Value: "ok"},
			{Op: OpRecv, ExpectError: "boom"},
		},
		Assertions: []Assertion{
			{Type: AssertReadsOrder, Reads: []any{"ok"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], `expected error "boom"`)
}

func TestRun_FailedAssertionAccumulates(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing-assertions",
		Description: "every assertion runs even after one fails",
		Steps: []Step{
			{Op: OpPost, Value: 1},
			{Op: OpRecv},
		},
		Assertions: []Assertion{
			{Type: AssertReadsOrder, Reads: []any{2}},
			{Type: AssertTraceCount, Kind: "post", Count: 5},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 2)
}

func TestRun_FreshChannelPerRun(t *testing.T) {
	scenario := loadTestScenario(t, "fifo-flood.yaml")

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	// A fresh channel and clock per run means identical traces.
	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Reads, second.Reads)
}
