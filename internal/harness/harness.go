package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/roach88/rendez"
	"github.com/roach88/rendez/internal/testutil"
	"github.com/roach88/rendez/internal/trace"
)

// stepTimeout bounds a single recv. A recv against an empty, live
// channel has nothing to pair with in a sequential harness, so it would
// otherwise hang the suite.
const stepTimeout = 2 * time.Second

// defaultChannelID is used when a scenario does not fix one.
const defaultChannelID = "chan-1"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause and assertion
	// matched.
	Pass bool `json:"pass"`

	// Reads contains the values read by recv steps, in order. Reads that
	// failed with an error are not included.
	Reads []any `json:"reads"`

	// Errors contains step and assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Trace contains the recorded events in seq order.
	Trace []rendez.Event `json:"trace"`

	// LatchedError is the terminal error text, empty while the channel
	// stayed live.
	LatchedError string `json:"latched_error,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:  true,
		Reads: []any{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Harness executes one scenario against a fresh channel.
type Harness struct {
	ch     *rendez.Channel
	rec    *trace.Recorder
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh channel with a fixed identity and a
// fresh logical clock, so repeated runs produce identical traces. A
// non-nil error means the scenario could not be executed at all; expect
// and assertion failures are reported through Result instead.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with step-level debug logging.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	rec := trace.NewRecorder()

	var sched rendez.Scheduler
	switch scenario.Scheduler {
	case "", SchedImmediate:
		sched = rendez.Immediate{}
	case SchedDeferred:
		d := rendez.NewDeferred()
		defer d.Stop()
		sched = d
	default:
		return nil, fmt.Errorf("unknown scheduler %q", scenario.Scheduler)
	}

	id := scenario.ChannelID
	if id == "" {
		id = defaultChannelID
	}

	h := &Harness{
		ch: rendez.New(
			rendez.WithIDGenerator(testutil.NewFixedIDGenerator(id)),
			rendez.WithScheduler(sched),
			rendez.WithHook(rec.Record),
		),
		rec:    rec,
		logger: logger,
	}

	result := NewResult()
	ctx := context.Background()

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	result.Trace = h.rec.Snapshot()
	if err := h.ch.Err(); err != nil {
		result.LatchedError = err.Error()
	}

	runAssertions(scenario, result)
	return result, nil
}

// executeStep runs one step. Expect mismatches go into the result; the
// returned error is reserved for the harness itself misbehaving.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	switch step.Op {
	case OpPost:
		v := step.Value
		if step.Wrap {
			v = rendez.Wrap(v)
		}
		h.logger.Debug("post", "step", index, "value", v)
		h.ch.Post(v).Forget()
		return nil

	case OpRecv:
		recvCtx, cancel := context.WithTimeout(ctx, stepTimeout)
		defer cancel()

		v, err := h.ch.Next(recvCtx)
		if err != nil {
			h.logger.Debug("recv failed", "step", index, "error", err)
			if errors.Is(err, context.DeadlineExceeded) {
				result.AddError(fmt.Sprintf("steps[%d]: recv timed out after %s", index, stepTimeout))
				return nil
			}
			if step.ExpectError == "" {
				result.AddError(fmt.Sprintf("steps[%d]: recv failed: %v", index, err))
			} else if err.Error() != step.ExpectError {
				result.AddError(fmt.Sprintf("steps[%d]: recv failed with %q, expected %q", index, err, step.ExpectError))
			}
			return nil
		}

		if step.Unwrap {
			v = rendez.Unwrap(v)
		}
		h.logger.Debug("recv", "step", index, "value", v)
		result.Reads = append(result.Reads, v)

		if step.ExpectError != "" {
			result.AddError(fmt.Sprintf("steps[%d]: recv read %v, expected error %q", index, v, step.ExpectError))
		} else if step.Expect != nil && !reflect.DeepEqual(v, step.Expect) {
			result.AddError(fmt.Sprintf("steps[%d]: recv read %v, expected %v", index, v, step.Expect))
		}
		return nil

	case OpFail:
		h.logger.Debug("fail", "step", index, "error", step.Error)
		h.ch.Fail(errors.New(step.Error))
		return nil

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

// runAssertions validates the final result against the scenario's
// assertion list. Every assertion runs; failures accumulate.
func runAssertions(scenario *Scenario, result *Result) {
	for i, assertion := range scenario.Assertions {
		var err error
		switch assertion.Type {
		case AssertReadsOrder:
			err = assertReadsOrder(result, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result, assertion)
		case AssertErrorLatched:
			err = assertErrorLatched(result, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}
		if err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
}
