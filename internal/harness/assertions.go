package harness

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/rendez"
)

// AssertionError is returned when an assertion fails.
// It includes the full trace so a failure report stands on its own.
type AssertionError struct {
	Type     string         // Assertion type for categorization
	Expected string         // Human-readable expected outcome
	Actual   string         // Human-readable actual outcome
	Trace    []rendez.Event // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		if ev.Err != "" {
			fmt.Fprintf(&buf, "  [%d] %s error=%q\n", ev.Seq, ev.Kind, ev.Err)
		} else {
			fmt.Fprintf(&buf, "  [%d] %s %v\n", ev.Seq, ev.Kind, ev.Value)
		}
	}

	return buf.String()
}

// assertReadsOrder checks that recv steps read exactly the expected
// values, in order. Exact match, not subset: a missing or extra read is
// a failure.
func assertReadsOrder(result *Result, assertion Assertion) error {
	if reflect.DeepEqual(result.Reads, assertion.Reads) {
		return nil
	}
	return &AssertionError{
		Type:     AssertReadsOrder,
		Expected: fmt.Sprintf("reads %v", assertion.Reads),
		Actual:   fmt.Sprintf("reads %v", result.Reads),
		Trace:    result.Trace,
	}
}

// assertTraceCount checks that events of a kind appear exactly the
// specified number of times.
func assertTraceCount(result *Result, assertion Assertion) error {
	count := 0
	for _, ev := range result.Trace {
		if string(ev.Kind) == assertion.Kind {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d %s events", assertion.Count, assertion.Kind),
			Actual:   fmt.Sprintf("%d %s events", count, assertion.Kind),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertErrorLatched checks that the channel latched with the expected
// error text.
func assertErrorLatched(result *Result, assertion Assertion) error {
	if result.LatchedError == assertion.Error {
		return nil
	}

	actual := fmt.Sprintf("latched with %q", result.LatchedError)
	if result.LatchedError == "" {
		actual = "channel still live"
	}
	return &AssertionError{
		Type:     AssertErrorLatched,
		Expected: fmt.Sprintf("latched with %q", assertion.Error),
		Actual:   actual,
		Trace:    result.Trace,
	}
}
