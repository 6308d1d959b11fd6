package rendez

// Wrapped is an immutable opaque box around a single value.
//
// Boxing exempts the value from the two implicit behaviours of delivery:
// awaitable resolution (a wrapped Channel or Receipt is delivered as the
// box, not chased to its eventual value) and terminal-error conflation
// (a wrapped error is ordinary data, not a termination signal).
type Wrapped struct {
	value any
}

// Wrap boxes v. Wrapping is not recursive; Wrap(Wrap(v)) is a box in a
// box and unwraps one level at a time.
func Wrap(v any) Wrapped {
	return Wrapped{value: v}
}

// Unwrap returns the boxed value if v is a box, or v unchanged.
// It is total: safe to call unconditionally on any value, including nil.
func Unwrap(v any) any {
	if w, ok := v.(Wrapped); ok {
		return w.value
	}
	return v
}

// IsWrapped reports whether v is a box produced by Wrap.
func IsWrapped(v any) bool {
	_, ok := v.(Wrapped)
	return ok
}
