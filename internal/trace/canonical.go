package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/rendez"
)

// MarshalCanonical produces RFC 8785 canonical JSON.
//
// This is the only serialization used for golden traces and event
// hashing. Key differences from encoding/json:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & stay literal)
//  3. Strings NFC normalized
//  4. Floats are rejected (no deterministic text form)
//  5. Null is rejected
func MarshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalCanonicalString(val)
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// EventMap converts a trace event to the map shape MarshalCanonical
// accepts. Empty optional fields are omitted; Wrapped payloads render as
// a one-key {"$wrapped": inner} object so boxing is visible in traces.
func EventMap(ev rendez.Event) (map[string]any, error) {
	m := map[string]any{
		"seq":     ev.Seq,
		"channel": ev.Channel,
		"kind":    string(ev.Kind),
	}
	if ev.Err != "" {
		m["error"] = ev.Err
	}
	if ev.Value != nil {
		v, err := canonicalValue(ev.Value)
		if err != nil {
			return nil, fmt.Errorf("event seq %d: %w", ev.Seq, err)
		}
		m["value"] = v
	}
	return m, nil
}

// MarshalValue serializes a single event payload as canonical JSON.
// Payloads the canonical form cannot express (a live awaitable, say)
// degrade to their fmt text rather than losing the event.
func MarshalValue(v any) ([]byte, error) {
	c, err := canonicalValue(v)
	if err != nil {
		return MarshalCanonical(fmt.Sprintf("%v", v))
	}
	return MarshalCanonical(c)
}

// EventMaps converts an event list element-wise with EventMap, yielding
// a slice ready to embed in a larger canonical document.
func EventMaps(events []rendez.Event) ([]any, error) {
	list := make([]any, len(events))
	for i, ev := range events {
		m, err := EventMap(ev)
		if err != nil {
			return nil, err
		}
		list[i] = m
	}
	return list, nil
}

// CanonicalValue converts an event payload to the shape MarshalCanonical
// accepts: Wrapped boxes become {"$wrapped": inner} objects, errors
// become their text, containers convert element-wise.
func CanonicalValue(v any) (any, error) {
	return canonicalValue(v)
}

func canonicalValue(v any) (any, error) {
	switch val := v.(type) {
	case rendez.Wrapped:
		inner, err := canonicalValue(rendez.Unwrap(val))
		if err != nil {
			return nil, err
		}
		return map[string]any{"$wrapped": inner}, nil
	case error:
		return val.Error(), nil
	case string, bool, int, int64:
		return val, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			c, err := canonicalValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			c, err := canonicalValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = c
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported trace value type: %T", v)
	}
}

func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	// RFC 8785 sorts keys by UTF-16 code units, which differs from byte
	// order for characters outside the BMP.
	sort.Slice(keys, func(i, j int) bool {
		return compareUTF16(keys[i], keys[j]) < 0
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalCanonicalString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := MarshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func compareUTF16(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ua) < len(ub):
		return -1
	case len(ua) > len(ub):
		return 1
	default:
		return 0
	}
}

// marshalCanonicalString produces a canonical JSON string.
// RFC 8785: no HTML escaping, and U+2028/U+2029 stay literal; only
// control characters, backslash and quote are escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	// encoding/json escapes U+2028/U+2029 for JavaScript embedding;
	// canonical JSON wants the literal characters back.
	return unescapeLineSeparators(result), nil
}

// unescapeLineSeparators converts \u2028 and \u2029 escape sequences to
// literal characters, leaving \\u2028 (escaped backslash plus text)
// untouched. Parity of the preceding backslash run tells the two apart.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if i+6 <= len(data) && data[i] == '\\' && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			backslashes := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 6
				continue
			}
		}
		out = append(out, data[i])
		i++
	}
	return out
}
