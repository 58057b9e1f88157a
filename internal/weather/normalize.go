package weather

import (
	"encoding/json"
	"math"
	"strconv"
)

// Normalize coerces an arbitrary, possibly malformed value into a sequence of
// exactly 24 finite numbers. It is the single normalization primitive for
// every externally-generated array (model-produced or provider-produced) and
// is total: it never fails, whatever the input.
//
// Policy, preserved exactly because it shapes degraded data shown to
// operators:
//   - non-sequence input yields 24 copies of fill
//   - short input is padded by repeating the last present element
//     (empty input is padded entirely with fill)
//   - long input keeps only the first 24 elements, no resampling
//   - elements that do not coerce to a finite number become fill
func Normalize(input any, fill float64) []float64 {
	out := make([]float64, 0, HoursPerDay)

	var elems []any
	switch v := input.(type) {
	case []any:
		elems = v
	case []float64:
		elems = make([]any, len(v))
		for i, f := range v {
			elems[i] = f
		}
	case []int:
		elems = make([]any, len(v))
		for i, n := range v {
			elems[i] = n
		}
	default:
		for i := 0; i < HoursPerDay; i++ {
			out = append(out, fill)
		}
		return out
	}

	for _, e := range elems {
		if len(out) == HoursPerDay {
			break
		}
		out = append(out, coerceNumber(e, fill))
	}

	pad := fill
	if len(out) > 0 {
		pad = out[len(out)-1]
	}
	for len(out) < HoursPerDay {
		out = append(out, pad)
	}

	return out
}

// coerceNumber converts a single element to a finite float64, falling back to
// fill when it cannot.
func coerceNumber(v any, fill float64) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return fill
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return fill
		}
		f = parsed
	default:
		return fill
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fill
	}
	return f
}
