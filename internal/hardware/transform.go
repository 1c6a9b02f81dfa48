package hardware

import "math"

// Quantize maps real values to saturating fixed-point integers:
// round(v * scale) clamped to [MinValue, MaxValue]. Never wraps.
// Halves round away from zero; NaN maps to 0.
func Quantize(values []float64, scale float64, cfg Config) []int64 {
	lo, hi := cfg.MinValue(), cfg.MaxValue()
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = quantizeOne(v*scale, lo, hi)
	}
	return out
}

func quantizeOne(v float64, lo, hi int64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	// Clamp in float space first so huge values never overflow int64.
	if r >= float64(hi) {
		return hi
	}
	if r <= float64(lo) {
		return lo
	}
	return int64(r)
}

// RowToColumnMajor reorders a row-major rows×cols buffer into column-major:
// element (r, c) moves to offset c*rows + r.
//
// Applying it again with rows and cols swapped restores the original.
func RowToColumnMajor(m []int64, rows, cols int) []int64 {
	out := make([]int64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out[c*rows+r] = m[r*cols+c]
		}
	}
	return out
}

// Pad copies a row-major rows×cols buffer into the top-left corner of a
// zeroed targetRows×targetCols buffer. Source elements outside the target
// are dropped.
func Pad(m []int64, rows, cols, targetRows, targetCols int) []int64 {
	out := make([]int64, targetRows*targetCols)
	for r := 0; r < min(rows, targetRows); r++ {
		for c := 0; c < min(cols, targetCols); c++ {
			out[r*targetCols+c] = m[r*cols+c]
		}
	}
	return out
}
