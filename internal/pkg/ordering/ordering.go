// Package ordering allocates integer positions for siblings (columns or rows of one table).
//
// Callers read the current maximum under a lock on the parent and then use Next or Span, so
// positions stay distinct and consecutive for appends.
package ordering

// Next returns the position after max, or 0 when there are no siblings yet.
func Next(max *int) int {
	if max == nil {
		return 0
	}
	return *max + 1
}

// Span returns n consecutive positions starting at Next(max).
func Span(max *int, n int) []int {
	if n <= 0 {
		return nil
	}
	start := Next(max)
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}
