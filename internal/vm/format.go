package vm

import (
	"math"
	"strconv"
)

// trimFloat formats a float64 in the layout of the reference VM's
// printf("%g", n): integral values print without a trailing ".0" or exponent
// for the common case, NaN/Inf print their IEEE names. Unlike %g's six
// significant digits, it prints the shortest digits that round-trip, so
// 0.1 + 0.2 prints as 0.30000000000000004.
func trimFloat(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
