package typedvalue

import (
	"math"
	"strconv"
)

func itoa64(n int64) string {
	return strconv.FormatInt(n, 10)
}

func atoi64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func mathIsNaNOrInf(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
