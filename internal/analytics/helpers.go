package analytics

import (
	"math"
	"strconv"
	"strings"

	"github.com/gridstats/gridstats/internal/models"
	"github.com/gridstats/gridstats/internal/utils"
)

// SafeInt coerces v to an int. Integral numbers and strings such as "12" or
// "-3" convert; sentinels like "R", fractional strings and nil yield def.
func SafeInt(v interface{}, def int) int {
	switch val := v.(type) {
	case nil:
		return def
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return def
		}
		return n
	case bool:
		return def
	}

	if i, ok := utils.ToInt64(v); ok {
		return int(i)
	}
	if f, ok := utils.ToFloat64(v); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return def
}

// SafeFloat coerces v to a float64, returning def when it cannot.
// Strings accept anything strconv.ParseFloat does, including "inf".
func SafeFloat(v interface{}, def float64) float64 {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return def
		}
		return f
	}
	if f, ok := utils.ToFloat64(v); ok {
		return f
	}
	return def
}

// SafeDivide returns num/den, or def when den is exactly zero
func SafeDivide(num, den, def float64) float64 {
	if den == 0 {
		return def
	}
	return num / den
}

// SafeDividePtr returns num/den, or nil when den is exactly zero
func SafeDividePtr(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	return Float64Ptr(num / den)
}

// Percent returns 100*num/den, or 0 when den is zero
func Percent(num, den int) float64 {
	return SafeDivide(float64(num), float64(den), 0) * 100
}

// IsDNF classifies an upstream status string as a retirement
func IsDNF(status string) bool {
	return models.IsDNF(status)
}

// SafeCorrelation returns the Pearson correlation of x and y. It returns nil
// when the lengths differ, fewer than two pairs exist, or either side has
// zero variance.
func SafeCorrelation(x, y []float64) *float64 {
	n := len(x)
	if n < 2 || n != len(y) {
		return nil
	}

	mx, my := Series(x).Mean(), Series(y).Mean()
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}

	if sxx == 0 || syy == 0 {
		return nil
	}

	r := sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	r = Clamp(r, -1, 1)
	return &r
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round2 rounds to two decimal places for presentation
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
