package analytics

// LinearFit fits y = intercept + slope*x by least squares with x = 0..n-1.
// ok is false when fewer than two values are given.
func LinearFit(values []float64) (slope, intercept float64, ok bool) {
	if len(values) < 2 {
		return 0, 0, false
	}

	n := float64(len(values))
	var sumX, sumY, sumXY, sumX2 float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0, 0, false
	}

	slope = (n*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}

// Slope returns the least-squares slope of values over their index, or nil
func Slope(values []float64) *float64 {
	slope, _, ok := LinearFit(values)
	if !ok {
		return nil
	}
	return &slope
}

// RollingMean returns, for every index i, the mean of values[i-window+1..i].
// The first window-1 entries are nil. Nil inputs inside a window are skipped;
// a window with no values yields nil.
func RollingMean(values []*float64, window int) []*float64 {
	if window < 1 {
		window = 1
	}
	out := make([]*float64, len(values))
	for i := range values {
		if i < window-1 {
			continue
		}
		var s Series
		for _, v := range values[i-window+1 : i+1] {
			if v != nil {
				s = append(s, *v)
			}
		}
		out[i] = s.MeanPtr()
	}
	return out
}
