// Package analytics provides the numeric helpers shared by the race
// analytics packages (entity, team, compare, field). Everything here is
// pure: no I/O, no shared state, safe for concurrent use.
package analytics

import (
	"math"
)

// Series is an ordered sequence of per-race values
type Series []float64

// Len returns the number of values
func (s Series) Len() int {
	return len(s)
}

// Sum returns the sum of all values
func (s Series) Sum() float64 {
	total := 0.0
	for _, v := range s {
		total += v
	}
	return total
}

// Mean returns the arithmetic mean, or 0 for an empty series
func (s Series) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	return s.Sum() / float64(len(s))
}

// PopulationStdDev returns the population standard deviation (divides by n)
func (s Series) PopulationStdDev() float64 {
	if len(s) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(s)))
}

// Variance returns the population variance
func (s Series) Variance() float64 {
	sd := s.PopulationStdDev()
	return sd * sd
}

// Min returns the smallest value, or 0 for an empty series
func (s Series) Min() float64 {
	if len(s) == 0 {
		return 0
	}
	m := s[0]
	for _, v := range s[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value, or 0 for an empty series
func (s Series) Max() float64 {
	if len(s) == 0 {
		return 0
	}
	m := s[0]
	for _, v := range s[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// MeanPtr returns the mean, or nil for an empty series
func (s Series) MeanPtr() *float64 {
	if len(s) == 0 {
		return nil
	}
	return Float64Ptr(s.Mean())
}

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 {
	return &v
}
