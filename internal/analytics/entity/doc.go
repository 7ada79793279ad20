// Package entity computes metrics over one driver's or constructor's
// race-result sequence: consistency, DNF rate, points per race, recent
// form, grid/finish correlation, circuit performance and season statistics.
//
// Insufficient input never produces an error. Results carry the counts
// and flags needed to explain a nil metric.
package entity
