package benchmark

import (
	"math"

	"golang.org/x/exp/slices"
)

type Statistics struct {
	Count             int     `json:"count"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	Average           float64 `json:"average"`
	Median            float64 `json:"median"`
	StandardDeviation float64 `json:"standardDeviation"`
}

// statistics summarises samples, which must not be empty.
func statistics(samples []float64) *Statistics {
	return &Statistics{
		Count:             len(samples),
		Min:               minFloat64(samples),
		Max:               maxFloat64(samples),
		Average:           avgFloat64(samples),
		Median:            medianFloat64(samples),
		StandardDeviation: standardDeviationFloat64(samples),
	}
}

func minFloat64(input []float64) float64 {
	var m float64
	for i, e := range input {
		if i == 0 || e < m {
			m = e
		}
	}
	return m
}

func maxFloat64(input []float64) float64 {
	var m float64
	for i, e := range input {
		if i == 0 || e > m {
			m = e
		}
	}
	return m
}

// sumFloat64 uses Neumaier's compensated summation, so that e.g. fifty samples of 0.3 average to
// exactly 0.3.
func sumFloat64(input []float64) float64 {
	var sum, compensation float64
	for _, e := range input {
		t := sum + e
		if math.Abs(sum) >= math.Abs(e) {
			compensation += (sum - t) + e
		} else {
			compensation += (e - t) + sum
		}
		sum = t
	}
	return sum + compensation
}

func avgFloat64(input []float64) float64 {
	num := len(input)
	if num == 0 {
		return 0
	}
	return sumFloat64(input) / float64(num)
}

func medianFloat64(input []float64) float64 {
	num := len(input)
	if num == 0 {
		return 0
	}
	sorted := slices.Clone(input)
	slices.Sort(sorted)
	if num%2 == 1 {
		return sorted[num/2]
	}
	return (sorted[num/2-1] + sorted[num/2]) / 2
}

// Sample variance, zero with fewer than two samples.
func varianceFloat64(input []float64) float64 {
	if len(input) < 2 {
		return 0
	}
	avg := avgFloat64(input)
	deviations := make([]float64, 0, len(input))
	for _, e := range input {
		deviations = append(deviations, math.Pow(e-avg, 2))
	}
	return sumFloat64(deviations) / float64(len(input)-1)
}

func standardDeviationFloat64(input []float64) float64 {
	return math.Sqrt(varianceFloat64(input))
}
