// Package profiling summarizes sampled source banks.
package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/spatial/r3"

	"transportcore/domain/particle"
)

// Summary holds the usual descriptive statistics of one quantity
type Summary struct {
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	Median   float64
	Q25      float64
	Q75      float64
	Skewness float64
}

// BankSummary describes a bank of source sites
type BankSummary struct {
	Sites      int
	Counts     map[particle.Type]int
	Energy     Summary
	Weight     float64 // total weight
	Centroid   r3.Vec
	MeanDir    r3.Vec
	Anisotropy float64 // |MeanDir|, near zero for isotropic emission
}

// SummarizeBank computes energy statistics, per-particle counts, the
// position centroid and the mean emission direction
func SummarizeBank(bank []particle.Site) (BankSummary, error) {
	out := BankSummary{Sites: len(bank), Counts: make(map[particle.Type]int)}
	if len(bank) == 0 {
		return out, stats.EmptyInputErr
	}

	energies := make([]float64, len(bank))
	for i, s := range bank {
		energies[i] = s.Energy
		out.Counts[s.Type]++
		out.Weight += s.Weight
		out.Centroid = r3.Add(out.Centroid, s.Position)
		out.MeanDir = r3.Add(out.MeanDir, s.Direction)
	}
	n := float64(len(bank))
	out.Centroid = r3.Scale(1/n, out.Centroid)
	out.MeanDir = r3.Scale(1/n, out.MeanDir)
	out.Anisotropy = r3.Norm(out.MeanDir)

	summary, err := Summarize(energies)
	if err != nil {
		return out, err
	}
	out.Energy = summary
	return out, nil
}

// Summarize computes descriptive statistics of data
func Summarize(data []float64) (Summary, error) {
	var s Summary
	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.Q25, err = stats.Percentile(data, 25); err != nil {
		return s, err
	}
	if s.Q75, err = stats.Percentile(data, 75); err != nil {
		return s, err
	}
	s.Skewness = skewness(data, s.Mean, s.StdDev)
	return s, nil
}

// skewness is the adjusted Fisher-Pearson coefficient
func skewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d
	}
	return sum / n * math.Sqrt(n*(n-1)) / (n - 2)
}
