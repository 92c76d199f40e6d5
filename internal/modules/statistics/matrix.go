package statistics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// CovarianceMatrix computes the population covariance between every pair of
// columns in the return table. Element (i, j) is the covariance between
// column i and column j; the matrix is symmetric by construction.
func CovarianceMatrix(table [][]float64) *mat.SymDense {
	n := len(table)
	cov := mat.NewSymDense(n, nil)

	means := make([]float64, n)
	for i, col := range table {
		means[i] = Mean(col)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, popCovariance(table[i], table[j], means[i], means[j]))
		}
	}
	return cov
}

// CorrelationMatrix computes the correlation matrix of the return table by
// normalizing the population covariance with the product of the per-column
// standard deviations. Entries are 0 where either standard deviation is 0.
func CorrelationMatrix(table [][]float64) *mat.SymDense {
	n := len(table)
	cov := CovarianceMatrix(table)
	corr := mat.NewSymDense(n, nil)

	stdDevs := make([]float64, n)
	for i, col := range table {
		stdDevs[i] = PopStdDev(col)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if stdDevs[i] != 0 && stdDevs[j] != 0 {
				corr.SetSym(i, j, cov.At(i, j)/(stdDevs[i]*stdDevs[j]))
			} else {
				corr.SetSym(i, j, 0)
			}
		}
	}
	return corr
}

// PortfolioStdDev computes sqrt(w' Σ w) for a weight vector and a covariance
// matrix. A degenerate negative variance from floating error is clamped to 0.
func PortfolioStdDev(weights []float64, cov *mat.SymDense) float64 {
	n := len(weights)
	var variance float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			variance += weights[i] * weights[j] * cov.At(i, j)
		}
	}
	return math.Sqrt(math.Max(variance, 0))
}

// popCovariance is the population covariance (denominator N) of two equal
// length series with precomputed means.
func popCovariance(x, y []float64, meanX, meanY float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for k := range x {
		sum += (x[k] - meanX) * (y[k] - meanY)
	}
	return sum / float64(len(x))
}
