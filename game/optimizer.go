// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"errors"
	"math"
)

var ErrProbabilityRange = errors.New("p must be in (0, 1)")

// Acklam's rational approximation of the inverse standard normal CDF.
// Accurate to about 1e-9 over the full open interval.
var (
	invNormA = [6]float64{-39.69683028665376, 220.9460984245205, -275.9285104469687, 138.3577518672690, -30.66479806614716, 2.506628277459239}
	invNormB = [5]float64{-54.47609879822406, 161.5858368580409, -155.6989798598866, 66.80131188771972, -13.28068155288572}
	invNormC = [6]float64{-0.007784894002430293, -0.3223964580411365, -2.400758277161838, -2.549732539343734, 4.374664141464968, 2.938163982698783}
	invNormD = [4]float64{0.007784695709041462, 0.3224671290700398, 2.445134137142996, 3.754408661907416}
)

// InvNormCDF inverts the standard normal CDF at p.
func InvNormCDF(p float64) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, ErrProbabilityRange
	}

	const plow = 0.02425
	const phigh = 1 - plow

	a, b, c, d := invNormA, invNormB, invNormC, invNormD

	if p < plow {
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1), nil
	}
	if p > phigh {
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1), nil
	}

	q := p - 0.5
	r := q * q
	return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
		(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1), nil
}

// OptimalOrderQuantity returns the critical-fractile order quantity for a
// normal demand distribution. Degenerate economics resolve without error:
// no margin orders nothing, costless overage orders the mean.
func OptimalOrderQuantity(mu, sigma, price, cost, salvage float64) int {
	underage := price - cost
	overage := cost - salvage

	if underage <= 0 {
		return 0
	}
	if overage < 0 {
		if mu < 0 {
			return 0
		}
		return int(math.Round(mu))
	}

	crit := underage / (underage + overage)
	z, err := InvNormCDF(crit)
	if err != nil {
		// crit is strictly inside (0,1) when both slopes are positive
		return 0
	}

	q := mu + z*sigma
	if q < 0 {
		return 0
	}
	return int(math.Round(q))
}
