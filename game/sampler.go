// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import "math"

// DaysPerWeek is the number of demand days played per ordering week.
const DaysPerWeek = 5

// LCG parameters (numerical recipes 32-bit constants)
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
)

// truncatedDrawCap bounds the rejection loop in TruncatedNormalInt.
const truncatedDrawCap = 10000

// Sampler is a seeded, deterministic pseudorandom source. Each dataset
// search constructs its own instance from an explicit seed, so draws are
// reproducible and tests never depend on ambient randomness.
type Sampler struct {
	state uint32
}

func NewSampler(seed int64) *Sampler {
	return &Sampler{state: uint32(seed)}
}

// Float64 returns a uniform value in [0, 1).
func (s *Sampler) Float64() float64 {
	s.state = s.state*lcgMultiplier + lcgIncrement
	return float64(s.state) / (1 << 32)
}

// Norm returns a standard-normal variate via the Box-Muller transform.
func (s *Sampler) Norm() float64 {
	var u, v float64
	for u == 0 {
		u = s.Float64()
	}
	for v == 0 {
		v = s.Float64()
	}
	return math.Sqrt(-2.0*math.Log(u)) * math.Cos(2.0*math.Pi*v)
}

// TruncatedNormalInt draws from N(mu, sigma) until a non-negative value
// appears, then rounds to the nearest integer. If the attempt cap is
// exhausted it falls back to round(mu), so the call always terminates.
func (s *Sampler) TruncatedNormalInt(mu, sigma float64) int {
	for i := 0; i < truncatedDrawCap; i++ {
		x := mu + sigma*s.Norm()
		if x >= 0 {
			return int(math.Round(x))
		}
	}
	if mu < 0 {
		return 0
	}
	return int(math.Round(mu))
}

// Shuffle permutes xs in place with a Fisher-Yates pass driven by the
// same sampler stream.
func (s *Sampler) Shuffle(xs []int) {
	for i := len(xs) - 1; i > 0; i-- {
		j := int(s.Float64() * float64(i+1))
		xs[i], xs[j] = xs[j], xs[i]
	}
}
