// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"math"
	"testing"
)

func defaultParams() Params {
	return Params{Mu: 50, Sigma: 20, NTrain: 50, NGame: 50, Price: 1, Cost: 0.2, Salvage: 0}
}

func TestGenerateDemandDatasetLengths(t *testing.T) {
	d := GenerateDemandDataset(defaultParams(), 42)

	if len(d.Training) != 50 {
		t.Errorf("Training length = %d, want 50", len(d.Training))
	}
	if len(d.InGame) != 50 {
		t.Errorf("InGame length = %d, want 50", len(d.InGame))
	}
}

func TestGenerateDemandDatasetDeterministic(t *testing.T) {
	p := defaultParams()
	d1 := GenerateDemandDataset(p, 42)
	d2 := GenerateDemandDataset(p, 42)

	for i := range d1.Training {
		if d1.Training[i] != d2.Training[i] {
			t.Fatalf("Training diverged at %d: %d vs %d", i, d1.Training[i], d2.Training[i])
		}
	}
	for i := range d1.InGame {
		if d1.InGame[i] != d2.InGame[i] {
			t.Fatalf("InGame diverged at %d: %d vs %d", i, d1.InGame[i], d2.InGame[i])
		}
	}
	if d1.DrawFailed != d2.DrawFailed {
		t.Error("DrawFailed differed between identical runs")
	}
}

func TestGenerateDemandDatasetNonNegative(t *testing.T) {
	d := GenerateDemandDataset(defaultParams(), 7)
	for _, v := range append(append([]int{}, d.Training...), d.InGame...) {
		if v < 0 {
			t.Fatalf("Dataset contains negative demand %d", v)
		}
	}
}

func TestGenerateDemandDatasetOptimalQ(t *testing.T) {
	d := GenerateDemandDataset(defaultParams(), 42)
	if d.OptimalQ != 67 {
		t.Errorf("OptimalQ = %d, want 67", d.OptimalQ)
	}
}

func TestGenerateDemandDatasetAcceptance(t *testing.T) {
	// An accepted draw passed either the strict or the relaxed bounds, so
	// it always sits within the relaxed ones.
	p := defaultParams()
	for _, seed := range []int64{1, 42, 12345} {
		d := GenerateDemandDataset(p, seed)
		if d.DrawFailed {
			t.Logf("seed %d exhausted the search, skipping", seed)
			continue
		}

		rtol := baseTolerances(p.Sigma).relaxed()
		if !acceptable(d.Training, d.InGame, p, d.OptimalQ, rtol) {
			t.Errorf("seed %d: accepted dataset violates relaxed bounds", seed)
		}
	}
}

func TestGenerateDemandDatasetBestQNearOptimum(t *testing.T) {
	p := defaultParams()
	d := GenerateDemandDataset(p, 42)
	if d.DrawFailed {
		t.Skip("search exhausted for this seed")
	}

	bestQ := bruteForceBestQ(d.InGame, p)
	slack := int(math.Round(0.1 * float64(d.OptimalQ)))
	if slack < 1 {
		slack = 1
	}
	diff := bestQ - d.OptimalQ
	if diff < 0 {
		diff = -diff
	}
	if diff > slack {
		t.Errorf("bruteForceBestQ = %d, optimalQ = %d, diff %d exceeds slack %d",
			bestQ, d.OptimalQ, diff, slack)
	}
}

func TestGenerateDemandDatasetDegenerate(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"zero sigma", Params{Mu: 50, Sigma: 0, NTrain: 50, NGame: 50, Price: 1, Cost: 0.2}},
		{"negative sigma", Params{Mu: 50, Sigma: -1, NTrain: 50, NGame: 50, Price: 1, Cost: 0.2}},
		{"zero game length", Params{Mu: 50, Sigma: 20, NTrain: 50, NGame: 0, Price: 1, Cost: 0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := GenerateDemandDataset(tt.p, 1)
			if !d.DrawFailed {
				t.Error("Expected DrawFailed for degenerate parameters")
			}
			if len(d.Training) != 0 || len(d.InGame) != 0 {
				t.Errorf("Expected empty dataset, got %d/%d", len(d.Training), len(d.InGame))
			}
		})
	}
}

func TestBruteForceBestQ(t *testing.T) {
	// Constant demand makes the exact demand the unique optimum.
	demands := []int{30, 30, 30, 30, 30}
	p := Params{Sigma: 5, Price: 1, Cost: 0.2, Salvage: 0}
	if got := bruteForceBestQ(demands, p); got != 30 {
		t.Errorf("bruteForceBestQ = %d, want 30", got)
	}
}
