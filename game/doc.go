// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package game implements the newsvendor math: demand synthesis, the
closed-form optimizer, profit evaluation, and leaderboard scoring.

# Demand Synthesis

GenerateDemandDataset draws a training history plus a hidden in-game
series from a truncated normal, searching for a draw whose sample moments
match the requested distribution:

	dataset := game.GenerateDemandDataset(game.Params{
		Mu: 50, Sigma: 20, NTrain: 50, NGame: 50,
		Price: 1, Cost: 0.2, Salvage: 0,
	}, seed)

The search also requires the in-game series to reward the closed-form
optimal quantity: the best brute-force order over the series must land
near it. A constrained search runs first, then a relaxed one with wider
tolerances; if both are exhausted the fallback draw is flagged with
DrawFailed.

All randomness flows through the deterministic Sampler, so a seed fully
reproduces a dataset.

# Optimizer

OptimalOrderQuantity solves the critical-fractile problem:

	q := game.OptimalOrderQuantity(mu, sigma, price, cost, salvage)

The inverse normal CDF uses Acklam's rational approximation.

# Profit

ProfitForDay prices a single day:

	profit = price*sold + salvage*leftover - cost*qty

# Scoring

RecomputePlayer rebuilds a player's daily and cumulative profit from
their full order history and the revealed demand prefix; missing orders
count as zero. ComputeLeaderboard sorts by profit and caps the board at
LeaderboardCap rows.
*/
package game
