// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"sort"

	"github.com/siemsene/newsvendor/models"
)

// LeaderboardCap is the maximum number of rows kept on a session record.
const LeaderboardCap = 50

// RecomputePlayer rebuilds a player's full daily profit series from their
// order history and the revealed demand prefix. Reveals always recompute
// from scratch instead of incrementing, so a player row that missed a
// best-effort batch write heals on the next reveal.
//
// The order for a week applies to all five of its days; a week with no
// submitted order scores as an order of zero.
func RecomputePlayer(orders []*int, revealed []int, price, cost, salvage float64) (daily []float64, cumulative float64) {
	daily = make([]float64, 0, len(revealed))
	for day, demand := range revealed {
		week := day / DaysPerWeek
		qty := 0
		if week < len(orders) && orders[week] != nil {
			qty = *orders[week]
		}
		p := ProfitForDay(demand, qty, price, cost, salvage)
		daily = append(daily, p)
		cumulative += p
	}
	return daily, cumulative
}

// ComputeLeaderboard sorts rows by cumulative profit, descending, with
// name as a stable tiebreaker, and truncates to LeaderboardCap.
func ComputeLeaderboard(rows []models.LeaderboardRow) []models.LeaderboardRow {
	sorted := make([]models.LeaderboardRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Profit != sorted[j].Profit {
			return sorted[i].Profit > sorted[j].Profit
		}
		return sorted[i].Name < sorted[j].Name
	})
	if len(sorted) > LeaderboardCap {
		sorted = sorted[:LeaderboardCap]
	}
	return sorted
}

// AvgOrder returns the mean of a player's submitted orders, ignoring
// weeks they never ordered.
func AvgOrder(orders []*int) float64 {
	var sum float64
	var n int
	for _, o := range orders {
		if o != nil {
			sum += float64(*o)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// AvgOrderSeries builds the end-of-game analytics series: for each
// revealed day, the average order across players who submitted an order
// for that day's week.
func AvgOrderSeries(playerOrders [][]*int, revealedDays int) []float64 {
	series := make([]float64, 0, revealedDays)
	for day := 0; day < revealedDays; day++ {
		week := day / DaysPerWeek
		var sum float64
		var n int
		for _, orders := range playerOrders {
			if week < len(orders) && orders[week] != nil {
				sum += float64(*orders[week])
				n++
			}
		}
		if n == 0 {
			series = append(series, 0)
		} else {
			series = append(series, sum/float64(n))
		}
	}
	return series
}
