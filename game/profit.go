// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

// ProfitForDay computes a single day's realized profit for an order of
// qty units against demand units sold at price, bought at cost, with
// unsold stock recovered at salvage. Every profit figure in the system
// (reveal scoring, leaderboards, dataset search, analytics) flows through
// this one function so the accounting can never diverge.
func ProfitForDay(demand, qty int, price, cost, salvage float64) float64 {
	sold := demand
	if qty < sold {
		sold = qty
	}
	leftover := qty - sold
	if leftover < 0 {
		leftover = 0
	}
	return price*float64(sold) + salvage*float64(leftover) - cost*float64(qty)
}

// ProfitForSeries sums ProfitForDay over a demand series with a fixed
// order quantity.
func ProfitForSeries(demands []int, qty int, price, cost, salvage float64) float64 {
	var total float64
	for _, d := range demands {
		total += ProfitForDay(d, qty, price, cost, salvage)
	}
	return total
}
