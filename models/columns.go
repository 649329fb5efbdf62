// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "encoding/json"

// JSON-array TEXT columns pass through this file and nowhere else, so
// every read applies the same defaults: an empty or NULL column becomes
// an empty slice, and an orders column is padded out to the session's
// week count.

func EncodeInts(xs []int) string {
	if xs == nil {
		xs = []int{}
	}
	b, _ := json.Marshal(xs)
	return string(b)
}

func DecodeInts(s string) []int {
	if s == "" {
		return []int{}
	}
	var xs []int
	if err := json.Unmarshal([]byte(s), &xs); err != nil || xs == nil {
		return []int{}
	}
	return xs
}

func EncodeFloats(xs []float64) string {
	if xs == nil {
		xs = []float64{}
	}
	b, _ := json.Marshal(xs)
	return string(b)
}

func DecodeFloats(s string) []float64 {
	if s == "" {
		return []float64{}
	}
	var xs []float64
	if err := json.Unmarshal([]byte(s), &xs); err != nil || xs == nil {
		return []float64{}
	}
	return xs
}

// EncodeOrders serializes an orders-by-week array; unsubmitted weeks are
// stored as JSON nulls.
func EncodeOrders(orders []*int) string {
	if orders == nil {
		orders = []*int{}
	}
	b, _ := json.Marshal(orders)
	return string(b)
}

// DecodeOrders deserializes an orders-by-week column and normalizes its
// length to weeks, padding with nulls or truncating as needed. A session
// whose week count changed through a redraw keeps old orders aligned.
func DecodeOrders(s string, weeks int) []*int {
	var orders []*int
	if s != "" {
		_ = json.Unmarshal([]byte(s), &orders)
	}
	if weeks < 0 {
		weeks = 0
	}
	normalized := make([]*int, weeks)
	copy(normalized, orders)
	return normalized
}

func EncodeLeaderboard(rows []LeaderboardRow) string {
	if rows == nil {
		rows = []LeaderboardRow{}
	}
	b, _ := json.Marshal(rows)
	return string(b)
}

func DecodeLeaderboard(s string) []LeaderboardRow {
	if s == "" {
		return []LeaderboardRow{}
	}
	var rows []LeaderboardRow
	if err := json.Unmarshal([]byte(s), &rows); err != nil || rows == nil {
		return []LeaderboardRow{}
	}
	return rows
}
