// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siemsene/newsvendor/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the scan helpers
// work inside and outside transactions.
type querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
}

const sessionColumns = `id, code, status, week_index, reveal_index, weeks,
	demand_mu, demand_sigma, price, cost, salvage, n_train,
	training_demands, revealed_demands, optimal_q, leaderboard, avg_orders,
	draw_failed, players_count, created_at`

const playerColumns = `id, session_id, name, player_token, orders_by_week,
	daily_profit, cumulative_profit, submitted_week, joined_at, last_seen_at,
	last_nudged_at`

// scanSession maps a session row onto a SessionRecord. This is the single
// deserialization boundary for session rows; JSON columns and defaults are
// handled here (via models.Decode*) and nowhere else.
func scanSession(scan func(dest ...interface{}) error) (models.SessionRecord, error) {
	var s models.SessionRecord
	var training, revealed, leaderboard, avgOrders string
	var drawFailed int

	err := scan(
		&s.ID, &s.Code, &s.Status, &s.WeekIndex, &s.RevealIndex, &s.Weeks,
		&s.DemandMu, &s.DemandSigma, &s.Price, &s.Cost, &s.Salvage, &s.NTrain,
		&training, &revealed, &s.OptimalQ, &leaderboard, &avgOrders,
		&drawFailed, &s.PlayersCount, &s.CreatedAt,
	)
	if err != nil {
		return models.SessionRecord{}, err
	}

	s.TrainingDemands = models.DecodeInts(training)
	s.RevealedDemands = models.DecodeInts(revealed)
	s.Leaderboard = models.DecodeLeaderboard(leaderboard)
	s.AvgOrders = models.DecodeFloats(avgOrders)
	s.DrawFailed = drawFailed != 0
	return s, nil
}

// loadSession fetches a session by ID. Returns sql.ErrNoRows if missing.
func loadSession(q querier, sessionID string) (models.SessionRecord, error) {
	row := q.QueryRow(`SELECT `+sessionColumns+` FROM session WHERE id = $1`, sessionID)
	return scanSession(row.Scan)
}

// loadSessionByCode resolves a join code through the registry and fetches
// the session it maps to.
func loadSessionByCode(q querier, code string) (models.SessionRecord, error) {
	var sessionID string
	err := q.QueryRow(`SELECT session_id FROM session_code WHERE code = $1`, code).Scan(&sessionID)
	if err != nil {
		return models.SessionRecord{}, err
	}
	return loadSession(q, sessionID)
}

// loadHiddenDemands fetches the server-only in-game demand series.
func loadHiddenDemands(q querier, sessionID string) ([]int, error) {
	var raw string
	err := q.QueryRow(`SELECT in_game_demands FROM session_demand WHERE session_id = $1`, sessionID).Scan(&raw)
	if err != nil {
		return nil, err
	}
	return models.DecodeInts(raw), nil
}

func scanPlayer(scan func(dest ...interface{}) error, weeks int) (models.PlayerRecord, error) {
	var p models.PlayerRecord
	var orders, daily string
	var submittedWeek sql.NullInt64
	var lastNudged sql.NullTime

	err := scan(
		&p.ID, &p.SessionID, &p.Name, &p.Token, &orders,
		&daily, &p.CumulativeProfit, &submittedWeek, &p.JoinedAt, &p.LastSeenAt,
		&lastNudged,
	)
	if err != nil {
		return models.PlayerRecord{}, err
	}

	p.OrdersByWeek = models.DecodeOrders(orders, weeks)
	p.DailyProfit = models.DecodeFloats(daily)
	if submittedWeek.Valid {
		w := int(submittedWeek.Int64)
		p.SubmittedWeek = &w
	}
	if lastNudged.Valid {
		t := lastNudged.Time
		p.LastNudgedAt = &t
	}
	return p, nil
}

// loadPlayers fetches every player in a session, orders normalized to the
// session's week count.
func loadPlayers(q querier, sessionID string, weeks int) ([]models.PlayerRecord, error) {
	rows, err := q.Query(`SELECT `+playerColumns+` FROM player WHERE session_id = $1 ORDER BY joined_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.PlayerRecord
	for rows.Next() {
		p, err := scanPlayer(rows.Scan, weeks)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// isUniqueViolation reports whether err is a uniqueness constraint error
// from either supported driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// logEvent appends a fire-and-forget side-channel event. Failures are the
// caller's to ignore.
func logEvent(q querier, sessionID, playerID, eventType string) error {
	_, err := q.Exec(`
		INSERT INTO session_event (id, session_id, player_id, type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), sessionID, playerID, eventType, time.Now())
	return err
}
