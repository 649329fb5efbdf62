// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/siemsene/newsvendor/game"
	"github.com/siemsene/newsvendor/middleware"
	"github.com/siemsene/newsvendor/models"
)

// playerBatchSize caps how many player rows one best-effort transaction
// touches during a reveal or finalization.
const playerBatchSize = 500

// AdvanceReveal handles POST /sessions/{id}/reveal
//
// The commit is split in two phases. Phase A is one transaction that
// commits every session-level authoritative field: the revealed demand,
// reveal/week indices, status, and leaderboard. Phase B persists each
// player's recomputed profit history in best-effort batches. A batch that
// fails is only logged: the next reveal recomputes every player from
// their full order history, so the miss heals itself.
func (h *SessionHandler) AdvanceReveal(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}
	if !requireHostKey(w, r, h.cfg, sessionID) {
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	sess, err := loadSession(tx, sessionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	totalDays := sess.TotalDays()
	if sess.RevealIndex >= totalDays {
		middleware.ErrorResponse(w, http.StatusConflict, "All days already revealed")
		return
	}

	hidden, err := loadHiddenDemands(tx, sessionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Hidden demand record missing")
		return
	}
	if err != nil {
		slog.Error("failed to query hidden demands", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if len(hidden) < totalDays {
		slog.Error("hidden demand series shorter than the game", "session_id", sessionID, "len", len(hidden), "total_days", totalDays)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Invalid in-game demand series")
		return
	}

	players, err := loadPlayers(tx, sessionID, sess.Weeks)
	if err != nil {
		slog.Error("failed to query players", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	revealed := append(append([]int{}, sess.RevealedDemands...), hidden[sess.RevealIndex])
	nextReveal := sess.RevealIndex + 1

	leaderboard := recomputePlayers(players, revealed, sess)

	nextStatus := models.StatusRevealing
	nextWeek := sess.WeekIndex
	var avgOrders []float64

	if nextReveal == totalDays {
		nextStatus = models.StatusFinished
		nextWeek = sess.Weeks - 1
		avgOrders = avgOrderSeries(players, nextReveal)
	} else if nextReveal%game.DaysPerWeek == 0 {
		nextStatus = models.StatusOrdering
		nextWeek = nextReveal / game.DaysPerWeek
	}

	_, err = tx.Exec(`
		UPDATE session
		SET revealed_demands = $1, reveal_index = $2, week_index = $3,
			status = $4, leaderboard = $5, avg_orders = $6
		WHERE id = $7
	`, models.EncodeInts(revealed), nextReveal, nextWeek, nextStatus,
		models.EncodeLeaderboard(leaderboard), models.EncodeFloats(avgOrders), sessionID)
	if err != nil {
		slog.Error("failed to update session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to advance reveal")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to advance reveal")
		return
	}

	// Phase B: per-player profit detail, eventually consistent.
	h.persistPlayerProfits(sessionID, players)

	slog.Info("reveal advanced", "session_id", sessionID, "reveal_index", nextReveal, "status", nextStatus)

	middleware.JSONResponse(w, http.StatusOK, models.RevealResponse{
		OK:          true,
		RevealIndex: nextReveal,
		Status:      nextStatus,
	})
}

// EndSession handles POST /sessions/{id}/end
//
// Early termination finalizes every day whose play has begun: the
// in-progress week is completed from the hidden series, then all player
// totals and the leaderboard are committed and the session is finished.
// A week the class never started revealing contributes nothing.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}
	if !requireHostKey(w, r, h.cfg, sessionID) {
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	sess, err := loadSession(tx, sessionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if sess.Status == models.StatusFinished {
		middleware.ErrorResponse(w, http.StatusConflict, "Session already finished")
		return
	}

	totalDays := sess.TotalDays()

	// Complete the week currently being revealed; stop at a clean week
	// boundary otherwise.
	targetReveal := sess.RevealIndex
	if targetReveal%game.DaysPerWeek != 0 {
		targetReveal = (targetReveal/game.DaysPerWeek + 1) * game.DaysPerWeek
	}
	if targetReveal > totalDays {
		targetReveal = totalDays
	}

	revealed := append([]int{}, sess.RevealedDemands...)
	if targetReveal > len(revealed) {
		hidden, err := loadHiddenDemands(tx, sessionID)
		if err == sql.ErrNoRows {
			middleware.ErrorResponse(w, http.StatusNotFound, "Hidden demand record missing")
			return
		}
		if err != nil {
			slog.Error("failed to query hidden demands", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if len(hidden) < targetReveal {
			slog.Error("hidden demand series shorter than the game", "session_id", sessionID, "len", len(hidden))
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Invalid in-game demand series")
			return
		}
		revealed = append(revealed, hidden[len(revealed):targetReveal]...)
	}

	players, err := loadPlayers(tx, sessionID, sess.Weeks)
	if err != nil {
		slog.Error("failed to query players", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	leaderboard := recomputePlayers(players, revealed, sess)
	avgOrders := avgOrderSeries(players, targetReveal)

	finalWeek := 0
	if targetReveal > 0 {
		finalWeek = (targetReveal - 1) / game.DaysPerWeek
	}

	_, err = tx.Exec(`
		UPDATE session
		SET revealed_demands = $1, reveal_index = $2, week_index = $3,
			status = $4, leaderboard = $5, avg_orders = $6
		WHERE id = $7
	`, models.EncodeInts(revealed), targetReveal, finalWeek, models.StatusFinished,
		models.EncodeLeaderboard(leaderboard), models.EncodeFloats(avgOrders), sessionID)
	if err != nil {
		slog.Error("failed to finalize session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to end session")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to end session")
		return
	}

	// Unlike a reveal, nothing recomputes after finish; a batch failure
	// here needs manual reconciliation and is logged at error level.
	h.persistPlayerProfits(sessionID, players)

	slog.Info("session ended", "session_id", sessionID, "reveal_index", targetReveal)
	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// FinishWeek handles POST /sessions/{id}/finish-week
// Fills round(mu) for every player without an order for the current week.
func (h *SessionHandler) FinishWeek(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}
	if !requireHostKey(w, r, h.cfg, sessionID) {
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	sess, err := loadSession(tx, sessionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if sess.Status == models.StatusFinished {
		middleware.ErrorResponse(w, http.StatusConflict, "Session already finished")
		return
	}

	players, err := loadPlayers(tx, sessionID, sess.Weeks)
	if err != nil {
		slog.Error("failed to query players", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	defaultOrder := int(math.Round(sess.DemandMu))
	if defaultOrder < 0 {
		defaultOrder = 0
	}

	week := sess.WeekIndex
	var filled []models.PlayerRecord
	for i := range players {
		if week < len(players[i].OrdersByWeek) && players[i].OrdersByWeek[week] == nil {
			qty := defaultOrder
			players[i].OrdersByWeek[week] = &qty
			wk := week
			players[i].SubmittedWeek = &wk
			filled = append(filled, players[i])
		}
	}

	// Auto-filling the first week's orders starts play like a manual
	// submission would.
	if sess.Status == models.StatusTraining && len(filled) > 0 {
		_, err = tx.Exec(`UPDATE session SET status = $1 WHERE id = $2`, models.StatusOrdering, sessionID)
		if err != nil {
			slog.Error("failed to promote session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to finish week")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to finish week")
		return
	}

	// Order fills are per-player detail, written in the same best-effort
	// batches as profit updates.
	h.persistPlayerOrders(sessionID, filled)

	slog.Info("week finished", "session_id", sessionID, "week_index", week, "filled", len(filled), "default_order", defaultOrder)

	middleware.JSONResponse(w, http.StatusOK, models.FinishWeekResponse{
		Updated:      len(filled),
		DefaultOrder: defaultOrder,
	})
}

// recomputePlayers rebuilds every player's profit history in place from
// the revealed prefix and returns the resulting leaderboard.
func recomputePlayers(players []models.PlayerRecord, revealed []int, sess models.SessionRecord) []models.LeaderboardRow {
	rows := make([]models.LeaderboardRow, 0, len(players))
	for i := range players {
		daily, cumulative := game.RecomputePlayer(players[i].OrdersByWeek, revealed, sess.Price, sess.Cost, sess.Salvage)
		players[i].DailyProfit = daily
		players[i].CumulativeProfit = cumulative
		rows = append(rows, models.LeaderboardRow{
			PlayerID: players[i].ID,
			Name:     players[i].Name,
			Profit:   cumulative,
			AvgOrder: game.AvgOrder(players[i].OrdersByWeek),
		})
	}
	return game.ComputeLeaderboard(rows)
}

func avgOrderSeries(players []models.PlayerRecord, revealedDays int) []float64 {
	orders := make([][]*int, len(players))
	for i := range players {
		orders[i] = players[i].OrdersByWeek
	}
	return game.AvgOrderSeries(orders, revealedDays)
}

// persistPlayerProfits writes recomputed profit histories in chunks of at
// most playerBatchSize, one transaction per chunk. Chunk failures are
// logged and skipped; they are not retried here.
func (h *SessionHandler) persistPlayerProfits(sessionID string, players []models.PlayerRecord) {
	for start := 0; start < len(players); start += playerBatchSize {
		end := start + playerBatchSize
		if end > len(players) {
			end = len(players)
		}

		err := h.writeProfitBatch(players[start:end])
		if err != nil {
			slog.Error("player profit batch failed",
				"session_id", sessionID, "batch_start", start, "batch_end", end, "error", err)
		}
	}
}

func (h *SessionHandler) writeProfitBatch(batch []models.PlayerRecord) error {
	tx, err := h.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, p := range batch {
		_, err = tx.Exec(`
			UPDATE player SET daily_profit = $1, cumulative_profit = $2, last_seen_at = $3
			WHERE id = $4
		`, models.EncodeFloats(p.DailyProfit), p.CumulativeProfit, now, p.ID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// persistPlayerOrders writes auto-filled orders in the same chunked,
// best-effort fashion.
func (h *SessionHandler) persistPlayerOrders(sessionID string, players []models.PlayerRecord) {
	for start := 0; start < len(players); start += playerBatchSize {
		end := start + playerBatchSize
		if end > len(players) {
			end = len(players)
		}

		err := h.writeOrderBatch(players[start:end])
		if err != nil {
			slog.Error("player order batch failed",
				"session_id", sessionID, "batch_start", start, "batch_end", end, "error", err)
		}
	}
}

func (h *SessionHandler) writeOrderBatch(batch []models.PlayerRecord) error {
	tx, err := h.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range batch {
		_, err = tx.Exec(`
			UPDATE player SET orders_by_week = $1, submitted_week = $2
			WHERE id = $3
		`, models.EncodeOrders(p.OrdersByWeek), p.SubmittedWeek, p.ID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
