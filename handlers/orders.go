// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/siemsene/newsvendor/middleware"
	"github.com/siemsene/newsvendor/models"
)

// SubmitOrder handles POST /sessions/{id}/orders
//
// Orders are accepted while status is training or ordering, and only for
// the session's current week. The first submission of a fresh session
// promotes training to ordering.
func (h *SessionHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	token := r.Header.Get("X-Player-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Player token required")
		return
	}

	var req models.SubmitOrderRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	qty := req.OrderQty
	if qty < 0 {
		qty = 0
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

	if req.WeekIndex < 0 || req.WeekIndex >= sess.Weeks {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid week_index")
		return
	}
	if sess.Status != models.StatusTraining && sess.Status != models.StatusOrdering {
		middleware.ErrorResponse(w, http.StatusConflict, "Not accepting orders right now")
		return
	}
	if req.WeekIndex != sess.WeekIndex {
		middleware.ErrorResponse(w, http.StatusConflict,
			fmt.Sprintf("Week mismatch. Current week is %d", sess.WeekIndex))
		return
	}

	var playerID, rawOrders string
	err = tx.QueryRow(`
		SELECT id, orders_by_week FROM player
		WHERE session_id = $1 AND player_token = $2
	`, sessionID, token).Scan(&playerID, &rawOrders)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Player not found. Join session first")
		return
	}
	if err != nil {
		slog.Error("failed to query player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	orders := models.DecodeOrders(rawOrders, sess.Weeks)
	orders[req.WeekIndex] = &qty

	_, err = tx.Exec(`
		UPDATE player SET orders_by_week = $1, submitted_week = $2, last_seen_at = $3
		WHERE id = $4
	`, models.EncodeOrders(orders), req.WeekIndex, time.Now(), playerID)
	if err != nil {
		slog.Error("failed to store order", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit order")
		return
	}

	if sess.Status == models.StatusTraining {
		_, err = tx.Exec(`UPDATE session SET status = $1 WHERE id = $2`, models.StatusOrdering, sessionID)
		if err != nil {
			slog.Error("failed to promote session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit order")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit order")
		return
	}

	slog.Info("order submitted", "session_id", sessionID, "player_id", playerID, "week_index", req.WeekIndex, "qty", qty)
	middleware.JSONResponse(w, http.StatusOK, models.SubmitOrderResponse{OK: true})
}
