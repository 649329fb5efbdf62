// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siemsene/newsvendor/auth"
	"github.com/siemsene/newsvendor/middleware"
	"github.com/siemsene/newsvendor/models"
)

const maxPlayerNameLength = 40

// nameKey normalizes a display name for uniqueness within a session.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// JoinSession handles POST /sessions/join
//
// Resolution order: a valid player_token resumes that seat unchanged; a
// fresh name claims a new seat; a taken name conflicts unless
// allow_takeover rotates the seat's token to the new client.
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req models.JoinSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "code is required")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(name) > maxPlayerNameLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is too long")
		return
	}

	sess, err := loadSessionByCode(h.db, code)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session code not found")
		return
	}
	if err != nil {
		slog.Error("failed to resolve session code", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if sess.Status == models.StatusFinished {
		middleware.ErrorResponse(w, http.StatusConflict, "Session already finished")
		return
	}

	now := time.Now()

	// Token resume wins over everything else and is idempotent.
	if req.PlayerToken != "" {
		var playerID string
		err := h.db.QueryRow(`
			SELECT id FROM player WHERE session_id = $1 AND player_token = $2
		`, sess.ID, req.PlayerToken).Scan(&playerID)
		if err == nil {
			_, uerr := h.db.Exec(`UPDATE player SET last_seen_at = $1 WHERE id = $2`, now, playerID)
			if uerr != nil {
				slog.Error("failed to touch resumed player", "error", uerr)
			}
			slog.Info("player resumed", "session_id", sess.ID, "player_id", playerID)
			middleware.JSONResponse(w, http.StatusOK, models.JoinSessionResponse{
				SessionID:   sess.ID,
				PlayerID:    playerID,
				PlayerToken: req.PlayerToken,
				Resumed:     true,
			})
			return
		}
		if err != sql.ErrNoRows {
			slog.Error("failed to look up player token", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		// Stale token; fall through to a name-based join.
	}

	token, err := auth.GeneratePlayerToken()
	if err != nil {
		slog.Error("failed to generate player token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join session")
		return
	}

	playerID := uuid.NewString()
	key := nameKey(name)

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO player (id, session_id, name, name_key, player_token,
			orders_by_week, daily_profit, cumulative_profit, joined_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9)
	`, playerID, sess.ID, name, key, token,
		models.EncodeOrders(make([]*int, sess.Weeks)), models.EncodeFloats(nil), now, now)

	if err != nil && isUniqueViolation(err) {
		// The seat exists. Concurrent same-name joins land here too, and
		// exactly one of them can rotate the token. The failed insert
		// poisons the transaction on postgres, so take over outside it.
		tx.Rollback()

		if !req.AllowTakeover {
			middleware.ErrorResponse(w, http.StatusConflict, "Name already taken in this session")
			return
		}

		var existingID string
		err = h.db.QueryRow(`
			SELECT id FROM player WHERE session_id = $1 AND name_key = $2
		`, sess.ID, key).Scan(&existingID)
		if err != nil {
			slog.Error("failed to load player for takeover", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		// The seat keeps its orders and profit; only the bearer changes.
		_, err = h.db.Exec(`
			UPDATE player SET player_token = $1, name = $2, last_seen_at = $3 WHERE id = $4
		`, token, name, now, existingID)
		if err != nil {
			slog.Error("failed to take over player", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join session")
			return
		}

		if err := logEvent(h.db, sess.ID, existingID, "player_takeover"); err != nil {
			slog.Warn("failed to log takeover event", "error", err)
		}

		slog.Info("player seat taken over", "session_id", sess.ID, "player_id", existingID)
		middleware.JSONResponse(w, http.StatusOK, models.JoinSessionResponse{
			SessionID:   sess.ID,
			PlayerID:    existingID,
			PlayerToken: token,
			Resumed:     false,
		})
		return
	}
	if err != nil {
		slog.Error("failed to insert player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join session")
		return
	}

	_, err = tx.Exec(`UPDATE session SET players_count = players_count + 1 WHERE id = $1`, sess.ID)
	if err != nil {
		slog.Error("failed to bump players_count", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join session")
		return
	}

	if err := logEvent(tx, sess.ID, playerID, "player_joined"); err != nil {
		slog.Warn("failed to log join event", "error", err)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join session")
		return
	}

	slog.Info("player joined", "session_id", sess.ID, "player_id", playerID, "name", name)
	middleware.JSONResponse(w, http.StatusCreated, models.JoinSessionResponse{
		SessionID:   sess.ID,
		PlayerID:    playerID,
		PlayerToken: token,
		Resumed:     false,
	})
}

// KickPlayer handles DELETE /sessions/{id}/players/{playerID}
func (h *SessionHandler) KickPlayer(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	playerID := r.PathValue("playerID")
	if sessionID == "" || playerID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id and player id are required")
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

	res, err := tx.Exec(`DELETE FROM player WHERE id = $1 AND session_id = $2`, playerID, sessionID)
	if err != nil {
		slog.Error("failed to delete player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to kick player")
		return
	}
	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to kick player")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Player not found")
		return
	}

	_, err = tx.Exec(`
		UPDATE session SET players_count = players_count - 1
		WHERE id = $1 AND players_count > 0
	`, sessionID)
	if err != nil {
		slog.Error("failed to decrement players_count", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to kick player")
		return
	}

	if err := logEvent(tx, sessionID, playerID, "player_kicked"); err != nil {
		slog.Warn("failed to log kick event", "error", err)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to kick player")
		return
	}

	slog.Info("player kicked", "session_id", sessionID, "player_id", playerID)
	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// NudgePlayer handles POST /sessions/{id}/players/{playerID}/nudge
// Records the nudge; clients poll the event channel to surface it.
func (h *SessionHandler) NudgePlayer(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	playerID := r.PathValue("playerID")
	if sessionID == "" || playerID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id and player id are required")
		return
	}
	if !requireHostKey(w, r, h.cfg, sessionID) {
		return
	}

	res, err := h.db.Exec(`
		UPDATE player SET last_nudged_at = $1 WHERE id = $2 AND session_id = $3
	`, time.Now(), playerID, sessionID)
	if err != nil {
		slog.Error("failed to nudge player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to nudge player")
		return
	}
	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to nudge player")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Player not found")
		return
	}

	if err := logEvent(h.db, sessionID, playerID, "player_nudged"); err != nil {
		slog.Warn("failed to log nudge event", "error", err)
	}

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}
