// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/siemsene/newsvendor/auth"
	"github.com/siemsene/newsvendor/cliparse"
	"github.com/siemsene/newsvendor/game"
	"github.com/siemsene/newsvendor/middleware"
	"github.com/siemsene/newsvendor/models"
)

// codeRetryAttempts bounds the create loop when join codes collide.
const codeRetryAttempts = 10

type SessionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{db: db, cfg: cfg}
}

// requireHostKey validates the X-Host-Key header against the session.
// Writes the error response itself; callers just bail on false.
func requireHostKey(w http.ResponseWriter, r *http.Request, cfg cliparse.Config, sessionID string) bool {
	hostKey := r.Header.Get("X-Host-Key")
	if err := auth.ValidateHostKey(sessionID, hostKey, cfg.HostKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid host key")
		return false
	}
	return true
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	params := req.Normalized()

	// Validate input
	if params.DemandSigma <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "demand_sigma must be > 0")
		return
	}
	if params.Price <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "price must be > 0")
		return
	}
	if params.Weeks < 1 || params.Weeks > 52 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "weeks must be between 1 and 52")
		return
	}

	seed, err := auth.GenerateSeed()
	if err != nil {
		slog.Error("failed to generate dataset seed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	dataset := game.GenerateDemandDataset(game.Params{
		Mu:      params.DemandMu,
		Sigma:   params.DemandSigma,
		NTrain:  params.NTrain,
		NGame:   params.Weeks * game.DaysPerWeek,
		Price:   params.Price,
		Cost:    params.Cost,
		Salvage: params.Salvage,
	}, seed)
	if dataset.DrawFailed {
		slog.Warn("demand search exhausted, session created with draw_failed", "seed", seed)
	}

	sessionID := uuid.NewString()
	hostKey := auth.GenerateHostKey(sessionID, h.cfg.HostKeySalt)

	// Reserve a unique code and persist the session atomically. A code
	// collision rolls the whole attempt back and tries a fresh code.
	var code string
	created := false
	for attempt := 0; attempt < codeRetryAttempts && !created; attempt++ {
		code, err = auth.GenerateSessionCode()
		if err != nil {
			slog.Error("failed to generate session code", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
			return
		}

		err = h.insertSession(sessionID, code, params, dataset, seed)
		if err != nil {
			if isUniqueViolation(err) {
				slog.Warn("session code collision, retrying", "code", code, "attempt", attempt+1)
				continue
			}
			slog.Error("failed to insert session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
			return
		}
		created = true
	}

	if !created {
		slog.Error("session code retries exhausted", "attempts", codeRetryAttempts)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Could not allocate a unique session code")
		return
	}

	slog.Info("session created", "session_id", sessionID, "code", code, "weeks", params.Weeks, "draw_failed", dataset.DrawFailed)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID:  sessionID,
		Code:       code,
		HostKey:    hostKey,
		DrawFailed: dataset.DrawFailed,
	})
}

// insertSession writes the session, its hidden demand record, and the code
// registry entry in one transaction.
func (h *SessionHandler) insertSession(sessionID, code string, params models.SessionParams, dataset game.Dataset, seed int64) error {
	tx, err := h.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	drawFailed := 0
	if dataset.DrawFailed {
		drawFailed = 1
	}

	_, err = tx.Exec(`
		INSERT INTO session (id, code, status, week_index, reveal_index, weeks,
			demand_mu, demand_sigma, price, cost, salvage, n_train,
			training_demands, revealed_demands, optimal_q, leaderboard, avg_orders,
			draw_failed, players_count, created_at)
		VALUES ($1, $2, $3, 0, 0, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 0, $17)
	`, sessionID, code, models.StatusTraining, params.Weeks,
		params.DemandMu, params.DemandSigma, params.Price, params.Cost, params.Salvage, params.NTrain,
		models.EncodeInts(dataset.Training), models.EncodeInts(nil), dataset.OptimalQ,
		models.EncodeLeaderboard(nil), models.EncodeFloats(nil), drawFailed, now)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO session_demand (session_id, in_game_demands, seed, generated_at)
		VALUES ($1, $2, $3, $4)
	`, sessionID, models.EncodeInts(dataset.InGame), seed, now)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO session_code (code, session_id)
		VALUES ($1, $2)
	`, code, sessionID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// StartSession handles POST /sessions/{id}/start
// Forces training -> ordering without waiting for a first order.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
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

	if sess.Status != models.StatusTraining {
		middleware.ErrorResponse(w, http.StatusConflict, "Session already started")
		return
	}

	_, err = tx.Exec(`
		UPDATE session SET status = $1, week_index = 0, reveal_index = 0 WHERE id = $2
	`, models.StatusOrdering, sessionID)
	if err != nil {
		slog.Error("failed to start session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	slog.Info("session started", "session_id", sessionID)
	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// RedrawSession handles POST /sessions/{id}/redraw
// Regenerates the demand dataset with a fresh seed. Training only.
func (h *SessionHandler) RedrawSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}
	if !requireHostKey(w, r, h.cfg, sessionID) {
		return
	}

	sess, err := loadSession(h.db, sessionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if sess.Status != models.StatusTraining {
		middleware.ErrorResponse(w, http.StatusConflict, "Session already started")
		return
	}

	seed, err := auth.GenerateSeed()
	if err != nil {
		slog.Error("failed to generate dataset seed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to redraw session")
		return
	}

	// The search is CPU-bound; run it before opening the transaction.
	dataset := game.GenerateDemandDataset(game.Params{
		Mu:      sess.DemandMu,
		Sigma:   sess.DemandSigma,
		NTrain:  sess.NTrain,
		NGame:   sess.Weeks * game.DaysPerWeek,
		Price:   sess.Price,
		Cost:    sess.Cost,
		Salvage: sess.Salvage,
	}, seed)

	if dataset.DrawFailed {
		_, err = h.db.Exec(`UPDATE session SET draw_failed = 1 WHERE id = $1`, sessionID)
		if err != nil {
			slog.Error("failed to flag draw failure", "error", err)
		}
		slog.Warn("redraw exhausted the demand search", "session_id", sessionID, "seed", seed)
		middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: false})
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE session
		SET training_demands = $1, revealed_demands = $2, optimal_q = $3,
			week_index = 0, reveal_index = 0, status = $4,
			leaderboard = $5, avg_orders = $6, draw_failed = 0
		WHERE id = $7
	`, models.EncodeInts(dataset.Training), models.EncodeInts(nil), dataset.OptimalQ,
		models.StatusTraining, models.EncodeLeaderboard(nil), models.EncodeFloats(nil), sessionID)
	if err != nil {
		slog.Error("failed to update session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to redraw session")
		return
	}

	_, err = tx.Exec(`
		UPDATE session_demand SET in_game_demands = $1, seed = $2, generated_at = $3
		WHERE session_id = $4
	`, models.EncodeInts(dataset.InGame), seed, time.Now(), sessionID)
	if err != nil {
		slog.Error("failed to update hidden demands", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to redraw session")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to redraw session")
		return
	}

	slog.Info("session redrawn", "session_id", sessionID, "seed", seed)
	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}
