// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/siemsene/newsvendor/middleware"
	"github.com/siemsene/newsvendor/models"
)

func publicView(sess models.SessionRecord) models.SessionPublic {
	return models.SessionPublic{
		SessionID:       sess.ID,
		Code:            sess.Code,
		Status:          sess.Status,
		WeekIndex:       sess.WeekIndex,
		RevealIndex:     sess.RevealIndex,
		Weeks:           sess.Weeks,
		DemandMu:        sess.DemandMu,
		DemandSigma:     sess.DemandSigma,
		Price:           sess.Price,
		Cost:            sess.Cost,
		Salvage:         sess.Salvage,
		TrainingDemands: sess.TrainingDemands,
		RevealedDemands: sess.RevealedDemands,
		PlayersCount:    sess.PlayersCount,
		Leaderboard:     sess.Leaderboard,
	}
}

// GetSessionByCode handles GET /codes/{code}
// Player-facing state. The hidden series and optimal quantity stay out.
func (h *SessionHandler) GetSessionByCode(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(r.PathValue("code")))
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "code is required")
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

	middleware.JSONResponse(w, http.StatusOK, publicView(sess))
}

// GetHostView handles GET /sessions/{id}/host
func (h *SessionHandler) GetHostView(w http.ResponseWriter, r *http.Request) {
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

	middleware.JSONResponse(w, http.StatusOK, models.SessionHostView{
		SessionPublic: publicView(sess),
		OptimalQ:      sess.OptimalQ,
		DrawFailed:    sess.DrawFailed,
	})
}

// GetAnalytics handles GET /sessions/{id}/analytics
// Debrief numbers, only once the game is over.
func (h *SessionHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
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

	if sess.Status != models.StatusFinished {
		middleware.ErrorResponse(w, http.StatusConflict, "Session not finished yet")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AnalyticsResponse{
		OptimalQ:        sess.OptimalQ,
		AvgOrders:       sess.AvgOrders,
		RevealedDemands: sess.RevealedDemands,
	})
}
