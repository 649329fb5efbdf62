// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/siemsene/newsvendor/cliparse"
	"github.com/siemsene/newsvendor/handlers"
	"github.com/siemsene/newsvendor/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	sessionHandler := handlers.NewSessionHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session lifecycle (host operations)
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("GET /sessions/{id}/host", middleware.WithLogging(sessionHandler.GetHostView))
	mux.HandleFunc("POST /sessions/{id}/start", middleware.WithLogging(sessionHandler.StartSession))
	mux.HandleFunc("POST /sessions/{id}/reveal", middleware.WithLogging(sessionHandler.AdvanceReveal))
	mux.HandleFunc("POST /sessions/{id}/redraw", middleware.WithLogging(sessionHandler.RedrawSession))
	mux.HandleFunc("POST /sessions/{id}/end", middleware.WithLogging(sessionHandler.EndSession))
	mux.HandleFunc("POST /sessions/{id}/finish-week", middleware.WithLogging(sessionHandler.FinishWeek))
	mux.HandleFunc("GET /sessions/{id}/analytics", middleware.WithLogging(sessionHandler.GetAnalytics))

	// Roster management (host operations)
	mux.HandleFunc("POST /sessions/{id}/players/{playerID}/kick", middleware.WithLogging(sessionHandler.KickPlayer))
	mux.HandleFunc("POST /sessions/{id}/players/{playerID}/nudge", middleware.WithLogging(sessionHandler.NudgePlayer))

	// Player operations (public)
	mux.HandleFunc("POST /join", middleware.WithLogging(sessionHandler.JoinSession))
	mux.HandleFunc("POST /sessions/{id}/orders", middleware.WithLogging(sessionHandler.SubmitOrder))
	// Registered outside /sessions/ so the pattern cannot collide with
	// the {id} routes above.
	mux.HandleFunc("GET /codes/{code}", middleware.WithLogging(sessionHandler.GetSessionByCode))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("newsvendor API v1"))
	})

	return mux
}
