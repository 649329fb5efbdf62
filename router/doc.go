// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Newsvendor API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Session lifecycle (host, requires X-Host-Key):

	POST /sessions                  - Create session
	GET  /sessions/{id}/host        - Host view
	POST /sessions/{id}/start       - Begin ordering
	POST /sessions/{id}/reveal      - Reveal one demand day
	POST /sessions/{id}/redraw      - Regenerate demand (training only)
	POST /sessions/{id}/end         - Finalize early
	POST /sessions/{id}/finish-week - Auto-fill missing orders
	GET  /sessions/{id}/analytics   - Debrief numbers (finished only)

Roster management (host):

	POST /sessions/{id}/players/{playerID}/kick
	POST /sessions/{id}/players/{playerID}/nudge

Player operations (public, orders require X-Player-Token):

	POST /join                 - Join by session code
	POST /sessions/{id}/orders - Submit weekly order
	GET  /codes/{code}         - Public session state

# Handler Initialization

The router creates the handler with dependency injection:

	sessionHandler := handlers.NewSessionHandler(db, cfg)
*/
package router
