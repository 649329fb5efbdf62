// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Newsvendor API.

# Handler Types

A single SessionHandler carries the database and config dependencies:

	sessionHandler := handlers.NewSessionHandler(db, cfg)

# Session Lifecycle

Sessions progress through four states: training → ordering → revealing → finished

	POST /sessions                  → CreateSession (returns host_key)
	POST /sessions/{id}/start       → StartSession (skip the training wait)
	POST /sessions/{id}/redraw      → RedrawSession (fresh demand, training only)
	POST /sessions/{id}/reveal      → AdvanceReveal (one demand day)
	POST /sessions/{id}/finish-week → FinishWeek (auto-fill missing orders)
	POST /sessions/{id}/end         → EndSession (finalize early)

Host operations require the X-Host-Key header.

# Player Flow

Players join with the six-letter session code:

	POST /join                 → JoinSession (returns player_token)
	POST /sessions/{id}/orders → SubmitOrder

Player operations require the X-Player-Token header.

# Reveal Commit

AdvanceReveal commits in two phases. One transaction owns every
session-level field (revealed demands, indices, status, leaderboard).
Player profit detail is then written in best-effort batches of at most
500 rows; a failed batch is only logged, because the next reveal
recomputes every player from their full order history.

# Demand Privacy

The unrevealed demand series lives in its own session_demand table and is
loaded only inside reveal and end transactions. No handler response ever
carries it.
*/
package handlers
