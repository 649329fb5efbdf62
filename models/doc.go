// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateSessionRequest: demand parameters and economics (all optional)
  - JoinSessionRequest: code, name, allow_takeover, player_token
  - SubmitOrderRequest: week_index, order_qty

# Response Types

Types for JSON responses:

  - CreateSessionResponse: session_id, code, host_key, draw_failed
  - JoinSessionResponse: session_id, player_id, player_token, resumed
  - RevealResponse: ok, reveal_index, status
  - FinishWeekResponse: updated, default_order
  - SessionPublic / SessionHostView: player and host session views
  - AnalyticsResponse: optimal_q, avg_orders, revealed_demands
  - ErrorResponse: error, message

SessionPublic never carries the hidden demand series or the optimal
quantity; SessionHostView adds optimal_q and draw_failed only.

# Domain Records

Internal data structures:

  - SessionRecord: one session row, JSON columns decoded
  - PlayerRecord: one player row, orders normalized to the week count
  - LeaderboardRow: player_id, name, profit, avg_order

# Column Codecs

JSON-array TEXT columns round-trip through the Encode/Decode helpers in
columns.go, which are the single place defaults and length normalization
are applied.

# Constants

Status values:

	StatusTraining  = "training"
	StatusOrdering  = "ordering"
	StatusRevealing = "revealing"
	StatusFinished  = "finished"

Classroom defaults (applied by CreateSessionRequest.Normalized):

	DefaultDemandMu    = 50
	DefaultDemandSigma = 20
	DefaultPrice       = 1
	DefaultCost        = 0.2
	DefaultSalvage     = 0
	DefaultWeeks       = 10
	DefaultNTrain      = 50
*/
package models
