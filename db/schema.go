// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS. The DDL sticks to
// the dialect both sqlite and postgres parse: TEXT/INTEGER/REAL columns,
// no server-side defaults beyond constants, timestamps bound by the app.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Sessions
CREATE TABLE IF NOT EXISTS session (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'training' CHECK (status IN ('training', 'ordering', 'revealing', 'finished')),
    week_index INTEGER NOT NULL DEFAULT 0,
    reveal_index INTEGER NOT NULL DEFAULT 0,
    weeks INTEGER NOT NULL,
    demand_mu REAL NOT NULL,
    demand_sigma REAL NOT NULL,
    price REAL NOT NULL,
    cost REAL NOT NULL,
    salvage REAL NOT NULL,
    n_train INTEGER NOT NULL,
    training_demands TEXT NOT NULL,
    revealed_demands TEXT NOT NULL,
    optimal_q INTEGER NOT NULL,
    leaderboard TEXT NOT NULL,
    avg_orders TEXT NOT NULL,
    draw_failed INTEGER NOT NULL DEFAULT 0,
    players_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_code ON session(code);
CREATE INDEX IF NOT EXISTS idx_session_status ON session(status);

-- Code registry: one row per live join code, inserted in the same
-- transaction as its session so codes are unique by construction.
CREATE TABLE IF NOT EXISTS session_code (
    code TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE
);

-- Hidden demand: server-only, never joined into player-facing reads.
CREATE TABLE IF NOT EXISTS session_demand (
    session_id TEXT PRIMARY KEY REFERENCES session(id) ON DELETE CASCADE,
    in_game_demands TEXT NOT NULL,
    seed INTEGER NOT NULL,
    generated_at TIMESTAMP NOT NULL
);

-- Players
CREATE TABLE IF NOT EXISTS player (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    name_key TEXT NOT NULL,
    player_token TEXT NOT NULL UNIQUE,
    orders_by_week TEXT NOT NULL,
    daily_profit TEXT NOT NULL,
    cumulative_profit REAL NOT NULL DEFAULT 0,
    submitted_week INTEGER,
    joined_at TIMESTAMP NOT NULL,
    last_seen_at TIMESTAMP NOT NULL,
    last_nudged_at TIMESTAMP,
    UNIQUE (session_id, name_key)
);

CREATE INDEX IF NOT EXISTS idx_player_session_id ON player(session_id);

-- Fire-and-forget side-channel events (nudges, kicks)
CREATE TABLE IF NOT EXISTS session_event (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    player_id TEXT,
    type TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_event_session ON session_event(session_id);
`
