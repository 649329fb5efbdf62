// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL sticks to the dialect both sqlite and postgres parse.

# Tables

The schema includes:

  - session: Parameters, lifecycle state, revealed demands, leaderboard
  - session_code: Join-code registry, one row per live code
  - session_demand: Hidden in-game demand series and its seed
  - player: Seat identity, orders by week, profit history
  - session_event: Fire-and-forget side channel (joins, kicks, nudges)

# Relationships

	session 1──1 session_code
	session 1──1 session_demand
	session 1──* player
	session 1──* session_event

All foreign keys use ON DELETE CASCADE.

# Indexes

Performance indexes on:

  - session.code
  - session.status
  - player.session_id
  - player.player_token (unique)
  - player.(session_id, name_key) (unique)
  - session_event.session_id
*/
package db
