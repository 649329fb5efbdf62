// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Newsvendor API server.

Newsvendor is a classroom inventory game: students order stock for a week
of uncertain demand, the host reveals one demand day at a time, and
profits accumulate on a shared leaderboard.

# Starting the Server

The server runs on sqlite out of the box:

	HOST_KEY_SALT=dev-secret go run main.go

Or against PostgreSQL:

	go run main.go -t postgres -d "postgres://..." --host-salt dev-secret

# Configuration

Required settings:

  - HOST_KEY_SALT (--host-salt): Secret for host key HMAC

Optional settings:

  - PORT (-p): Server port (default: 8311)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (default: file:newsvendor.db)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - game: Demand synthesis, optimizer, profit and leaderboard math
  - handlers: HTTP request handlers (sessions, players, orders, reveals)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types and JSON column codecs
  - auth: Session codes, host keys, player tokens
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
