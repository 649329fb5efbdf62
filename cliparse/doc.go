// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first if present.

# Config Fields

  - Port: Server listen port (default: 8311)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - DatabaseURL: Connection string (default: file:newsvendor.db for sqlite)
  - HostKeySalt: Secret for host key HMAC (required)

# CLI Flags

	-p          Server port
	-t          Database type
	-d          Database URL
	--host-salt Host key salt

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_TYPE → -t
	DATABASE_URL  → -d
	HOST_KEY_SALT → --host-salt

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - HOST_KEY_SALT must be provided
  - DATABASE_URL must be provided when DATABASE_TYPE is postgres
*/
package cliparse
