// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session codes, host keys, and player tokens.

# Host Keys

Host keys use HMAC-SHA256 to create deterministic, verifiable keys:

	hostKey := auth.GenerateHostKey(sessionID, salt)
	err := auth.ValidateHostKey(sessionID, hostKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same session ID and salt always produce the same key. This allows
validation without storing the key in the database.

# Player Tokens

Player tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GeneratePlayerToken()

Tokens are URL-safe base64 encoded and presented via X-Player-Token to
authenticate order submissions and seat resumes.

# Session Codes

Join codes are 6 characters from a 32-letter alphabet with the lookalikes
(I, O, 0, 1) removed:

	code, err := auth.GenerateSessionCode()

Codes are random, so uniqueness is enforced by the session_code registry
table, not here.

# Seeds

Demand generation seeds are 31-bit values from crypto/rand:

	seed, err := auth.GenerateSeed()
*/
package auth
