// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidHostKey = errors.New("invalid host key")
)

// codeAlphabet leaves out the ambiguous characters (I, O, 0, 1) so codes
// survive being read aloud or written on a whiteboard. 32 characters
// divides 256 evenly, so a byte modulo the length stays unbiased.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// SessionCodeLength is the length of a join code.
const SessionCodeLength = 6

// GenerateSessionCode creates a random 6-character join code.
func GenerateSessionCode() (string, error) {
	b := make([]byte, SessionCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session code: %w", err)
	}
	out := make([]byte, SessionCodeLength)
	for i, v := range b {
		out[i] = codeAlphabet[int(v)%len(codeAlphabet)]
	}
	return string(out), nil
}

// GenerateHostKey creates an HMAC-based host key for a session.
// Deterministic from the session ID and salt, so it validates without
// being stored.
func GenerateHostKey(sessionID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(sessionID))
	sum := h.Sum(nil)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateHostKey checks the provided host key against the session in
// constant time.
func ValidateHostKey(sessionID, hostKey, salt string) error {
	expected := GenerateHostKey(sessionID, salt)
	if !hmac.Equal([]byte(hostKey), []byte(expected)) {
		return ErrInvalidHostKey
	}
	return nil
}

// GeneratePlayerToken creates a random bearer secret for a player.
// 24 bytes = 192 bits of entropy.
func GeneratePlayerToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate player token: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// GenerateSeed draws a non-negative 31-bit dataset seed from the system
// entropy source. Sessions store the seed so a draw can be reproduced.
func GenerateSeed() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to generate seed: %w", err)
	}
	return int64(binary.BigEndian.Uint64(b[:]) & 0x7fffffff), nil
}
