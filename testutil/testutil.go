// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/siemsene/newsvendor/auth"
	"github.com/siemsene/newsvendor/cliparse"
	"github.com/siemsene/newsvendor/db"
	"github.com/siemsene/newsvendor/game"
	"github.com/siemsene/newsvendor/models"
)

var dbSeq atomic.Int64

// SetupTestDB opens a fresh in-memory sqlite database with the full schema.
// Shared-cache keeps the database alive across connections; a single open
// connection sidesteps sqlite's writer lock under concurrent tests.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared", dbSeq.Add(1))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         8311,
		DatabaseURL:  "file:test?mode=memory",
		DatabaseType: "sqlite",
		HostKeySalt:  "test-host-salt",
	}
}

// TestSession holds the handles tests need after seeding a session.
type TestSession struct {
	ID      string
	Code    string
	HostKey string
	Weeks   int
	Hidden  []int
}

// CreateTestSession seeds a session with classroom-default economics, a
// flat training history, and a known hidden demand series (all 50s). The
// optimal quantity for these parameters is 67.
func CreateTestSession(t *testing.T, conn *sql.DB, cfg cliparse.Config, status string, weeks int) TestSession {
	t.Helper()

	sessionID := uuid.NewString()
	code, err := auth.GenerateSessionCode()
	if err != nil {
		t.Fatalf("Failed to generate session code: %v", err)
	}
	hostKey := auth.GenerateHostKey(sessionID, cfg.HostKeySalt)

	totalDays := weeks * game.DaysPerWeek
	hidden := make([]int, totalDays)
	training := make([]int, models.DefaultNTrain)
	for i := range hidden {
		hidden[i] = 50
	}
	for i := range training {
		training[i] = 50
	}

	now := time.Now()
	_, err = conn.Exec(`
		INSERT INTO session (id, code, status, week_index, reveal_index, weeks,
			demand_mu, demand_sigma, price, cost, salvage, n_train,
			training_demands, revealed_demands, optimal_q, leaderboard, avg_orders,
			draw_failed, players_count, created_at)
		VALUES ($1, $2, $3, 0, 0, $4, 50, 20, 1, 0.2, 0, $5, $6, $7, 67, $8, $9, 0, 0, $10)
	`, sessionID, code, status, weeks, models.DefaultNTrain,
		models.EncodeInts(training), models.EncodeInts(nil),
		models.EncodeLeaderboard(nil), models.EncodeFloats(nil), now)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO session_demand (session_id, in_game_demands, seed, generated_at)
		VALUES ($1, $2, 1, $3)
	`, sessionID, models.EncodeInts(hidden), now)
	if err != nil {
		t.Fatalf("Failed to create test demand record: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO session_code (code, session_id)
		VALUES ($1, $2)
	`, code, sessionID)
	if err != nil {
		t.Fatalf("Failed to register test session code: %v", err)
	}

	return TestSession{ID: sessionID, Code: code, HostKey: hostKey, Weeks: weeks, Hidden: hidden}
}

// SetHiddenDemands overwrites a test session's hidden demand series.
func SetHiddenDemands(t *testing.T, conn *sql.DB, sessionID string, demands []int) {
	t.Helper()

	_, err := conn.Exec(`
		UPDATE session_demand SET in_game_demands = $1 WHERE session_id = $2
	`, models.EncodeInts(demands), sessionID)
	if err != nil {
		t.Fatalf("Failed to set hidden demands: %v", err)
	}
}

// CreateTestPlayer seeds a player row and returns its ID and bearer token.
func CreateTestPlayer(t *testing.T, conn *sql.DB, sessionID, name string, weeks int) (playerID, token string) {
	t.Helper()

	playerID = uuid.NewString()
	token, err := auth.GeneratePlayerToken()
	if err != nil {
		t.Fatalf("Failed to generate player token: %v", err)
	}

	now := time.Now()
	_, err = conn.Exec(`
		INSERT INTO player (id, session_id, name, name_key, player_token,
			orders_by_week, daily_profit, cumulative_profit, joined_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9)
	`, playerID, sessionID, name, name, token,
		models.EncodeOrders(make([]*int, weeks)), models.EncodeFloats(nil), now, now)
	if err != nil {
		t.Fatalf("Failed to create test player: %v", err)
	}

	_, err = conn.Exec(`UPDATE session SET players_count = players_count + 1 WHERE id = $1`, sessionID)
	if err != nil {
		t.Fatalf("Failed to bump players_count: %v", err)
	}

	return playerID, token
}

// SetPlayerOrders overwrites a player's full orders-by-week array.
func SetPlayerOrders(t *testing.T, conn *sql.DB, playerID string, orders []*int) {
	t.Helper()

	_, err := conn.Exec(`
		UPDATE player SET orders_by_week = $1 WHERE id = $2
	`, models.EncodeOrders(orders), playerID)
	if err != nil {
		t.Fatalf("Failed to set player orders: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
