// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siemsene/newsvendor/models"
	"github.com/siemsene/newsvendor/testutil"
)

func submitOrder(t *testing.T, handler *SessionHandler, sessionID, token string, week, qty int) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/orders",
		models.SubmitOrderRequest{WeekIndex: week, OrderQty: qty},
		map[string]string{"X-Player-Token": token})
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.SubmitOrder(w, req)
	return w
}

func TestSubmitOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	sess := testutil.CreateTestSession(t, db, cfg, models.StatusOrdering, 2)
	playerID, token := testutil.CreateTestPlayer(t, db, sess.ID, "alice", sess.Weeks)

	w := submitOrder(t, handler, sess.ID, token, 0, 60)
	testutil.AssertStatus(t, w, http.StatusOK)

	var orders string
	var submittedWeek int
	err := db.QueryRow(`SELECT orders_by_week, submitted_week FROM player WHERE id = $1`, playerID).Scan(&orders, &submittedWeek)
	if err != nil {
		t.Fatal(err)
	}
	decoded := models.DecodeOrders(orders, sess.Weeks)
	if decoded[0] == nil || *decoded[0] != 60 {
		t.Errorf("orders[0] = %v, want 60", decoded[0])
	}
	if submittedWeek != 0 {
		t.Errorf("submitted_week = %d, want 0", submittedWeek)
	}

	// Resubmitting the same week overwrites
	w = submitOrder(t, handler, sess.ID, token, 0, 70)
	testutil.AssertStatus(t, w, http.StatusOK)

	err = db.QueryRow(`SELECT orders_by_week FROM player WHERE id = $1`, playerID).Scan(&orders)
	if err != nil {
		t.Fatal(err)
	}
	decoded = models.DecodeOrders(orders, sess.Weeks)
	if decoded[0] == nil || *decoded[0] != 70 {
		t.Errorf("orders[0] = %v, want 70 after resubmit", decoded[0])
	}
}

func TestSubmitOrderClampsNegative(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	sess := testutil.CreateTestSession(t, db, cfg, models.StatusOrdering, 1)
	playerID, token := testutil.CreateTestPlayer(t, db, sess.ID, "alice", sess.Weeks)

	w := submitOrder(t, handler, sess.ID, token, 0, -25)
	testutil.AssertStatus(t, w, http.StatusOK)

	var orders string
	if err := db.QueryRow(`SELECT orders_by_week FROM player WHERE id = $1`, playerID).Scan(&orders); err != nil {
		t.Fatal(err)
	}
	decoded := models.DecodeOrders(orders, sess.Weeks)
	if decoded[0] == nil || *decoded[0] != 0 {
		t.Errorf("orders[0] = %v, want clamped 0", decoded[0])
	}
}

func TestSubmitOrderPromotesTraining(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	sess := testutil.CreateTestSession(t, db, cfg, models.StatusTraining, 2)
	_, token := testutil.CreateTestPlayer(t, db, sess.ID, "alice", sess.Weeks)

	w := submitOrder(t, handler, sess.ID, token, 0, 50)
	testutil.AssertStatus(t, w, http.StatusOK)

	var status string
	if err := db.QueryRow(`SELECT status FROM session WHERE id = $1`, sess.ID).Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != models.StatusOrdering {
		t.Errorf("status = %s, want ordering after first order", status)
	}
}

func TestSubmitOrderStatusGating(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	for _, status := range []string{models.StatusRevealing, models.StatusFinished} {
		t.Run(status, func(t *testing.T) {
			sess := testutil.CreateTestSession(t, db, cfg, status, 2)
			_, token := testutil.CreateTestPlayer(t, db, sess.ID, "alice", sess.Weeks)

			w := submitOrder(t, handler, sess.ID, token, 0, 50)
			testutil.AssertStatus(t, w, http.StatusConflict)
		})
	}
}

func TestSubmitOrderWeekMismatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	sess := testutil.CreateTestSession(t, db, cfg, models.StatusOrdering, 3)
	_, token := testutil.CreateTestPlayer(t, db, sess.ID, "alice", sess.Weeks)

	// Current week is 0; submitting for week 1 is stale or early.
	w := submitOrder(t, handler, sess.ID, token, 1, 50)
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Out-of-range weeks are rejected outright.
	w = submitOrder(t, handler, sess.ID, token, 3, 50)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = submitOrder(t, handler, sess.ID, token, -1, 50)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestSubmitOrderAuth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	sess := testutil.CreateTestSession(t, db, cfg, models.StatusOrdering, 1)

	// Missing token
	req := testutil.MakeRequest("POST", "/sessions/"+sess.ID+"/orders",
		models.SubmitOrderRequest{WeekIndex: 0, OrderQty: 50}, nil)
	req.SetPathValue("id", sess.ID)
	w := httptest.NewRecorder()
	handler.SubmitOrder(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	// Unknown token
	w = submitOrder(t, handler, sess.ID, "bogus-token", 0, 50)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}
