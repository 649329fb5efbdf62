// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siemsene/newsvendor/auth"
	"github.com/siemsene/newsvendor/models"
	"github.com/siemsene/newsvendor/testutil"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestCreateSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	tests := []struct {
		name       string
		body       models.CreateSessionRequest
		wantStatus int
	}{
		{
			name:       "defaults",
			body:       models.CreateSessionRequest{},
			wantStatus: http.StatusCreated,
		},
		{
			name: "explicit parameters",
			body: models.CreateSessionRequest{
				DemandMu:    floatPtr(100),
				DemandSigma: floatPtr(25),
				Price:       floatPtr(2),
				Cost:        floatPtr(0.5),
				Weeks:       intPtr(4),
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "zero sigma",
			body:       models.CreateSessionRequest{DemandSigma: floatPtr(0)},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative price",
			body:       models.CreateSessionRequest{Price: floatPtr(-1)},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero weeks",
			body:       models.CreateSessionRequest{Weeks: intPtr(0)},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "too many weeks",
			body:       models.CreateSessionRequest{Weeks: intPtr(53)},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/sessions", tt.body, nil)
			w := httptest.NewRecorder()
			handler.CreateSession(w, req)

			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus != http.StatusCreated {
				return
			}

			var resp models.CreateSessionResponse
			testutil.AssertJSON(t, w, &resp)

			if resp.SessionID == "" {
				t.Error("Expected a session ID")
			}
			if len(resp.Code) != auth.SessionCodeLength {
				t.Errorf("Code length = %d, want %d", len(resp.Code), auth.SessionCodeLength)
			}
			if err := auth.ValidateHostKey(resp.SessionID, resp.HostKey, cfg.HostKeySalt); err != nil {
				t.Errorf("Returned host key does not validate: %v", err)
			}

			// Session, hidden demand, and registry rows all exist
			var status string
			if err := db.QueryRow(`SELECT status FROM session WHERE id = $1`, resp.SessionID).Scan(&status); err != nil {
				t.Fatalf("Session row missing: %v", err)
			}
			if status != models.StatusTraining {
				t.Errorf("New session status = %s, want training", status)
			}

			var mapped string
			if err := db.QueryRow(`SELECT session_id FROM session_code WHERE code = $1`, resp.Code).Scan(&mapped); err != nil {
				t.Fatalf("Registry row missing: %v", err)
			}
			if mapped != resp.SessionID {
				t.Errorf("Registry maps to %s, want %s", mapped, resp.SessionID)
			}

			var demandLen string
			if err := db.QueryRow(`SELECT in_game_demands FROM session_demand WHERE session_id = $1`, resp.SessionID).Scan(&demandLen); err != nil {
				t.Fatalf("Hidden demand row missing: %v", err)
			}
		})
	}
}

func TestCreateSessionHiddenDemandLength(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	body := models.CreateSessionRequest{Weeks: intPtr(3)}
	req := testutil.MakeRequest("POST", "/sessions", body, nil)
	w := httptest.NewRecorder()
	handler.CreateSession(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreateSessionResponse
	testutil.AssertJSON(t, w, &resp)

	var raw string
	if err := db.QueryRow(`SELECT in_game_demands FROM session_demand WHERE session_id = $1`, resp.SessionID).Scan(&raw); err != nil {
		t.Fatalf("Hidden demand row missing: %v", err)
	}
	if got := len(models.DecodeInts(raw)); got != 15 {
		t.Errorf("Hidden demand length = %d, want 15 (3 weeks x 5 days)", got)
	}
}

func TestStartSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	sess := testutil.CreateTestSession(t, db, cfg, models.StatusTraining, 2)

	req := testutil.MakeRequest("POST", "/sessions/"+sess.ID+"/start", nil,
		map[string]string{"X-Host-Key": sess.HostKey})
	req.SetPathValue("id", sess.ID)
	w := httptest.NewRecorder()
	handler.StartSession(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var status string
	if err := db.QueryRow(`SELECT status FROM session WHERE id = $1`, sess.ID).Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != models.StatusOrdering {
		t.Errorf("Status = %s, want ordering", status)
	}

	// A second start conflicts
	req = testutil.MakeRequest("POST", "/sessions/"+sess.ID+"/start", nil,
		map[string]string{"X-Host-Key": sess.HostKey})
	req.SetPathValue("id", sess.ID)
	w = httptest.NewRecorder()
	handler.StartSession(w, req)
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestStartSessionAuth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	sess := testutil.CreateTestSession(t, db, cfg, models.StatusTraining, 2)

	req := testutil.MakeRequest("POST", "/sessions/"+sess.ID+"/start", nil,
		map[string]string{"X-Host-Key": "not-the-key"})
	req.SetPathValue("id", sess.ID)
	w := httptest.NewRecorder()
	handler.StartSession(w, req)

	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestRedrawSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	sess := testutil.CreateTestSession(t, db, cfg, models.StatusTraining, 2)

	req := testutil.MakeRequest("POST", "/sessions/"+sess.ID+"/redraw", nil,
		map[string]string{"X-Host-Key": sess.HostKey})
	req.SetPathValue("id", sess.ID)
	w := httptest.NewRecorder()
	handler.RedrawSession(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.OKResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.OK {
		// The search can exhaust on an unlucky seed; that leaves the old
		// dataset in place and flags the session instead.
		var flagged int
		if err := db.QueryRow(`SELECT draw_failed FROM session WHERE id = $1`, sess.ID).Scan(&flagged); err != nil {
			t.Fatal(err)
		}
		if flagged != 1 {
			t.Error("Failed redraw did not flag draw_failed")
		}
		return
	}

	// The hidden series changed away from the seeded all-50s.
	var raw string
	if err := db.QueryRow(`SELECT in_game_demands FROM session_demand WHERE session_id = $1`, sess.ID).Scan(&raw); err != nil {
		t.Fatal(err)
	}
	hidden := models.DecodeInts(raw)
	if len(hidden) != 10 {
		t.Fatalf("Hidden demand length = %d, want 10", len(hidden))
	}
	all50 := true
	for _, d := range hidden {
		if d != 50 {
			all50 = false
		}
	}
	if all50 {
		t.Error("Redraw left the seeded demand series untouched")
	}
}

func TestRedrawSessionAfterStart(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	sess := testutil.CreateTestSession(t, db, cfg, models.StatusOrdering, 2)

	req := testutil.MakeRequest("POST", "/sessions/"+sess.ID+"/redraw", nil,
		map[string]string{"X-Host-Key": sess.HostKey})
	req.SetPathValue("id", sess.ID)
	w := httptest.NewRecorder()
	handler.RedrawSession(w, req)

	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestGetHostView(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	sess := testutil.CreateTestSession(t, db, cfg, models.StatusTraining, 2)

	req := testutil.MakeRequest("GET", "/sessions/"+sess.ID+"/host", nil,
		map[string]string{"X-Host-Key": sess.HostKey})
	req.SetPathValue("id", sess.ID)
	w := httptest.NewRecorder()
	handler.GetHostView(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var view models.SessionHostView
	testutil.AssertJSON(t, w, &view)

	if view.OptimalQ != 67 {
		t.Errorf("OptimalQ = %d, want 67", view.OptimalQ)
	}
	if view.Code != sess.Code {
		t.Errorf("Code = %s, want %s", view.Code, sess.Code)
	}
	if len(view.TrainingDemands) != models.DefaultNTrain {
		t.Errorf("Training demands length = %d, want %d", len(view.TrainingDemands), models.DefaultNTrain)
	}
}

func TestGetAnalytics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	// Not finished yet
	sess := testutil.CreateTestSession(t, db, cfg, models.StatusOrdering, 1)
	req := testutil.MakeRequest("GET", "/sessions/"+sess.ID+"/analytics", nil,
		map[string]string{"X-Host-Key": sess.HostKey})
	req.SetPathValue("id", sess.ID)
	w := httptest.NewRecorder()
	handler.GetAnalytics(w, req)
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Finished
	done := testutil.CreateTestSession(t, db, cfg, models.StatusFinished, 1)
	req = testutil.MakeRequest("GET", "/sessions/"+done.ID+"/analytics", nil,
		map[string]string{"X-Host-Key": done.HostKey})
	req.SetPathValue("id", done.ID)
	w = httptest.NewRecorder()
	handler.GetAnalytics(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.AnalyticsResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.OptimalQ != 67 {
		t.Errorf("OptimalQ = %d, want 67", resp.OptimalQ)
	}
}

func TestSessionNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	missingID := "no-such-session"
	key := auth.GenerateHostKey(missingID, cfg.HostKeySalt)

	req := testutil.MakeRequest("POST", "/sessions/"+missingID+"/start", nil,
		map[string]string{"X-Host-Key": key})
	req.SetPathValue("id", missingID)
	w := httptest.NewRecorder()
	handler.StartSession(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}
