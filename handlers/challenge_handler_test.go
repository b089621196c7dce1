package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"tripTagAPI/internal/store"
	"tripTagAPI/middleware"
	"tripTagAPI/services"
)

func newChallengeRouter(t *testing.T) (*mux.Router, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	h := NewChallengeHandler(services.NewChallengeService(st))

	r := mux.NewRouter()
	r.HandleFunc("/challenges/available", h.GetAvailableChallenges).Methods("GET")
	r.HandleFunc("/challenges/active", h.GetActiveChallenges).Methods("GET")
	r.HandleFunc("/challenges/{challengeId}/start", h.StartChallenge).Methods("POST")
	r.HandleFunc("/challenges/visit", h.RecordVisit).Methods("POST")
	return r, st
}

func authedRequest(method, path string, body []byte, userID string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func seedTestChallenge(t *testing.T, st *store.MemoryStore, id string, attractions []string) {
	t.Helper()
	err := st.Set(context.Background(), "challenges", id, map[string]any{
		"title":             "Paris Classics",
		"description":       "seeded",
		"attractionsToFind": attractions,
		"timeLimitDays":     3,
	})
	if err != nil {
		t.Fatalf("failed to seed challenge: %v", err)
	}
}

func seedTestProfile(t *testing.T, st *store.MemoryStore, uid string) {
	t.Helper()
	err := st.Set(context.Background(), "users", uid, map[string]any{
		"email":               uid + "@example.com",
		"username":            uid,
		"level":               1,
		"completedChallenges": 0,
	})
	if err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
}

func TestChallengeRoutesRequireAuth(t *testing.T) {
	r, _ := newChallengeRouter(t)

	req := httptest.NewRequest("GET", "/challenges/available", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestStartChallengeEndpoint(t *testing.T) {
	r, st := newChallengeRouter(t)
	seedTestChallenge(t, st, "c1", []string{"Eiffel Tower"})
	seedTestProfile(t, st, "u1")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest("POST", "/challenges/c1/start", nil, "u1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}

	// Starting the same challenge again conflicts.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest("POST", "/challenges/c1/start", nil, "u1"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate start: status = %d, want 409", rec.Code)
	}

	// Unknown challenge is a 404.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest("POST", "/challenges/nope/start", nil, "u1"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown challenge: status = %d, want 404", rec.Code)
	}
}

func TestVisitEndpointFinishesChallenge(t *testing.T) {
	r, st := newChallengeRouter(t)
	seedTestChallenge(t, st, "c1", []string{"Eiffel Tower"})
	seedTestProfile(t, st, "u1")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest("POST", "/challenges/c1/start", nil, "u1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: status = %d", rec.Code)
	}

	body, _ := json.Marshal(map[string]string{"attraction": "Eiffel Tower"})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest("POST", "/challenges/visit", body, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("visit: status = %d; body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest("GET", "/challenges/active", nil, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("active: status = %d", rec.Code)
	}
	var active []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &active); err != nil {
		t.Fatalf("active: bad JSON: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("challenge should be finished, still active: %s", rec.Body.String())
	}
}

func TestVisitEndpointValidation(t *testing.T) {
	r, _ := newChallengeRouter(t)

	body, _ := json.Marshal(map[string]string{"attraction": ""})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest("POST", "/challenges/visit", body, "u1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAvailableEndpoint(t *testing.T) {
	r, st := newChallengeRouter(t)
	seedTestChallenge(t, st, "c1", []string{"Eiffel Tower"})
	seedTestProfile(t, st, "u1")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest("GET", "/challenges/available", nil, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q", ct)
	}

	var challenges []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &challenges); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(challenges) != 1 || challenges[0].ID != "c1" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
