package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	mathrand "math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"datacorp/internal/catalog"
	"datacorp/internal/game"
)

func newTestServer(t *testing.T) (*Server, *game.Session) {
	t.Helper()
	session := game.NewSession(catalog.Defaults(), game.Options{
		Rand: mathrand.New(mathrand.NewSource(1)),
	})
	return New(nil, session, NewHub(nil)), session
}

func doRequest(t *testing.T, s *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) game.Snapshot {
	t.Helper()
	var snap game.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestStateEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/v1/state", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if snap.Resources.Revenue != game.StartingRevenue {
		t.Fatalf("revenue=%v want %v", snap.Resources.Revenue, float64(game.StartingRevenue))
	}
	if len(snap.Tools) == 0 || len(snap.Policies) == 0 {
		t.Fatalf("snapshot missing catalog views")
	}
}

func TestCatalogEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/v1/catalog", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var set catalog.Set
	if err := json.NewDecoder(rec.Body).Decode(&set); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(set.Connectors) != 4 {
		t.Fatalf("connectors=%d want 4", len(set.Connectors))
	}
}

func TestActionApplies(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/v1/actions/collect", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if snap.Resources.RawData != 1 {
		t.Fatalf("raw=%v want 1", snap.Resources.RawData)
	}
}

func TestActionWithBody(t *testing.T) {
	s, session := newTestServer(t)
	for i := 0; i < 100; i++ {
		session.CollectData()
	}
	rec := doRequest(t, s, http.MethodPost, "/v1/actions/connector", map[string]any{"index": 0}, nil)
	snap := decodeSnapshot(t, rec)
	if snap.Resources.Connectors != 1 || snap.Resources.RawData != 0 {
		t.Fatalf("connectors=%d raw=%v", snap.Resources.Connectors, snap.Resources.RawData)
	}
}

func TestUnknownAction(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/v1/actions/frobnicate", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404", rec.Code)
	}
}

func TestActionRejectsUnknownFields(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/v1/actions/collect", map[string]any{"bogus": true}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rec.Code)
	}
}

func TestIdempotencyDedup(t *testing.T) {
	s, _ := newTestServer(t)
	headers := map[string]string{"Idempotency-Key": "key-1"}

	rec := doRequest(t, s, http.MethodPost, "/v1/actions/collect", nil, headers)
	if snap := decodeSnapshot(t, rec); snap.Resources.RawData != 1 {
		t.Fatalf("raw=%v want 1 after first request", snap.Resources.RawData)
	}

	rec = doRequest(t, s, http.MethodPost, "/v1/actions/collect", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate status=%d", rec.Code)
	}
	if snap := decodeSnapshot(t, rec); snap.Resources.RawData != 1 {
		t.Fatalf("raw=%v want 1, duplicate key must not re-apply", snap.Resources.RawData)
	}

	rec = doRequest(t, s, http.MethodPost, "/v1/actions/collect", nil, nil)
	if snap := decodeSnapshot(t, rec); snap.Resources.RawData != 2 {
		t.Fatalf("raw=%v want 2 with fresh key", snap.Resources.RawData)
	}
}

func TestSyncReplay(t *testing.T) {
	s, _ := newTestServer(t)
	body := map[string]any{
		"commands": []map[string]any{
			{"action": "collect", "idempotency_key": "c1"},
			{"action": "collect", "idempotency_key": "c1"}, // duplicate
			{"action": "frobnicate", "idempotency_key": "c2"},
			{"action": "collect", "idempotency_key": "c3"},
		},
	}
	rec := doRequest(t, s, http.MethodPost, "/v1/sync/replay", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Results []struct {
			Action string `json:"action"`
			Status string `json:"status"`
		} `json:"results"`
		State game.Snapshot `json:"state"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"applied", "duplicate", "unknown", "applied"}
	if len(out.Results) != len(want) {
		t.Fatalf("results=%d want %d", len(out.Results), len(want))
	}
	for i, w := range want {
		if out.Results[i].Status != w {
			t.Fatalf("result %d status=%s want %s", i, out.Results[i].Status, w)
		}
	}
	if out.State.Resources.RawData != 2 {
		t.Fatalf("raw=%v want 2 after replay", out.State.Resources.RawData)
	}
}

func TestSeenWindowEviction(t *testing.T) {
	s, _ := newTestServer(t)
	for i := 0; i < seenLimit+10; i++ {
		s.alreadySeen(fmt.Sprintf("k-%d", i))
	}
	if !s.alreadySeen("k-100") {
		t.Fatalf("recent key must still be remembered")
	}
	if s.alreadySeen("k-0") {
		t.Fatalf("evicted key must be forgotten")
	}
}
