// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfarer/internal/models"
	"github.com/tomtom215/wayfarer/internal/recommend"
	"github.com/tomtom215/wayfarer/internal/recommend/storage"
)

type stubTriggers struct {
	retrains int
	reloads  int
	full     bool
}

func (s *stubTriggers) TriggerRetrain() bool {
	if s.full {
		return false
	}
	s.retrains++
	return true
}

func (s *stubTriggers) TriggerReload() bool {
	if s.full {
		return false
	}
	s.reloads++
	return true
}

type stubPinger struct{ err error }

func (s *stubPinger) Ping(_ context.Context) error { return s.err }

func newTestServer(t *testing.T, fitted bool, triggers *stubTriggers) *httptest.Server {
	t.Helper()

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "model.bin"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if fitted {
		_, err := engine.FitAndSave(context.Background(), []recommend.Rating{
			{UserID: "u1", ItemID: "a", Value: 5},
			{UserID: "u1", ItemID: "b", Value: 3},
			{UserID: "u2", ItemID: "a", Value: 4},
			{UserID: "u2", ItemID: "b", Value: 5},
			{UserID: "u2", ItemID: "c", Value: 2},
		})
		if err != nil {
			t.Fatalf("FitAndSave() error = %v", err)
		}
	}

	handler := NewHandler(engine, triggers, &stubPinger{})
	router := NewRouter(handler, RouterConfig{
		RateLimitReqs:   0,
		RateLimitWindow: time.Minute,
		CORSOrigins:     []string{"*"},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func decodeEnvelope(t *testing.T, resp *http.Response) models.APIResponse {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestRecommendEndpoint(t *testing.T) {
	srv := newTestServer(t, true, &stubTriggers{})

	resp := postJSON(t, srv.URL+"/api/v1/recommend", RecommendRequest{UserID: "u1", Count: 5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	if envelope.Status != "success" {
		t.Fatalf("envelope status = %q, want success", envelope.Status)
	}

	data, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var payload RecommendResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.UserID != "u1" || len(payload.Results) != 1 || payload.Results[0].ItemID != "c" {
		t.Errorf("payload = %+v, want one result for c", payload)
	}
	if payload.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", payload.ModelVersion)
	}
}

func TestRecommendEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		fitted     bool
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown user",
			fitted:     true,
			body:       RecommendRequest{UserID: "ghost"},
			wantStatus: http.StatusNotFound,
			wantCode:   "USER_NOT_FOUND",
		},
		{
			name:       "model not fitted",
			fitted:     false,
			body:       RecommendRequest{UserID: "u1"},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "MODEL_NOT_FITTED",
		},
		{
			name:       "missing user id",
			fitted:     true,
			body:       map[string]interface{}{"count": 5},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "negative count",
			fitted:     true,
			body:       map[string]interface{}{"user_id": "u1", "count": -2},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.fitted, &stubTriggers{})

			resp := postJSON(t, srv.URL+"/api/v1/recommend", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			envelope := decodeEnvelope(t, resp)
			if envelope.Error == nil || envelope.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %q", envelope.Error, tt.wantCode)
			}
		})
	}
}

func TestModelTriggerEndpoints(t *testing.T) {
	triggers := &stubTriggers{}
	srv := newTestServer(t, true, triggers)

	resp := postJSON(t, srv.URL+"/api/v1/model/retrain", nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("retrain status = %d, want 202", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/v1/model/reload", nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("reload status = %d, want 202", resp.StatusCode)
	}
	_ = resp.Body.Close()

	if triggers.retrains != 1 || triggers.reloads != 1 {
		t.Errorf("triggers = %+v, want one retrain and one reload", triggers)
	}
}

func TestModelTriggerQueueFull(t *testing.T) {
	srv := newTestServer(t, true, &stubTriggers{full: true})

	resp := postJSON(t, srv.URL+"/api/v1/model/retrain", nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("retrain status = %d, want 429", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Error == nil || envelope.Error.Code != "RETRAIN_QUEUE_FULL" {
		t.Errorf("error = %+v, want RETRAIN_QUEUE_FULL", envelope.Error)
	}
}

func TestModelStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, true, &stubTriggers{})

	resp, err := http.Get(srv.URL + "/api/v1/model/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	data, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var status recommend.ModelStatus
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Fitted || status.Version != 1 || status.UserCount != 2 {
		t.Errorf("status = %+v, want fitted version 1 with 2 users", status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, false, &stubTriggers{})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Request-ID"); got == "" {
		t.Error("response missing X-Request-ID header")
	}
	_ = resp.Body.Close()
}
