package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"webpulse/backend/internal/event/service"
	"webpulse/backend/internal/server/middleware"
)

type fakeRecorder struct {
	userID string
	inputs []service.EventInput
	result *service.RecordResult
	err    error
}

func (f *fakeRecorder) RecordEvents(_ context.Context, userID string, inputs []service.EventInput) (*service.RecordResult, error) {
	f.userID = userID
	f.inputs = inputs
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func doPost(t *testing.T, rec *fakeRecorder, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(rec).Register(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecordEvents_OK(t *testing.T) {
	rec := &fakeRecorder{result: &service.RecordResult{Stored: 2, AcceptedKeys: []string{"k1"}}}
	body := `{"events":[
		{"type":"scroll","scrollDistance":1200,"domain":"docs.example.com","idempotencyKey":"k1"},
		{"type":"click","durationMs":300,"domain":"docs.example.com"}
	]}`

	w := doPost(t, rec, "u1", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if rec.userID != "u1" {
		t.Fatalf("userID = %q, want u1", rec.userID)
	}
	if len(rec.inputs) != 2 || rec.inputs[0].IdempotencyKey != "k1" {
		t.Fatalf("inputs not forwarded: %+v", rec.inputs)
	}

	var resp struct {
		Stored       int      `json:"stored"`
		AcceptedKeys []string `json:"acceptedKeys"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stored != 2 || len(resp.AcceptedKeys) != 1 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestRecordEvents_NoAuth(t *testing.T) {
	w := doPost(t, &fakeRecorder{}, "", `{"events":[{"type":"click"}]}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRecordEvents_BadJSON(t *testing.T) {
	w := doPost(t, &fakeRecorder{}, "u1", `{"events":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRecordEvents_UnknownFieldRejected(t *testing.T) {
	w := doPost(t, &fakeRecorder{}, "u1", `{"events":[],"extra":true}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRecordEvents_ServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"empty batch", service.ErrEmptyBatch, http.StatusBadRequest},
		{"unknown type", service.ErrUnknownEventType, http.StatusBadRequest},
		{"user missing", service.ErrUserNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doPost(t, &fakeRecorder{err: tc.err}, "u1", `{"events":[{"type":"click"}]}`)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRecordEvents_PausedReported(t *testing.T) {
	rec := &fakeRecorder{result: &service.RecordResult{AcceptedKeys: []string{}, TrackingPaused: true}}
	w := doPost(t, rec, "u1", `{"events":[{"type":"click"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		TrackingPaused bool `json:"trackingPaused"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.TrackingPaused {
		t.Fatal("trackingPaused not reported")
	}
}
