package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"webpulse/backend/internal/insight/domain"
	"webpulse/backend/internal/insight/service"
	"webpulse/backend/internal/server/middleware"
)

type fakeEngine struct {
	generated   *domain.Insight
	generateErr error
	listed      []*domain.Insight
	listErr     error

	gotDate       string
	gotRegenerate bool
	gotLimit      int
}

func (f *fakeEngine) Generate(_ context.Context, _ string, date string, regenerate bool) (*domain.Insight, error) {
	f.gotDate = date
	f.gotRegenerate = regenerate
	return f.generated, f.generateErr
}

func (f *fakeEngine) GetLatest(_ context.Context, _ string, limit int) ([]*domain.Insight, error) {
	f.gotLimit = limit
	return f.listed, f.listErr
}

func doRequest(t *testing.T, eng *fakeEngine, method, target, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(eng).Register(r)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerate_OK(t *testing.T) {
	eng := &fakeEngine{generated: &domain.Insight{ID: "i1", Title: "A title", Body: "A body", MetricDate: "2026-08-20"}}
	w := doRequest(t, eng, http.MethodPost, "/v1/insights/generate", `{"date":"2026-08-20","regenerate":true}`, "u1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if eng.gotDate != "2026-08-20" || !eng.gotRegenerate {
		t.Fatalf("engine got date=%q regenerate=%v", eng.gotDate, eng.gotRegenerate)
	}

	var resp struct {
		ID   string   `json:"id"`
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "i1" {
		t.Fatalf("id = %q", resp.ID)
	}
	if resp.Tags == nil {
		t.Fatal("tags should serialize as an empty array")
	}
}

func TestGenerate_EmptyBodyDefaultsToToday(t *testing.T) {
	eng := &fakeEngine{generated: &domain.Insight{ID: "i1"}}
	w := doRequest(t, eng, http.MethodPost, "/v1/insights/generate", "", "u1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if eng.gotDate != "" {
		t.Fatalf("date = %q, want empty (engine resolves today)", eng.gotDate)
	}
}

func TestGenerate_BadDate(t *testing.T) {
	w := doRequest(t, &fakeEngine{}, http.MethodPost, "/v1/insights/generate", `{"date":"20-08-2026"}`, "u1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGenerate_MetricsNotReady(t *testing.T) {
	eng := &fakeEngine{generateErr: service.ErrMetricsNotReady}
	w := doRequest(t, eng, http.MethodPost, "/v1/insights/generate", `{"date":"2026-08-20"}`, "u1")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestList_OK(t *testing.T) {
	eng := &fakeEngine{listed: []*domain.Insight{
		{ID: "i1", MetricDate: "2026-08-20", Tags: []string{"deep-dive"}},
		{ID: "i2", MetricDate: "2026-08-19"},
	}}
	w := doRequest(t, eng, http.MethodGet, "/v1/insights?limit=5", "", "u1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if eng.gotLimit != 5 {
		t.Fatalf("limit = %d, want 5", eng.gotLimit)
	}

	var resp struct {
		Insights []struct {
			ID string `json:"id"`
		} `json:"insights"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Insights) != 2 || resp.Insights[0].ID != "i1" {
		t.Fatalf("insights = %+v", resp.Insights)
	}
}

func TestList_DefaultLimit(t *testing.T) {
	eng := &fakeEngine{}
	w := doRequest(t, eng, http.MethodGet, "/v1/insights", "", "u1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if eng.gotLimit != domain.DefaultRetention {
		t.Fatalf("limit = %d, want %d", eng.gotLimit, domain.DefaultRetention)
	}
}

func TestList_BadLimit(t *testing.T) {
	for _, raw := range []string{"0", "-1", "51", "abc"} {
		w := doRequest(t, &fakeEngine{}, http.MethodGet, "/v1/insights?limit="+raw, "", "u1")
		if w.Code != http.StatusBadRequest {
			t.Errorf("limit %q: status = %d, want 400", raw, w.Code)
		}
	}
}

func TestList_NoAuth(t *testing.T) {
	w := doRequest(t, &fakeEngine{}, http.MethodGet, "/v1/insights", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
