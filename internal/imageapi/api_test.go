package imageapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/safesitelabs/warden/internal/detect"
	"github.com/safesitelabs/warden/internal/triage"
)

type mockService struct {
	submit    func(ctx context.Context, imagePath string) (*triage.SubmitResult, error)
	get       func(ctx context.Context, id string) (*triage.Result, bool, error)
	submitted []string
}

func (m *mockService) Submit(ctx context.Context, imagePath string) (*triage.SubmitResult, error) {
	m.submitted = append(m.submitted, imagePath)
	return m.submit(ctx, imagePath)
}

func (m *mockService) Get(ctx context.Context, id string) (*triage.Result, bool, error) {
	return m.get(ctx, id)
}

func newTestRouter(svc TriageService) http.Handler {
	r := chi.NewRouter()
	New(nil, svc).RegisterRoutes(r)
	return r
}

func TestHandleSubmitImage(t *testing.T) {
	t.Parallel()

	svc := &mockService{
		submit: func(_ context.Context, _ string) (*triage.SubmitResult, error) {
			return &triage.SubmitResult{ID: "01TEST"}, nil
		},
	}
	h := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images",
		strings.NewReader(`{"image_path":"/data/frame.jpg"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "01TEST" {
		t.Errorf("id = %q, want %q", resp.ID, "01TEST")
	}
	if len(svc.submitted) != 1 || svc.submitted[0] != "/data/frame.jpg" {
		t.Errorf("submitted = %v, want [/data/frame.jpg]", svc.submitted)
	}
}

func TestHandleSubmitImage_Duplicate(t *testing.T) {
	t.Parallel()

	svc := &mockService{
		submit: func(_ context.Context, _ string) (*triage.SubmitResult, error) {
			return &triage.SubmitResult{Skipped: true, Reason: "duplicate"}, nil
		},
	}
	h := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images",
		strings.NewReader(`{"image_path":"/data/frame.jpg"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	var resp struct {
		Skipped bool   `json:"skipped"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Skipped || resp.Reason != "duplicate" {
		t.Errorf("response = %+v, want skipped duplicate", resp)
	}
}

func TestHandleSubmitImage_BadRequests(t *testing.T) {
	t.Parallel()

	svc := &mockService{
		submit: func(_ context.Context, _ string) (*triage.SubmitResult, error) {
			t.Error("Submit must not be called for invalid payloads")
			return nil, nil
		},
	}
	h := newTestRouter(svc)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"empty path", `{"image_path":""}`},
		{"missing field", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/images", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleSubmitImage_ServiceError(t *testing.T) {
	t.Parallel()

	svc := &mockService{
		submit: func(_ context.Context, _ string) (*triage.SubmitResult, error) {
			return nil, errors.New("store unavailable")
		},
	}
	h := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images",
		strings.NewReader(`{"image_path":"/data/frame.jpg"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestHandleGetTriage(t *testing.T) {
	t.Parallel()

	svc := &mockService{
		get: func(_ context.Context, id string) (*triage.Result, bool, error) {
			if id != "01TEST" {
				t.Errorf("id = %q, want %q", id, "01TEST")
			}
			return &triage.Result{
				ID:         "01TEST",
				ImagePath:  "/data/frame.jpg",
				Status:     triage.StatusComplete,
				Verdict:    detect.VerdictAnomaly,
				HazardCode: "UA-01",
			}, true, nil
		},
	}
	h := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/triage/01TEST", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got triage.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != triage.StatusComplete {
		t.Errorf("Status = %q, want %q", got.Status, triage.StatusComplete)
	}
	if got.HazardCode != "UA-01" {
		t.Errorf("HazardCode = %q, want %q", got.HazardCode, "UA-01")
	}
}

func TestHandleGetTriage_NotFound(t *testing.T) {
	t.Parallel()

	svc := &mockService{
		get: func(_ context.Context, _ string) (*triage.Result, bool, error) {
			return nil, false, nil
		},
	}
	h := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/triage/missing", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleGetTriage_StoreError(t *testing.T) {
	t.Parallel()

	svc := &mockService{
		get: func(_ context.Context, _ string) (*triage.Result, bool, error) {
			return nil, false, errors.New("store unavailable")
		},
	}
	h := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/triage/x", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestNew_RequiresService(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil service")
		}
	}()
	_ = New(nil, nil)
}
