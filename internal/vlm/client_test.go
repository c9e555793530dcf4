package vlm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeImage(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("fake-image-bytes"), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestClient_Analyze(t *testing.T) {
	t.Parallel()

	img := writeImage(t, "frame.jpg")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/chat/completions")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer test-key")
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["model"] != "gpt-4o" {
			t.Errorf("model = %v, want gpt-4o", req["model"])
		}
		if rf, ok := req["response_format"].(map[string]any); !ok || rf["type"] != "json_object" {
			t.Errorf("response_format = %v, want json_object", req["response_format"])
		}

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":
			"{\"risk_level\":\"HIGH\",\"hazard_code\":\"UA-01\",\"reason\":\"worker without helmet near racking\"}"
		}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "gpt-4o")
	as, err := c.Analyze(context.Background(), img)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if as.RiskLevel != RiskHigh {
		t.Errorf("RiskLevel = %q, want %q", as.RiskLevel, RiskHigh)
	}
	if as.HazardCode != "UA-01" {
		t.Errorf("HazardCode = %q, want %q", as.HazardCode, "UA-01")
	}
	if as.ImagePath != img {
		t.Errorf("ImagePath = %q, want %q", as.ImagePath, img)
	}
}

func TestClient_Analyze_FencedJSON(t *testing.T) {
	t.Parallel()

	img := writeImage(t, "frame.png")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		content := "```json\n{\"risk_level\":\"LOW\",\"hazard_code\":\"NONE\",\"reason\":\"clear aisle\"}\n```"
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": content}}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m")
	as, err := c.Analyze(context.Background(), img)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if as.RiskLevel != RiskLow || as.HazardCode != "NONE" {
		t.Errorf("assessment = %+v, want LOW/NONE", as)
	}
}

func TestClient_Analyze_MissingImage(t *testing.T) {
	t.Parallel()

	c := NewClient("http://127.0.0.1:1", "k", "m")
	_, err := c.Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"))
	if err == nil {
		t.Fatal("expected error for missing image file")
	}
	if !strings.Contains(err.Error(), "read image") {
		t.Errorf("error = %q, want substring %q", err, "read image")
	}
}

func TestClient_Analyze_ServerError(t *testing.T) {
	t.Parallel()

	img := writeImage(t, "frame.jpg")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m")
	_, err := c.Analyze(context.Background(), img)
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "analyzer error 429") {
		t.Errorf("error = %q, want substring %q", err, "analyzer error 429")
	}
}

func TestClient_Analyze_NoChoices(t *testing.T) {
	t.Parallel()

	img := writeImage(t, "frame.jpg")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m")
	_, err := c.Analyze(context.Background(), img)
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestCleanJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding space", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := cleanJSON(tt.in); got != tt.want {
				t.Errorf("cleanJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMimeFor(t *testing.T) {
	t.Parallel()

	if got := mimeFor("/a/b.PNG"); got != "image/png" {
		t.Errorf("mimeFor(.PNG) = %q, want image/png", got)
	}
	if got := mimeFor("/a/b.jpg"); got != "image/jpeg" {
		t.Errorf("mimeFor(.jpg) = %q, want image/jpeg", got)
	}
}

func TestKnownRiskLevel(t *testing.T) {
	t.Parallel()

	for _, level := range []string{RiskLow, RiskMed, RiskHigh} {
		if !KnownRiskLevel(level) {
			t.Errorf("KnownRiskLevel(%q) = false, want true", level)
		}
	}
	for _, level := range []string{"", "low", "MEDIUM", "CRITICAL"} {
		if KnownRiskLevel(level) {
			t.Errorf("KnownRiskLevel(%q) = true, want false", level)
		}
	}
}
