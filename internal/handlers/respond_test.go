package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dentia/clinic-api/internal/models"
)

func TestWriteErrMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unauthenticated", models.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", models.ErrForbidden, http.StatusForbidden},
		{"no clinic", models.ErrNoClinic, http.StatusBadRequest},
		{"not found", models.ErrNotFound, http.StatusNotFound},
		{"conflict", models.ErrConflict, http.StatusConflict},
		{"upstream", models.ErrUpstream, http.StatusBadGateway},
		{"wrapped not found", fmt.Errorf("patient: %w", models.ErrNotFound), http.StatusNotFound},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", "/test", nil)

			writeErr(w, r, tt.err)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if body["error"] == "" {
				t.Error("expected an error message in the body")
			}
		})
	}
}

func TestWriteErrNoClinicBody(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/v1/patients", nil)

	writeErr(w, r, models.ErrNoClinic)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "clinic_id is required" {
		t.Errorf("error = %q, want %q", body["error"], "clinic_id is required")
	}
}

func TestDecodeValid(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}

	t.Run("valid body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"ana@example.com"}`))

		var p payload
		if !decodeValid(w, r, &p) {
			t.Fatalf("expected decode to succeed, got %s", w.Body.String())
		}
		if p.Email != "ana@example.com" {
			t.Errorf("email = %q", p.Email)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{`))

		var p payload
		if decodeValid(w, r, &p) {
			t.Fatal("expected decode to fail")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("validation failure names the field", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"not-an-email"}`))

		var p payload
		if decodeValid(w, r, &p) {
			t.Fatal("expected validation to fail")
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON body: %v", err)
		}
		if !strings.Contains(body["error"], "email") {
			t.Errorf("error %q should mention the field", body["error"])
		}
	})
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=25&offset=abc&from=2025-03-01", nil)

	if got := queryInt(r, "limit", 50); got != 25 {
		t.Errorf("limit = %d, want 25", got)
	}
	if got := queryInt(r, "offset", 0); got != 0 {
		t.Errorf("offset fallback = %d, want 0", got)
	}
	if got := queryInt(r, "missing", 7); got != 7 {
		t.Errorf("missing fallback = %d, want 7", got)
	}

	from, err := queryDate(r, "from")
	if err != nil {
		t.Fatalf("queryDate: %v", err)
	}
	if from == nil || from.Format("2006-01-02") != "2025-03-01" {
		t.Errorf("from = %v", from)
	}

	if to, err := queryDate(r, "to"); err != nil || to != nil {
		t.Errorf("absent date should be nil, got %v, %v", to, err)
	}

	bad := httptest.NewRequest("GET", "/?from=01/03/2025", nil)
	if _, err := queryDate(bad, "from"); err == nil {
		t.Error("expected an error for a non-ISO date")
	}
}

func TestWriteListEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	writeList(w, []string{"a", "b"}, 2)

	var body struct {
		Data  []string `json:"data"`
		Count int      `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Count != 2 || len(body.Data) != 2 {
		t.Errorf("unexpected envelope: %+v", body)
	}
}
