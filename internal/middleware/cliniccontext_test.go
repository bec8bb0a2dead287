package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/permissions"
)

type staticSource struct {
	memberships []clinicctx.Membership
}

func (s *staticSource) Membership(_ context.Context, _, clinicID uuid.UUID) (*clinicctx.Membership, error) {
	for _, m := range s.memberships {
		if m.ClinicID == clinicID {
			return &m, nil
		}
	}
	return nil, nil
}

func (s *staticSource) Memberships(_ context.Context, _ uuid.UUID) ([]clinicctx.Membership, error) {
	return s.memberships, nil
}

func authedRequest(target string) *http.Request {
	r := httptest.NewRequest("GET", target, nil)
	return r.WithContext(context.WithValue(r.Context(), UserIDKey, uuid.New()))
}

func TestClinicContextAmbiguousReturns400(t *testing.T) {
	source := &staticSource{memberships: []clinicctx.Membership{
		{ClinicID: uuid.New()},
		{ClinicID: uuid.New()},
	}}
	resolver := clinicctx.NewResolver(source, "default_clinic_id")

	handler := ClinicContext(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a resolved clinic")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("/api/patients"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] != "clinic_id is required" {
		t.Errorf("unexpected error body: %q", body["error"])
	}
}

func TestClinicContextForeignClinicReturns403(t *testing.T) {
	source := &staticSource{memberships: []clinicctx.Membership{
		{ClinicID: uuid.New(), ClinicRole: permissions.ClinicAdmin},
	}}
	resolver := clinicctx.NewResolver(source, "default_clinic_id")

	handler := ClinicContext(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a foreign clinic")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("/api/patients?clinic_id="+uuid.NewString()))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestClinicContextResolvesSoleMembership(t *testing.T) {
	clinicID := uuid.New()
	source := &staticSource{memberships: []clinicctx.Membership{
		{ClinicID: clinicID, ClinicRole: permissions.ClinicDoctor},
	}}
	resolver := clinicctx.NewResolver(source, "default_clinic_id")

	var resolved clinicctx.Membership
	handler := ClinicContext(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved, _ = clinicctx.FromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), authedRequest("/api/patients"))

	if resolved.ClinicID != clinicID {
		t.Errorf("expected clinic %s, got %s", clinicID, resolved.ClinicID)
	}
}
