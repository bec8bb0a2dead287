package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dentia/clinic-api/internal/auth"
	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/permissions"
)

func requestWithMembership(m clinicctx.Membership) *http.Request {
	r := httptest.NewRequest("GET", "/api/patients", nil)
	ctx := context.WithValue(r.Context(), UserIDKey, uuid.New())
	ctx = clinicctx.WithMembership(ctx, m)
	return r.WithContext(ctx)
}

func TestRequirePermissionAllows(t *testing.T) {
	called := false
	handler := RequirePermission("patients.view")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithMembership(clinicctx.Membership{
		ClinicRole: permissions.ClinicDoctor,
	}))

	if !called {
		t.Error("expected handler to be called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRequirePermissionDenies(t *testing.T) {
	called := false
	handler := RequirePermission("financial_reports.view")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithMembership(clinicctx.Membership{
		ClinicRole: permissions.ClinicDoctor,
	}))

	if called {
		t.Error("handler must not run when permission is denied")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["permission"] != "financial_reports.view" {
		t.Errorf("expected denied permission in body, got %q", body["permission"])
	}
}

func TestRequirePermissionWithoutContext(t *testing.T) {
	handler := RequirePermission("patients.view")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without clinic context")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestRequireAny(t *testing.T) {
	handler := RequireAny("financial_reports.view", "patients.view")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithMembership(clinicctx.Membership{
		ClinicRole: permissions.ClinicDoctor,
	}))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 when one permission matches, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithMembership(clinicctx.Membership{
		ClinicRole: permissions.ClinicViewer,
	}))
	if w.Code != http.StatusOK {
		t.Errorf("viewer has patients.view, expected 200, got %d", w.Code)
	}
}

func TestRequireAll(t *testing.T) {
	handler := RequireAll("patients.view", "treatments.mark_paid")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithMembership(clinicctx.Membership{
		ClinicRole: permissions.ClinicReceptionist,
	}))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithMembership(clinicctx.Membership{
		ClinicRole: permissions.ClinicDoctor,
	}))
	if w.Code != http.StatusForbidden {
		t.Errorf("doctor cannot mark paid, expected 403, got %d", w.Code)
	}
}

func TestAuthenticateRejectsMissingSession(t *testing.T) {
	sessions := auth.NewManager("test-secret", "clinic_session", time.Hour)
	handler := Authenticate(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a session")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticatePassesIdentity(t *testing.T) {
	sessions := auth.NewManager("test-secret", "clinic_session", time.Hour)
	userID := uuid.New()
	token, err := sessions.Issue(userID, "dr@clinic.test", time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var gotID uuid.UUID
	handler := Authenticate(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r.Context())
	}))

	r := httptest.NewRequest("GET", "/api/patients", nil)
	r.AddCookie(&http.Cookie{Name: "clinic_session", Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if gotID != userID {
		t.Errorf("expected user %s on context, got %s", userID, gotID)
	}
}
