package clinicctx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/permissions"
)

type fakeSource struct {
	memberships map[uuid.UUID][]Membership
}

func (f *fakeSource) Membership(_ context.Context, userID, clinicID uuid.UUID) (*Membership, error) {
	for _, m := range f.memberships[userID] {
		if m.ClinicID == clinicID {
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) Memberships(_ context.Context, userID uuid.UUID) ([]Membership, error) {
	return f.memberships[userID], nil
}

func TestResolveExplicitClinicID(t *testing.T) {
	userID := uuid.New()
	clinicA := uuid.New()
	clinicB := uuid.New()
	source := &fakeSource{memberships: map[uuid.UUID][]Membership{
		userID: {
			{ClinicID: clinicA, ClinicRole: permissions.ClinicDoctor},
			{ClinicID: clinicB, ClinicRole: permissions.ClinicViewer},
		},
	}}
	resolver := NewResolver(source, "default_clinic_id")

	r := httptest.NewRequest("GET", "/api/patients?clinic_id="+clinicB.String(), nil)
	m, err := resolver.Resolve(r, userID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if m.ClinicID != clinicB {
		t.Errorf("expected clinic %s, got %s", clinicB, m.ClinicID)
	}
}

func TestResolveExplicitClinicForbiddenForNonMember(t *testing.T) {
	userID := uuid.New()
	source := &fakeSource{memberships: map[uuid.UUID][]Membership{
		userID: {{ClinicID: uuid.New(), ClinicRole: permissions.ClinicDoctor}},
	}}
	resolver := NewResolver(source, "default_clinic_id")

	r := httptest.NewRequest("GET", "/api/patients?clinic_id="+uuid.NewString(), nil)
	if _, err := resolver.Resolve(r, userID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestResolveHeaderClinicID(t *testing.T) {
	userID := uuid.New()
	clinicID := uuid.New()
	source := &fakeSource{memberships: map[uuid.UUID][]Membership{
		userID: {{ClinicID: clinicID, ClinicRole: permissions.ClinicAdmin}},
	}}
	resolver := NewResolver(source, "default_clinic_id")

	r := httptest.NewRequest("GET", "/api/patients", nil)
	r.Header.Set("X-Clinic-ID", clinicID.String())
	m, err := resolver.Resolve(r, userID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if m.ClinicID != clinicID {
		t.Errorf("expected clinic %s, got %s", clinicID, m.ClinicID)
	}
}

func TestResolveDefaultClinicCookie(t *testing.T) {
	userID := uuid.New()
	clinicA := uuid.New()
	clinicB := uuid.New()
	source := &fakeSource{memberships: map[uuid.UUID][]Membership{
		userID: {
			{ClinicID: clinicA, ClinicRole: permissions.ClinicDoctor},
			{ClinicID: clinicB, ClinicRole: permissions.ClinicViewer},
		},
	}}
	resolver := NewResolver(source, "default_clinic_id")

	r := httptest.NewRequest("GET", "/api/patients", nil)
	r.AddCookie(&http.Cookie{Name: "default_clinic_id", Value: clinicA.String()})
	m, err := resolver.Resolve(r, userID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if m.ClinicID != clinicA {
		t.Errorf("expected clinic %s, got %s", clinicA, m.ClinicID)
	}
}

func TestResolveStaleCookieFallsBackToSoleMembership(t *testing.T) {
	userID := uuid.New()
	clinicID := uuid.New()
	source := &fakeSource{memberships: map[uuid.UUID][]Membership{
		userID: {{ClinicID: clinicID, ClinicRole: permissions.ClinicDoctor}},
	}}
	resolver := NewResolver(source, "default_clinic_id")

	r := httptest.NewRequest("GET", "/api/patients", nil)
	r.AddCookie(&http.Cookie{Name: "default_clinic_id", Value: uuid.NewString()})
	m, err := resolver.Resolve(r, userID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if m.ClinicID != clinicID {
		t.Errorf("expected clinic %s, got %s", clinicID, m.ClinicID)
	}
}

func TestResolveAmbiguousWithoutHint(t *testing.T) {
	userID := uuid.New()
	source := &fakeSource{memberships: map[uuid.UUID][]Membership{
		userID: {
			{ClinicID: uuid.New()},
			{ClinicID: uuid.New()},
		},
	}}
	resolver := NewResolver(source, "default_clinic_id")

	r := httptest.NewRequest("GET", "/api/patients", nil)
	if _, err := resolver.Resolve(r, userID); !errors.Is(err, models.ErrNoClinic) {
		t.Errorf("expected ErrNoClinic, got %v", err)
	}
}

func TestResolveNoMemberships(t *testing.T) {
	resolver := NewResolver(&fakeSource{memberships: map[uuid.UUID][]Membership{}}, "default_clinic_id")

	r := httptest.NewRequest("GET", "/api/patients", nil)
	if _, err := resolver.Resolve(r, uuid.New()); !errors.Is(err, models.ErrNoClinic) {
		t.Errorf("expected ErrNoClinic, got %v", err)
	}
}

func TestMembershipHas(t *testing.T) {
	owner := Membership{WorkspaceRole: permissions.WorkspaceOwner}
	if !owner.Has("financial_reports.view") {
		t.Error("owner should have every permission")
	}

	doctor := Membership{ClinicRole: permissions.ClinicDoctor}
	if !doctor.Has("patients.create") {
		t.Error("doctor should create patients")
	}
	if doctor.Has("financial_reports.view") {
		t.Error("doctor should not see financial reports")
	}

	restricted := Membership{
		ClinicRole:      permissions.ClinicDoctor,
		ClinicOverrides: permissions.Map{"patients.create": false},
	}
	if restricted.Has("patients.create") {
		t.Error("explicit false override should deny the template grant")
	}

	extended := Membership{
		ClinicRole:      permissions.ClinicViewer,
		ClinicOverrides: permissions.Map{"treatments.create": true},
	}
	if !extended.Has("treatments.create") {
		t.Error("explicit true override should extend the template")
	}
}
