package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dentia/clinic-api/internal/models"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", "clinic_session", time.Hour)
	userID := uuid.New()

	token, err := m.Issue(userID, "dr@clinic.test", time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	session, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if session.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, session.UserID)
	}
	if session.Email != "dr@clinic.test" {
		t.Errorf("unexpected email: %s", session.Email)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := NewManager("secret-a", "clinic_session", time.Hour)
	other := NewManager("secret-b", "clinic_session", time.Hour)

	token, err := m.Issue(uuid.New(), "dr@clinic.test", time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, models.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", "clinic_session", time.Hour)

	token, err := m.Issue(uuid.New(), "dr@clinic.test", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := m.Verify(token); !errors.Is(err, models.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for expired token, got %v", err)
	}
}

func TestFromRequest(t *testing.T) {
	m := NewManager("test-secret", "clinic_session", time.Hour)
	userID := uuid.New()

	token, err := m.Issue(userID, "dr@clinic.test", time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	r := httptest.NewRequest("GET", "/api/patients", nil)
	w := httptest.NewRecorder()
	m.SetCookie(w, token)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	session, err := m.FromRequest(r)
	if err != nil {
		t.Fatalf("FromRequest failed: %v", err)
	}
	if session.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, session.UserID)
	}
}

func TestFromRequestMissingCookie(t *testing.T) {
	m := NewManager("test-secret", "clinic_session", time.Hour)
	r := httptest.NewRequest("GET", "/api/patients", nil)

	if _, err := m.FromRequest(r); !errors.Is(err, models.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}
