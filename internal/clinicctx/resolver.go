// Package clinicctx resolves which clinic a request operates on and what
// the authenticated user may do there. Every handler goes through the same
// resolution order: explicit clinic_id, then the default-clinic cookie,
// then the user's sole membership.
package clinicctx

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/permissions"
)

// Membership is the resolved clinic context for one user in one clinic.
type Membership struct {
	ClinicID             uuid.UUID
	WorkspaceID          uuid.UUID
	WorkspaceRole        string
	ClinicRole           string
	WorkspaceOverrides   permissions.Map
	ClinicOverrides      permissions.Map
	CanAccessAllPatients bool
}

// Has reports whether this membership grants the permission. Workspace
// owners and super admins are granted everything. A clinic role, when
// present, takes precedence over the workspace role.
func (m Membership) Has(perm permissions.Permission) bool {
	if m.WorkspaceRole == permissions.WorkspaceOwner || m.WorkspaceRole == permissions.WorkspaceSuperAdmin {
		return true
	}
	if m.ClinicRole != "" {
		return permissions.RoleHasPermission("clinic", m.ClinicRole, perm, m.ClinicOverrides)
	}
	return permissions.RoleHasPermission("workspace", m.WorkspaceRole, perm, m.WorkspaceOverrides)
}

// Source loads memberships from storage.
type Source interface {
	// Membership returns the user's membership in the given clinic, or
	// nil when the user does not belong to it.
	Membership(ctx context.Context, userID, clinicID uuid.UUID) (*Membership, error)
	// Memberships returns every active clinic membership of the user.
	Memberships(ctx context.Context, userID uuid.UUID) ([]Membership, error)
}

// Resolver picks the clinic context for a request.
type Resolver struct {
	source     Source
	cookieName string
}

func NewResolver(source Source, cookieName string) *Resolver {
	return &Resolver{source: source, cookieName: cookieName}
}

// Resolve determines the clinic for this request.
//
// An explicit clinic_id (query parameter or X-Clinic-ID header) is
// authoritative: if the user is not a member of that clinic the request is
// forbidden, never silently redirected elsewhere. Without an explicit id
// the default-clinic cookie is tried, then the user's only membership.
func (r *Resolver) Resolve(req *http.Request, userID uuid.UUID) (Membership, error) {
	ctx := req.Context()

	if raw := explicitClinicID(req); raw != "" {
		clinicID, err := uuid.Parse(raw)
		if err != nil {
			return Membership{}, models.ErrNoClinic
		}
		m, err := r.source.Membership(ctx, userID, clinicID)
		if err != nil {
			return Membership{}, err
		}
		if m == nil {
			return Membership{}, models.ErrForbidden
		}
		return *m, nil
	}

	if cookie, err := req.Cookie(r.cookieName); err == nil && cookie.Value != "" {
		if clinicID, err := uuid.Parse(cookie.Value); err == nil {
			m, err := r.source.Membership(ctx, userID, clinicID)
			if err != nil {
				return Membership{}, err
			}
			if m != nil {
				return *m, nil
			}
			// Stale cookie, fall through to the sole-membership rule.
		}
	}

	memberships, err := r.source.Memberships(ctx, userID)
	if err != nil {
		return Membership{}, err
	}
	if len(memberships) == 1 {
		return memberships[0], nil
	}
	return Membership{}, models.ErrNoClinic
}

func explicitClinicID(req *http.Request) string {
	if id := req.URL.Query().Get("clinic_id"); id != "" {
		return id
	}
	return req.Header.Get("X-Clinic-ID")
}

type contextKey int

const membershipKey contextKey = iota

// WithMembership stores the resolved membership on the context.
func WithMembership(ctx context.Context, m Membership) context.Context {
	return context.WithValue(ctx, membershipKey, m)
}

// FromContext returns the membership resolved earlier in the request.
func FromContext(ctx context.Context) (Membership, bool) {
	m, ok := ctx.Value(membershipKey).(Membership)
	return m, ok
}
