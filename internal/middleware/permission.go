package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/metrics"
	"github.com/dentia/clinic-api/internal/permissions"
)

// RequirePermission blocks the request unless the resolved membership
// grants the permission. Must run after ClinicContext.
func RequirePermission(perm permissions.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			membership, ok := clinicctx.FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
				return
			}

			if !membership.Has(perm) {
				denyPermission(w, r, perm)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny passes when the membership grants at least one of the listed
// permissions.
func RequireAny(perms ...permissions.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			membership, ok := clinicctx.FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
				return
			}

			for _, perm := range perms {
				if membership.Has(perm) {
					next.ServeHTTP(w, r)
					return
				}
			}
			denyPermission(w, r, perms[0])
		})
	}
}

// RequireAll passes only when every listed permission is granted.
func RequireAll(perms ...permissions.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			membership, ok := clinicctx.FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
				return
			}

			for _, perm := range perms {
				if !membership.Has(perm) {
					denyPermission(w, r, perm)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denyPermission(w http.ResponseWriter, r *http.Request, perm permissions.Permission) {
	log.Warn().
		Str("path", r.URL.Path).
		Str("permission", string(perm)).
		Msg("Permission denied")
	metrics.PermissionDeniedTotal.WithLabelValues(string(perm)).Inc()
	writeError(w, http.StatusForbidden, map[string]string{
		"error":      "insufficient permissions",
		"permission": string(perm),
	})
}
