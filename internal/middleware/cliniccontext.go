package middleware

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/models"
)

// ClinicContext resolves the clinic the request operates on and stores the
// membership on the context. Must run after Authenticate.
func ClinicContext(resolver *clinicctx.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
				return
			}

			membership, err := resolver.Resolve(r, userID)
			if err != nil {
				switch {
				case errors.Is(err, models.ErrNoClinic):
					writeError(w, http.StatusBadRequest, map[string]string{
						"error": "clinic_id is required",
					})
				case errors.Is(err, models.ErrForbidden):
					log.Warn().
						Str("user_id", userID.String()).
						Str("path", r.URL.Path).
						Msg("Clinic access denied")
					writeError(w, http.StatusForbidden, map[string]string{
						"error": "you do not have access to this clinic",
					})
				default:
					log.Error().Err(err).Msg("Failed to resolve clinic context")
					writeError(w, http.StatusInternalServerError, map[string]string{
						"error": "internal server error",
					})
				}
				return
			}

			ctx := clinicctx.WithMembership(r.Context(), membership)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
