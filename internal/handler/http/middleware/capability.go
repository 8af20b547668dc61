package middleware

import (
	"net/http"

	"github.com/deskware/hr-backend-go/internal/handler/http/response"
	"github.com/deskware/hr-backend-go/internal/pkg/authz"
	"github.com/go-chi/jwtauth/v5"
)

// RequireCapability gates a route on an (action, resource) capability of the
// authenticated actor. Admin tokens bypass the lookup.
func RequireCapability(checker authz.Checker, action authz.Action, resource authz.Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			if admin, ok := claims["is_admin"].(bool); ok && admin {
				next.ServeHTTP(w, r)
				return
			}

			actorID, _ := claims["user_id"].(string)
			allowed, err := checker.Can(r.Context(), actorID, action, resource)
			if err != nil {
				response.InternalServerError(w, "Failed to check capability")
				return
			}
			if !allowed {
				response.Forbidden(w, "Missing capability for this operation")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly restricts a route to admin tokens.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		admin, ok := claims["is_admin"].(bool)
		if !admin || !ok {
			response.Forbidden(w, "Admin privilege required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
