package middleware

import (
	"net/http"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/pkg/response"
)

// RequireRole lets the request through only when the authenticated actor holds
// one of roleIDs. It must run after AuthMiddleware.Authenticate.
func RequireRole(roleIDs ...int) func(http.Handler) http.Handler {
	allowed := make(map[int]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		allowed[id] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			if _, ok := allowed[roleID]; !ok {
				response.Forbidden(w, "Your role is not allowed to perform this action")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards payment and audit endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin)(next)
}

// RequireAdminOrDoctor guards the clinical transitions: confirm, complete and no-show
func RequireAdminOrDoctor(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin, entity.RoleIDDoctor)(next)
}
