package middleware

import (
	"net/http"

	"github.com/angelmondragon/catalog-backend/api/responses"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

// RequireRole admits only callers whose token carries one of roles. It must
// run after Auth.
func RequireRole(logg *logger.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	denied := "Access denied"
	if len(roles) == 1 {
		denied = "Access denied, " + roles[0] + " role required"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "No token, authorization denied"))
				return
			}
			if _, permitted := allowed[id.Role]; !permitted {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, denied))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
