package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/Garnistarr/water-data-app/internal/auth"
)

type ctxKey string

const ctxClaims ctxKey = "claims"

func (a *App) withAuthContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cl := a.readAuth(r); cl != nil {
			r = r.WithContext(context.WithValue(r.Context(), ctxClaims, cl))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) readAuth(r *http.Request) *auth.Claims {
	// Prefer cookie.
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		if cl, err := auth.ParseHS256(a.secret, c.Value); err == nil {
			return cl
		}
	}
	// Fallback: Authorization: Bearer <token>
	authz := r.Header.Get("Authorization")
	if authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if cl, err := auth.ParseHS256(a.secret, strings.TrimSpace(parts[1])); err == nil {
				return cl
			}
		}
	}
	return nil
}

func claimsFrom(r *http.Request) *auth.Claims {
	if v := r.Context().Value(ctxClaims); v != nil {
		if cl, ok := v.(*auth.Claims); ok {
			return cl
		}
	}
	return nil
}

// requireAuth halts rendering of protected views for anonymous requests and
// sends them to the login prompt.
func (a *App) requireAuth(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h(w, r)
	}
}

func (a *App) requireRole(role string, h http.HandlerFunc) http.HandlerFunc {
	return a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r).Role != role {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		h(w, r)
	})
}
