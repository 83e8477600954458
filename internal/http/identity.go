package http

import (
	"context"
	"net/http"
	"strings"
)

// The platform's edge terminates authentication and forwards the resolved
// identity in headers. Handlers only need the coarse facts: who, and what
// role.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"

	RoleCustomer        = "customer"
	RoleRestaurantOwner = "restaurant_owner"
	RoleAdmin           = "admin"
)

type ctxKey string

const (
	ctxUserID   ctxKey = "user_id"
	ctxUserRole ctxKey = "user_role"
)

// Identity copies the edge-resolved identity headers into the request
// context. Absent headers mean an anonymous visitor; that is not an error.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if uid := strings.TrimSpace(r.Header.Get(HeaderUserID)); uid != "" {
			ctx = context.WithValue(ctx, ctxUserID, uid)
		}
		if role := strings.TrimSpace(r.Header.Get(HeaderUserRole)); role != "" {
			ctx = context.WithValue(ctx, ctxUserRole, role)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CustomerID returns the authenticated user id, or "" for anonymous.
func CustomerID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func Role(ctx context.Context) string {
	if v, ok := ctx.Value(ctxUserRole).(string); ok {
		return v
	}
	return ""
}

// RequireAdmin gates a subtree on the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Role(r.Context()) != RoleAdmin {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
