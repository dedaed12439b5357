package middleware

import (
	"context"
	"net/http"

	"snack-cart/internal/model"
)

// Header names that identify the cart owner. An authenticated request
// carries the user header; a guest session carries only the session header.
const (
	UserHeader    = "X-User-ID"
	SessionHeader = "X-Session-ID"
)

type contextKey string

const ownerKey contextKey = "cart-owner"

// ResolveOwner attaches the request's cart owner to the context. The user
// header wins over the session header; requests carrying neither pass
// through without an owner and handlers that need one reject them.
func ResolveOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := r.Header.Get(UserHeader); userID != "" {
			ctx := context.WithValue(r.Context(), ownerKey, model.AccountOwner(userID))
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		if sessionID := r.Header.Get(SessionHeader); sessionID != "" {
			ctx := context.WithValue(r.Context(), ownerKey, model.GuestOwner(sessionID))
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OwnerFrom retrieves the cart owner resolved for this request.
func OwnerFrom(ctx context.Context) (model.Owner, bool) {
	owner, ok := ctx.Value(ownerKey).(model.Owner)
	return owner, ok
}
