package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey struct{}

// FromContext returns the request's session. It is nil only for requests
// that did not pass through Middleware.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// NewContext attaches a session to a context the way Middleware does.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// Middleware resolves the session cookie (minting a token on first contact),
// loads the session into the request context, and saves it back after the
// handler when it was marked dirty. A save failure is logged, not surfaced:
// the response has usually been written by then.
func Middleware(store Store, cookieName string, ttl time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(cookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				token = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    token,
					Path:     "/",
					Expires:  time.Now().Add(ttl),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			sess, err := store.Load(r.Context(), token)
			if err != nil {
				logger.Error("load session", zap.Error(err))
				sess = New(token)
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))

			if sess.Dirty() {
				if err := store.Save(r.Context(), sess); err != nil {
					logger.Error("save session", zap.Error(err))
				}
			}
		})
	}
}
