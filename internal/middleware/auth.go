package middleware

import (
	"context"
	"net/http"

	"github.com/craftfolio/craftfolio/internal/ctxkeys"
	"github.com/craftfolio/craftfolio/internal/model"
)

// GuardState is the outcome of the per-request session check.
type GuardState int

const (
	// GuardUnknown means the check has not run for this request.
	GuardUnknown GuardState = iota
	GuardAuthenticated
	GuardUnauthenticated
)

func (s GuardState) String() string {
	switch s {
	case GuardAuthenticated:
		return "authenticated"
	case GuardUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

type guardKey struct{}

// Guard returns the state SessionMiddleware stored for this request.
func Guard(ctx context.Context) GuardState {
	state, _ := ctx.Value(guardKey{}).(GuardState)
	return state
}

// SessionResolver resolves the session of a request; nil means logged out.
type SessionResolver interface {
	Session(w http.ResponseWriter, r *http.Request) *model.Session
}

// SessionMiddleware checks the session once per request and stores it
// together with the guard state in the context.
func SessionMiddleware(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			state := GuardUnauthenticated
			sess := sessions.Session(w, r)
			if sess != nil && sess.UserID() != "" {
				state = GuardAuthenticated
			} else {
				sess = nil
			}

			ctx := ctxkeys.WithSession(r.Context(), sess)
			ctx = context.WithValue(ctx, guardKey{}, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth sends anyone not authenticated to the login page before
// the handler writes anything.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if Guard(r.Context()) != GuardAuthenticated {
			Redirect(w, r, LoginPath)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireGuest sends authenticated users to the dashboard.
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if Guard(r.Context()) == GuardAuthenticated {
			Redirect(w, r, DashboardPath)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// Redirect sends a 303, or HX-Redirect for HTMX requests.
func Redirect(w http.ResponseWriter, r *http.Request, to string) {
	// For HTMX requests, use HX-Redirect header to force full page redirect
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
