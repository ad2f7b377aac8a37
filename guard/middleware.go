package guard

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/far7tna/portal/credentials"
	"github.com/far7tna/portal/metrics"
	"github.com/far7tna/portal/session"
)

// SessionSource yields the current session snapshot.
type SessionSource interface {
	Current() session.Snapshot
}

// Guard builds gate middleware. The zero Metrics records nothing.
type Guard struct {
	Source  SessionSource
	Metrics *metrics.Metrics
}

type snapshotKey struct{}

// RequireAuth is the Authentication Gate with no metrics.
func RequireAuth(src SessionSource) func(http.Handler) http.Handler {
	return Guard{Source: src}.RequireAuth
}

// RequireRole is the Role Gate with no metrics.
func RequireRole(src SessionSource, roles ...credentials.Role) func(http.Handler) http.Handler {
	return Guard{Source: src}.RequireRole(roles...)
}

func (g Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := g.Source.Current()
		decision := EvaluateAuth(snap, r.URL.RequestURI())
		if !g.apply(w, r, decision, metrics.GateAuth) {
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSnapshot(r.Context(), snap)))
	})
}

func (g Guard) RequireRole(roles ...credentials.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := g.Source.Current()
			if !g.apply(w, r, EvaluateRole(snap, roles...), metrics.GateRole) {
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSnapshot(r.Context(), snap)))
		})
	}
}

// apply writes the response for a blocking decision and reports whether to continue.
func (g Guard) apply(w http.ResponseWriter, r *http.Request, d Decision, gate string) bool {
	if d.Allow {
		return true
	}
	if d.State == StateChecking {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "Checking session", http.StatusServiceUnavailable)
		return false
	}
	log.Debug().Str("gate", gate).Str("path", r.URL.Path).Str("redirect", d.RedirectTo).Msg("navigation redirected")
	g.Metrics.GuardRedirect(gate)
	http.Redirect(w, r, d.RedirectTo, http.StatusSeeOther)
	return false
}

// LoginRedirectTarget is the path preserved by the Authentication Gate, or "" when
// there is none or it is not local.
func LoginRedirectTarget(r *http.Request) string {
	from := r.URL.Query().Get(FromParam)
	if from == "" {
		from = r.PostFormValue(FromParam)
	}
	if !isLocalPath(from) {
		return ""
	}
	return from
}

// WithSnapshot stores the snapshot a gate admitted.
func WithSnapshot(ctx context.Context, snap session.Snapshot) context.Context {
	return context.WithValue(ctx, snapshotKey{}, snap)
}

// SnapshotFrom returns the snapshot stored by a gate, if any.
func SnapshotFrom(ctx context.Context) (session.Snapshot, bool) {
	snap, ok := ctx.Value(snapshotKey{}).(session.Snapshot)
	return snap, ok
}
