package guard

import (
	"net/url"
	"strings"

	"github.com/far7tna/portal/credentials"
	"github.com/far7tna/portal/session"
)

// State is the Authentication Gate state.
type State string

const (
	StateChecking        State = "checking"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// FromParam is the query parameter carrying the path a user was sent away from.
const FromParam = "from"

// Decision is the outcome of a gate. RedirectTo is set only when Allow is false and
// the gate has finished checking.
type Decision struct {
	State      State
	Allow      bool
	RedirectTo string
}

// EvaluateAuth admits authenticated sessions. Unauthenticated sessions are sent to
// the login page with requested preserved.
func EvaluateAuth(snap session.Snapshot, requested string) Decision {
	switch {
	case snap.Loading:
		return Decision{State: StateChecking}
	case snap.IsAuthenticated:
		return Decision{State: StateAuthenticated, Allow: true}
	default:
		return Decision{State: StateUnauthenticated, RedirectTo: LoginURL(requested)}
	}
}

// EvaluateRole admits sessions whose role is one of roles. Everyone else goes to the
// login page; there is no forbidden page.
func EvaluateRole(snap session.Snapshot, roles ...credentials.Role) Decision {
	if snap.Loading {
		return Decision{State: StateChecking}
	}
	state := StateUnauthenticated
	if snap.IsAuthenticated {
		state = StateAuthenticated
	}
	if snap.HasRole(roles...) {
		return Decision{State: state, Allow: true}
	}
	return Decision{State: state, RedirectTo: session.LoginPath}
}

// LoginURL is the login page remembering from.
func LoginURL(from string) string {
	if !isLocalPath(from) {
		return session.LoginPath
	}
	return session.LoginPath + "?" + url.Values{FromParam: {from}}.Encode()
}

// isLocalPath rejects anything that could leave the portal, such as "//host" or "http://".
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
