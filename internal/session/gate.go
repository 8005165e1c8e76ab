// Package session models the caller's authentication state as an explicit
// object and answers whether that caller may pass a protected step.  It
// does not authenticate anyone; the auth service resolves sessions and the
// HTTP layer acts on the decision.
package session

import "sync"

// Decision is the outcome of the session gate.
type Decision int

const (
	// Pending means the session has not been resolved yet.
	Pending Decision = iota
	// Redirect means the session is resolved and nobody is signed in.
	Redirect
	// Allow means the session is resolved and authenticated.
	Allow
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	}
	return "pending"
}

// CanProceed is the gate itself: Pending until mounted, then Allow or Redirect.
func CanProceed(mounted, authenticated bool) Decision {
	if !mounted {
		return Pending
	}
	if !authenticated {
		return Redirect
	}
	return Allow
}

// User is the identity carried by a session.
type User struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

// Session holds the current user for one client.  A new Session is
// unmounted; Resolve mounts it once the credentials have been inspected.
type Session struct {
	mu      sync.RWMutex
	mounted bool
	user    *User
}

// New returns an unmounted session.
func New() *Session { return &Session{} }

// Resolved returns a mounted session for u (nil means anonymous).
func Resolved(u *User) *Session {
	s := New()
	s.Resolve(u)
	return s
}

// Resolve mounts the session with the user found for the request, if any.
func (s *Session) Resolve(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = true
	s.user = u
}

// SignIn records a successful sign-in.
func (s *Session) SignIn(u User) { s.Resolve(&u) }

// SignOut clears the user; the session stays mounted.
func (s *Session) SignOut() { s.Resolve(nil) }

// Mounted reports whether the session state has been resolved.
func (s *Session) Mounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mounted
}

// Authenticated reports whether a user is signed in on a mounted session.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mounted && s.user != nil
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Gate evaluates CanProceed for s.  A nil session is treated as unmounted.
func Gate(s *Session) Decision {
	if s == nil {
		return Pending
	}
	return CanProceed(s.Mounted(), s.Authenticated())
}
