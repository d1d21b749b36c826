// Package authstore keeps per-role authenticated sessions for one client
// context. Roles are fully independent: setting or clearing one role's session
// never touches another's, so a single browser can stay logged in as customer
// and seller at the same time.
package authstore

import (
	"sync"

	"github.com/marketplace-api/internal/domain"
)

// Session is the cached auth state for one role namespace.
type Session struct {
	Role        string
	AccessToken string
	Account     *domain.Account
}

// Event is delivered to subscribers when a role's auth state changes.
// Authenticated is false for logout/clear.
type Event struct {
	Role          string
	Authenticated bool
}

// Store is a role-keyed session store. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
	subs     map[int]subscriber
	nextSub  int
}

type subscriber struct {
	role string // empty subscribes to all roles
	fn   func(Event)
}

func New() *Store {
	return &Store{
		sessions: make(map[string]Session),
		subs:     make(map[int]subscriber),
	}
}

// Set stores the session for role, leaving other roles untouched.
func (s *Store) Set(role, accessToken string, account *domain.Account) {
	s.mu.Lock()
	s.sessions[role] = Session{Role: role, AccessToken: accessToken, Account: account}
	fns := s.collect(role)
	s.mu.Unlock()

	notify(fns, Event{Role: role, Authenticated: true})
}

// Get returns the session for role, if present.
func (s *Store) Get(role string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[role]
	return sess, ok
}

// Clear removes only the given role's session. Used on logout and account
// deletion; subscribers of that role are notified so cached UI state re-reads.
func (s *Store) Clear(role string) {
	s.mu.Lock()
	_, had := s.sessions[role]
	delete(s.sessions, role)
	fns := s.collect(role)
	s.mu.Unlock()

	if had {
		notify(fns, Event{Role: role, Authenticated: false})
	}
}

// Roles returns the roles that currently hold a session.
func (s *Store) Roles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sessions))
	for r := range s.sessions {
		out = append(out, r)
	}
	return out
}

// Subscribe registers fn for auth-change events on role (empty role = all).
// The returned cancel func unregisters it.
func (s *Store) Subscribe(role string, fn func(Event)) (cancel func()) {
	s.mu.Lock()
	idx := s.nextSub
	s.nextSub++
	s.subs[idx] = subscriber{role: role, fn: fn}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, idx)
		s.mu.Unlock()
	}
}

// collect snapshots matching subscriber callbacks. Caller must hold mu.
func (s *Store) collect(role string) []func(Event) {
	var fns []func(Event)
	for _, sub := range s.subs {
		if sub.role == "" || sub.role == role {
			fns = append(fns, sub.fn)
		}
	}
	return fns
}

// notify runs callbacks outside the lock so a subscriber may call back into
// the store.
func notify(fns []func(Event), evt Event) {
	for _, fn := range fns {
		fn(evt)
	}
}
