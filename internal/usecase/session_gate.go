package usecase

import (
	"sort"
	"sync"
)

// IdentityListener is called with the new seller uid, or with present=false
// when the session no longer has an authenticated identity.
type IdentityListener func(uid string, present bool)

// SessionGate holds the authenticated identity of one session and notifies
// listeners when it changes.
type SessionGate struct {
	mu        sync.Mutex
	uid       string
	present   bool
	nextID    int
	listeners map[int]IdentityListener
}

func NewSessionGate() *SessionGate {
	return &SessionGate{
		listeners: make(map[int]IdentityListener),
	}
}

func (g *SessionGate) Current() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.uid, g.present
}

// SignIn sets the identity. Re-signing in as the current uid (a token
// refresh) does not notify.
func (g *SessionGate) SignIn(uid string) {
	if uid == "" {
		g.SignOut()
		return
	}
	g.set(uid, true)
}

func (g *SessionGate) SignOut() {
	g.set("", false)
}

func (g *SessionGate) set(uid string, present bool) {
	g.mu.Lock()
	if g.uid == uid && g.present == present {
		g.mu.Unlock()
		return
	}
	g.uid, g.present = uid, present

	ids := make([]int, 0, len(g.listeners))
	for id := range g.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]IdentityListener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, g.listeners[id])
	}
	g.mu.Unlock()

	for _, l := range listeners {
		l(uid, present)
	}
}

// OnIdentityChange registers l and returns a function that removes it.
func (g *SessionGate) OnIdentityChange(l IdentityListener) func() {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = l
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}
