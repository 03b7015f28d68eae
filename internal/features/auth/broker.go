package auth

import "sync"

// SessionListener receives session changes. A nil session is a sign-out.
type SessionListener func(*Session)

// SessionBroker fans session changes out to subscribers. It is injected
// where needed rather than reached through package state, so tests can
// stand up isolated brokers.
type SessionBroker struct {
	mu        sync.RWMutex
	current   *Session
	listeners map[int]SessionListener
	nextID    int
}

func NewSessionBroker() *SessionBroker {
	return &SessionBroker{listeners: make(map[int]SessionListener)}
}

// Current returns the last published session, nil when signed out
func (b *SessionBroker) Current() *Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// Subscribe registers a listener and immediately delivers the current
// session. The returned function cancels the subscription.
func (b *SessionBroker) Subscribe(fn SessionListener) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	current := b.current
	b.mu.Unlock()

	fn(current)
	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Publish stores the session and notifies every subscriber
func (b *SessionBroker) Publish(session *Session) {
	b.mu.Lock()
	b.current = session
	listeners := make([]SessionListener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(session)
	}
}
