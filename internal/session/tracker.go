// Package session tracks in-flight requests so that a caller can discard the
// result of a request that a newer one for the same key has superseded.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// DefaultMaxKeys bounds the number of tracked keys when none is configured.
const DefaultMaxKeys = 1000

// ErrSuperseded is returned by Run when a newer request for the same key
// began while fn was running.
var ErrSuperseded = errors.New("request superseded")

// Token identifies one request issued under a key.
type Token string

// Tracker remembers the latest token per key. Keys are held in an LRU; an
// evicted key's outstanding tokens are treated as superseded.
type Tracker struct {
	maxKeys int
	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key   string
	token Token
	prev  *entry
	next  *entry
}

// NewTracker creates a tracker holding at most maxKeys keys.
func NewTracker(maxKeys int) *Tracker {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	return &Tracker{
		maxKeys: maxKeys,
		entries: make(map[string]*entry),
	}
}

// Key joins a session ID and a bundle name into a tracker key.
func Key(sessionID, bundle string) string {
	return sessionID + "|" + bundle
}

// Begin issues a fresh token for key, superseding any earlier one.
func (t *Tracker) Begin(key string) Token {
	tok := Token(uuid.NewString())

	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[key]; ok {
		e.token = tok
		t.moveToFront(e)
		return tok
	}

	e := &entry{key: key, token: tok}
	t.entries[key] = e
	t.addToFront(e)

	if len(t.entries) > t.maxKeys {
		t.evictTail()
	}
	return tok
}

// IsCurrent reports whether tok is still the latest token for key.
func (t *Tracker) IsCurrent(key string, tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	return ok && e.token == tok
}

// Finish forgets key if tok is still its latest token. A stale token leaves
// the newer request's state untouched.
func (t *Tracker) Finish(key string, tok Token) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok || e.token != tok {
		return
	}
	delete(t.entries, key)
	t.remove(e)
}

// Len returns the number of tracked keys.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Run begins a request for key, runs fn and discards its result with
// ErrSuperseded if another request for key began in the meantime. Errors from
// fn are returned as is.
func Run[T any](ctx context.Context, t *Tracker, key string, fn func(context.Context) (T, error)) (T, error) {
	tok := t.Begin(key)
	defer t.Finish(key, tok)

	result, err := fn(ctx)
	if err != nil {
		return result, err
	}
	if !t.IsCurrent(key, tok) {
		var zero T
		return zero, ErrSuperseded
	}
	return result, nil
}

func (t *Tracker) moveToFront(e *entry) {
	if e == t.head {
		return
	}
	t.remove(e)
	t.addToFront(e)
}

func (t *Tracker) addToFront(e *entry) {
	e.next = t.head
	e.prev = nil
	if t.head != nil {
		t.head.prev = e
	}
	t.head = e
	if t.tail == nil {
		t.tail = e
	}
}

func (t *Tracker) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		t.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		t.tail = e.prev
	}
}

func (t *Tracker) evictTail() {
	if t.tail == nil {
		return
	}
	delete(t.entries, t.tail.key)
	t.remove(t.tail)
}
