package adapters

import (
	"sync"
	"time"
)

// MemoryCookieAdapter is an in-process cookie jar with lazy expiry.
// It is the default store for headless runs and tests.
type MemoryCookieAdapter struct {
	mu  sync.Mutex
	now func() time.Time
	jar map[string]Cookie
}

// Ensure MemoryCookieAdapter implements CookieAdapter interface
var _ CookieAdapter = (*MemoryCookieAdapter)(nil)

// NewMemoryCookieAdapter creates a new MemoryCookieAdapter instance.
//
// Parameters:
//   - now: clock used for expiry checks; nil defaults to time.Now
func NewMemoryCookieAdapter(now func() time.Time) *MemoryCookieAdapter {
	if now == nil {
		now = time.Now
	}
	return &MemoryCookieAdapter{
		now: now,
		jar: make(map[string]Cookie),
	}
}

// Get returns the named cookie's value if it exists and has not expired.
// An expired cookie is evicted on read.
func (m *MemoryCookieAdapter) Get(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cookie, ok := m.jar[name]
	if !ok {
		return "", false
	}
	if !cookie.Expires.IsZero() && !cookie.Expires.After(m.now()) {
		delete(m.jar, name)
		return "", false
	}
	return cookie.Value, true
}

// Set writes a cookie. Writing a cookie whose Expires is already in the
// past deletes it, matching browser cookie-store semantics.
func (m *MemoryCookieAdapter) Set(cookie Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !cookie.Expires.IsZero() && !cookie.Expires.After(m.now()) {
		delete(m.jar, cookie.Name)
		return nil
	}
	m.jar[cookie.Name] = cookie
	return nil
}

// Delete removes the named cookie.
func (m *MemoryCookieAdapter) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jar, name)
	return nil
}

// Cookie returns the stored cookie with all attributes, if present.
// Intended for tests that assert on expiry or the secure flag.
func (m *MemoryCookieAdapter) Cookie(name string) (Cookie, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cookie, ok := m.jar[name]
	return cookie, ok
}

// Len returns the number of cookies currently stored.
func (m *MemoryCookieAdapter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jar)
}
