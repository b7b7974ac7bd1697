package adapters

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// FileCookieAdapter is a cookie jar persisted as JSON in a file, so
// identity cookies survive across process runs. Every operation reads and
// rewrites the file; the jar is expected to stay small.
type FileCookieAdapter struct {
	filepath string
	now      func() time.Time
	mu       sync.Mutex
}

// Ensure FileCookieAdapter implements CookieAdapter interface
var _ CookieAdapter = (*FileCookieAdapter)(nil)

// NewFileCookieAdapter creates a new FileCookieAdapter instance.
//
// Parameters:
//   - filepath: path to the file where cookies will be stored
//   - now: clock used for expiry checks; nil defaults to time.Now
func NewFileCookieAdapter(filepath string, now func() time.Time) *FileCookieAdapter {
	if now == nil {
		now = time.Now
	}
	return &FileCookieAdapter{filepath: filepath, now: now}
}

// Get returns the named cookie's value if it exists and has not expired.
// An expired cookie is evicted from the file on read.
func (f *FileCookieAdapter) Get(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	jar, err := f.load()
	if err != nil {
		return "", false
	}
	cookie, ok := jar[name]
	if !ok {
		return "", false
	}
	if !cookie.Expires.IsZero() && !cookie.Expires.After(f.now()) {
		delete(jar, name)
		_ = f.save(jar)
		return "", false
	}
	return cookie.Value, true
}

// Set writes a cookie to the file.
func (f *FileCookieAdapter) Set(cookie Cookie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	jar, err := f.load()
	if err != nil {
		return err
	}
	if !cookie.Expires.IsZero() && !cookie.Expires.After(f.now()) {
		delete(jar, cookie.Name)
	} else {
		jar[cookie.Name] = cookie
	}
	return f.save(jar)
}

// Delete removes the named cookie from the file.
func (f *FileCookieAdapter) Delete(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	jar, err := f.load()
	if err != nil {
		return err
	}
	delete(jar, name)
	return f.save(jar)
}

// load reads the jar from disk. A missing file yields an empty jar.
func (f *FileCookieAdapter) load() (map[string]Cookie, error) {
	data, err := os.ReadFile(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Cookie{}, nil
		}
		return nil, err
	}
	jar := map[string]Cookie{}
	if err := json.Unmarshal(data, &jar); err != nil {
		return nil, err
	}
	return jar, nil
}

func (f *FileCookieAdapter) save(jar map[string]Cookie) error {
	data, err := json.Marshal(jar)
	if err != nil {
		return err
	}
	return os.WriteFile(f.filepath, data, 0644)
}
