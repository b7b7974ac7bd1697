package adapters

// CookieAdapter is an interface for the platform cookie store.
// Implement this interface to bind the tracker to a real cookie jar.
//
// Expiry is owned by the store: an implementation must stop returning a
// cookie once its Expires time has passed.
type CookieAdapter interface {
	// Get returns the raw value of the named cookie, if present and
	// not expired.
	Get(name string) (string, bool)

	// Set writes or overwrites a cookie.
	//
	// Returns error if the store rejects the write.
	Set(cookie Cookie) error

	// Delete removes the named cookie.
	//
	// Deleting an absent cookie is not an error.
	Delete(name string) error
}
