package adapters

// EnvironmentAdapter exposes the ambient platform signals the tracker
// resolves once at startup. Implementations must not perform network I/O.
type EnvironmentAdapter interface {
	// DoNotTrack reports whether the user has opted out of tracking.
	DoNotTrack() bool
	// SecureTransport reports whether the page was delivered over a
	// secure scheme.
	SecureTransport() bool
}

// StaticEnvironmentAdapter is an EnvironmentAdapter with fixed values,
// supplied by the embedder at construction time.
type StaticEnvironmentAdapter struct {
	DNT    bool
	Secure bool
}

// Ensure StaticEnvironmentAdapter implements EnvironmentAdapter interface
var _ EnvironmentAdapter = (*StaticEnvironmentAdapter)(nil)

func (s *StaticEnvironmentAdapter) DoNotTrack() bool      { return s.DNT }
func (s *StaticEnvironmentAdapter) SecureTransport() bool { return s.Secure }
