package scout

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/scoutlabs/scout-go/adapters"
)

// DNTSentinel replaces any generated identifier when Do-Not-Track is
// detected. Downstream consumers recognize it as "not a real visitor".
const DNTSentinel = "dnt"

// IdentityKind selects which of the two identities to resolve.
type IdentityKind int

const (
	// BrowserIdentity is the long-lived token for a returning browser.
	BrowserIdentity IdentityKind = iota
	// SessionIdentity is the short-lived token for a single visit
	// window, carrying a per-page-load view counter.
	SessionIdentity
)

func (k IdentityKind) String() string {
	if k == SessionIdentity {
		return "session"
	}
	return "browser"
}

// cookieName is the logical cookie name; the configured prefix is
// prepended on the wire.
func (k IdentityKind) cookieName() string {
	if k == SessionIdentity {
		return "sid"
	}
	return "bid"
}

// Identity is one resolved visitor identity.
type Identity struct {
	ID        string
	FirstSeen int64 // Unix milliseconds, stamped at creation, not per load
	ViewCount int   // session identity only
}

// identityPayload is the structured record persisted inside the cookie,
// serialized to JSON before passing through the cookie codec.
type identityPayload struct {
	ID        string `json:"id"`
	ViewCount int    `json:"vc,omitempty"`
	FirstSeen int64  `json:"fs"`
}

// IdentityManager loads or creates the browser and session identities and
// persists them through the cookie codec. Resolve is idempotent per page
// load but re-serializes the cookie on every call so its expiration window
// keeps sliding.
type IdentityManager struct {
	ctx    *RuntimeContext
	jar    adapters.CookieAdapter
	logger adapters.LoggerAdapter
	report func(error)

	prefix  string
	idBits  uint
	windows map[IdentityKind]time.Duration

	resolved map[IdentityKind]Identity
}

// NewIdentityManager creates a new IdentityManager.
//
// report receives diagnostic errors (corrupt cookies, entropy failure); a
// nil report drops them after logging.
func NewIdentityManager(ctx *RuntimeContext, jar adapters.CookieAdapter, logger adapters.LoggerAdapter, report func(error), prefix string, idBits uint, browserWindow, sessionWindow time.Duration) *IdentityManager {
	if logger == nil {
		logger = adapters.NewNoOpLoggerAdapter()
	}
	if report == nil {
		report = func(error) {}
	}
	return &IdentityManager{
		ctx:    ctx,
		jar:    jar,
		logger: logger,
		report: report,
		prefix: prefix,
		idBits: idBits,
		windows: map[IdentityKind]time.Duration{
			BrowserIdentity: browserWindow,
			SessionIdentity: sessionWindow,
		},
		resolved: make(map[IdentityKind]Identity),
	}
}

// Resolve returns the identity of the given kind, creating it if no valid
// cookie exists. The first resolution of a page load increments the
// session view count; repeated calls return the cached identity and only
// re-persist it to slide the cookie window.
func (m *IdentityManager) Resolve(kind IdentityKind) (Identity, error) {
	if identity, ok := m.resolved[kind]; ok {
		m.persist(kind, identity)
		return identity, nil
	}

	identity, err := m.load(kind)
	if err != nil {
		return Identity{}, err
	}
	if kind == SessionIdentity {
		identity.ViewCount++
	}
	m.persist(kind, identity)
	m.resolved[kind] = identity
	return identity, nil
}

// load reads the identity cookie, healing a corrupt one with a single
// bounded retry: delete, report one diagnostic, re-read (now absent),
// create fresh.
func (m *IdentityManager) load(kind IdentityKind) (Identity, error) {
	if token, found := m.readCookie(kind); found {
		identity, err := parseIdentity(token)
		if err == nil {
			return identity, nil
		}
		m.logger.Warn("discarding unreadable %s identity cookie", kind)
		_ = m.jar.Delete(m.prefix + kind.cookieName())
		m.report(fmt.Errorf("scout: %s identity cookie unreadable: %w", kind, err))

		if token, found := m.readCookie(kind); found {
			if identity, err := parseIdentity(token); err == nil {
				return identity, nil
			}
		}
	}
	return m.create(kind)
}

func (m *IdentityManager) readCookie(kind IdentityKind) (string, bool) {
	if !m.ctx.CookiesSupported || m.jar == nil {
		return "", false
	}
	return m.jar.Get(m.prefix + kind.cookieName())
}

func parseIdentity(token string) (Identity, error) {
	decoded, err := DecodeCookieValue(token)
	if err != nil {
		return Identity{}, err
	}
	var payload identityPayload
	if err := json.Unmarshal([]byte(decoded), &payload); err != nil {
		return Identity{}, fmt.Errorf("invalid identity payload: %w", err)
	}
	if payload.ID == "" || payload.FirstSeen <= 0 {
		return Identity{}, fmt.Errorf("incomplete identity payload")
	}
	return Identity{ID: payload.ID, FirstSeen: payload.FirstSeen, ViewCount: payload.ViewCount}, nil
}

// create stamps firstSeen with the page view's fixed clock and generates a
// fresh identifier. Under DNT the identifier is the sentinel,
// unconditionally; no random token is drawn and nothing distinguishes one
// opted-out visitor from another.
func (m *IdentityManager) create(kind IdentityKind) (Identity, error) {
	identity := Identity{FirstSeen: m.ctx.Clock()}
	if m.ctx.DNTDetected {
		identity.ID = DNTSentinel
		return identity, nil
	}
	id, err := randomIdentifier(m.idBits)
	if err != nil {
		// No entropy source is the one fatal failure here.
		m.report(err)
		return Identity{}, err
	}
	identity.ID = id
	m.logger.Debug("created %s identity %s", kind, id)
	return identity, nil
}

// randRead is swapped out in tests to simulate a missing entropy source.
var randRead = rand.Read

// randomIdentifier draws a uniform integer of the given bit width from
// crypto/rand and renders it as a decimal string. Width is clamped to
// [1, 63].
func randomIdentifier(bits uint) (string, error) {
	if bits == 0 || bits > 63 {
		bits = 63
	}
	var buf [8]byte
	if _, err := randRead(buf[:]); err != nil {
		return "", fmt.Errorf("scout: entropy source unavailable: %w", err)
	}
	value := binary.BigEndian.Uint64(buf[:]) & (1<<bits - 1)
	return strconv.FormatUint(value, 10), nil
}

// persist re-serializes the identity with its full validity window, so the
// window slides on every page load. Never writes when cookies are
// unsupported, which includes every DNT page view.
func (m *IdentityManager) persist(kind IdentityKind, identity Identity) {
	if !m.ctx.CookiesSupported || m.jar == nil {
		return
	}
	payload, err := json.Marshal(identityPayload{
		ID:        identity.ID,
		ViewCount: identity.ViewCount,
		FirstSeen: identity.FirstSeen,
	})
	if err != nil {
		m.logger.Error("failed to serialize %s identity: %v", kind, err)
		return
	}

	window := m.windows[kind]
	name := m.prefix + kind.cookieName()
	if window < 0 {
		// A negative window forces immediate expiry.
		_ = m.jar.Delete(name)
		return
	}
	cookie := adapters.Cookie{
		Name:   name,
		Value:  EncodeCookieValue(string(payload)),
		Path:   "/",
		Secure: m.ctx.UseSecureCookie,
	}
	if window > 0 {
		cookie.Expires = m.ctx.CapturedAt.Add(window)
	}
	if err := m.jar.Set(cookie); err != nil {
		m.logger.Warn("failed to persist %s identity: %v", kind, err)
	}
}
