package scout

import (
	"time"

	"github.com/scoutlabs/scout-go/adapters"
)

// RuntimeContext holds the platform capabilities resolved once per page
// load, plus the fixed capture time every event of this page view carries.
// One instance exists per Tracker; components receive it explicitly
// instead of consulting the platform again.
type RuntimeContext struct {
	CapturedAt       time.Time
	DNTDetected      bool
	CookiesSupported bool
	UseSecureCookie  bool
}

// Clock returns the fixed capture time in Unix milliseconds. It never
// re-reads the wall clock: all events of one page view share this instant.
func (c *RuntimeContext) Clock() int64 {
	return c.CapturedAt.UnixMilli()
}

// probeCookieName is the throwaway cookie used by the capability probe.
const probeCookieName = "probe"

// Detect resolves the runtime configuration from ambient platform signals.
// DNT is resolved first; if it is set, the cookie probe is skipped entirely
// so no probe cookie is ever written for an opted-out user, and cookie
// support is forced off regardless of platform capability. Detect performs
// no network I/O and never panics: a missing signal degrades to
// "unsupported".
func Detect(env adapters.EnvironmentAdapter, jar adapters.CookieAdapter, prefix string, now func() time.Time) RuntimeContext {
	if now == nil {
		now = time.Now
	}
	ctx := RuntimeContext{CapturedAt: now()}
	if env != nil {
		ctx.DNTDetected = env.DoNotTrack()
		ctx.UseSecureCookie = env.SecureTransport()
	}
	if !ctx.DNTDetected {
		ctx.CookiesSupported = probeCookies(jar, prefix)
	}
	return ctx
}

// probeCookies checks cookie support by writing, reading back and deleting
// a throwaway cookie. Any failure, including a panicking store, reads as
// "unsupported".
func probeCookies(jar adapters.CookieAdapter, prefix string) (ok bool) {
	if jar == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	name := prefix + probeCookieName
	if err := jar.Set(adapters.Cookie{Name: name, Value: "1", Path: "/"}); err != nil {
		return false
	}
	value, found := jar.Get(name)
	_ = jar.Delete(name)
	return found && value == "1"
}
