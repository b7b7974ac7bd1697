package scout

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/scoutlabs/scout-go/adapters"
)

const testPrefix = "_scout_"

func testContext(at time.Time, dnt bool) *RuntimeContext {
	return &RuntimeContext{
		CapturedAt:       at,
		DNTDetected:      dnt,
		CookiesSupported: !dnt,
	}
}

func newTestManager(ctx *RuntimeContext, jar adapters.CookieAdapter, report func(error)) *IdentityManager {
	return NewIdentityManager(ctx, jar, adapters.NewNoOpLoggerAdapter(), report, testPrefix, 34, 30*24*time.Hour, time.Hour)
}

func TestIdentity_CreateFresh(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	jar := adapters.NewMemoryCookieAdapter(func() time.Time { return at })
	manager := newTestManager(testContext(at, false), jar, nil)

	identity, err := manager.Resolve(BrowserIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID == "" || identity.ID == DNTSentinel {
		t.Fatalf("expected a generated id, got %q", identity.ID)
	}
	if _, err := strconv.ParseUint(identity.ID, 10, 64); err != nil {
		t.Fatalf("expected a decimal identifier, got %q", identity.ID)
	}
	if identity.FirstSeen != at.UnixMilli() {
		t.Fatalf("expected firstSeen %d, got %d", at.UnixMilli(), identity.FirstSeen)
	}

	cookie, ok := jar.Cookie(testPrefix + "bid")
	if !ok {
		t.Fatal("expected browser identity cookie to be written")
	}
	if want := at.Add(30 * 24 * time.Hour); !cookie.Expires.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, cookie.Expires)
	}
	if cookie.Path != "/" {
		t.Fatalf("expected path /, got %q", cookie.Path)
	}
}

func TestIdentity_PersistsAcrossLoads(t *testing.T) {
	t0 := time.UnixMilli(1700000000000)
	now := t0
	jar := adapters.NewMemoryCookieAdapter(func() time.Time { return now })

	first, err := newTestManager(testContext(t0, false), jar, nil).Resolve(BrowserIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A later page load within the validity window.
	now = t0.Add(48 * time.Hour)
	second, err := newTestManager(testContext(now, false), jar, nil).Resolve(BrowserIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected the same browser id, got %q vs %q", second.ID, first.ID)
	}
	if second.FirstSeen != t0.UnixMilli() {
		t.Fatalf("firstSeen must not move on reload: got %d, want %d", second.FirstSeen, t0.UnixMilli())
	}

	// The window slides: the rewritten cookie expires later than the
	// original would have.
	cookie, ok := jar.Cookie(testPrefix + "bid")
	if !ok {
		t.Fatal("expected browser identity cookie to still exist")
	}
	if want := now.Add(30 * 24 * time.Hour); !cookie.Expires.Equal(want) {
		t.Fatalf("expected refreshed expiry %v, got %v", want, cookie.Expires)
	}
}

func TestIdentity_SessionViewCountIncrements(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	jar := adapters.NewMemoryCookieAdapter(func() time.Time { return at })

	for load := 1; load <= 3; load++ {
		identity, err := newTestManager(testContext(at, false), jar, nil).Resolve(SessionIdentity)
		if err != nil {
			t.Fatalf("load %d: unexpected error: %v", load, err)
		}
		if identity.ViewCount != load {
			t.Fatalf("load %d: expected viewCount %d, got %d", load, load, identity.ViewCount)
		}
	}
}

func TestIdentity_ResolveIsIdempotentPerLoad(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	jar := adapters.NewMemoryCookieAdapter(func() time.Time { return at })
	manager := newTestManager(testContext(at, false), jar, nil)

	first, _ := manager.Resolve(SessionIdentity)
	second, _ := manager.Resolve(SessionIdentity)

	if first != second {
		t.Fatalf("expected identical identities, got %+v vs %+v", first, second)
	}
	if second.ViewCount != 1 {
		t.Fatalf("view count must not double-increment within one load, got %d", second.ViewCount)
	}
}

func TestIdentity_CorruptCookieSelfHeals(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	jar := adapters.NewMemoryCookieAdapter(func() time.Time { return at })
	jar.Set(adapters.Cookie{Name: testPrefix + "bid", Value: "!!! not a token !!!", Path: "/"})

	var reports []error
	manager := newTestManager(testContext(at, false), jar, func(err error) { reports = append(reports, err) })

	identity, err := manager.Resolve(BrowserIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID == "" || identity.ID == DNTSentinel {
		t.Fatalf("expected a freshly generated identity, got %q", identity.ID)
	}
	if len(reports) != 1 {
		t.Fatalf("expected exactly one diagnostic report, got %d", len(reports))
	}

	// The replacement cookie must parse on the next load.
	next, err := newTestManager(testContext(at, false), jar, nil).Resolve(BrowserIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.ID != identity.ID {
		t.Fatalf("expected healed identity to persist, got %q vs %q", next.ID, identity.ID)
	}
}

func TestIdentity_CorruptPayloadAfterDecode(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	jar := adapters.NewMemoryCookieAdapter(func() time.Time { return at })
	// Valid token, but the payload is not an identity record.
	jar.Set(adapters.Cookie{Name: testPrefix + "sid", Value: EncodeCookieValue("plain text"), Path: "/"})

	var reports []error
	manager := newTestManager(testContext(at, false), jar, func(err error) { reports = append(reports, err) })

	identity, err := manager.Resolve(SessionIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ViewCount != 1 {
		t.Fatalf("expected fresh session with viewCount 1, got %d", identity.ViewCount)
	}
	if len(reports) != 1 {
		t.Fatalf("expected exactly one diagnostic report, got %d", len(reports))
	}
}

func TestIdentity_DNTSentinel(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	jar := adapters.NewMemoryCookieAdapter(func() time.Time { return at })
	manager := newTestManager(testContext(at, true), jar, nil)

	browser, err := manager.Resolve(BrowserIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session, err := manager.Resolve(SessionIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if browser.ID != DNTSentinel || session.ID != DNTSentinel {
		t.Fatalf("expected sentinel ids, got %q and %q", browser.ID, session.ID)
	}
	if jar.Len() != 0 {
		t.Fatal("no cookie may ever be written for a DNT visitor")
	}
}

func TestIdentity_EntropyFailureIsFatal(t *testing.T) {
	original := randRead
	randRead = func([]byte) (int, error) { return 0, errors.New("no entropy") }
	defer func() { randRead = original }()

	at := time.UnixMilli(1700000000000)
	jar := adapters.NewMemoryCookieAdapter(func() time.Time { return at })

	var reports []error
	manager := newTestManager(testContext(at, false), jar, func(err error) { reports = append(reports, err) })

	if _, err := manager.Resolve(BrowserIdentity); err == nil {
		t.Fatal("expected a fatal error when the entropy source is missing")
	}
	if len(reports) != 1 {
		t.Fatalf("expected the failure to surface through the reporter, got %d reports", len(reports))
	}
}

func TestRandomIdentifier_RespectsBitWidth(t *testing.T) {
	for i := 0; i < 100; i++ {
		id, err := randomIdentifier(34)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		value, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			t.Fatalf("expected decimal id, got %q", id)
		}
		if value >= 1<<34 {
			t.Fatalf("identifier %d exceeds 34 bits", value)
		}
	}
}
