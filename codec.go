package scout

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrMalformedToken is returned by DecodeCookieValue for tokens that were
// not produced by EncodeCookieValue or were corrupted in the cookie store.
var ErrMalformedToken = errors.New("malformed cookie token")

// EncodeCookieValue encodes an arbitrary UTF-8 string into a cookie-safe,
// URL-safe token: the string's UTF-8 bytes in the base-64 alphabet with
// '+' and '/' replaced by '-' and '_' and padding stripped.
//
// This codec is the sole serialization boundary for cookie payloads;
// DecodeCookieValue(EncodeCookieValue(v)) == v for every string v.
func EncodeCookieValue(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

// DecodeCookieValue reverses EncodeCookieValue. It tolerates padded tokens
// and tokens still using the standard base-64 alphabet, so values written
// by older revisions of the tracker stay readable.
func DecodeCookieValue(token string) (string, error) {
	t := strings.NewReplacer("+", "-", "/", "_").Replace(token)
	t = strings.TrimRight(t, "=")
	raw, err := base64.RawURLEncoding.DecodeString(t)
	if err != nil {
		return "", ErrMalformedToken
	}
	if !utf8.Valid(raw) {
		return "", ErrMalformedToken
	}
	return string(raw), nil
}
