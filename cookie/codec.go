package cookie

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"

	"github.com/barewire/webutil/httpdate"
)

var (
	ErrBadCookie = errors.New("cookie has a malformed syntax")
	// ErrInsecurePrefix is returned for __Secure- and __Host- prefixed names
	// lacking the Secure attribute
	ErrInsecurePrefix = errors.New("cookie name prefix requires the Secure attribute")
)

// EncodeSetCookie serializes the cookie into a set-cookie header value.
// Attributes follow the name-value pair in a fixed order: Expires, Max-Age,
// Domain, Path, Secure, HttpOnly, SameSite.
func EncodeSetCookie(c Cookie) (string, error) {
	if !c.Secure && (strings.HasPrefix(c.Name, "__Secure-") || strings.HasPrefix(c.Name, "__Host-")) {
		return "", errors.Wrap(ErrInsecurePrefix, c.Name)
	}

	if !httpguts.ValidHeaderFieldName(c.Name) || !httpguts.ValidHeaderFieldValue(c.Value) {
		return "", errors.Wrap(ErrBadCookie, c.Name)
	}

	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(httpdate.Format(c.Expires))
	}

	switch {
	case c.MaxAge > 0:
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	case c.MaxAge < 0:
		b.WriteString("; Max-Age=0")
	}

	if len(c.Domain) > 0 {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}

	if len(c.Path) > 0 {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}

	if c.Secure {
		b.WriteString("; Secure")
	}

	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}

	if len(c.SameSite) > 0 {
		b.WriteString("; SameSite=")
		b.WriteString(c.SameSite)
	}

	return b.String(), nil
}

// DecodeSetCookie parses a set-cookie header value. Attribute names are
// matched case-insensitively, unrecognized ones land in Cookie.Extra.
// A decoded Max-Age=0 is represented as -1, following the MaxAge field
// convention.
func DecodeSetCookie(value string) (Cookie, error) {
	attrs := strings.Split(value, ";")

	name, val, _ := strings.Cut(attrs[0], "=")
	if len(name) == 0 {
		return Cookie{}, errors.Wrap(ErrBadCookie, "empty cookie name")
	}

	c := Cookie{Name: name, Value: val}

	for _, attr := range attrs[1:] {
		key, val, _ := strings.Cut(attr, "=")

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "secure":
			c.Secure = true
		case "httponly":
			c.HttpOnly = true
		case "expires":
			expires, err := httpdate.Parse(val)
			if err != nil {
				return Cookie{}, errors.WithMessage(err, "set-cookie expires")
			}

			c.Expires = expires
		case "max-age":
			seconds, err := strconv.Atoi(val)
			if err != nil {
				return Cookie{}, errors.Wrap(ErrBadCookie, "malformed max-age")
			}

			if seconds == 0 {
				seconds = -1
			}

			c.MaxAge = seconds
		case "domain":
			c.Domain = val
		case "path":
			c.Path = val
		case "samesite":
			c.SameSite = val
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]string)
			}

			c.Extra[strings.TrimSpace(key)] = val
		}
	}

	return c, nil
}

// EncodeCookies serializes a name->values mapping into a cookie request
// header value. Names are emitted in lexicographic order to keep the output
// deterministic; repeated names keep their values adjacent and ordered.
func EncodeCookies(cookies map[string][]string) string {
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		for _, value := range cookies[name] {
			if b.Len() > 0 {
				b.WriteString("; ")
			}

			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(value)
		}
	}

	return b.String()
}

// DecodeCookies parses a cookie request header value into a name->values
// mapping. Duplicate names are legal and keep all their values in order.
// A trailing separator is tolerated.
func DecodeCookies(data string) (map[string][]string, error) {
	cookies := make(map[string][]string)

	for len(data) > 0 {
		eq := strings.IndexByte(data, '=')
		if eq == -1 {
			break
		}

		key := data[:eq]
		data = data[eq+1:]

		if len(key) == 0 {
			return nil, ErrBadCookie
		}

		var value string

		if cs := strings.IndexByte(data, ';'); cs != -1 {
			value, data = data[:cs], stripSpace(data[cs+1:])
		} else {
			value, data = data, ""
		}

		// empty value is fine
		cookies[key] = append(cookies[key], value)
	}

	if len(data) != 0 {
		return nil, ErrBadCookie
	}

	return cookies, nil
}

func stripSpace(str string) string {
	if len(str) > 0 && str[0] == ' ' {
		return str[1:]
	}

	return str
}
