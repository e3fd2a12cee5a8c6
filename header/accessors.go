package header

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/barewire/webutil/cookie"
	"github.com/barewire/webutil/httpdate"
)

var (
	// ErrNoHeader is returned by typed accessors when the header is not
	// present at all. Malformed values produce distinct errors.
	ErrNoHeader = errors.New("header not present")
	ErrBadValue = errors.New("malformed header value")
)

// MediaType is a parsed media type optionally carrying parameters, as found
// in content-type and content-disposition values. Params stays nil when the
// value carries none.
type MediaType struct {
	Type   string
	Params map[string]string
}

// ContentType returns the parsed content-type header.
func ContentType(h Headers) (MediaType, error) {
	value, found := h.Get("content-type")
	if !found {
		return MediaType{}, ErrNoHeader
	}

	return parseMediaType(value, false), nil
}

// ContentDisposition returns the parsed content-disposition header. Quoted
// parameter values are unquoted.
func ContentDisposition(h Headers) (MediaType, error) {
	value, found := h.Get("content-disposition")
	if !found {
		return MediaType{}, ErrNoHeader
	}

	return parseMediaType(value, true), nil
}

// ContentLength returns the length of the body in bytes.
func ContentLength(h Headers) (int64, error) {
	return intHeader(h, "content-length")
}

// ContentEncoding returns the codings applied to the body, in order. When
// addIdentity is set, the identity coding is ensured to be present.
func ContentEncoding(h Headers, addIdentity bool) ([]string, error) {
	value, found := h.Get("content-encoding")
	if !found {
		return nil, ErrNoHeader
	}

	encodings := splitComma(value)
	if addIdentity && !contains(encodings, "identity") {
		encodings = append(encodings, "identity")
	}

	return encodings, nil
}

// ContentLanguage returns the languages of the intended audience.
func ContentLanguage(h Headers) ([]string, error) {
	return listHeader(h, "content-language")
}

// Range describes where in a full body a partial message belongs. HasRange
// is unset for the unsatisfied-range form ("*"), Size is -1 when the
// complete length is unknown.
type Range struct {
	Unit     string
	From, To int64
	Size     int64
	HasRange bool
}

// ContentRange returns the parsed content-range header.
func ContentRange(h Headers) (Range, error) {
	value, found := h.Get("content-range")
	if !found {
		return Range{}, ErrNoHeader
	}

	unit, rest, _ := strings.Cut(strings.TrimSpace(value), " ")
	spec, size, _ := strings.Cut(strings.TrimSpace(rest), "/")

	cr := Range{Unit: unit, Size: -1}

	if spec != "*" {
		from, to, found := strings.Cut(spec, "-")
		if !found {
			return Range{}, errors.Wrap(ErrBadValue, "content-range")
		}

		var err error
		if cr.From, err = strconv.ParseInt(from, 10, 64); err != nil {
			return Range{}, errors.Wrap(ErrBadValue, "content-range")
		}
		if cr.To, err = strconv.ParseInt(to, 10, 64); err != nil {
			return Range{}, errors.Wrap(ErrBadValue, "content-range")
		}

		cr.HasRange = true
	}

	if size = strings.TrimSpace(size); size != "*" {
		n, err := strconv.ParseInt(size, 10, 64)
		if err != nil {
			return Range{}, errors.Wrap(ErrBadValue, "content-range")
		}

		cr.Size = n
	}

	return cr, nil
}

// Accept returns the acceptable media types mapped to their quality values.
// Missing qualities default to 1.0. When addWildcard is set, the "*/*" entry
// is ensured to be present.
func Accept(h Headers, addWildcard bool) (map[string]float64, error) {
	return qualitiesHeader(h, "accept", wildcardOr(addWildcard, "*/*"))
}

// AcceptCharset returns the acceptable charsets mapped to their qualities.
func AcceptCharset(h Headers, addWildcard bool) (map[string]float64, error) {
	return qualitiesHeader(h, "accept-charset", wildcardOr(addWildcard, "*"))
}

// AcceptEncoding returns the acceptable codings mapped to their qualities.
// When addIdentity is set, the identity coding is ensured to be present.
func AcceptEncoding(h Headers, addIdentity bool) (map[string]float64, error) {
	return qualitiesHeader(h, "accept-encoding", wildcardOr(addIdentity, "identity"))
}

// AcceptLanguage returns the acceptable languages mapped to their qualities.
func AcceptLanguage(h Headers, addWildcard bool) (map[string]float64, error) {
	return qualitiesHeader(h, "accept-language", wildcardOr(addWildcard, "*"))
}

// AcceptRanges returns the range unit the server supports.
func AcceptRanges(h Headers) (string, error) {
	value, found := h.Get("accept-ranges")
	if !found {
		return "", ErrNoHeader
	}

	return strings.TrimSpace(value), nil
}

// Authorization returns the credentials presented by the user agent as a
// scheme and the remaining parameters.
func Authorization(h Headers) (scheme, credentials string, err error) {
	return credentialsHeader(h, "authorization")
}

// ProxyAuthorization behaves as Authorization for the proxy-authorization
// header.
func ProxyAuthorization(h Headers) (scheme, credentials string, err error) {
	return credentialsHeader(h, "proxy-authorization")
}

// NoDirectiveValue marks cache-control directives that carry no argument,
// e.g. no-cache.
const NoDirectiveValue = -1

// CacheControl returns the caching directives mapped to their integer
// arguments; bare directives map to NoDirectiveValue.
func CacheControl(h Headers) (map[string]int, error) {
	value, found := h.Get("cache-control")
	if !found {
		return nil, ErrNoHeader
	}

	directives := make(map[string]int)

	for _, item := range strings.Split(value, ",") {
		name, arg, found := strings.Cut(item, "=")
		name = strings.TrimSpace(name)

		if !found {
			directives[name] = NoDirectiveValue
			continue
		}

		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return nil, errors.Wrapf(ErrBadValue, "cache-control %s", name)
		}

		directives[name] = n
	}

	return directives, nil
}

// Host returns the host header as a name and an optional port; the port is
// zero when unspecified.
func Host(h Headers) (host string, port int, err error) {
	value, found := h.Get("host")
	if !found {
		return "", 0, ErrNoHeader
	}

	name, portstr, found := strings.Cut(value, ":")
	if !found {
		return name, 0, nil
	}

	port, err = strconv.Atoi(portstr)
	if err != nil {
		return "", 0, errors.Wrap(ErrBadValue, "host port")
	}

	return name, port, nil
}

// Allow returns the methods supported by the resource.
func Allow(h Headers) ([]string, error) {
	return listHeader(h, "allow")
}

// Vary returns the request headers the response varies on.
func Vary(h Headers) ([]string, error) {
	return listHeader(h, "vary")
}

// Age returns the time in seconds the response spent in a proxy cache.
func Age(h Headers) (int64, error) {
	return intHeader(h, "age")
}

// AccessControlAllowCredentials reports whether the response may be exposed
// to credentialed requests.
func AccessControlAllowCredentials(h Headers) (bool, error) {
	value, found := h.Get("access-control-allow-credentials")
	if !found {
		return false, ErrNoHeader
	}

	return strings.EqualFold(value, "true"), nil
}

// AccessControlAllowHeaders returns the headers permitted during the actual
// request following a preflight.
func AccessControlAllowHeaders(h Headers) ([]string, error) {
	return listHeader(h, "access-control-allow-headers")
}

// AccessControlAllowMethods returns the methods permitted when accessing the
// resource.
func AccessControlAllowMethods(h Headers) ([]string, error) {
	return listHeader(h, "access-control-allow-methods")
}

// AccessControlExposeHeaders returns the headers exposed to the requesting
// code. When addSimpleResponseHeaders is set, the safelisted ones are
// appended.
func AccessControlExposeHeaders(h Headers, addSimpleResponseHeaders bool) ([]string, error) {
	headers, err := listHeader(h, "access-control-expose-headers")
	if err != nil {
		return nil, err
	}

	if addSimpleResponseHeaders {
		headers = append(headers,
			"cache-control",
			"content-language",
			"content-type",
			"expires",
			"last-modified",
			"pragma",
		)
	}

	return headers, nil
}

// AccessControlMaxAge returns how long a preflight result may be cached, in
// seconds.
func AccessControlMaxAge(h Headers) (int64, error) {
	return intHeader(h, "access-control-max-age")
}

// AccessControlRequestHeaders returns the headers a preflighting browser
// intends to send.
func AccessControlRequestHeaders(h Headers) ([]string, error) {
	return listHeader(h, "access-control-request-headers")
}

// Date returns the time at which the message was originated.
func Date(h Headers) (time.Time, error) {
	return dateHeader(h, "date")
}

// Expires returns the time after which the response is considered stale.
func Expires(h Headers) (time.Time, error) {
	return dateHeader(h, "expires")
}

// IfModifiedSince returns the timestamp making the request conditional.
func IfModifiedSince(h Headers) (time.Time, error) {
	return dateHeader(h, "if-modified-since")
}

// LastModified returns the time the resource was last modified at.
func LastModified(h Headers) (time.Time, error) {
	return dateHeader(h, "last-modified")
}

// Cookies merges every cookie header into a single name->values mapping.
func Cookies(h Headers) (map[string][]string, error) {
	cookies := make(map[string][]string)

	for _, value := range h.Values("cookie") {
		decoded, err := cookie.DecodeCookies(value)
		if err != nil {
			return nil, err
		}

		for name, values := range decoded {
			cookies[name] = append(cookies[name], values...)
		}
	}

	return cookies, nil
}

// SetCookies decodes every set-cookie header into a name->cookies mapping.
// Repeated names keep all their cookies in header order.
func SetCookies(h Headers) (map[string][]cookie.Cookie, error) {
	cookies := make(map[string][]cookie.Cookie)

	for _, value := range h.Values("set-cookie") {
		decoded, err := cookie.DecodeSetCookie(value)
		if err != nil {
			return nil, err
		}

		cookies[decoded.Name] = append(cookies[decoded.Name], decoded)
	}

	return cookies, nil
}

func parseMediaType(value string, unquote bool) MediaType {
	mtype, rest, found := strings.Cut(value, ";")
	mt := MediaType{Type: strings.TrimSpace(mtype)}

	if !found {
		return mt
	}

	mt.Params = make(map[string]string)

	for _, param := range strings.Split(rest, ";") {
		name, arg, _ := strings.Cut(param, "=")
		name = strings.TrimSpace(name)
		if len(name) == 0 {
			continue
		}

		arg = strings.TrimSpace(arg)
		if unquote {
			arg = strings.Trim(arg, `"`)
		}

		mt.Params[name] = arg
	}

	return mt
}

func qualitiesHeader(h Headers, key, implicit string) (map[string]float64, error) {
	value, found := h.Get(key)
	if !found {
		return nil, ErrNoHeader
	}

	qualities := make(map[string]float64)

	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if len(item) == 0 {
			continue
		}

		token, params, found := strings.Cut(item, ";")
		quality := 1.0

		if found {
			name, arg, _ := strings.Cut(params, "=")
			if strings.TrimSpace(name) != "q" {
				return nil, errors.Wrapf(ErrBadValue, "%s %s", key, token)
			}

			parsed, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
			if err != nil {
				return nil, errors.Wrapf(ErrBadValue, "%s %s", key, token)
			}

			quality = parsed
		}

		qualities[strings.TrimSpace(token)] = quality
	}

	if len(implicit) > 0 {
		if _, found := qualities[implicit]; !found {
			qualities[implicit] = 1.0
		}
	}

	return qualities, nil
}

func credentialsHeader(h Headers, key string) (scheme, credentials string, err error) {
	value, found := h.Get(key)
	if !found {
		return "", "", ErrNoHeader
	}

	scheme, credentials, _ = strings.Cut(value, " ")

	return strings.TrimSpace(scheme), credentials, nil
}

func dateHeader(h Headers, key string) (time.Time, error) {
	value, found := h.Get(key)
	if !found {
		return time.Time{}, ErrNoHeader
	}

	t, err := httpdate.Parse(value)
	if err != nil {
		return time.Time{}, errors.WithMessage(err, key)
	}

	return t, nil
}

func intHeader(h Headers, key string) (int64, error) {
	value, found := h.Get(key)
	if !found {
		return 0, ErrNoHeader
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Wrap(ErrBadValue, key)
	}

	return n, nil
}

func listHeader(h Headers, key string) ([]string, error) {
	value, found := h.Get(key)
	if !found {
		return nil, ErrNoHeader
	}

	return splitComma(value), nil
}

func splitComma(value string) []string {
	items := strings.Split(value, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}

	return items
}

func wildcardOr(enabled bool, token string) string {
	if !enabled {
		return ""
	}

	return token
}
