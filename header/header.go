package header

import (
	"github.com/indigo-web/utils/strcomp"
	"golang.org/x/net/http/httpguts"
)

// Header is a single field of an HTTP headers section.
type Header struct {
	Key, Value string
}

// Headers is an ordered sequence of header fields. Keys are matched
// case-insensitively, duplicates are permitted and keep their relative
// order (multiple set-cookie fields rely on this).
type Headers []Header

// New constructs an empty headers sequence with room for n fields.
func New(n int) Headers {
	return make(Headers, 0, n)
}

// FromMap flattens a map of values (e.g. net/http's Header) into an ordered
// sequence. As maps are unordered, the resulting field order is unspecified,
// however values of the same key stay in their original order.
func FromMap(m map[string][]string) Headers {
	h := New(len(m))

	for key, values := range m {
		for _, value := range values {
			h = h.Add(key, value)
		}
	}

	return h
}

// Add appends a new field, preserving any previously added values of the key.
func (h Headers) Add(key, value string) Headers {
	return append(h, Header{Key: key, Value: value})
}

// Index returns the position of the first field with the key, or -1.
func (h Headers) Index(key string) int {
	for i, field := range h {
		if strcomp.EqualFold(field.Key, key) {
			return i
		}
	}

	return -1
}

// Get returns the first value corresponding to the key and a bool, indicating
// whether the key is present at all.
func (h Headers) Get(key string) (string, bool) {
	if i := h.Index(key); i != -1 {
		return h[i].Value, true
	}

	return "", false
}

// Value returns the first value corresponding to the key, otherwise empty
// string is returned.
func (h Headers) Value(key string) string {
	return h.ValueOr(key, "")
}

// ValueOr returns either the first value corresponding to the key or the
// fallback value.
func (h Headers) ValueOr(key, or string) string {
	value, found := h.Get(key)
	if !found {
		return or
	}

	return value
}

// Values returns all values by the key in order. Returns nil if the key
// doesn't exist.
func (h Headers) Values(key string) (values []string) {
	for _, field := range h {
		if strcomp.EqualFold(field.Key, key) {
			values = append(values, field.Value)
		}
	}

	return values
}

// Keys returns all unique keys, first-seen order.
func (h Headers) Keys() (keys []string) {
	for _, field := range h {
		if !contains(keys, field.Key) {
			keys = append(keys, field.Key)
		}
	}

	return keys
}

// Upsert overwrites the value of the first field with the key, or appends a
// new field if the key isn't present yet.
func (h Headers) Upsert(key, value string) Headers {
	if i := h.Index(key); i != -1 {
		h[i].Value = value
		return h
	}

	return h.Add(key, value)
}

// Delete removes all fields with the key, in-place.
func (h Headers) Delete(key string) Headers {
	filtered := h[:0]

	for _, field := range h {
		if !strcomp.EqualFold(field.Key, key) {
			filtered = append(filtered, field)
		}
	}

	return filtered
}

// ToMap collects the fields into a key->values map. Keys are lowercased, as
// the map lookup is inevitably case-sensitive.
func (h Headers) ToMap() map[string][]string {
	m := make(map[string][]string, len(h))

	for _, field := range h {
		key := lower(field.Key)
		m[key] = append(m[key], field.Value)
	}

	return m
}

// IsValidName reports whether the key may be safely used as a header
// field name.
func IsValidName(key string) bool {
	return httpguts.ValidHeaderFieldName(key)
}

// IsValidValue reports whether the value may be safely used as a header
// field value.
func IsValidValue(value string) bool {
	return httpguts.ValidHeaderFieldValue(value)
}

func contains(strs []string, key string) bool {
	for _, str := range strs {
		if strcomp.EqualFold(str, key) {
			return true
		}
	}

	return false
}

func lower(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}

			return string(b)
		}
	}

	return s
}
