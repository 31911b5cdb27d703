package h11

// header is a single name/value pair as it appeared on the wire. Both
// slices may alias the ingest buffer; since compaction copies unread
// bytes into a fresh array rather than overwriting in place, they stay
// valid across later reads into the same connection.
type header struct {
	key   []byte
	value []byte
}

// Headers is an ordered, multi-valued header list. Unlike a
// map[string][]string it preserves the exact insertion order and the
// exact number of occurrences a parse produced, which the codec needs
// to round-trip duplicate header lines.
//
// The zero value is an empty Headers ready to use.
type Headers struct {
	h []header
}

// NewHeaders builds a Headers from an ordered list of key/value
// pairs. Intended for constructing outbound heads in tests and by
// callers that don't already hold a Headers.
func NewHeaders(kv ...[2]string) Headers {
	var hs Headers
	for _, p := range kv {
		hs.Add(p[0], p[1])
	}
	return hs
}

// Len returns the number of header lines.
func (hs *Headers) Len() int { return len(hs.h) }

// Add appends a header line, preserving any existing occurrences of
// key.
func (hs *Headers) Add(key, value string) {
	hs.AddBytes(s2b(key), s2b(value))
}

// AddBytes is the zero-copy form of Add: it appends key/value as-is,
// without copying, so callers handing over slices from a pooled
// buffer must not mutate them afterwards.
func (hs *Headers) AddBytes(key, value []byte) {
	hs.h = append(hs.h, header{key: key, value: value})
}

// Get returns the first value for key (case-insensitive), or false if
// key is absent.
func (hs *Headers) Get(key string) (string, bool) {
	v, ok := hs.GetBytes(s2b(key))
	return string(v), ok
}

// GetBytes is the zero-copy form of Get.
func (hs *Headers) GetBytes(key []byte) ([]byte, bool) {
	for i := range hs.h {
		if caseInsensitiveEqual(hs.h[i].key, key) {
			return hs.h[i].value, true
		}
	}
	return nil, false
}

// GetLast returns the last value for key (case-insensitive). Framing
// rules such as the Transfer-Encoding final-coding rule operate on the
// last occurrence of a header, not the first.
func (hs *Headers) GetLast(key string) ([]byte, bool) {
	return hs.getLastBytes(s2b(key))
}

func (hs *Headers) getLastBytes(key []byte) ([]byte, bool) {
	for i := len(hs.h) - 1; i >= 0; i-- {
		if caseInsensitiveEqual(hs.h[i].key, key) {
			return hs.h[i].value, true
		}
	}
	return nil, false
}

// Values appends every value for key, in insertion order, to dst and
// returns the result.
func (hs *Headers) Values(key string, dst [][]byte) [][]byte {
	k := s2b(key)
	for i := range hs.h {
		if caseInsensitiveEqual(hs.h[i].key, k) {
			dst = append(dst, hs.h[i].value)
		}
	}
	return dst
}

// Has reports whether key occurs at all (case-insensitive).
func (hs *Headers) Has(key string) bool {
	_, ok := hs.GetBytes(s2b(key))
	return ok
}

// VisitAll calls f once per header line, in wire order.
func (hs *Headers) VisitAll(f func(key, value []byte)) {
	for i := range hs.h {
		f(hs.h[i].key, hs.h[i].value)
	}
}

// Reset clears all headers, retaining the backing array.
func (hs *Headers) Reset() {
	hs.h = hs.h[:0]
}

func caseInsensitiveEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if lowerByte(a[i]) != lowerByte(b[i]) {
			return false
		}
	}
	return true
}

func lowerByte(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// equalFold reports whether a equals the ASCII string s, ignoring
// case. Used for comparing parsed header values against small known
// tokens without allocating.
func equalFold(a []byte, s string) bool {
	if len(a) != len(s) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerByte(a[i]) != lowerByte(s[i]) {
			return false
		}
	}
	return true
}

// trimOWS trims leading/trailing optional whitespace (space, tab) per
// RFC 7230 section 3.2.3.
func trimOWS(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}
