package h11

import (
	"github.com/intuitivelabs/bytescase"
	"golang.org/x/net/http/httpguts"
)

// CanKeepAlive reports whether a connection carrying a message with
// the given version and headers may be reused for another cycle: true
// iff version is HTTP/1.1 or newer and no Connection header value
// contains the comma-separated token "close".
func CanKeepAlive(version Version, hs *Headers) bool {
	if version < HTTP11 {
		return false
	}
	values := hs.Values("Connection", nil)
	for _, v := range values {
		if commaTokenEquals(v, "close") {
			return false
		}
	}
	return true
}

// IsChunked reports whether the message uses chunked transfer
// encoding: true iff the rightmost token of the *last* Transfer-
// Encoding header value is "chunked" (RFC 7230 section 3.3.1's
// final-coding rule). Only that final token is examined; an encoding
// such as "gzip, chunked" is treated as chunked without indicating
// that a decompression layer is required downstream.
func IsChunked(hs *Headers) bool {
	v, ok := hs.GetLast("Transfer-Encoding")
	if !ok {
		return false
	}
	return lastCommaToken(v, "chunked")
}

// ContentLengthOf parses the first Content-Length header value as a
// base-10 non-negative integer. It returns (0, false) if the header
// is absent or its value is malformed — the lenient behavior the
// reference implementation uses, preserved here per DESIGN.md's
// Open Question decision on Content-Length leniency. Multiple occurrences
// with differing values are not detected; the first is used as-is.
func ContentLengthOf(hs *Headers) (int, bool) {
	v, ok := hs.GetBytes(s2b("Content-Length"))
	if !ok {
		return 0, false
	}
	n, rest, ok := parseUint(v)
	if !ok || rest != len(v) {
		return 0, false
	}
	return n, true
}

// wantsContinue reports whether the Expect header's last
// comma-separated token is "100-continue", case-insensitively.
func wantsContinue(hs *Headers) bool {
	v, ok := hs.GetLast("Expect")
	if !ok {
		return false
	}
	return lastCommaToken(v, "100-continue")
}

// hasUpgrade reports whether an Upgrade header is present at all; its
// value is not otherwise interpreted by the engine.
func hasUpgrade(hs *Headers) bool {
	return hs.Has("Upgrade")
}

// commaTokenEquals reports whether any comma-separated, trimmed token
// in v case-insensitively equals tok.
func commaTokenEquals(v []byte, tok string) bool {
	for _, part := range splitComma(v) {
		if bytescase.CmpEq(trimOWS(part), []byte(tok)) {
			return true
		}
	}
	return false
}

// lastCommaToken reports whether the rightmost comma-separated,
// trimmed token in v case-insensitively equals tok.
func lastCommaToken(v []byte, tok string) bool {
	parts := splitComma(v)
	if len(parts) == 0 {
		return false
	}
	return bytescase.CmpEq(trimOWS(parts[len(parts)-1]), []byte(tok))
}

func splitComma(v []byte) [][]byte {
	var out [][]byte
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			out = append(out, v[start:i])
			start = i + 1
		}
	}
	return out
}

// validHeaderName reports whether name is a legal RFC 7230 token, the
// syntax HTTP/1.1 requires for header field names.
func validHeaderName(name []byte) bool {
	return httpguts.ValidHeaderFieldName(b2s(name))
}

// validHeaderValue reports whether value contains only octets legal
// in an HTTP header field value (8-bit clean, but no control bytes or
// bare CR/LF — folding is handled earlier, in the scanner).
func validHeaderValue(value []byte) bool {
	return httpguts.ValidHeaderFieldValue(b2s(value))
}
