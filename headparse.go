package h11

import "bytes"

// findCRLF returns the index of the next "\r\n" in b, or -1.
func findCRLF(b []byte) int {
	return bytes.Index(b, []byte("\r\n"))
}

// readLine slices the next CRLF-terminated line off the front of b,
// returning the line without its terminator and the remainder of b
// after it. ok is false if b has no complete line yet.
func readLine(b []byte) (line, rest []byte, ok bool) {
	i := findCRLF(b)
	if i < 0 {
		return nil, b, false
	}
	return b[:i], b[i+2:], true
}

// parseHeaderBlock scans zero or more header lines off the front of
// buf up to and including the terminating blank line, rejecting
// folded (obs-fold) continuation lines, whitespace before the colon,
// and empty header names -- all legal in older HTTP grammars but
// excluded by RFC 7230's obs-fold removal.
//
// Unlike the scanner this is adapted from, it never loops into a
// continuation line: a header line followed by a line starting with
// space or tab is a parse error, not a multi-line value.
func parseHeaderBlock(buf []byte) (hs Headers, n int, perr *Error, needMore bool) {
	rest := buf
	consumed := 0
	for {
		if len(rest) >= 2 && rest[0] == '\r' && rest[1] == '\n' {
			consumed += 2
			return hs, consumed, nil, false
		}
		if len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t') {
			return Headers{}, 0, newError(MalformedHead, "unexpected header folding"), false
		}

		line, next, ok := readLine(rest)
		if !ok {
			return Headers{}, 0, nil, true
		}
		lineLen := len(rest) - len(next)

		if len(next) > 0 && (next[0] == ' ' || next[0] == '\t') {
			return Headers{}, 0, newError(MalformedHead, "header folding is not supported"), false
		}

		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			return Headers{}, 0, newError(MalformedHead, "header line missing colon"), false
		}
		name := line[:colon]
		if len(name) == 0 {
			return Headers{}, 0, newError(MalformedHead, "empty header name"), false
		}
		if name[len(name)-1] == ' ' || name[len(name)-1] == '\t' {
			return Headers{}, 0, newError(MalformedHead, "whitespace before colon in header name"), false
		}
		if !validHeaderName(name) {
			return Headers{}, 0, newError(MalformedHead, "invalid header name"), false
		}
		value := trimOWS(line[colon+1:])
		if !validHeaderValue(value) {
			return Headers{}, 0, newError(MalformedHead, "invalid header value"), false
		}

		hs.AddBytes(name, value)
		consumed += lineLen
		rest = next
	}
}

// parseRequestLine parses a request-line of the form
// "METHOD SP request-target SP HTTP/x.y" with exactly one space
// between components, per RFC 9112 section 3.
func parseRequestLine(line []byte) (method, uri []byte, version Version, perr *Error) {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return nil, nil, 0, newError(MalformedHead, "missing method in request line")
	}
	method = line[:sp1]
	if !isToken(method) {
		return nil, nil, 0, newError(MalformedHead, "invalid request method")
	}

	rest := line[sp1+1:]
	if len(rest) > 0 && rest[0] == ' ' {
		return nil, nil, 0, newError(MalformedHead, "extra whitespace after method")
	}

	sp2 := bytes.IndexByte(rest, ' ')
	if sp2 <= 0 {
		return nil, nil, 0, newError(MalformedHead, "missing request-target in request line")
	}
	uri = rest[:sp2]

	verStr := rest[sp2+1:]
	if len(verStr) > 0 && verStr[0] == ' ' {
		return nil, nil, 0, newError(MalformedHead, "extra whitespace before HTTP version")
	}
	version, ok := parseVersion(verStr)
	if !ok {
		return nil, nil, 0, newError(MalformedHead, "unsupported HTTP version")
	}
	return method, uri, version, nil
}

// parseStatusLine parses a status-line of the form
// "HTTP/x.y SP status-code SP reason-phrase".
func parseStatusLine(line []byte) (version Version, status int, perr *Error) {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return 0, 0, newError(MalformedHead, "missing HTTP version in status line")
	}
	version, ok := parseVersion(line[:sp1])
	if !ok {
		return 0, 0, newError(MalformedHead, "unsupported HTTP version")
	}

	rest := line[sp1+1:]
	end := len(rest)
	if sp2 := bytes.IndexByte(rest, ' '); sp2 >= 0 {
		end = sp2
	}
	if end != 3 {
		return 0, 0, newError(MalformedHead, "status code must be 3 digits")
	}
	n, consumed, ok := parseUint(rest[:end])
	if !ok || consumed != 3 || n < 100 || n > 999 {
		return 0, 0, newError(MalformedHead, "malformed status code")
	}
	return version, n, nil
}

func parseVersion(b []byte) (Version, bool) {
	switch {
	case bytes.Equal(b, []byte("HTTP/1.1")):
		return HTTP11, true
	case bytes.Equal(b, []byte("HTTP/1.0")):
		return HTTP10, true
	default:
		return 0, false
	}
}

// isToken reports whether b is a non-empty RFC 7230 "token" -- the
// grammar a request method must satisfy.
func isToken(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if !isTokenByte(c) {
			return false
		}
	}
	return true
}

func isTokenByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// ParseReqHead attempts to parse a complete request start line and
// header block off the front of buf. needMore reports that buf does
// not yet hold a complete head; err is non-nil only on malformed input.
func ParseReqHead(buf []byte) (head ReqHead, n int, err *Error, needMore bool) {
	line, rest, ok := readLine(buf)
	if !ok {
		return ReqHead{}, 0, nil, true
	}
	method, uri, version, perr := parseRequestLine(line)
	if perr != nil {
		return ReqHead{}, 0, perr, false
	}
	hs, hn, perr, needMore := parseHeaderBlock(rest)
	if needMore {
		return ReqHead{}, 0, nil, true
	}
	if perr != nil {
		return ReqHead{}, 0, perr, false
	}
	total := (len(buf) - len(rest)) + hn
	return ReqHead{Method: method, URI: uri, Version: version, Headers: hs}, total, nil, false
}

// ParseRespHead attempts to parse a complete status line and header
// block off the front of buf.
func ParseRespHead(buf []byte) (head RespHead, n int, err *Error, needMore bool) {
	line, rest, ok := readLine(buf)
	if !ok {
		return RespHead{}, 0, nil, true
	}
	version, status, perr := parseStatusLine(line)
	if perr != nil {
		return RespHead{}, 0, perr, false
	}
	hs, hn, perr, needMore := parseHeaderBlock(rest)
	if needMore {
		return RespHead{}, 0, nil, true
	}
	if perr != nil {
		return RespHead{}, 0, perr, false
	}
	total := (len(buf) - len(rest)) + hn
	return RespHead{StatusCode: status, Version: version, Headers: hs}, total, nil, false
}
