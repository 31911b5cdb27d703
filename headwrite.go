package h11

// WriteReqHead appends the wire representation of head to dst: the
// request line, each header line in order, and the terminating blank
// line.
//
// The engine only ever writes HTTP/1.1 request lines: a client never
// constructs an HTTP/1.0 request, so head.Version carrying anything
// else is a programmer error, not a wire choice to honor.
func WriteReqHead(dst []byte, head *ReqHead) []byte {
	if head.Version != HTTP11 {
		panic("BUG: WriteReqHead called with a non-HTTP/1.1 Version")
	}
	dst = append(dst, head.Method...)
	dst = append(dst, ' ')
	dst = append(dst, head.URI...)
	dst = append(dst, ' ')
	dst = append(dst, "HTTP/1.1"...)
	dst = append(dst, '\r', '\n')
	dst = appendHeaderLines(dst, &head.Headers)
	return dst
}

// WriteRespHead appends the wire representation of head to dst: the
// HTTP/1.1 status line, each header line in order, and the
// terminating blank line.
//
// As with WriteReqHead, the engine only ever writes HTTP/1.1, so a
// head carrying any other version is a programmer error and panics.
func WriteRespHead(dst []byte, head *RespHead) []byte {
	if head.Version != HTTP11 {
		panic("BUG: WriteRespHead called with a non-HTTP/1.1 Version")
	}
	dst = append(dst, "HTTP/1.1"...)
	dst = append(dst, ' ')
	dst = appendStatusCode(dst, head.StatusCode)
	if msg, ok := statusMessage(head.StatusCode); ok {
		dst = append(dst, ' ')
		dst = append(dst, msg...)
	}
	dst = append(dst, '\r', '\n')
	dst = appendHeaderLines(dst, &head.Headers)
	return dst
}

func appendHeaderLines(dst []byte, hs *Headers) []byte {
	hs.VisitAll(func(key, value []byte) {
		dst = append(dst, key...)
		dst = append(dst, ':', ' ')
		dst = append(dst, value...)
		dst = append(dst, '\r', '\n')
	})
	return append(dst, '\r', '\n')
}

func appendStatusCode(dst []byte, code int) []byte {
	if code < 0 {
		code = 0
	}
	var buf [3]byte
	buf[0] = byte('0' + (code/100)%10)
	buf[1] = byte('0' + (code/10)%10)
	buf[2] = byte('0' + code%10)
	return append(dst, buf[:]...)
}
