package h11

// BodyWriter serializes Data and EndOfMessage events into wire bytes
// according to one of the three framing methods. Unlike BodyReader it
// never needs more input -- appending to a byte slice always
// succeeds or fails outright -- so its methods return the extended
// slice directly.
type BodyWriter struct {
	kind      FramingKind
	remaining int // ContentLength only
}

// NewBodyWriter builds a BodyWriter for the given resolved framing
// method.
func NewBodyWriter(m FramingMethod) *BodyWriter {
	return &BodyWriter{kind: m.Kind, remaining: m.Length}
}

// WriteData appends data's wire representation to dst. For
// Content-Length framing it is an error to write more bytes in total
// than the declared length.
func (w *BodyWriter) WriteData(dst, data []byte) ([]byte, *Error) {
	switch w.kind {
	case FramingContentLength:
		if len(data) > w.remaining {
			return dst, newError(TooMuchData, "write exceeds declared Content-Length")
		}
		w.remaining -= len(data)
		return append(dst, data...), nil
	case FramingChunked:
		if len(data) == 0 {
			return dst, nil
		}
		dst = appendHexUint(dst, len(data))
		dst = append(dst, '\r', '\n')
		dst = append(dst, data...)
		dst = append(dst, '\r', '\n')
		return dst, nil
	default: // FramingHTTP10
		return append(dst, data...), nil
	}
}

// WriteEndOfMessage appends the framing-specific end-of-message
// marker to dst: nothing for Content-Length or Http10 (the former
// must already be exactly exhausted, the latter ends only when the
// connection closes), or the terminal "0\r\n" chunk plus any
// trailers for Chunked.
func (w *BodyWriter) WriteEndOfMessage(dst []byte, trailers *Headers) ([]byte, *Error) {
	switch w.kind {
	case FramingContentLength:
		if w.remaining != 0 {
			return dst, newError(TooMuchData, "end of message before declared Content-Length was reached")
		}
		return dst, nil
	case FramingChunked:
		dst = append(dst, '0', '\r', '\n')
		if trailers != nil {
			trailers.VisitAll(func(key, value []byte) {
				dst = append(dst, key...)
				dst = append(dst, ':', ' ')
				dst = append(dst, value...)
				dst = append(dst, '\r', '\n')
			})
		}
		dst = append(dst, '\r', '\n')
		return dst, nil
	default: // FramingHTTP10
		return dst, nil
	}
}
