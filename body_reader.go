package h11

// chunkPhase tracks where a Chunked BodyReader is within one
// chunk-size/chunk-data/CRLF cycle.
type chunkPhase uint8

const (
	chunkStart chunkPhase = iota
	chunkData
	chunkEnd
	chunkTrailers
)

// BodyReader pulls body Events out of a byte buffer according to one
// of the three framing methods. It never blocks: NextEvent returns
// needMore when the buffer doesn't yet hold a full unit of framing,
// so the caller can feed it more bytes and call again.
type BodyReader struct {
	kind      FramingKind
	remaining int // ContentLength: bytes left: Chunked Data phase: bytes left in current chunk
	phase     chunkPhase
}

// NewBodyReader builds a BodyReader for the given resolved framing
// method.
func NewBodyReader(m FramingMethod) *BodyReader {
	switch m.Kind {
	case FramingContentLength:
		return &BodyReader{kind: FramingContentLength, remaining: m.Length}
	case FramingChunked:
		return &BodyReader{kind: FramingChunked, phase: chunkStart}
	default:
		return &BodyReader{kind: FramingHTTP10}
	}
}

// NextEvent consumes as much of buf as forms one complete Data or
// EndOfMessage event and returns it along with how many bytes were
// consumed. needMore is true when buf holds an incomplete unit; with
// Chunked framing, consumed may then still be non-zero, counting the
// chunk-size lines and chunk terminators the reader has already moved
// past, and the caller must drop those bytes from the front of its
// buffer.
func (r *BodyReader) NextEvent(buf []byte) (ev Event, consumed int, err *Error, needMore bool) {
	switch r.kind {
	case FramingContentLength:
		return r.nextContentLength(buf)
	case FramingChunked:
		return r.nextChunked(buf)
	default:
		return r.nextHTTP10(buf)
	}
}

func (r *BodyReader) nextContentLength(buf []byte) (Event, int, *Error, bool) {
	if r.remaining == 0 {
		return EndOfMessage{}, 0, nil, false
	}
	n := r.remaining
	if n > len(buf) {
		n = len(buf)
	}
	if n == 0 {
		return nil, 0, nil, true
	}
	r.remaining -= n
	return Data{Bytes: buf[:n]}, n, nil, false
}

func (r *BodyReader) nextHTTP10(buf []byte) (Event, int, *Error, bool) {
	if len(buf) == 0 {
		return nil, 0, nil, true
	}
	return Data{Bytes: buf}, len(buf), nil, false
}

func (r *BodyReader) nextChunked(buf []byte) (Event, int, *Error, bool) {
	total := 0
	for {
		switch r.phase {
		case chunkStart:
			size, n, ok, bad := parseChunkSizeLine(buf)
			if bad {
				return nil, 0, newError(InvalidChunkSize, "malformed chunk-size line"), false
			}
			if !ok {
				return nil, total, nil, true
			}
			// consume through the chunk-size line's terminating CRLF,
			// skipping any chunk-extensions in between.
			lineEnd := findCRLF(buf[n:])
			if lineEnd < 0 {
				return nil, total, nil, true
			}
			consumed := n + lineEnd + 2
			buf = buf[consumed:]
			total += consumed
			if size == 0 {
				r.phase = chunkTrailers
			} else {
				r.remaining = size
				r.phase = chunkData
			}
		case chunkData:
			n := r.remaining
			if n > len(buf) {
				n = len(buf)
			}
			if n == 0 {
				return nil, total, nil, true
			}
			data := buf[:n]
			r.remaining -= n
			if r.remaining == 0 {
				r.phase = chunkEnd
			}
			return Data{Bytes: data}, total + n, nil, false
		case chunkEnd:
			if len(buf) < 2 {
				return nil, total, nil, true
			}
			if buf[0] != '\r' || buf[1] != '\n' {
				return nil, 0, newError(InvalidChunkSize, "missing chunk terminator"), false
			}
			buf = buf[2:]
			total += 2
			r.phase = chunkStart
		case chunkTrailers:
			hs, n, perr, needMore := parseHeaderBlock(buf)
			if needMore {
				return nil, total, nil, true
			}
			if perr != nil {
				return nil, 0, wrapError(InvalidChunkSize, "malformed trailer", perr), false
			}
			total += n
			if hs.Len() == 0 {
				return EndOfMessage{}, total, nil, false
			}
			return EndOfMessage{Trailers: &hs}, total, nil, false
		}
	}
}

// EOF reports the Event (or error) produced when the transport
// reaches end of stream while this reader is active. Only Http10
// framing treats EOF as a normal end of message; any other framing
// mid-body means the peer hung up before finishing, which is always
// an error, never recoverable.
func (r *BodyReader) EOF() (Event, *Error) {
	if r.kind == FramingHTTP10 {
		return EndOfMessage{}, nil
	}
	return nil, newError(ConnectionClosedPrematurely, "connection closed before body finished")
}
