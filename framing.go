package h11

// FramingKind distinguishes the three ways a message body's extent
// can be delimited on the wire.
type FramingKind uint8

const (
	FramingContentLength FramingKind = iota
	FramingChunked
	FramingHTTP10
)

// FramingMethod is the resolved body-framing decision for one
// message: either a known length, chunked transfer-encoding, or the
// HTTP/1.0 read-until-close convention.
type FramingMethod struct {
	Kind   FramingKind
	Length int // only meaningful when Kind == FramingContentLength
}

func contentLength(n int) FramingMethod { return FramingMethod{Kind: FramingContentLength, Length: n} }

var chunkedFraming = FramingMethod{Kind: FramingChunked}
var http10Framing = FramingMethod{Kind: FramingHTTP10}

// requestFramingMethod implements the request-side body framing
// rules: chunked transfer-encoding wins over Content-Length, and a
// request with neither has no body at all.
func requestFramingMethod(hs *Headers) FramingMethod {
	if IsChunked(hs) {
		return chunkedFraming
	}
	n, _ := ContentLengthOf(hs)
	return contentLength(n)
}

// responseFramingMethod implements the response-side body framing
// rules. A response that can never carry a body (204, 304, any HEAD
// response, or a successful reply to CONNECT) is forced to a
// zero-length Content-Length framing regardless of what headers say.
// Otherwise chunked wins over Content-Length, and a response with
// neither known length falls back to Http10 read-until-close framing.
func responseFramingMethod(status int, requestMethod []byte, hs *Headers) FramingMethod {
	switch {
	case status == 204, status == 304:
		return contentLength(0)
	case equalFold(requestMethod, "HEAD"):
		return contentLength(0)
	case equalFold(requestMethod, "CONNECT") && status >= 200 && status < 300:
		return contentLength(0)
	}
	if IsChunked(hs) {
		return chunkedFraming
	}
	if n, ok := ContentLengthOf(hs); ok {
		return contentLength(n)
	}
	return http10Framing
}
