package h11

import "io"

// DefaultMaxEventSize is the ingest buffer's spare-capacity reserve
// used by ReadFrom when the caller doesn't pick one via FromBufs.
const DefaultMaxEventSize = 8 * 1024

// inner is the role-agnostic half of a connection: the state
// machine, both buffers, and the body reader/writer installed for
// whichever message is currently in flight. ClientConn and ServerConn
// each wrap one and expose only the methods valid for their role.
type inner struct {
	state         State
	maxEventSize  int
	in            *ingestBuffer
	inClosed      bool
	out           *egressBuffer
	wantsContinue bool
	bodyReader    *BodyReader
	bodyWriter    *BodyWriter
	lastMethod    []byte // method of the request currently being served/sent
}

func newInner(maxEventSize int) *inner {
	return &inner{
		state:        *NewState(),
		maxEventSize: maxEventSize,
		in:           newIngestBuffer(),
		out:          newEgressBuffer(),
	}
}

// readFrom reads once from r into the ingest buffer, growing it first
// if less than maxEventSize of untouched capacity remains. A read of
// zero bytes marks the ingest side closed; reading non-zero bytes
// after that point is a protocol fault.
func (c *inner) readFrom(r io.Reader) (int, error) {
	c.in.compact()
	if spare := cap(c.in.bb.B) - len(c.in.bb.B); spare < c.maxEventSize {
		grown := make([]byte, len(c.in.bb.B), len(c.in.bb.B)+c.maxEventSize)
		copy(grown, c.in.bb.B)
		c.in.bb.B = grown
	}
	start := len(c.in.bb.B)
	room := c.in.bb.B[start:cap(c.in.bb.B)]
	n, err := r.Read(room)
	if n == 0 {
		c.inClosed = true
		return 0, err
	}
	if c.inClosed {
		return 0, newError(PeerDataAfterClose, "peer sent data after signaling connection closed")
	}
	c.in.bb.B = c.in.bb.B[:start+n]
	return n, err
}

// clientEvent runs the pre/post-event flag logic and state
// transition for a client-side event: one ClientConn sends, or one
// ServerConn.NextEvent has parsed from the peer.
func (c *inner) clientEvent(kind EventKind, req *ReqHead) error {
	if req != nil {
		if equalFold(req.Method, "CONNECT") {
			c.state.ProposeConnect()
		}
		if hasUpgrade(&req.Headers) {
			c.state.ProposeUpgrade()
		}
	}
	if err := c.state.ClientEvent(kind); err != nil {
		return err
	}
	switch kind {
	case EventRequest:
		if !CanKeepAlive(req.Version, &req.Headers) {
			c.state.DisableKeepAlive()
		}
		c.wantsContinue = wantsContinue(&req.Headers)
		c.lastMethod = append(c.lastMethod[:0], req.Method...)
	case EventData, EventEndOfMessage:
		c.wantsContinue = false
	}
	return nil
}

// serverEvent runs the pre/post-event flag logic and state
// transition for an event the local side is the server for.
func (c *inner) serverEvent(kind EventKind, resp *RespHead) error {
	sw := switchNone
	switch {
	case kind == EventInfoResponse && resp.StatusCode == 101:
		sw = switchUpgrade
	case kind == EventResponse && c.state.PendingConnect() && resp.StatusCode >= 200 && resp.StatusCode < 300:
		sw = switchConnect
	}

	if err := c.state.ServerEvent(kind, sw); err != nil {
		return err
	}

	switch kind {
	case EventInfoResponse:
		c.wantsContinue = false
	case EventResponse:
		if !CanKeepAlive(resp.Version, &resp.Headers) {
			c.state.DisableKeepAlive()
		}
		c.wantsContinue = false
	}
	return nil
}

// ClientConn drives the client role of one HTTP/1.1 connection: it
// serializes outbound requests and bodies. Per spec, the client role
// has no inbound NextEvent -- callers that also need to parse
// responses build that on top.
type ClientConn struct{ c *inner }

// NewClientConn returns a ClientConn with fresh, empty buffers and
// DefaultMaxEventSize headroom.
func NewClientConn() *ClientConn { return &ClientConn{c: newInner(DefaultMaxEventSize)} }

// NewClientConnFromBufs returns a ClientConn seeded with existing
// buffer contents, e.g. bytes already read speculatively before the
// engine was constructed.
func NewClientConnFromBufs(maxEventSize int, in, out []byte) *ClientConn {
	c := newInner(maxEventSize)
	c.in.append(in)
	c.out.append(out)
	return &ClientConn{c: c}
}

// IntoBufs releases the connection and returns its ingest/egress
// buffer contents for reuse or inspection.
func (cc *ClientConn) IntoBufs() (in, out []byte) {
	in = append([]byte(nil), cc.c.in.unread()...)
	out = append([]byte(nil), cc.c.out.bytes()...)
	cc.c.in.release()
	cc.c.out.release()
	return in, out
}

// ReadFrom reads inbound bytes (e.g. a partial response) into the
// connection's ingest buffer. The client role does not itself parse
// these bytes into Events.
func (cc *ClientConn) ReadFrom(r io.Reader) (int, error) { return cc.c.readFrom(r) }

// SendRequest validates and serializes a request head, installing the
// body writer implied by its framing method.
func (cc *ClientConn) SendRequest(head ReqHead) ([]byte, error) {
	if err := cc.c.clientEvent(EventRequest, &head); err != nil {
		return nil, err
	}
	cc.c.bodyWriter = NewBodyWriter(requestFramingMethod(&head.Headers))
	before := len(cc.c.out.bytes())
	cc.c.out.bb.B = WriteReqHead(cc.c.out.bb.B, &head)
	return cc.c.out.bytes()[before:], nil
}

// SendData validates and serializes a request body fragment.
func (cc *ClientConn) SendData(data []byte) ([]byte, error) {
	if err := cc.c.clientEvent(EventData, nil); err != nil {
		return nil, err
	}
	before := len(cc.c.out.bytes())
	out, werr := cc.c.bodyWriter.WriteData(cc.c.out.bb.B, data)
	if werr != nil {
		return nil, werr
	}
	cc.c.out.bb.B = out
	return cc.c.out.bytes()[before:], nil
}

// SendEndOfMessage validates and serializes the end of a request,
// with optional chunked trailers.
func (cc *ClientConn) SendEndOfMessage(trailers *Headers) ([]byte, error) {
	if err := cc.c.clientEvent(EventEndOfMessage, nil); err != nil {
		return nil, err
	}
	before := len(cc.c.out.bytes())
	out, werr := cc.c.bodyWriter.WriteEndOfMessage(cc.c.out.bb.B, trailers)
	if werr != nil {
		return nil, werr
	}
	cc.c.out.bb.B = out
	return cc.c.out.bytes()[before:], nil
}

// SendConnectionClosed records that the client observed (or is
// initiating) transport closure. It writes no bytes.
func (cc *ClientConn) SendConnectionClosed() ([]byte, error) {
	if err := cc.c.clientEvent(EventConnectionClosed, nil); err != nil {
		return nil, err
	}
	return nil, nil
}

// State exposes the connection's current client/server state pair
// for callers that need to inspect it (e.g. to decide whether a
// connection may be reused).
func (cc *ClientConn) State() State { return cc.c.state }

// StartNextCycle resets the connection for a new request/response
// cycle once both sides have reached Done.
func (cc *ClientConn) StartNextCycle() error { return cc.c.state.StartNextCycle() }

// ServerConn drives the server role of one HTTP/1.1 connection: it
// parses inbound requests and bodies, and serializes outbound
// responses.
type ServerConn struct{ c *inner }

// NewServerConn returns a ServerConn with fresh, empty buffers and
// DefaultMaxEventSize headroom.
func NewServerConn() *ServerConn { return &ServerConn{c: newInner(DefaultMaxEventSize)} }

// NewServerConnFromBufs returns a ServerConn seeded with existing
// buffer contents.
func NewServerConnFromBufs(maxEventSize int, in, out []byte) *ServerConn {
	c := newInner(maxEventSize)
	c.in.append(in)
	c.out.append(out)
	return &ServerConn{c: c}
}

// IntoBufs releases the connection and returns its ingest/egress
// buffer contents for reuse or inspection.
func (sc *ServerConn) IntoBufs() (in, out []byte) {
	in = append([]byte(nil), sc.c.in.unread()...)
	out = append([]byte(nil), sc.c.out.bytes()...)
	sc.c.in.release()
	sc.c.out.release()
	return in, out
}

// ReadFrom reads inbound bytes from r into the ingest buffer.
func (sc *ServerConn) ReadFrom(r io.Reader) (int, error) { return sc.c.readFrom(r) }

// NextEvent attempts to produce the next inbound Event: a Request, a
// Data/EndOfMessage from the request body, or nil if more bytes are
// needed. It returns (nil, nil) rather than blocking.
func (sc *ServerConn) NextEvent() (Event, error) {
	switch sc.c.state.Client {
	case ClientIdle:
		head, n, perr, needMore := ParseReqHead(sc.c.in.unread())
		if needMore {
			return nil, nil
		}
		if perr != nil {
			sc.c.state.ClientError()
			return nil, perr
		}
		if err := sc.c.clientEvent(EventRequest, &head); err != nil {
			sc.c.state.ClientError()
			return nil, err
		}
		sc.c.in.advance(n)
		sc.c.bodyReader = NewBodyReader(requestFramingMethod(&head.Headers))
		return Request{Head: head}, nil

	case ClientSendBody:
		ev, n, berr, needMore := sc.c.bodyReader.NextEvent(sc.c.in.unread())
		if !needMore {
			if berr != nil {
				sc.c.state.ClientError()
				return nil, berr
			}
			sc.c.in.advance(n)
			if err := sc.c.clientEvent(ev.Kind(), nil); err != nil {
				return nil, err
			}
			return ev, nil
		}
		sc.c.in.advance(n)
		if sc.c.inClosed {
			ev, berr := sc.c.bodyReader.EOF()
			if berr != nil {
				return nil, berr
			}
			if err := sc.c.clientEvent(EventEndOfMessage, nil); err != nil {
				return nil, err
			}
			return ev, nil
		}
		return nil, nil

	case ClientError:
		return nil, newError(InvalidTransition, "client connection is in the error state")

	default: // Done, MustClose, Closed, MightSwitchProtocol, SwitchedProtocol
		return nil, nil
	}
}

// SendInfoResponse validates and serializes a 1xx informational
// response.
func (sc *ServerConn) SendInfoResponse(head RespHead) ([]byte, error) {
	if err := sc.c.serverEvent(EventInfoResponse, &head); err != nil {
		return nil, err
	}
	before := len(sc.c.out.bytes())
	sc.c.out.bb.B = WriteRespHead(sc.c.out.bb.B, &head)
	return sc.c.out.bytes()[before:], nil
}

// SendResponse validates and serializes the final response to the
// current request, installing the body writer implied by its framing
// method.
func (sc *ServerConn) SendResponse(head RespHead) ([]byte, error) {
	if err := sc.c.serverEvent(EventResponse, &head); err != nil {
		return nil, err
	}
	sc.c.bodyWriter = NewBodyWriter(responseFramingMethod(head.StatusCode, sc.c.lastMethod, &head.Headers))
	before := len(sc.c.out.bytes())
	sc.c.out.bb.B = WriteRespHead(sc.c.out.bb.B, &head)
	return sc.c.out.bytes()[before:], nil
}

// SendData validates and serializes a response body fragment.
func (sc *ServerConn) SendData(data []byte) ([]byte, error) {
	if err := sc.c.serverEvent(EventData, nil); err != nil {
		return nil, err
	}
	before := len(sc.c.out.bytes())
	out, werr := sc.c.bodyWriter.WriteData(sc.c.out.bb.B, data)
	if werr != nil {
		return nil, werr
	}
	sc.c.out.bb.B = out
	return sc.c.out.bytes()[before:], nil
}

// SendEndOfMessage validates and serializes the end of a response,
// with optional chunked trailers.
func (sc *ServerConn) SendEndOfMessage(trailers *Headers) ([]byte, error) {
	if err := sc.c.serverEvent(EventEndOfMessage, nil); err != nil {
		return nil, err
	}
	before := len(sc.c.out.bytes())
	out, werr := sc.c.bodyWriter.WriteEndOfMessage(sc.c.out.bb.B, trailers)
	if werr != nil {
		return nil, werr
	}
	sc.c.out.bb.B = out
	return sc.c.out.bytes()[before:], nil
}

// SendConnectionClosed records that the server observed (or is
// initiating) transport closure. It writes no bytes.
func (sc *ServerConn) SendConnectionClosed() ([]byte, error) {
	if err := sc.c.serverEvent(EventConnectionClosed, nil); err != nil {
		return nil, err
	}
	return nil, nil
}

// State exposes the connection's current client/server state pair.
func (sc *ServerConn) State() State { return sc.c.state }

// StartNextCycle resets the connection for a new request/response
// cycle once both sides have reached Done.
func (sc *ServerConn) StartNextCycle() error { return sc.c.state.StartNextCycle() }
