package integrator

import (
	"errors"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nstratos/h11"
)

// Logger is used for logging formatted messages.
type Logger interface {
	Printf(format string, args ...interface{})
}

var defaultLogger = Logger(log.New(os.Stderr, "", log.LstdFlags))

// Handler is called once per request, after its head and body are
// both readable. Body bytes the handler leaves unread are drained by
// the server after it returns, before the next request is parsed.
type Handler func(*Exchange)

// Server drives a pool of accepted connections, feeding each one's
// bytes into an h11.ServerConn and dispatching parsed requests to
// Handler.
type Server struct {
	Handler Handler

	// Concurrency bounds how many connections are served at once. A
	// connection beyond the bound is closed immediately rather than
	// queued.
	Concurrency int

	Logger Logger

	workersCount int32
}

func (s *Server) logger() Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return defaultLogger
}

func (s *Server) getConcurrency() int {
	if s.Concurrency <= 0 {
		return 256 * 1024
	}
	return s.Concurrency
}

// Serve accepts connections from ln until it returns a permanent
// error or Shutdown is not implemented here: closing ln stops Serve.
func (s *Server) Serve(ln net.Listener) error {
	var lastOverflowErrorTime time.Time
	maxConns := s.getConcurrency()

	for {
		c, err := acceptConn(s, ln)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if int(atomic.LoadInt32(&s.workersCount)) >= maxConns {
			c.Close()
			if time.Since(lastOverflowErrorTime) > time.Minute {
				s.logger().Printf("the incoming connection cannot be served, because %d concurrent connections are served", maxConns)
				lastOverflowErrorTime = time.Now()
			}
			continue
		}
		atomic.AddInt32(&s.workersCount, 1)
		go func(c net.Conn) {
			defer atomic.AddInt32(&s.workersCount, -1)
			if err := s.serveConn(c); err != nil {
				s.logger().Printf("error serving connection %q: %s", c.RemoteAddr(), err)
			}
			c.Close()
		}(c)
	}
}

func acceptConn(s *Server, ln net.Listener) (net.Conn, error) {
	for {
		c, err := ln.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger().Printf("temporary error when accepting new connections: %s", netErr)
				time.Sleep(time.Second)
				continue
			}
			if err != io.EOF && !strings.Contains(err.Error(), "use of closed network connection") {
				s.logger().Printf("permanent error when accepting new connections: %s", err)
				return nil, err
			}
			return nil, io.EOF
		}
		if c == nil {
			panic("BUG: net.Listener returned (nil, nil)")
		}
		return c, nil
	}
}

// serveConn drives one connection's request/response cycles until
// keep-alive ends or a fatal protocol error occurs.
func (s *Server) serveConn(c net.Conn) error {
	sc := h11.NewServerConn()
	for {
		ev, err := nextEvent(sc, c)
		if err != nil {
			return err
		}
		if _, ok := ev.(h11.ConnectionClosed); ok {
			return nil
		}
		req, ok := ev.(h11.Request)
		if !ok {
			return err
		}

		body := &bodyStream{sc: sc, conn: c}
		ex := &Exchange{Head: req.Head, conn: c, sc: sc, body: body}
		s.Handler(ex)

		// drain any body bytes the handler didn't read, so framing
		// stays in sync for the next request on this connection.
		if _, err := io.Copy(io.Discard, body); err != nil && err != io.EOF {
			return err
		}
		if !ex.responded {
			if _, err := sc.SendResponse(h11.RespHead{StatusCode: 500, Version: h11.HTTP11}); err != nil {
				return err
			}
			if _, err := sc.SendEndOfMessage(nil); err != nil {
				return err
			}
		}

		if sc.State().Server == h11.ServerSwitchedProtocol {
			return nil
		}
		if !sc.State().KeepAlive() {
			return nil
		}
		if err := sc.StartNextCycle(); err != nil {
			return err
		}
	}
}

// nextEvent pulls the next parsed event off sc, reading more
// transport bytes whenever the state machine needs more to make
// progress.
func nextEvent(sc *h11.ServerConn, c net.Conn) (h11.Event, error) {
	for {
		ev, err := sc.NextEvent()
		if err != nil {
			return nil, err
		}
		if ev != nil {
			return ev, nil
		}
		if _, err := sc.ReadFrom(c); err != nil {
			if err == io.EOF {
				ev, err := sc.NextEvent()
				if err != nil {
					return nil, err
				}
				return ev, nil
			}
			return nil, err
		}
	}
}

// Exchange is the per-request handle passed to Handler.
type Exchange struct {
	Head h11.ReqHead

	conn net.Conn
	sc   *h11.ServerConn
	body *bodyStream

	responded bool
	mu        sync.Mutex
}

// Body returns the request body as a stream of bytes.
func (e *Exchange) Body() io.Reader { return e.body }

// WriteHead serializes and writes a final response head.
func (e *Exchange) WriteHead(head h11.RespHead) error {
	out, err := e.sc.SendResponse(head)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.responded = true
	e.mu.Unlock()
	_, err = e.conn.Write(out)
	return err
}

// WriteInfo serializes and writes a 1xx informational response.
func (e *Exchange) WriteInfo(head h11.RespHead) error {
	out, err := e.sc.SendInfoResponse(head)
	if err != nil {
		return err
	}
	_, err = e.conn.Write(out)
	return err
}

// Write sends a body fragment, applying framing (chunked or
// Content-Length) as decided by WriteHead's headers.
func (e *Exchange) Write(p []byte) (int, error) {
	out, err := e.sc.SendData(p)
	if err != nil {
		return 0, err
	}
	if _, err := e.conn.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// End finalizes the response, optionally with trailers on a chunked
// body.
func (e *Exchange) End(trailers *h11.Headers) error {
	out, err := e.sc.SendEndOfMessage(trailers)
	if err != nil {
		return err
	}
	_, err = e.conn.Write(out)
	return err
}

// bodyStream adapts NextEvent's Data/EndOfMessage events to io.Reader.
type bodyStream struct {
	sc       *h11.ServerConn
	conn     net.Conn
	pending  []byte
	trailers *h11.Headers
	done     bool
}

func (b *bodyStream) Read(p []byte) (int, error) {
	if len(b.pending) > 0 {
		n := copy(p, b.pending)
		b.pending = b.pending[n:]
		return n, nil
	}
	if b.done {
		return 0, io.EOF
	}
	for {
		ev, err := nextEvent(b.sc, b.conn)
		if err != nil {
			return 0, err
		}
		switch e := ev.(type) {
		case h11.Data:
			n := copy(p, e.Bytes)
			if n < len(e.Bytes) {
				b.pending = append(b.pending[:0], e.Bytes[n:]...)
			}
			return n, nil
		case h11.EndOfMessage:
			b.trailers = e.Trailers
			b.done = true
			return 0, io.EOF
		default:
			return 0, errors.New("integrator: unexpected event while reading body")
		}
	}
}

// Trailers returns the trailers carried by the body's EndOfMessage,
// if any. Only meaningful after Read has returned io.EOF.
func (b *bodyStream) Trailers() *h11.Headers { return b.trailers }
