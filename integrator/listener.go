// Package integrator demonstrates wiring the sans-I/O h11 engine to a
// real transport. It owns everything the engine deliberately does
// not: accepting connections, running the read/write loop, and
// transforming bytes (compression) before they hit the wire.
//
// Nothing in package h11 imports this package; the dependency only
// runs the other way.
package integrator

import (
	"net"

	"github.com/valyala/tcplisten"
)

// ListenConfig controls how the listening socket is created.
type ListenConfig struct {
	// ReusePort enables SO_REUSEPORT so multiple processes (or
	// several listeners in one process) can share one address.
	ReusePort bool

	// DeferAccept enables TCP_DEFER_ACCEPT on Linux, delaying
	// Accept() until data has actually arrived.
	DeferAccept bool

	// FastOpen enables TCP Fast Open on the listening socket.
	FastOpen bool

	// Backlog is the accept queue size. Zero uses tcplisten's
	// default.
	Backlog int
}

// Listen creates a TCP listener on addr using the reuseport/fast-open
// socket options tcplisten configures via golang.org/x/sys/unix,
// rather than the stdlib net.Listen.
func Listen(network, addr string, cfg ListenConfig) (net.Listener, error) {
	tl := &tcplisten.Config{
		ReusePort:   cfg.ReusePort,
		DeferAccept: cfg.DeferAccept,
		FastOpen:    cfg.FastOpen,
		Backlog:     cfg.Backlog,
	}
	return tl.NewListener(network, addr)
}
