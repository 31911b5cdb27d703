package h11

// stateEvent is the small alphabet of things that move the state
// machine. Every Event kind drives a transition, so stateEvent just
// reuses EventKind.
type stateEvent = EventKind

// switchEvent marks which protocol switch, if any, a server_event
// transition is attempting to complete.
type switchEvent uint8

const (
	switchNone switchEvent = iota
	switchConnect
	switchUpgrade
)

// ClientState is the client side of a connection's half of the dual
// state machine.
type ClientState uint8

const (
	ClientIdle ClientState = iota
	ClientSendBody
	ClientDone
	ClientMustClose
	ClientClosed
	ClientMightSwitchProtocol
	ClientSwitchedProtocol
	ClientError
)

func (s ClientState) String() string {
	switch s {
	case ClientIdle:
		return "Idle"
	case ClientSendBody:
		return "SendBody"
	case ClientDone:
		return "Done"
	case ClientMustClose:
		return "MustClose"
	case ClientClosed:
		return "Closed"
	case ClientMightSwitchProtocol:
		return "MightSwitchProtocol"
	case ClientSwitchedProtocol:
		return "SwitchedProtocol"
	case ClientError:
		return "Error"
	default:
		return "Unknown"
	}
}

// ServerState is the server side of a connection's half of the dual
// state machine.
type ServerState uint8

const (
	ServerIdle ServerState = iota
	ServerSendResponse
	ServerSendBody
	ServerDone
	ServerMustClose
	ServerClosed
	ServerSwitchedProtocol
	ServerError
)

func (s ServerState) String() string {
	switch s {
	case ServerIdle:
		return "Idle"
	case ServerSendResponse:
		return "SendResponse"
	case ServerSendBody:
		return "SendBody"
	case ServerDone:
		return "Done"
	case ServerMustClose:
		return "MustClose"
	case ServerClosed:
		return "Closed"
	case ServerSwitchedProtocol:
		return "SwitchedProtocol"
	case ServerError:
		return "Error"
	default:
		return "Unknown"
	}
}

func clientSend(s ClientState, ev stateEvent) (ClientState, bool) {
	switch {
	case s == ClientIdle && ev == EventRequest,
		s == ClientSendBody && ev == EventData:
		return ClientSendBody, true
	case s == ClientSendBody && ev == EventEndOfMessage:
		return ClientDone, true
	case ev == EventConnectionClosed &&
		(s == ClientIdle || s == ClientDone || s == ClientMustClose || s == ClientClosed):
		return ClientClosed, true
	default:
		return s, false
	}
}

func serverSend(s ServerState, ev stateEvent, sw switchEvent) (ServerState, bool) {
	switch {
	case s == ServerIdle && ev == EventRequest && sw == switchNone,
		s == ServerSendResponse && ev == EventInfoResponse && sw == switchNone:
		return ServerSendResponse, true
	case s == ServerSendResponse && ev == EventInfoResponse && sw == switchUpgrade,
		s == ServerSendResponse && ev == EventResponse && sw == switchConnect:
		return ServerSwitchedProtocol, true
	case s == ServerIdle && ev == EventResponse && sw == switchNone,
		s == ServerSendResponse && ev == EventResponse && sw == switchNone,
		s == ServerSendBody && ev == EventData && sw == switchNone:
		return ServerSendBody, true
	case s == ServerSendBody && ev == EventEndOfMessage && sw == switchNone:
		return ServerDone, true
	case ev == EventConnectionClosed && sw == switchNone &&
		(s == ServerIdle || s == ServerDone || s == ServerMustClose || s == ServerClosed):
		return ServerClosed, true
	default:
		return s, false
	}
}

// State is the dual client/server state machine that tracks one
// connection's protocol position. The zero value is not valid; use
// NewState.
type State struct {
	Client ClientState
	Server ServerState

	keepAlive      bool
	pendingConnect bool
	pendingUpgrade bool
}

// NewState returns the state of a freshly opened, keep-alive eligible
// connection with neither side having sent anything yet.
func NewState() *State {
	return &State{Client: ClientIdle, Server: ServerIdle, keepAlive: true}
}

func (s State) pair() (ClientState, ServerState) { return s.Client, s.Server }

func (s State) anyPending() bool { return s.pendingConnect || s.pendingUpgrade }

// ClientEvent advances the client half for ev, propagating a Request
// to the server half too (a request is observable by both sides at
// once), then runs the transition machine to a fixpoint.
func (s *State) ClientEvent(ev stateEvent) error {
	next, ok := clientSend(s.Client, ev)
	if !ok {
		return newError(InvalidTransition, "client cannot send "+ev.String()+" from "+s.Client.String())
	}
	server := s.Server
	if ev == EventRequest {
		sNext, ok := serverSend(server, EventRequest, switchNone)
		if !ok {
			return newError(InvalidTransition, "server cannot observe client Request from "+server.String())
		}
		server = sNext
	}
	s.Client = next
	s.Server = server
	s.stateTransitions()
	return nil
}

// ServerEvent advances the server half for ev. A non-nil proposed
// switch must match an outstanding pending_connect/pending_upgrade
// proposal, or the transition is rejected with InvalidSwitch.
func (s *State) ServerEvent(ev stateEvent, sw switchEvent) error {
	switch sw {
	case switchConnect:
		if !s.pendingConnect {
			return newError(InvalidSwitch, "cannot switch via CONNECT without a pending proposal")
		}
	case switchUpgrade:
		if !s.pendingUpgrade {
			return newError(InvalidSwitch, "cannot switch via Upgrade without a pending proposal")
		}
	}
	next, ok := serverSend(s.Server, ev, sw)
	if !ok {
		return newError(InvalidTransition, "server cannot send "+ev.String()+" from "+s.Server.String())
	}
	s.Server = next
	if sw == switchNone && ev == EventResponse {
		s.pendingConnect = false
		s.pendingUpgrade = false
	}
	s.stateTransitions()
	return nil
}

// ClientError forces the client half into Error, then converges the
// peer toward MustClose via the transition machine.
func (s *State) ClientError() {
	s.Client = ClientError
	s.stateTransitions()
}

// ServerError forces the server half into Error, then converges the
// peer toward MustClose via the transition machine.
func (s *State) ServerError() {
	s.Server = ServerError
	s.stateTransitions()
}

// ProposeConnect records that the client has sent (or the server
// intends to honor) a CONNECT request, permitting a subsequent
// server_event(Response, Connect) to switch protocols.
func (s *State) ProposeConnect() {
	s.pendingConnect = true
	s.stateTransitions()
}

// ProposeUpgrade records an Upgrade request, permitting a subsequent
// server_event(InfoResponse, Upgrade) to switch protocols.
func (s *State) ProposeUpgrade() {
	s.pendingUpgrade = true
	s.stateTransitions()
}

// DisableKeepAlive marks the connection non-reusable; both sides
// converge to MustClose once they reach Done.
func (s *State) DisableKeepAlive() {
	s.keepAlive = false
	s.stateTransitions()
}

// PendingConnect reports whether a CONNECT switch proposal is
// outstanding.
func (s State) PendingConnect() bool { return s.pendingConnect }

// PendingUpgrade reports whether an Upgrade switch proposal is
// outstanding.
func (s State) PendingUpgrade() bool { return s.pendingUpgrade }

// KeepAlive reports whether the connection is still eligible for
// reuse after the current cycle.
func (s State) KeepAlive() bool { return s.keepAlive }

// StartNextCycle resets both halves to Idle for a new request/
// response cycle on a reused connection. It fails unless both halves
// are currently Done.
func (s *State) StartNextCycle() error {
	if s.Client != ClientDone || s.Server != ServerDone {
		return newError(InvalidTransition, "connection is not in a reusable state")
	}
	s.Client = ClientIdle
	s.Server = ServerIdle
	return nil
}

// stateTransitions runs the side-effect rules that aren't triggered
// directly by an event -- switch convergence, keep-alive forcing, and
// cross-side MustClose propagation -- repeatedly until neither half
// changes, mirroring a fixpoint over a small monotone lattice.
func (s *State) stateTransitions() {
	for {
		start := s.pair()

		if s.anyPending() && s.Client == ClientDone {
			s.Client = ClientMightSwitchProtocol
		}
		if !s.anyPending() && s.Client == ClientMightSwitchProtocol {
			s.Client = ClientDone
		}

		if !s.keepAlive {
			if s.Client == ClientDone {
				s.Client = ClientMustClose
			}
			if s.Server == ServerDone {
				s.Server = ServerMustClose
			}
		}

		switch {
		case s.Client == ClientMightSwitchProtocol && s.Server == ServerSwitchedProtocol:
			s.Client = ClientSwitchedProtocol
		case (s.Client == ClientClosed && s.Server == ServerDone) ||
			(s.Client == ClientClosed && s.Server == ServerIdle) ||
			(s.Client == ClientError && s.Server == ServerDone):
			s.Server = ServerMustClose
		case (s.Client == ClientDone && s.Server == ServerClosed) ||
			(s.Client == ClientIdle && s.Server == ServerClosed) ||
			(s.Client == ClientDone && s.Server == ServerError):
			s.Client = ClientMustClose
		}

		if s.pair() == start {
			return
		}
	}
}
