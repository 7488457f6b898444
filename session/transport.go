package session

// TransportEventKind identifies a transport lifecycle notification.
type TransportEventKind int

const (
	// TransportOpened reports that the dial finished and the connection
	// is ready for traffic.
	TransportOpened TransportEventKind = iota
	// TransportOpenFailed reports that the dial failed. The transport is
	// dead and must be replaced.
	TransportOpenFailed
	// TransportFrame carries one inbound wire frame.
	TransportFrame
	// TransportClosed reports that the connection ended, cleanly or not.
	// No further events follow.
	TransportClosed
)

// TransportEvent is a single notification from a Transport. Frame is set
// for TransportFrame events; Err is set for TransportOpenFailed and for
// abnormal TransportClosed events.
type TransportEvent struct {
	Kind  TransportEventKind
	Frame []byte
	Err   error
}

// Transport owns one physical duplex connection. Implementations dial in
// the background and report lifecycle and inbound frames on the Events
// channel, in receipt order. A Transport is single-use: once it reports
// TransportOpenFailed or TransportClosed it is dead and a fresh one must
// be dialed.
type Transport interface {
	// Events returns the channel of lifecycle and frame notifications.
	// The Session drains it non-blocking once per tick.
	Events() <-chan TransportEvent

	// Send queues one frame for delivery. It never blocks on the network;
	// it fails only if the transport is closed or the outbound queue is
	// saturated.
	Send(frame []byte) error

	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// DialFunc opens a fresh Transport to the given URL. The Session calls it
// once per connect attempt; closed transports are never redialed.
type DialFunc func(url string) Transport
