package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

// WebSocketConfig tunes the WebSocket transport. Zero values fall back to
// the defaults below.
type WebSocketConfig struct {
	// DialTimeout bounds the opening handshake.
	DialTimeout time.Duration
	// WriteTimeout bounds each outbound frame write.
	WriteTimeout time.Duration
	// SendQueue is the outbound frame queue capacity. Send fails once the
	// queue is saturated rather than blocking the caller.
	SendQueue int
	// Header is sent with the opening handshake request.
	Header http.Header
}

const (
	defaultDialTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultSendQueue    = 64

	eventBuffer = 128
)

func (c *WebSocketConfig) applyDefaults() {
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.SendQueue <= 0 {
		c.SendQueue = defaultSendQueue
	}
}

// WebSocketDialer returns a DialFunc that opens WebSocket transports with
// the given configuration.
func WebSocketDialer(conf WebSocketConfig, logger zerolog.Logger) DialFunc {
	conf.applyDefaults()
	return func(url string) Transport {
		return newWebSocketTransport(url, conf, logger)
	}
}

// webSocketTransport speaks JSON text frames over one WebSocket
// connection. A runner goroutine dials and then reads until the
// connection dies; a writer goroutine drains the outbound queue. Both
// exit when the connection ends or Close is called.
type webSocketTransport struct {
	url    string
	conf   WebSocketConfig
	events chan TransportEvent
	sendq  chan []byte

	conn atomic.Pointer[websocket.Conn]

	ctx    context.Context
	cancel context.CancelFunc

	logger zerolog.Logger
}

func newWebSocketTransport(url string, conf WebSocketConfig, logger zerolog.Logger) *webSocketTransport {
	ctx, cancel := context.WithCancel(context.Background())

	t := &webSocketTransport{
		url:    url,
		conf:   conf,
		events: make(chan TransportEvent, eventBuffer),
		sendq:  make(chan []byte, conf.SendQueue),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With().Str("com", "transport").Str("url", url).Logger(),
	}

	go t.run()
	return t
}

func (t *webSocketTransport) Events() <-chan TransportEvent {
	return t.events
}

func (t *webSocketTransport) Send(frame []byte) error {
	if t.ctx.Err() != nil {
		return errors.New("transport closed")
	}
	select {
	case t.sendq <- frame:
		return nil
	default:
		return fmt.Errorf("outbound queue full (%d frames)", cap(t.sendq))
	}
}

// Close tears the connection down and stops both goroutines. Safe to
// call more than once.
func (t *webSocketTransport) Close() error {
	t.cancel()
	if conn := t.conn.Load(); conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "client shutdown")
	}
	return nil
}

// run dials, then pumps inbound frames until the connection ends. The
// deferred cancel stops the writer when the read side dies first.
func (t *webSocketTransport) run() {
	defer t.cancel()

	dialCtx, dialCancel := context.WithTimeout(t.ctx, t.conf.DialTimeout)
	conn, _, err := websocket.Dial(dialCtx, t.url, &websocket.DialOptions{
		HTTPHeader: t.conf.Header,
	})
	dialCancel()
	if err != nil {
		t.logger.Debug().Err(err).Msg("dial failed")
		t.emit(TransportEvent{Kind: TransportOpenFailed, Err: err})
		return
	}

	t.conn.Store(conn)
	if t.ctx.Err() != nil {
		// Closed while the dial was in flight.
		_ = conn.Close(websocket.StatusNormalClosure, "client shutdown")
		return
	}

	t.logger.Debug().Msg("websocket open")
	t.emit(TransportEvent{Kind: TransportOpened})

	go t.writeLoop(conn)

	for {
		_, frame, err := conn.Read(t.ctx)
		if err != nil {
			t.emit(TransportEvent{Kind: TransportClosed, Err: closeCause(t.ctx, err)})
			return
		}
		t.emit(TransportEvent{Kind: TransportFrame, Frame: frame})
	}
}

func (t *webSocketTransport) writeLoop(conn *websocket.Conn) {
	for {
		select {
		case <-t.ctx.Done():
			return
		case frame := <-t.sendq:
			writeCtx, cancel := context.WithTimeout(t.ctx, t.conf.WriteTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				// The failed write kills the connection; the read loop
				// surfaces the close.
				t.logger.Debug().Err(err).Msg("write failed")
				return
			}
		}
	}
}

// emit delivers an event unless the transport is already closed and
// nobody is draining.
func (t *webSocketTransport) emit(ev TransportEvent) {
	select {
	case t.events <- ev:
	case <-t.ctx.Done():
	}
}

// closeCause maps expected shutdown errors to nil so a clean close is
// reported without an error.
func closeCause(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return nil
	}
	return err
}
