// Package session implements the connection and authentication lifecycle
// of one client session against the game authority. A Session owns a
// single Transport at a time, sequences connect, authenticate, and
// authenticated traffic, and rejects operations that are invalid for its
// current state. It never reconnects on its own; reconnection is a policy
// the caller drives by issuing Connect again.
package session

import (
	"errors"
	"fmt"
	"maps"

	"github.com/bardlabs/minstrel/protocol"
	"github.com/rs/zerolog"
)

// Identity identifies the authenticated player. Populated on successful
// authentication and cleared on disconnect.
type Identity struct {
	PlayerID string
	Profile  map[string]any
}

// Session is the single source of truth for whether the client can talk
// to the authority right now. It is not safe for concurrent use: all
// methods, including Tick, must be called from the one goroutine that
// drives the client loop. Transport goroutines never touch the Session;
// they hand events over a channel that Tick drains.
type Session struct {
	dial      DialFunc
	transport Transport
	state     State
	serverURL string
	identity  Identity

	subs  []subscriber
	subID uint64

	droppedFrames uint64

	logger zerolog.Logger
}

// New creates a disconnected Session that dials transports with dial.
func New(dial DialFunc, logger zerolog.Logger) *Session {
	return &Session{
		dial:   dial,
		state:  StateDisconnected,
		logger: logger.With().Str("com", "session").Logger(),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Identity returns a copy of the authenticated player identity. The zero
// Identity is returned while not authenticated.
func (s *Session) Identity() Identity {
	return Identity{
		PlayerID: s.identity.PlayerID,
		Profile:  maps.Clone(s.identity.Profile),
	}
}

// DroppedFrames returns how many inbound frames were discarded because
// they failed to decode.
func (s *Session) DroppedFrames() uint64 {
	return s.droppedFrames
}

// Connect dials the authority at url and moves the session to the
// connecting state. The dial completes in the background; the session
// reports the outcome through the Connected callback or an Error
// callback on a later Tick. Fails with ErrAlreadyConnected unless the
// session is disconnected.
func (s *Session) Connect(url string) error {
	if s.state != StateDisconnected {
		return s.reject("connect", ErrAlreadyConnected)
	}

	s.serverURL = url
	s.transport = s.dial(url)
	s.state = StateConnecting
	s.logger.Info().Str("url", url).Msg("connecting")
	return nil
}

// Authenticate submits credentials to the authority and moves the
// session to the authenticating state. The verdict arrives as an
// auth_success or auth_failed envelope on a later Tick. Valid only while
// connected: fails with ErrNotConnected before the transport is open and
// with ErrAlreadyAuthenticated once authentication has started.
func (s *Session) Authenticate(username, password string) error {
	switch s.state {
	case StateDisconnected, StateConnecting:
		return s.reject("authenticate", ErrNotConnected)
	case StateAuthenticating, StateAuthenticated:
		return s.reject("authenticate", ErrAlreadyAuthenticated)
	}

	err := s.sendFrame(protocol.IntentAuthenticate, "", map[string]any{
		"username": username,
		"password": password,
	})
	if err != nil {
		s.emitError(err)
		return err
	}

	s.state = StateAuthenticating
	s.logger.Info().Str("username", username).Msg("authenticating")
	return nil
}

// Send delivers a domain envelope to the authority. Fire-and-forget: a
// nil return means the frame was queued, not that the authority received
// it. Fails with ErrNotAuthenticated unless the session is authenticated.
func (s *Session) Send(kind, text string, payload map[string]any) error {
	if s.state != StateAuthenticated {
		return s.reject("send", ErrNotAuthenticated)
	}

	if err := s.sendFrame(kind, text, payload); err != nil {
		s.emitError(err)
		return err
	}
	return nil
}

// Disconnect closes the transport and returns the session to the
// disconnected state, clearing any authenticated identity. No-op while
// already disconnected.
func (s *Session) Disconnect() {
	if s.state == StateDisconnected {
		return
	}

	s.discardTransport()
	s.identity = Identity{}
	s.state = StateDisconnected
	s.logger.Info().Msg("disconnected")
	s.emitDisconnected(nil)
}

// Tick drains every transport event that has arrived since the last call
// and processes them in receipt order. It never blocks; when no events
// are pending it returns immediately. All state transitions driven by the
// wire happen here.
func (s *Session) Tick() {
	for s.transport != nil {
		select {
		case ev := <-s.transport.Events():
			s.handleTransportEvent(ev)
		default:
			return
		}
	}
}

func (s *Session) handleTransportEvent(ev TransportEvent) {
	switch ev.Kind {
	case TransportOpened:
		if s.state != StateConnecting {
			s.logger.Warn().Str("state", s.state.String()).Msg("ignoring stale transport open")
			return
		}
		s.state = StateConnected
		s.logger.Info().Str("url", s.serverURL).Msg("transport open")
		s.emitConnected()

	case TransportOpenFailed:
		s.discardTransport()
		s.state = StateDisconnected
		err := fmt.Errorf("connect %s: %w", s.serverURL, ev.Err)
		s.logger.Error().Err(ev.Err).Str("url", s.serverURL).Msg("connect failed")
		s.emitError(err)

	case TransportClosed:
		s.discardTransport()
		s.identity = Identity{}
		s.state = StateDisconnected
		if ev.Err != nil {
			s.logger.Warn().Err(ev.Err).Msg("transport closed")
		} else {
			s.logger.Info().Msg("transport closed")
		}
		s.emitDisconnected(ev.Err)

	case TransportFrame:
		s.handleFrame(ev.Frame)
	}
}

// handleFrame decodes one inbound frame and routes it. Control kinds
// drive the state machine; everything else fans out to subscribers.
// Malformed frames are dropped and counted, never fatal.
func (s *Session) handleFrame(frame []byte) {
	env, err := protocol.Decode(frame)
	if err != nil {
		s.droppedFrames++
		s.logger.Warn().Err(err).Int("bytes", len(frame)).Msg("dropping malformed frame")
		return
	}

	switch env.Kind {
	case protocol.KindAuthSuccess:
		s.handleAuthSuccess(env)
	case protocol.KindAuthFailed:
		s.handleAuthFailed(env)
	case protocol.KindError:
		text := env.Text
		if text == "" {
			if v, ok := env.Payload["error"].(string); ok {
				text = v
			}
		}
		s.logger.Warn().Str("error", text).Msg("authority reported error")
		s.emitError(errors.New(text))
		s.emitMessage(env)
	default:
		s.emitMessage(env)
	}
}

func (s *Session) handleAuthSuccess(env protocol.Envelope) {
	if s.state != StateAuthenticating {
		s.logger.Warn().Str("state", s.state.String()).Msg("ignoring unexpected auth_success")
		return
	}

	id := protocol.DecodeAuthSuccess(env)
	s.identity = Identity{PlayerID: id.PlayerID, Profile: id.Player}
	s.state = StateAuthenticated
	s.logger.Info().Str("player_id", id.PlayerID).Msg("authenticated")
	s.emitAuthenticated(true, s.Identity(), "")
}

func (s *Session) handleAuthFailed(env protocol.Envelope) {
	if s.state != StateAuthenticating {
		s.logger.Warn().Str("state", s.state.String()).Msg("ignoring unexpected auth_failed")
		return
	}

	reason := env.Text
	if reason == "" {
		if v, ok := env.Payload["error"].(string); ok {
			reason = v
		}
	}
	s.state = StateConnected
	s.logger.Warn().Str("reason", reason).Msg("authentication rejected")
	s.emitAuthenticated(false, Identity{}, reason)
}

// sendFrame encodes and queues one outbound envelope.
func (s *Session) sendFrame(kind, text string, payload map[string]any) error {
	frame, err := protocol.Encode(kind, text, payload)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", kind, err)
	}
	if err := s.transport.Send(frame); err != nil {
		return fmt.Errorf("send %s frame: %w", kind, err)
	}
	return nil
}

// reject reports a misuse error both synchronously and as an error event,
// leaving state untouched.
func (s *Session) reject(op string, err error) error {
	s.logger.Warn().Str("op", op).Str("state", s.state.String()).Err(err).Msg("operation rejected")
	s.emitError(err)
	return err
}

func (s *Session) discardTransport() {
	if s.transport != nil {
		_ = s.transport.Close()
		s.transport = nil
	}
}
