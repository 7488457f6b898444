package session

import (
	"slices"

	"github.com/bardlabs/minstrel/protocol"
)

// Events carries the callbacks a consumer registers with Subscribe. Nil
// fields are skipped during dispatch, so consumers fill in only what they
// care about. Callbacks run synchronously on the goroutine driving Tick
// and must not block.
type Events struct {
	// Connected fires when the transport finishes opening.
	Connected func()
	// Disconnected fires when the session returns to the disconnected
	// state. err is nil for a locally requested disconnect.
	Disconnected func(err error)
	// Authenticated fires when the authority accepts or rejects the
	// credentials. On success identity is populated and reason is empty;
	// on failure identity is zero and reason explains the rejection.
	Authenticated func(ok bool, identity Identity, reason string)
	// Error fires for misuse errors, connect failures, and error
	// envelopes from the authority.
	Error func(err error)
	// Message fires for every domain envelope the session does not
	// consume itself.
	Message func(env protocol.Envelope)
}

// Subscription ties a registered Events set to its consumer's lifetime.
// Closing it removes the callbacks, so consumers tear down their
// subscription together with themselves instead of pairing manual
// register/unregister calls.
type Subscription struct {
	s  *Session
	id uint64
}

// Close removes the subscription from the session. Safe to call more
// than once.
func (sub *Subscription) Close() {
	if sub.s == nil {
		return
	}
	subs := sub.s.subs
	for i := range subs {
		if subs[i].id == sub.id {
			sub.s.subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	sub.s = nil
}

type subscriber struct {
	id uint64
	ev Events
}

// Subscribe registers callbacks for session events. The returned
// Subscription must be closed when the consumer goes away.
func (s *Session) Subscribe(ev Events) *Subscription {
	s.subID++
	s.subs = append(s.subs, subscriber{id: s.subID, ev: ev})
	return &Subscription{s: s, id: s.subID}
}

// Each emit walks a snapshot of the subscriber list so callbacks may
// subscribe or unsubscribe mid-dispatch.
func (s *Session) emitConnected() {
	for _, sub := range slices.Clone(s.subs) {
		if sub.ev.Connected != nil {
			sub.ev.Connected()
		}
	}
}

func (s *Session) emitDisconnected(err error) {
	for _, sub := range slices.Clone(s.subs) {
		if sub.ev.Disconnected != nil {
			sub.ev.Disconnected(err)
		}
	}
}

func (s *Session) emitAuthenticated(ok bool, identity Identity, reason string) {
	for _, sub := range slices.Clone(s.subs) {
		if sub.ev.Authenticated != nil {
			sub.ev.Authenticated(ok, identity, reason)
		}
	}
}

func (s *Session) emitError(err error) {
	for _, sub := range slices.Clone(s.subs) {
		if sub.ev.Error != nil {
			sub.ev.Error(err)
		}
	}
}

func (s *Session) emitMessage(env protocol.Envelope) {
	for _, sub := range slices.Clone(s.subs) {
		if sub.ev.Message != nil {
			sub.ev.Message(env)
		}
	}
}
