package activity

import (
	"github.com/bardlabs/minstrel/protocol"
	"github.com/rs/zerolog"
)

// DefaultPollInterval is how often the synchronizer asks the authority
// for a fresh snapshot while an activity runs, in seconds.
const DefaultPollInterval = 1.0

// Phase is the synchronizer's lifecycle phase.
type Phase int

const (
	// PhaseIdle means no activity is tracked.
	PhaseIdle Phase = iota
	// PhaseRunning means an activity is live: local time advances and
	// the authority is polled on the poll interval.
	PhaseRunning
	// PhaseAwaitingConfirm means completion was reported to the
	// authority and the synchronizer is waiting for the confirmation
	// envelope before tearing the activity down.
	PhaseAwaitingConfirm
)

// String returns a string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseAwaitingConfirm:
		return "awaiting_confirm"
	default:
		return "unknown"
	}
}

// Sender delivers outbound envelopes to the authority. Implemented by
// session.Session; sends are fire-and-forget.
type Sender interface {
	Send(kind, text string, payload map[string]any) error
}

// Notifications are the callbacks the synchronizer fires toward the
// presentation layer. Nil fields are skipped. Callbacks receive value
// copies and run synchronously on the tick goroutine.
type Notifications struct {
	// Progress fires whenever the displayed session changes: on start,
	// on every local tick, and on every applied snapshot.
	Progress func(s Session)
	// Completed fires once the authority confirms completion, after the
	// session has been torn down.
	Completed func(final Session, rewards protocol.Rewards)
}

// Config tunes a Synchronizer. Zero values fall back to defaults.
type Config struct {
	// PollInterval is the snapshot poll cadence in seconds.
	PollInterval float64
}

// Synchronizer drives at most one timed activity at a time. It combines
// locally advanced elapsed time with authoritative snapshots: elapsed
// time ticks locally for smooth display, while progress, completion, and
// rewards only ever come from the authority.
//
// Like the session it feeds off, a Synchronizer is not safe for
// concurrent use; all methods belong to the single tick goroutine.
type Synchronizer struct {
	sender   Sender
	notify   Notifications
	interval float64

	phase   Phase
	session Session
	clock   float64 // seconds since the last poll

	start Point
	end   Point

	logger zerolog.Logger
}

// NewSynchronizer creates an idle synchronizer that sends polls and
// completion requests through sender.
func NewSynchronizer(sender Sender, notify Notifications, conf Config, logger zerolog.Logger) *Synchronizer {
	if conf.PollInterval <= 0 {
		conf.PollInterval = DefaultPollInterval
	}
	return &Synchronizer{
		sender:   sender,
		notify:   notify,
		interval: conf.PollInterval,
		phase:    PhaseIdle,
		logger:   logger.With().Str("com", "activity").Logger(),
	}
}

// Phase returns the current lifecycle phase.
func (s *Synchronizer) Phase() Phase {
	return s.phase
}

// Active reports whether an activity is being tracked.
func (s *Synchronizer) Active() bool {
	return s.phase != PhaseIdle
}

// Session returns a copy of the tracked activity, if any.
func (s *Synchronizer) Session() (Session, bool) {
	if s.phase == PhaseIdle {
		return Session{}, false
	}
	return s.session, true
}

// SetAnchors fixes the visual start and end positions applied to the
// current and future activities.
func (s *Synchronizer) SetAnchors(start, end Point) {
	s.start = start
	s.end = end
	if s.phase != PhaseIdle {
		s.session.Start = start
		s.session.End = end
	}
}

// HandleEnvelope routes one inbound envelope. It returns true if the
// envelope was consumed by the synchronizer, false if the kind is not
// activity-related.
func (s *Synchronizer) HandleEnvelope(env protocol.Envelope) bool {
	switch env.Kind {
	case protocol.KindExerciseState:
		s.handleState(env)
		return true
	case protocol.KindExerciseComplete:
		s.handleComplete(env)
		return true
	default:
		return false
	}
}

// Tick advances the activity by delta seconds of wall time. While
// running, elapsed time accrues locally and the poll clock fires a
// snapshot request each time it crosses the poll interval. Progress
// itself is never advanced locally.
func (s *Synchronizer) Tick(delta float64) {
	if s.phase != PhaseRunning || delta <= 0 {
		return
	}

	s.session.ElapsedSeconds += delta

	// The local timer can cross the finish line before the next
	// authoritative snapshot does.
	if s.session.ElapsedSeconds >= s.session.DurationSeconds {
		s.beginCompletion()
		return
	}

	s.clock += delta
	if s.clock >= s.interval {
		s.clock = 0
		s.poll()
	}

	s.emitProgress()
}

// Cancel abandons the tracked activity without telling the authority;
// the authority times abandoned activities out on its own. No-op while
// idle.
func (s *Synchronizer) Cancel() {
	if s.phase == PhaseIdle {
		return
	}
	s.logger.Info().Str("label", s.session.Label).Msg("activity cancelled")
	s.reset()
}

// handleState applies an exercise_state envelope: a nested session
// record (re)starts the activity, a top-level record starts it only when
// idle and otherwise acts as a partial snapshot.
func (s *Synchronizer) handleState(env protocol.Envelope) {
	start, nested := protocol.DecodeActivityStart(env)

	if nested || s.phase == PhaseIdle {
		s.startActivity(start)
		return
	}

	if s.phase == PhaseAwaitingConfirm {
		// Completion already reported; stale snapshots no longer matter.
		s.logger.Debug().Msg("ignoring snapshot while awaiting completion confirm")
		return
	}

	s.applySnapshot(protocol.DecodeActivitySnapshot(env))
}

// startActivity replaces any tracked activity with a fresh one. At most
// one activity is live per connection; the authority cancels the old one
// server-side when it starts a new one.
func (s *Synchronizer) startActivity(start protocol.ActivityStart) {
	if s.phase != PhaseIdle {
		s.logger.Info().Str("old", s.session.Label).Str("new", start.Label).Msg("replacing activity")
	}

	s.session = Session{
		Label:           start.Label,
		DurationSeconds: start.DurationSeconds,
		ElapsedSeconds:  start.ElapsedSeconds,
		ProgressPercent: clamp(start.ProgressPercent, 0, 100),
		Complete:        start.Complete,
		Start:           s.start,
		End:             s.end,
	}
	s.phase = PhaseRunning
	s.clock = 0

	s.logger.Info().
		Str("label", s.session.Label).
		Float64("duration", s.session.DurationSeconds).
		Float64("elapsed", s.session.ElapsedSeconds).
		Msg("activity started")

	// The authority may hand over an already finished activity, or one
	// with no duration at all, which is complete by definition.
	if s.session.Complete || s.session.ElapsedSeconds >= s.session.DurationSeconds {
		s.beginCompletion()
		return
	}

	s.emitProgress()
}

// applySnapshot overwrites the local view with whatever fields the
// authority sent. Missing fields keep their previous values; a partial
// snapshot never regresses known state.
func (s *Synchronizer) applySnapshot(snap protocol.ActivitySnapshot) {
	if snap.ProgressPercent != nil {
		s.session.ProgressPercent = clamp(*snap.ProgressPercent, 0, 100)
	}
	if snap.ElapsedSeconds != nil {
		s.session.ElapsedSeconds = *snap.ElapsedSeconds
	}
	if snap.Complete != nil {
		s.session.Complete = *snap.Complete
	}

	// An explicit complete flag wins even when the same snapshot still
	// reports progress below 100.
	if s.session.Complete {
		s.beginCompletion()
		return
	}

	s.emitProgress()
}

// beginCompletion snaps progress to done, stops local advancement and
// polling, and reports completion to the authority. The activity stays
// tracked until the authority confirms with an exercise_complete
// envelope; rewards live server-side, so completion is a handshake, not
// a local event.
func (s *Synchronizer) beginCompletion() {
	s.session.ProgressPercent = 100
	s.session.Complete = true
	s.phase = PhaseAwaitingConfirm

	s.logger.Info().Str("label", s.session.Label).Msg("activity finished, requesting completion")
	if err := s.sender.Send(protocol.IntentExercise, protocol.ExerciseActionComplete, nil); err != nil {
		s.logger.Error().Err(err).Msg("completion request failed")
	}

	s.emitProgress()
}

// handleComplete tears the activity down on the authority's
// confirmation and surfaces the rewards.
func (s *Synchronizer) handleComplete(env protocol.Envelope) {
	if s.phase == PhaseIdle {
		s.logger.Warn().Msg("ignoring completion confirm with no activity")
		return
	}

	final := s.session
	final.ProgressPercent = 100
	final.Complete = true
	rewards := protocol.DecodeRewards(env)

	s.logger.Info().
		Str("label", final.Label).
		Int("xp", rewards.XPGained).
		Int("gold", rewards.GoldGained).
		Msg("activity confirmed complete")
	s.reset()

	if s.notify.Completed != nil {
		s.notify.Completed(final, rewards)
	}
}

func (s *Synchronizer) poll() {
	if err := s.sender.Send(protocol.IntentExercise, protocol.ExerciseActionCheck, nil); err != nil {
		s.logger.Warn().Err(err).Msg("poll request failed")
	}
}

func (s *Synchronizer) reset() {
	s.session = Session{}
	s.phase = PhaseIdle
	s.clock = 0
}

func (s *Synchronizer) emitProgress() {
	if s.notify.Progress != nil {
		s.notify.Progress(s.session)
	}
}
