// Package client assembles the session, protocol, and activity layers into
// the playable minstrel client. It owns the typed intent catalogue the UI
// calls and routes inbound activity envelopes into the synchronizer.
package client

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/bardlabs/minstrel/activity"
	"github.com/bardlabs/minstrel/config"
	"github.com/bardlabs/minstrel/protocol"
	"github.com/bardlabs/minstrel/session"
)

// Client is the high-level game client. Like the layers underneath it, it is
// not safe for concurrent use; drive it from a single goroutine.
type Client struct {
	conf   *config.Config
	sess   *session.Session
	sync   *activity.Synchronizer
	logger zerolog.Logger
}

// New builds a client that dials the authority over WebSocket using the
// configured timeouts.
func New(conf *config.Config, notify activity.Notifications, logger zerolog.Logger) *Client {
	dial := session.WebSocketDialer(session.WebSocketConfig{
		DialTimeout:  conf.DialTimeout,
		WriteTimeout: conf.WriteTimeout,
		SendQueue:    conf.SendQueue,
	}, logger)
	return NewWithDialer(conf, dial, notify, logger)
}

// NewWithDialer builds a client on a caller-supplied transport factory.
func NewWithDialer(conf *config.Config, dial session.DialFunc, notify activity.Notifications, logger zerolog.Logger) *Client {
	c := &Client{
		conf:   conf,
		logger: logger.With().Str("com", "client").Logger(),
	}
	c.sess = session.New(dial, logger)
	c.sync = activity.NewSynchronizer(c.sess, notify, activity.Config{PollInterval: conf.PollInterval}, logger)

	// The synchronizer reads activity envelopes as they fan out to
	// subscribers; a drop of the connection abandons the activity.
	c.sess.Subscribe(session.Events{
		Message:      func(env protocol.Envelope) { c.sync.HandleEnvelope(env) },
		Disconnected: func(err error) { c.sync.Cancel() },
	})

	return c
}

// --- Lifecycle Methods ---

// Connect dials the configured server URL.
func (c *Client) Connect() error {
	return c.sess.Connect(c.conf.ServerURL)
}

// Authenticate submits credentials over the open connection.
func (c *Client) Authenticate(username, password string) error {
	return c.sess.Authenticate(username, password)
}

// Disconnect tears down the connection. The session's disconnect event
// cancels any running activity through the subscription wired in New.
func (c *Client) Disconnect() {
	c.sess.Disconnect()
}

// Tick pumps pending connection events and advances the activity clock by
// delta. Call it on every frame of the driving loop.
func (c *Client) Tick(delta time.Duration) {
	c.sess.Tick()
	c.sync.Tick(delta.Seconds())
}

// Subscribe registers UI callbacks for session events.
func (c *Client) Subscribe(ev session.Events) *session.Subscription {
	return c.sess.Subscribe(ev)
}

// --- State Accessors ---

func (c *Client) State() session.State {
	return c.sess.State()
}

func (c *Client) Identity() session.Identity {
	return c.sess.Identity()
}

func (c *Client) DroppedFrames() uint64 {
	return c.sess.DroppedFrames()
}

// Activity returns a copy of the running activity, if any.
func (c *Client) Activity() (activity.Session, bool) {
	return c.sync.Session()
}

func (c *Client) ActivityPhase() activity.Phase {
	return c.sync.Phase()
}

// SetAnchors pins the world positions the activity animates between.
func (c *Client) SetAnchors(start, end activity.Point) {
	c.sync.SetAnchors(start, end)
}

// CancelActivity abandons the running activity without telling the
// authority. The authority's timer keeps running; only this client stops
// following it.
func (c *Client) CancelActivity() {
	c.sync.Cancel()
}

// --- Intent Methods ---

// Chat sends free-form text to the authority's narrative engine.
func (c *Client) Chat(text string) error {
	return c.sess.Send(protocol.IntentChat, text, nil)
}

// Travel asks to move to the named location. Reaching it usually starts an
// activity, which arrives as an exercise_state envelope.
func (c *Client) Travel(destination string) error {
	return c.sess.Send(protocol.IntentTravel, destination, nil)
}

// CheckExercise requests a progress snapshot outside the regular poll
// cadence.
func (c *Client) CheckExercise() error {
	return c.sess.Send(protocol.IntentExercise, protocol.ExerciseActionCheck, nil)
}

// CompleteExercise claims the running activity is done. The synchronizer
// sends this on its own when the timer runs out; the method exists for the
// explicit /complete command.
func (c *Client) CompleteExercise() error {
	return c.sess.Send(protocol.IntentExercise, protocol.ExerciseActionComplete, nil)
}

// World requests the world map.
func (c *Client) World() error {
	return c.sess.Send(protocol.IntentWorld, "", nil)
}

// Location requests the current location's description.
func (c *Client) Location() error {
	return c.sess.Send(protocol.IntentLocation, "", nil)
}

// PlayerState requests the player sheet.
func (c *Client) PlayerState() error {
	return c.sess.Send(protocol.IntentPlayer, "", nil)
}

// Inventory requests the inventory listing.
func (c *Client) Inventory() error {
	return c.sess.Send(protocol.IntentInventory, "", nil)
}

// Status requests the compact status line.
func (c *Client) Status() error {
	return c.sess.Send(protocol.IntentStatus, "", nil)
}

// Perform submits a performance with a score in [0, 1].
func (c *Client) Perform(score float64) error {
	return c.sess.Send(protocol.IntentPerform, "", map[string]any{"score": score})
}

// Collect picks up a numbered melody segment at the current location.
func (c *Client) Collect(segmentID int) error {
	return c.sess.Send(protocol.IntentCollect, "", map[string]any{"segment_id": segmentID})
}

// FinalQuestCheck asks whether the final quest can be attempted yet.
func (c *Client) FinalQuestCheck() error {
	return c.sess.Send(protocol.IntentFinalQuest, "check", nil)
}

// FinalQuestAttempt attempts the final quest.
func (c *Client) FinalQuestAttempt() error {
	return c.sess.Send(protocol.IntentFinalQuest, "attempt", nil)
}
