package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/bardlabs/minstrel/activity"
	"github.com/bardlabs/minstrel/client"
	"github.com/bardlabs/minstrel/config"
	"github.com/bardlabs/minstrel/protocol"
	"github.com/bardlabs/minstrel/session"
)

// TestMain ensures no goroutine leaks across all tests in this package
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Frames the stub authority speaks. The shapes mirror the real server's
// wire contract.
const (
	welcomeFrame      = `{"type":"connected","content":"Welcome to ResoLute. Please log in."}`
	authGrantedFrame  = `{"type":"auth_success","content":"Welcome back, bard!","data":{"player_id":"p1","player":{"name":"bard","level":2,"xp":10,"gold":30}}}`
	authRejectedFrame = `{"type":"auth_failed","content":"Invalid credentials"}`
	mentorFrame       = `{"type":"response","content":"Keep practicing, young bard."}`
	arrivalFrame      = `{"type":"location_update","content":"You arrive at Harmony Hall.","data":{"available_destinations":["Rhythm Road"]}}`
	practiceFrame     = `{"type":"exercise_state","content":"Your mentor hands you sheet music for Scales.","data":{"session":{"exercise_name":"Scales","duration_seconds":600,"elapsed_seconds":0,"progress_percent":0,"is_complete":false}}}`
	snapshotHalfFrame = `{"type":"exercise_state","content":"","data":{"progress_percent":50,"elapsed_seconds":300,"is_complete":false}}`
	snapshotDoneFrame = `{"type":"exercise_state","content":"","data":{"progress_percent":100,"elapsed_seconds":600,"is_complete":true}}`
	rewardFrame       = `{"type":"exercise_complete","content":"Scales mastered!","data":{"xp_gained":40,"gold_gained":12,"skill_bonus":"technique","skill_amount":1}}`
)

// authority is an in-process stand-in for the game server. It accepts one
// WebSocket per connection attempt and answers scripted gameplay: the
// second progress poll reports the practice finished.
type authority struct {
	srv *httptest.Server

	// dropOnCheck makes the authority kill the connection on the first
	// progress poll, simulating a server crash mid-practice. Set it
	// before any traffic.
	dropOnCheck bool

	mu       sync.Mutex
	received []protocol.Envelope
	checks   int
}

func newAuthority(t *testing.T) *authority {
	a := &authority{}
	a.srv = httptest.NewServer(http.HandlerFunc(a.handle))
	t.Cleanup(a.srv.Close)
	return a
}

func (a *authority) wsURL() string {
	return "ws" + strings.TrimPrefix(a.srv.URL, "http") + "/ws"
}

func (a *authority) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	if !a.send(ctx, conn, welcomeFrame) {
		return
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		env, err := protocol.Decode(data)
		if err != nil {
			continue
		}
		a.record(env)
		if !a.dispatch(ctx, conn, env) {
			return
		}
	}
}

func (a *authority) dispatch(ctx context.Context, conn *websocket.Conn, env protocol.Envelope) bool {
	switch {
	case env.Kind == protocol.IntentAuthenticate:
		if env.Payload["username"] == "bard" && env.Payload["password"] == "music456" {
			return a.send(ctx, conn, authGrantedFrame)
		}
		return a.send(ctx, conn, authRejectedFrame)

	case env.Kind == protocol.IntentChat:
		return a.send(ctx, conn, mentorFrame)

	case env.Kind == protocol.IntentTravel:
		return a.send(ctx, conn, arrivalFrame) && a.send(ctx, conn, practiceFrame)

	case env.Kind == protocol.IntentExercise && env.Text == protocol.ExerciseActionCheck:
		if a.dropOnCheck {
			conn.CloseNow()
			return false
		}
		a.mu.Lock()
		a.checks++
		done := a.checks >= 2
		a.mu.Unlock()
		if done {
			return a.send(ctx, conn, snapshotDoneFrame)
		}
		return a.send(ctx, conn, snapshotHalfFrame)

	case env.Kind == protocol.IntentExercise && env.Text == protocol.ExerciseActionComplete:
		return a.send(ctx, conn, rewardFrame)
	}
	return true
}

func (a *authority) send(ctx context.Context, conn *websocket.Conn, frame string) bool {
	return conn.Write(ctx, websocket.MessageText, []byte(frame)) == nil
}

func (a *authority) record(env protocol.Envelope) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.received = append(a.received, env)
}

// count reports how many received frames match kind and text.
func (a *authority) count(kind, text string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, env := range a.received {
		if env.Kind == kind && env.Text == text {
			n++
		}
	}
	return n
}

func testConf(url string) *config.Config {
	conf := &config.Config{ServerURL: url, PollInterval: 0.05}
	conf.ApplyDefaults()
	return conf
}

// pump drives the client's cooperative tick until cond holds. Each tick
// advances the synthetic clock far enough to cross the poll interval.
func pump(t *testing.T, c *client.Client, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c.Tick(60 * time.Millisecond)
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// TestGameplay_FullSession drives the complete flow over a real WebSocket:
// connect, authenticate, travel into a practice, poll progress, and run
// the completion handshake through to the reward.
func TestGameplay_FullSession(t *testing.T) {
	auth := newAuthority(t)

	var rewards []protocol.Rewards
	notify := activity.Notifications{
		Completed: func(final activity.Session, r protocol.Rewards) {
			rewards = append(rewards, r)
		},
	}

	c := client.New(testConf(auth.wsURL()), notify, zerolog.Nop())
	defer c.Disconnect()

	var kinds []string
	c.Subscribe(session.Events{Message: func(env protocol.Envelope) {
		kinds = append(kinds, env.Kind)
	}})

	if err := c.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	pump(t, c, "connection", func() bool { return c.State() == session.StateConnected })

	if err := c.Authenticate("bard", "music456"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	pump(t, c, "authentication", func() bool { return c.State() == session.StateAuthenticated })

	if got := c.Identity().PlayerID; got != "p1" {
		t.Errorf("expected player id 'p1', got %q", got)
	}

	if err := c.Chat("hello"); err != nil {
		t.Fatalf("chat: %v", err)
	}
	pump(t, c, "mentor reply", func() bool { return slices.Contains(kinds, "response") })

	if err := c.Travel("Harmony Hall"); err != nil {
		t.Fatalf("travel: %v", err)
	}
	pump(t, c, "practice start", func() bool { return c.ActivityPhase() == activity.PhaseRunning })

	if act, ok := c.Activity(); !ok || act.Label != "Scales" {
		t.Fatalf("expected the Scales practice running, got %+v (ok=%v)", act, ok)
	}

	pump(t, c, "completion handshake", func() bool {
		return len(rewards) == 1 && c.ActivityPhase() == activity.PhaseIdle
	})

	if rewards[0].XPGained != 40 || rewards[0].GoldGained != 12 {
		t.Errorf("expected rewards 40xp/12g, got %+v", rewards[0])
	}
	if got := auth.count("exercise", "complete"); got != 1 {
		t.Errorf("expected exactly 1 completion request, got %d", got)
	}
	if got := auth.count("exercise", "check"); got < 2 {
		t.Errorf("expected at least 2 progress polls, got %d", got)
	}
	if !slices.Contains(kinds, "exercise_state") {
		t.Error("expected practice envelopes to reach plain subscribers too")
	}

	c.Disconnect()
	if c.State() != session.StateDisconnected {
		t.Errorf("expected disconnected state, got %v", c.State())
	}
}

func TestGameplay_RejectedLogin(t *testing.T) {
	auth := newAuthority(t)

	c := client.New(testConf(auth.wsURL()), activity.Notifications{}, zerolog.Nop())
	defer c.Disconnect()

	var reasons []string
	c.Subscribe(session.Events{Authenticated: func(ok bool, _ session.Identity, reason string) {
		if !ok {
			reasons = append(reasons, reason)
		}
	}})

	if err := c.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	pump(t, c, "connection", func() bool { return c.State() == session.StateConnected })

	if err := c.Authenticate("bard", "wrongpass"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	pump(t, c, "rejection", func() bool { return len(reasons) == 1 })

	if reasons[0] != "Invalid credentials" {
		t.Errorf("expected the server's reason, got %q", reasons[0])
	}
	if c.State() != session.StateConnected {
		t.Errorf("expected to stay connected for another try, got %v", c.State())
	}
	if c.Identity().PlayerID != "" {
		t.Error("expected no identity after a rejected login")
	}
}

// TestGameplay_ServerDropMidPractice kills the connection from the server
// side in the middle of a practice and verifies the client lands back in
// disconnected with the practice silently abandoned.
func TestGameplay_ServerDropMidPractice(t *testing.T) {
	auth := newAuthority(t)
	auth.dropOnCheck = true

	c := client.New(testConf(auth.wsURL()), activity.Notifications{}, zerolog.Nop())
	defer c.Disconnect()

	var drops []error
	c.Subscribe(session.Events{Disconnected: func(err error) {
		drops = append(drops, err)
	}})

	if err := c.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	pump(t, c, "connection", func() bool { return c.State() == session.StateConnected })

	if err := c.Authenticate("bard", "music456"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	pump(t, c, "authentication", func() bool { return c.State() == session.StateAuthenticated })

	if err := c.Travel("Harmony Hall"); err != nil {
		t.Fatalf("travel: %v", err)
	}
	pump(t, c, "practice start", func() bool { return c.ActivityPhase() == activity.PhaseRunning })

	pump(t, c, "server drop", func() bool { return c.State() == session.StateDisconnected })

	if c.ActivityPhase() != activity.PhaseIdle {
		t.Errorf("expected the practice abandoned after the drop, got %v", c.ActivityPhase())
	}
	if _, ok := c.Activity(); ok {
		t.Error("expected no activity after the drop")
	}
	if len(drops) != 1 || drops[0] == nil {
		t.Errorf("expected one abnormal disconnect event, got %v", drops)
	}
	if got := auth.count("exercise", "complete"); got != 0 {
		t.Errorf("abandonment must be silent, got %d complete frames", got)
	}
}
