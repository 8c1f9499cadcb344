// Package soundtrack owns the lifecycle of the streaming generative-music
// session and keeps its prompt blend synchronized with the latest district
// weights. It is a control layer: audio synthesis happens in the backend,
// playback in the sink. No call here blocks the render loop, and no
// failure escapes as a panic or error return the host must handle —
// callers observe State and Err instead.
package soundtrack

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/skytonelabs/skytone/pkg/audio/sink"
	"github.com/skytonelabs/skytone/pkg/musicrt"
)

// DialFunc opens a backend session. Tests substitute a fake.
type DialFunc func(ctx context.Context, apiKey string, cfg musicrt.ConnectConfig) (musicrt.Session, error)

// Config configures the controller.
type Config struct {
	// Connect is passed through to the backend dial.
	Connect musicrt.ConnectConfig `yaml:"connect,omitempty"`

	// Generation is sent once after every successful connect.
	Generation musicrt.GenerationConfig `yaml:"generation,omitempty"`

	// Dial overrides the backend dialer. Defaults to musicrt.Dial.
	Dial DialFunc `yaml:"-"`
}

// Controller maintains at most one live backend session and pushes
// prompt-blend updates to it. All methods are non-blocking and safe to
// call from the render loop; invalid transitions are logged and ignored.
type Controller struct {
	out sink.Sink
	cfg Config

	mu      sync.Mutex
	state   State
	err     error
	session musicrt.Session
	attempt string        // ID of the in-flight or live connect attempt
	stopCh  chan struct{} // closed when the current session ends

	// Latest unsent prompt blend. A newer blend replaces an unsent
	// older one; the sender goroutine drains this slot.
	pending     []musicrt.WeightedPrompt
	pendingKick chan struct{}
}

// New creates a controller that writes decoded audio to out.
func New(out sink.Sink, cfg Config) *Controller {
	if cfg.Dial == nil {
		cfg.Dial = musicrt.Dial
	}
	return &Controller{
		out:         out,
		cfg:         cfg,
		state:       StateDisconnected,
		pendingKick: make(chan struct{}, 1),
	}
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the cause recorded when the controller entered StateError,
// or nil.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Connect starts a session. It is idempotent: a no-op while connecting
// or already live. Errors surface through State/Err, never as a return
// value, and no automatic reconnect is attempted — call Connect again.
func (c *Controller) Connect(ctx context.Context, apiKey string) {
	c.mu.Lock()
	if c.state == StateConnecting || c.state.live() {
		c.mu.Unlock()
		slog.Debug("soundtrack: connect ignored", "state", c.state.String())
		return
	}
	attempt := uuid.NewString()
	c.state = StateConnecting
	c.err = nil
	c.attempt = attempt
	c.mu.Unlock()

	go c.dial(ctx, apiKey, attempt)
}

// dial runs the asynchronous part of Connect.
func (c *Controller) dial(ctx context.Context, apiKey string, attempt string) {
	sess, err := c.cfg.Dial(ctx, apiKey, c.cfg.Connect)

	c.mu.Lock()
	if c.attempt != attempt || c.state != StateConnecting {
		// Superseded by Close or a newer Connect.
		c.mu.Unlock()
		if sess != nil {
			sess.Close()
		}
		return
	}
	if err != nil {
		c.state = StateError
		c.err = err
		c.mu.Unlock()
		slog.Error("soundtrack: connect failed", "err", err)
		return
	}
	c.session = sess
	c.state = StateConnected
	c.stopCh = make(chan struct{})
	stopCh := c.stopCh
	c.mu.Unlock()

	if err := sess.SetMusicGenerationConfig(c.cfg.Generation); err != nil {
		slog.Warn("soundtrack: set generation config", "err", err)
	}

	go c.consume(sess)
	go c.sendPrompts(sess, stopCh)
	slog.Info("soundtrack: connected")
}

// UpdateWeightedPrompts records the newest prompt blend for delivery.
// Calls are not queued: an unsent older blend is replaced (last write
// wins). Ignored with a log line unless a session is live.
func (c *Controller) UpdateWeightedPrompts(prompts []musicrt.WeightedPrompt) {
	c.mu.Lock()
	if !c.state.live() {
		state := c.state
		c.mu.Unlock()
		slog.Debug("soundtrack: prompt update dropped", "state", state.String())
		return
	}
	c.pending = prompts
	c.mu.Unlock()

	select {
	case c.pendingKick <- struct{}{}:
	default:
	}
}

// sendPrompts drains the pending slot toward the session until the
// session ends.
func (c *Controller) sendPrompts(sess musicrt.Session, stopCh <-chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case <-c.pendingKick:
		}

		c.mu.Lock()
		prompts := c.pending
		c.pending = nil
		c.mu.Unlock()
		if prompts == nil {
			continue
		}

		if err := sess.SetWeightedPrompts(prompts); err != nil {
			c.fail(sess, err)
			return
		}
	}
}

// Play starts or resumes playback. Valid from connected or paused.
func (c *Controller) Play() {
	c.transition("play", []State{StateConnected, StatePaused}, StatePlaying, func(s musicrt.Session) error {
		return s.Play()
	})
}

// Pause suspends playback. Valid while playing.
func (c *Controller) Pause() {
	c.transition("pause", []State{StatePlaying}, StatePaused, func(s musicrt.Session) error {
		return s.Pause()
	})
}

// Stop halts playback but keeps the session. Valid while playing or
// paused.
func (c *Controller) Stop() {
	c.transition("stop", []State{StatePlaying, StatePaused}, StateConnected, func(s musicrt.Session) error {
		return s.Stop()
	})
}

// ResetContext asks the backend to forget its generation history, e.g.
// after the camera teleports. The session and playback state survive.
func (c *Controller) ResetContext() {
	c.mu.Lock()
	sess := c.session
	live := c.state.live()
	c.mu.Unlock()
	if !live || sess == nil {
		slog.Debug("soundtrack: reset context ignored: no live session")
		return
	}
	if err := sess.ResetContext(); err != nil {
		c.fail(sess, err)
	}
}

// transition runs op if the current state is one of from, then moves to
// to. Invalid transitions are logged and ignored.
func (c *Controller) transition(name string, from []State, to State, op func(musicrt.Session) error) {
	c.mu.Lock()
	ok := false
	for _, s := range from {
		if c.state == s {
			ok = true
			break
		}
	}
	if !ok || c.session == nil {
		state := c.state
		c.mu.Unlock()
		slog.Debug("soundtrack: invalid transition ignored", "op", name, "state", state.String())
		return
	}
	sess := c.session
	c.state = to
	c.mu.Unlock()

	if err := op(sess); err != nil {
		c.fail(sess, err)
	}
}

// consume forwards decoded audio from the session to the sink until the
// message stream ends.
func (c *Controller) consume(sess musicrt.Session) {
	for msg, err := range sess.Messages() {
		if err != nil {
			c.fail(sess, err)
			return
		}
		switch {
		case msg.ServerContent != nil:
			for _, chunk := range msg.ServerContent.AudioChunks {
				raw, err := base64.StdEncoding.DecodeString(chunk.Data)
				if err != nil {
					// Malformed payload: drop the chunk, keep the session.
					slog.Warn("soundtrack: dropping undecodable chunk", "err", err)
					continue
				}
				if err := c.out.Write(raw); err != nil {
					slog.Warn("soundtrack: sink write", "err", err)
				}
			}
		case msg.FilteredPrompt != nil:
			slog.Warn("soundtrack: prompt filtered by backend",
				"text", msg.FilteredPrompt.Text,
				"reason", msg.FilteredPrompt.FilteredReason)
		}
	}
}

// fail moves to StateError and tears the session down, unless the
// session has already been replaced or closed.
func (c *Controller) fail(sess musicrt.Session, err error) {
	c.mu.Lock()
	if c.session != sess {
		c.mu.Unlock()
		return
	}
	c.state = StateError
	c.err = err
	c.releaseLocked()
	c.mu.Unlock()

	slog.Error("soundtrack: session failed", "err", err)
	sess.Close()
}

// Close tears down any live session, best effort. Safe from any state;
// always completes. The controller returns to StateDisconnected and can
// Connect again.
func (c *Controller) Close() {
	c.mu.Lock()
	sess := c.session
	c.state = StateDisconnected
	c.err = nil
	c.attempt = "" // invalidates an in-flight dial
	c.releaseLocked()
	c.mu.Unlock()

	if sess == nil {
		return
	}
	if err := sess.Stop(); err != nil {
		slog.Warn("soundtrack: stop during teardown", "err", err)
	}
	if err := sess.Close(); err != nil {
		slog.Warn("soundtrack: close during teardown", "err", err)
	}
	slog.Info("soundtrack: closed")
}

// releaseLocked clears session bookkeeping. Caller holds c.mu.
func (c *Controller) releaseLocked() {
	c.session = nil
	c.pending = nil
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
}
