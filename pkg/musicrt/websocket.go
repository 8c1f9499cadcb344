package musicrt

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// DefaultEndpoint is the production music backend.
	DefaultEndpoint = "wss://music.skytone.app/v1/realtime"

	// DefaultModel is used when ConnectConfig.Model is empty.
	DefaultModel = "skytone-music-001"

	// setupTimeout bounds the wait for the setup acknowledgment.
	setupTimeout = 15 * time.Second
)

// ConnectConfig configures a new session.
type ConnectConfig struct {
	// Endpoint is the WebSocket URL. Defaults to DefaultEndpoint.
	Endpoint string

	// Model selects the generation model. Defaults to DefaultModel.
	Model string

	// HandshakeTimeout bounds the WebSocket dial. Defaults to 15s.
	HandshakeTimeout time.Duration
}

// Dial opens a session: it connects, sends the setup message, and waits
// for the backend's acknowledgment before returning. The API key is
// used for the connection handshake only and is not retained.
func Dial(ctx context.Context, apiKey string, config ConnectConfig) (Session, error) {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = setupTimeout
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+apiKey)

	dialer := websocket.Dialer{HandshakeTimeout: config.HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, config.Endpoint, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("musicrt: connect rejected (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("musicrt: connect: %w", err)
	}

	s := &wsSession{
		conn:    conn,
		closeCh: make(chan struct{}),
		msgCh:   make(chan msgOrError, 64),
	}

	if err := s.send(clientMessage{Setup: &setupPayload{Model: config.Model}}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("musicrt: setup: %w", err)
	}
	if err := s.awaitSetup(ctx, config.HandshakeTimeout); err != nil {
		conn.Close()
		return nil, err
	}

	go s.readLoop()
	return s, nil
}

// wsSession is the WebSocket-backed Session implementation.
type wsSession struct {
	conn      *websocket.Conn
	closeCh   chan struct{}
	msgCh     chan msgOrError
	closeOnce sync.Once
	writeMu   sync.Mutex

	mu        sync.Mutex
	sessionID string
}

type msgOrError struct {
	msg *ServerMessage
	err error
}

// awaitSetup reads messages synchronously until setupComplete arrives.
func (s *wsSession) awaitSetup(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	s.conn.SetReadDeadline(deadline)
	defer s.conn.SetReadDeadline(time.Time{})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("musicrt: waiting for setup ack: %w", err)
		}
		msg, err := parseMessage(raw)
		if err != nil {
			slog.Warn("musicrt: discarding unparseable message during setup", "err", err)
			continue
		}
		if msg.SetupComplete != nil {
			s.mu.Lock()
			s.sessionID = msg.SetupComplete.SessionID
			s.mu.Unlock()
			return nil
		}
		// Anything else before the ack is unexpected but harmless.
		slog.Debug("musicrt: message before setup ack", "raw", truncate(raw, 200))
	}
}

// SessionID returns the backend-assigned session ID.
func (s *wsSession) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *wsSession) SetWeightedPrompts(prompts []WeightedPrompt) error {
	return s.send(clientMessage{ClientContent: &clientContent{WeightedPrompts: prompts}})
}

func (s *wsSession) SetMusicGenerationConfig(cfg GenerationConfig) error {
	return s.send(clientMessage{MusicGenerationConfig: &cfg})
}

func (s *wsSession) Play() error  { return s.send(clientMessage{PlaybackControl: controlPlay}) }
func (s *wsSession) Pause() error { return s.send(clientMessage{PlaybackControl: controlPause}) }
func (s *wsSession) Stop() error  { return s.send(clientMessage{PlaybackControl: controlStop}) }

func (s *wsSession) ResetContext() error {
	return s.send(clientMessage{PlaybackControl: controlResetContext})
}

// Messages yields server messages until the session closes or a read
// fails.
func (s *wsSession) Messages() iter.Seq2[*ServerMessage, error] {
	return func(yield func(*ServerMessage, error) bool) {
		for {
			select {
			case <-s.closeCh:
				return
			case item, ok := <-s.msgCh:
				if !ok {
					return
				}
				if !yield(item.msg, item.err) {
					return
				}
				if item.err != nil {
					return
				}
			}
		}
	}
}

func (s *wsSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		err = s.conn.Close()
	})
	return err
}

// send writes one client message. Safe for concurrent use.
func (s *wsSession) send(msg clientMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		if raw, err := json.Marshal(msg); err == nil {
			slog.Debug("musicrt: send", "msg", truncate(raw, 300))
		}
	}
	return s.conn.WriteJSON(msg)
}

// readLoop pumps server messages into msgCh until the connection dies.
func (s *wsSession) readLoop() {
	defer close(s.msgCh)

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closeCh:
			case s.msgCh <- msgOrError{err: fmt.Errorf("musicrt: read: %w", err)}:
			}
			return
		}

		msg, err := parseMessage(raw)
		if err != nil {
			select {
			case <-s.closeCh:
				return
			case s.msgCh <- msgOrError{err: err}:
			}
			continue
		}

		select {
		case <-s.closeCh:
			return
		case s.msgCh <- msgOrError{msg: msg}:
		}
	}
}

// parseMessage decodes a server envelope.
func parseMessage(raw []byte) (*ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("musicrt: parse: %w", err)
	}
	msg.Raw = raw
	return &msg, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

var _ Session = (*wsSession)(nil)
