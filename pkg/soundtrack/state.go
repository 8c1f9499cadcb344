package soundtrack

// State is the lifecycle of the controller's backend session. Exactly
// one session is live at a time; reconnection always passes through
// StateConnecting again.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StatePlaying
	StatePaused
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	}
	return "unknown"
}

// live reports whether a backend session exists in this state.
func (s State) live() bool {
	switch s {
	case StateConnected, StatePlaying, StatePaused:
		return true
	}
	return false
}
