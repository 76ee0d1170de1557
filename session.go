package fins

// SessionState is the life-cycle state of a client session. The engine
// only observes the state; transitions are driven by the connection layer
// (dial, close, reconnect).
type SessionState int32

const (
	StateDisconnected SessionState = iota
	StateConnecting
	StateConnected
	StateClosing
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	}
	return "invalid"
}
