package fins

import (
	"sync"
	"time"
)

// defaultWatchdogEvents is the Events() buffer used when the caller asks
// for a non-positive size.
const defaultWatchdogEvents = 16

// ConnectionEventType labels a connection transition.
type ConnectionEventType string

const (
	ConnectionEventConnected    ConnectionEventType = "connected"
	ConnectionEventDisconnected ConnectionEventType = "disconnected"
)

// ConnectionEvent records a single connect or disconnect transition.
type ConnectionEvent struct {
	Time      time.Time
	Type      ConnectionEventType
	Err       error         // cause, on disconnect
	Downtime  time.Duration // outage length, on reconnect
	Connected bool          // state after the transition
}

// ConnectionStats is a point-in-time view of connection health.
type ConnectionStats struct {
	Connected         bool
	LastConnected     time.Time
	LastDisconnected  time.Time
	CurrentDowntime   time.Duration
	TotalDowntime     time.Duration
	LastDisconnectErr error
}

// ConnectionWatchdog observes the client's connect and disconnect hooks
// and accumulates outage statistics. Each transition is also published on
// a buffered channel; when the buffer is full the event is dropped so the
// hooks never block the session.
type ConnectionWatchdog struct {
	events chan ConnectionEvent

	mu            sync.Mutex
	up            bool
	lastUp        time.Time
	lastDown      time.Time
	downSince     time.Time // zero while connected
	downTotal     time.Duration
	disconnectErr error
}

// NewConnectionWatchdog returns a watchdog whose Events() channel holds
// up to eventBuffer transitions. A non-positive eventBuffer selects the
// default of 16.
func NewConnectionWatchdog(eventBuffer int) *ConnectionWatchdog {
	if eventBuffer <= 0 {
		eventBuffer = defaultWatchdogEvents
	}
	return &ConnectionWatchdog{events: make(chan ConnectionEvent, eventBuffer)}
}

func (w *ConnectionWatchdog) Name() string { return "connection_watchdog" }

func (w *ConnectionWatchdog) Initialize(*Client) error { return nil }

// OnConnected closes the current outage window, if one is open, and
// publishes a connected event carrying its length.
func (w *ConnectionWatchdog) OnConnected(*Client) error {
	now := time.Now()

	w.mu.Lock()
	var outage time.Duration
	if !w.downSince.IsZero() {
		outage = now.Sub(w.downSince)
		w.downTotal += outage
		w.downSince = time.Time{}
	}
	w.up = true
	w.lastUp = now
	w.mu.Unlock()

	w.publish(ConnectionEvent{
		Time:      now,
		Type:      ConnectionEventConnected,
		Downtime:  outage,
		Connected: true,
	})
	return nil
}

// OnDisconnected opens an outage window and publishes a disconnected
// event carrying the cause.
func (w *ConnectionWatchdog) OnDisconnected(_ *Client, err error) error {
	now := time.Now()

	w.mu.Lock()
	w.up = false
	w.lastDown = now
	w.downSince = now
	w.disconnectErr = err
	w.mu.Unlock()

	w.publish(ConnectionEvent{
		Time: now,
		Type: ConnectionEventDisconnected,
		Err:  err,
	})
	return nil
}

// Events returns the transition channel.
func (w *ConnectionWatchdog) Events() <-chan ConnectionEvent { return w.events }

// Stats snapshots the accumulated connection health counters. While an
// outage is open its running length is reported as CurrentDowntime; it is
// folded into TotalDowntime on the next reconnect.
func (w *ConnectionWatchdog) Stats() ConnectionStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	stats := ConnectionStats{
		Connected:         w.up,
		LastConnected:     w.lastUp,
		LastDisconnected:  w.lastDown,
		TotalDowntime:     w.downTotal,
		LastDisconnectErr: w.disconnectErr,
	}
	if !w.up && !w.downSince.IsZero() {
		stats.CurrentDowntime = time.Since(w.downSince)
	}
	return stats
}

func (w *ConnectionWatchdog) publish(evt ConnectionEvent) {
	select {
	case w.events <- evt:
	default:
	}
}

var (
	_ Plugin           = (*ConnectionWatchdog)(nil)
	_ ConnectionPlugin = (*ConnectionWatchdog)(nil)
)
