package fins

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testPlugin struct {
	name        string
	initialized bool
	initErr     error
}

func (p *testPlugin) Name() string { return p.name }

func (p *testPlugin) Initialize(*Client) error {
	if p.initErr != nil {
		return p.initErr
	}
	p.initialized = true
	return nil
}

type testConnectionPlugin struct {
	testPlugin
	connected    int
	disconnected int
	lastErr      error
}

func (p *testConnectionPlugin) OnConnected(*Client) error {
	p.connected++
	return nil
}

func (p *testConnectionPlugin) OnDisconnected(_ *Client, err error) error {
	p.disconnected++
	p.lastErr = err
	return nil
}

func TestPluginRegistration(t *testing.T) {
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	p := &testPlugin{name: "test"}
	err := c.Use(p)
	assert.Nil(t, err)
	assert.True(t, p.initialized)
}

func TestPluginDuplicateName(t *testing.T) {
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	assert.Nil(t, c.Use(&testPlugin{name: "dup"}))

	err := c.Use(&testPlugin{name: "dup"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestPluginInvalid(t *testing.T) {
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	err := c.Use(nil)
	assert.Error(t, err)

	err = c.Use(&testPlugin{name: ""})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestPluginInitializeFailure(t *testing.T) {
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	p := &testPlugin{name: "failing", initErr: fmt.Errorf("nope")}
	err := c.Use(p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nope")

	// A failed initialize releases the name for a later attempt
	p.initErr = nil
	assert.Nil(t, c.Use(p))
}

func TestConnectionPluginNotifications(t *testing.T) {
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	p := &testConnectionPlugin{testPlugin: testPlugin{name: "conn"}}
	assert.Nil(t, c.Use(p))

	wantErr := fmt.Errorf("link down")
	c.plugins.notifyDisconnected(c, wantErr)
	assert.Equal(t, 1, p.disconnected)
	assert.Equal(t, wantErr, p.lastErr)

	c.plugins.notifyConnected(c)
	assert.Equal(t, 1, p.connected)
}

func TestConnectionWatchdog(t *testing.T) {
	w := NewConnectionWatchdog(4)

	assert.Equal(t, "connection_watchdog", w.Name())
	assert.Nil(t, w.Initialize(nil))

	// Disconnect, then reconnect after a short downtime
	assert.Nil(t, w.OnDisconnected(nil, fmt.Errorf("read error")))
	time.Sleep(5 * time.Millisecond)
	assert.Nil(t, w.OnConnected(nil))

	stats := w.Stats()
	assert.True(t, stats.Connected)
	assert.Greater(t, stats.TotalDowntime, time.Duration(0))
	assert.Equal(t, time.Duration(0), stats.CurrentDowntime)
	assert.NotNil(t, stats.LastDisconnectErr)

	// Both events were emitted in order
	evt := <-w.Events()
	assert.Equal(t, ConnectionEventDisconnected, evt.Type)
	assert.False(t, evt.Connected)
	assert.Error(t, evt.Err)

	evt = <-w.Events()
	assert.Equal(t, ConnectionEventConnected, evt.Type)
	assert.True(t, evt.Connected)
	assert.Greater(t, evt.Downtime, time.Duration(0))
}

func TestConnectionWatchdogDropsWhenFull(t *testing.T) {
	w := NewConnectionWatchdog(1)

	// Fill the buffer, then emit more; hooks must never block
	assert.Nil(t, w.OnDisconnected(nil, fmt.Errorf("one")))
	assert.Nil(t, w.OnConnected(nil))
	assert.Nil(t, w.OnDisconnected(nil, fmt.Errorf("two")))
	time.Sleep(time.Millisecond)

	stats := w.Stats()
	assert.False(t, stats.Connected)
	assert.Greater(t, stats.CurrentDowntime, time.Duration(0))
}

func TestWatchdogAsClientPlugin(t *testing.T) {
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	w := NewConnectionWatchdog(0)
	assert.Nil(t, c.Use(w))

	c.plugins.notifyDisconnected(c, fmt.Errorf("simulated"))
	c.plugins.notifyConnected(c)

	stats := w.Stats()
	assert.True(t, stats.Connected)
	assert.Equal(t, 2, len(w.Events()))
}
