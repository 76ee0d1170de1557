package fins

import (
	"fmt"
	"sync"
)

// Plugin allows extending client behavior (logging, metrics, connection
// monitoring, etc.).
type Plugin interface {
	// Name must return a unique plugin name.
	Name() string
	// Initialize is called once when the plugin is registered via Use.
	Initialize(*Client) error
}

// ConnectionPlugin is an optional plugin extension notified of session
// state changes. Hooks run on the client's internal goroutines and must
// not block.
type ConnectionPlugin interface {
	Plugin
	OnConnected(*Client) error
	OnDisconnected(*Client, error) error
}

// pluginManager wraps plugin registration to keep the Client struct
// focused.
type pluginManager struct {
	mu      sync.Mutex
	plugins map[string]Plugin
}

func (pm *pluginManager) use(c *Client, plugins ...Plugin) error {
	for _, p := range plugins {
		if p == nil {
			return fmt.Errorf("fins: plugin is nil")
		}
		name := p.Name()
		if name == "" {
			return fmt.Errorf("fins: plugin name cannot be empty")
		}

		// Reserve the name to avoid duplicate registration races.
		pm.mu.Lock()
		if pm.plugins == nil {
			pm.plugins = make(map[string]Plugin)
		}
		if _, exists := pm.plugins[name]; exists {
			pm.mu.Unlock()
			return fmt.Errorf("fins: plugin %s already registered", name)
		}
		pm.plugins[name] = nil
		pm.mu.Unlock()

		if err := p.Initialize(c); err != nil {
			pm.mu.Lock()
			delete(pm.plugins, name)
			pm.mu.Unlock()
			return fmt.Errorf("fins: initialize plugin %s: %w", name, err)
		}

		pm.mu.Lock()
		pm.plugins[name] = p
		pm.mu.Unlock()
	}

	return nil
}

func (pm *pluginManager) snapshot() []Plugin {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	out := make([]Plugin, 0, len(pm.plugins))
	for _, p := range pm.plugins {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (pm *pluginManager) notifyConnected(c *Client) {
	for _, p := range pm.snapshot() {
		if cp, ok := p.(ConnectionPlugin); ok {
			_ = cp.OnConnected(c)
		}
	}
}

func (pm *pluginManager) notifyDisconnected(c *Client, err error) {
	for _, p := range pm.snapshot() {
		if cp, ok := p.(ConnectionPlugin); ok {
			_ = cp.OnDisconnected(c, err)
		}
	}
}
