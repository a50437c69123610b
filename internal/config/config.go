package config

import (
	"encoding/json"
	"fmt"
	"sync"
)

// FlexibleStringSlice accepts both ["str"] and [123] in JSON.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

// Config is the root configuration for the gateway process.
type Config struct {
	Gateway   GatewayConfig   `json:"gateway"`
	Driver    DriverConfig    `json:"driver"`
	Plugins   PluginsConfig   `json:"plugins"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
	mu        sync.RWMutex
}

// GatewayConfig controls the admin HTTP surface.
type GatewayConfig struct {
	Host  string `json:"host"`
	Port  int    `json:"port"`
	Token string `json:"-"` // bearer token for the admin HTTP surface; from env only, see applyEnvOverrides
}

// DriverConfig controls the concrete IM driver (Zalo Personal account).
type DriverConfig struct {
	CredentialsDir string `json:"credentials_dir,omitempty"` // loaded and env-overridable, but no component reads it (default ~/.zalogw/credentials)
	DeviceSeed     string `json:"device_seed,omitempty"`      // loaded but no component reads it; IMEIs always start from a random UUID
}

// PluginsConfig controls on-disk plugin persistence and the plugin
// connection supervisor's defaults.
type PluginsConfig struct {
	StorageDir  string `json:"storage_dir,omitempty"`  // directory of <name>.json plugin files (default ./plugins)
	DefaultPort int    `json:"default_port,omitempty"` // loaded but no component reads it; pluginconn always fills in 8081 when a plugin URL omits a port (default 8081)
}

// TelemetryConfig configures OpenTelemetry trace export.
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled,omitempty"`
	Endpoint    string            `json:"endpoint,omitempty"`     // e.g. "localhost:4317"
	Protocol    string            `json:"protocol,omitempty"`     // "grpc" (default) or "http"
	Insecure    bool              `json:"insecure,omitempty"`
	ServiceName string            `json:"service_name,omitempty"` // default "zalogw-gateway"
	Headers     map[string]string `json:"headers,omitempty"`
}

// ReplaceFrom copies all data fields from src into c, preserving c's mutex.
func (c *Config) ReplaceFrom(src *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Gateway = src.Gateway
	c.Driver = src.Driver
	c.Plugins = src.Plugins
	c.Telemetry = src.Telemetry
}

// Snapshot returns a copy of the config safe to read without holding the lock.
func (c *Config) Snapshot() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Config{Gateway: c.Gateway, Driver: c.Driver, Plugins: c.Plugins, Telemetry: c.Telemetry}
}
