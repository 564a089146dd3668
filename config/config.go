package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"go-lyred/debug"
	"go-lyred/keymap"
)

// FunctionKeys are the physical keys that drive the transport while the
// game window has focus
type FunctionKeys struct {
	Play  keymap.KeyCode `json:"play"`
	Pause keymap.KeyCode `json:"pause"`
	Stop  keymap.KeyCode `json:"stop"`
}

// DefaultFunctionKeys: Space, Backspace, Ctrl
var DefaultFunctionKeys = FunctionKeys{Play: 32, Pause: 8, Stop: 17}

// ErrDuplicateKey is returned when two function keys share a key code
var ErrDuplicateKey = errors.New("function keys must be distinct")

// Validate checks that the three bindings differ
func (k FunctionKeys) Validate() error {
	switch {
	case k.Play == k.Pause:
		return fmt.Errorf("%w: play and pause are both %s", ErrDuplicateKey, keymap.Name(k.Play))
	case k.Play == k.Stop:
		return fmt.Errorf("%w: play and stop are both %s", ErrDuplicateKey, keymap.Name(k.Play))
	case k.Pause == k.Stop:
		return fmt.Errorf("%w: pause and stop are both %s", ErrDuplicateKey, keymap.Name(k.Pause))
	}
	return nil
}

// Config is the main configuration structure
type Config struct {
	FunctionKeys FunctionKeys `json:"functionKeys"`
	Mode         keymap.Mode  `json:"mode"`
	Speed        float64      `json:"speed,omitempty"`
	StopRewinds  bool         `json:"stopRewinds"`

	// Injector backend: log, midi or serial
	Injector    string `json:"injector,omitempty"`
	MIDIPort    string `json:"midiPort,omitempty"`
	MIDIChannel uint8  `json:"midiChannel,omitempty"`
	SerialPort  string `json:"serialPort,omitempty"`
	SerialBaud  int    `json:"serialBaud,omitempty"`

	// Offsets tried by auto-calibration: [-CalibrateRange, CalibrateRange]
	CalibrateRange int `json:"calibrateRange,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		FunctionKeys:   DefaultFunctionKeys,
		Mode:           keymap.ModeLyre,
		Speed:          1.0,
		StopRewinds:    true,
		Injector:       "log",
		SerialBaud:     115200,
		CalibrateRange: 24,
	}
}

// Validate reports settings that cannot be used
func (c *Config) Validate() error {
	if err := c.FunctionKeys.Validate(); err != nil {
		return err
	}
	if c.Speed < 0 {
		return fmt.Errorf("speed %v is negative", c.Speed)
	}
	if c.CalibrateRange < 0 || c.CalibrateRange > 48 {
		return fmt.Errorf("calibrateRange %d outside [0, 48]", c.CalibrateRange)
	}
	return nil
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-lyred"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Fields missing from the file keep their
// defaults; a missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Watch calls fn with the re-read config every time path changes, until ctx
// is cancelled. Invalid edits are logged and skipped. The directory is
// watched rather than the file so editors that save by rename are seen.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	name := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := LoadFrom(path)
			if err != nil {
				debug.Warn("config", "reload skipped: %v", err)
				continue
			}
			debug.Log("config", "reloaded %s", path)
			fn(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			debug.Warn("config", "watcher error: %v", err)
		}
	}
}
