package docql

import (
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings is the process-wide configuration knob described in
// spec.md §3: today it carries a single recognized key, "key", which
// renames the identity field used by $group, $project, and cursor
// identity logic. The active settings are a process-wide global
// guarded by a read/write mutex; Setup is expected to run once before
// any query executes.
type Settings struct {
	Key string `yaml:"key"`
}

// DefaultSettings matches the source's default identity field name.
func DefaultSettings() Settings {
	return Settings{Key: "_id"}
}

var (
	settingsMu sync.RWMutex
	settings   = DefaultSettings()
)

// Setup installs new process-wide settings. Only the "key" field is
// recognized; a zero value falls back to "_id".
func Setup(s Settings) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if s.Key == "" {
		s.Key = "_id"
	}
	settings = s
}

// currentSettings returns a copy of the active process-wide settings.
func currentSettings() Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settings
}

// IdentityField returns the currently configured identity field name.
func IdentityField() string {
	return currentSettings().Key
}

// LoadSettingsYAML parses a YAML document of the shape `key: _id` into
// Settings, mirroring how ppiankov-mongospectre's internal/config
// loads process configuration. It does not call Setup itself — callers
// decide when to install the parsed settings.
func LoadSettingsYAML(r io.Reader) (Settings, error) {
	var s Settings
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("docql: parsing settings yaml: %w", err)
	}
	if s.Key == "" {
		s.Key = "_id"
	}
	return s, nil
}
