package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Shortcut is one saved HSV preset.
type Shortcut struct {
	Hue        float64 `json:"h"`
	Saturation float64 `json:"s"`
	Value      float64 `json:"v"`
}

// Shortcuts maps slot digits ("0".."9") to presets.
type Shortcuts map[string]Shortcut

// shortcutsPath resolves the presets file under the user config dir.
func shortcutsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "vibesync", "shortcuts.json"), nil
}

// LoadShortcuts reads saved presets; a missing or unreadable file just means
// empty slots.
func LoadShortcuts() Shortcuts {
	path, err := shortcutsPath()
	if err != nil {
		return Shortcuts{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Shortcuts{}
	}
	var s Shortcuts
	if err := json.Unmarshal(data, &s); err != nil {
		return Shortcuts{}
	}
	return s
}

// Save persists the presets, creating the config dir if needed.
func (s Shortcuts) Save() error {
	path, err := shortcutsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
