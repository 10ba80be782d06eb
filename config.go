package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Window and layout constants
const (
	defaultWidth  = 1200
	defaultHeight = 800
	minWidth      = 640
	minHeight     = 480

	defaultPanelWidth = 360
	minPanelWidth     = 240
	maxPanelWidth     = 560

	defaultGridColumns = 4
)

// getDefaultKeybindings returns the default keybinding configuration
func getDefaultKeybindings() map[string][]string {
	return GetDefaultKeybindings()
}

// validateKeybindings validates the keybindings configuration
func validateKeybindings(keybindings map[string][]string) error {
	// Check for valid key formats and detect conflicts
	keyToAction := make(map[string]string)
	validKeys := getValidKeyNames()

	for action, keys := range keybindings {
		for _, keyStr := range keys {
			if err := validateKeyString(keyStr, validKeys); err != nil {
				return fmt.Errorf("invalid key '%s' for action '%s': %v", keyStr, action, err)
			}

			if existingAction, exists := keyToAction[keyStr]; exists {
				return fmt.Errorf("key conflict: '%s' is bound to both '%s' and '%s'", keyStr, existingAction, action)
			}
			keyToAction[keyStr] = action
		}
	}

	return nil
}

// validateKeyString validates a single key string format
func validateKeyString(keyStr string, validKeys map[string]bool) error {
	parts := strings.Split(keyStr, "+")
	if len(parts) == 0 {
		return fmt.Errorf("empty key string")
	}

	keyName := parts[len(parts)-1]
	if !validKeys[keyName] {
		return fmt.Errorf("unknown key: %s", keyName)
	}

	for i := 0; i < len(parts)-1; i++ {
		modifier := strings.ToLower(parts[i])
		if modifier != "shift" && modifier != "ctrl" && modifier != "alt" {
			return fmt.Errorf("unknown modifier: %s", parts[i])
		}
	}

	return nil
}

// getValidKeyNames returns a set of valid key names
func getValidKeyNames() map[string]bool {
	return map[string]bool{
		// Letters
		"KeyA": true, "KeyB": true, "KeyC": true, "KeyD": true,
		"KeyE": true, "KeyF": true, "KeyG": true, "KeyH": true,
		"KeyI": true, "KeyJ": true, "KeyK": true, "KeyL": true,
		"KeyM": true, "KeyN": true, "KeyO": true, "KeyP": true,
		"KeyQ": true, "KeyR": true, "KeyS": true, "KeyT": true,
		"KeyU": true, "KeyV": true, "KeyW": true, "KeyX": true,
		"KeyY": true, "KeyZ": true,

		// Numbers
		"Key0": true, "Key1": true, "Key2": true, "Key3": true,
		"Key4": true, "Key5": true, "Key6": true, "Key7": true,
		"Key8": true, "Key9": true,

		// Special keys
		"Space": true, "Backspace": true, "Enter": true, "Escape": true,
		"Tab": true, "Home": true, "End": true, "PageUp": true, "PageDown": true,
		"ArrowUp": true, "ArrowDown": true, "ArrowLeft": true, "ArrowRight": true,

		// Punctuation
		"Comma": true, "Period": true, "Slash": true, "Semicolon": true,
		"Quote": true, "Minus": true, "Equal": true,

		// Numpad
		"Numpad0": true, "Numpad1": true, "Numpad2": true, "Numpad3": true,
		"Numpad4": true, "Numpad5": true, "Numpad6": true, "Numpad7": true,
		"Numpad8": true, "Numpad9": true, "NumpadEnter": true,
	}
}

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	HasError bool
	Warnings []string
	Status   string // "OK", "Default", "Warning", "Error"
}

type Config struct {
	WindowWidth      int                 `json:"window_width"`
	WindowHeight     int                 `json:"window_height"`
	FontSize         float64             `json:"font_size"`
	SortMethod       int                 `json:"sort_method"`
	Fullscreen       bool                `json:"fullscreen"`
	CacheSize        int                 `json:"cache_size"`
	TransitionFrames int                 `json:"transition_frames"`
	PreloadEnabled   bool                `json:"preload_enabled"`
	PanelWidth       int                 `json:"panel_width"`
	GridColumns      int                 `json:"grid_columns"`
	Keybindings      map[string][]string `json:"keybindings"`
	Mousebindings    map[string][]string `json:"mousebindings"`
	MouseSettings    MouseSettings       `json:"mouse_settings"`
}

func getConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "lume.json"
	}
	return filepath.Join(homeDir, ".lume.json")
}

func loadConfig() ConfigLoadResult {
	return loadConfigFromPath(getConfigPath())
}

func loadConfigFromPath(configPath string) ConfigLoadResult {
	config := Config{
		WindowWidth:      defaultWidth,
		WindowHeight:     defaultHeight,
		FontSize:         18.0,
		SortMethod:       SortByCapture,
		Fullscreen:       false,
		CacheSize:        16,
		TransitionFrames: 18, // Crossfade length; 0 disables the fade
		PreloadEnabled:   true,
		PanelWidth:       defaultPanelWidth,
		GridColumns:      defaultGridColumns,
		Keybindings:      getDefaultKeybindings(),
		Mousebindings:    GetDefaultMousebindings(),
		MouseSettings:    GetDefaultMouseSettings(),
	}

	result := ConfigLoadResult{
		Config:   config,
		HasError: false,
		Warnings: []string{},
		Status:   "OK",
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		// Config file not found is not an error - use defaults
		result.Status = "Default"
		return result
	}

	if err := json.Unmarshal(data, &config); err != nil {
		logrus.Warnf("invalid config file %s, using defaults: %v", configPath, err)
		result.HasError = true
		result.Status = "Error"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config file: %v", err))
		return result
	}

	// Validate minimum size
	if config.WindowWidth < minWidth {
		config.WindowWidth = defaultWidth
	}
	if config.WindowHeight < minHeight {
		config.WindowHeight = defaultHeight
	}

	// Validate font size (minimum 12px for readability)
	if config.FontSize < 12.0 {
		config.FontSize = 18.0
	}

	// Validate sort method
	if config.SortMethod < SortByCapture || config.SortMethod > SortEntryOrder {
		config.SortMethod = SortByCapture
	}

	// Validate cache size (minimum 1, maximum 64)
	if config.CacheSize < 1 {
		config.CacheSize = 16
	} else if config.CacheSize > 64 {
		config.CacheSize = 64
	}

	// Validate transition frames (minimum 0, maximum 60)
	if config.TransitionFrames < 0 {
		config.TransitionFrames = 18
	} else if config.TransitionFrames > 60 {
		config.TransitionFrames = 60
	}

	// Validate panel width
	if config.PanelWidth < minPanelWidth || config.PanelWidth > maxPanelWidth {
		config.PanelWidth = defaultPanelWidth
	}

	// Validate grid columns
	if config.GridColumns < 2 || config.GridColumns > 8 {
		config.GridColumns = defaultGridColumns
	}

	// Validate keybindings - ensure defaults exist for missing actions
	if config.Keybindings == nil {
		config.Keybindings = getDefaultKeybindings()
	} else {
		defaults := getDefaultKeybindings()
		for action, defaultKeys := range defaults {
			if _, exists := config.Keybindings[action]; !exists {
				config.Keybindings[action] = defaultKeys
			}
		}

		if err := validateKeybindings(config.Keybindings); err != nil {
			logrus.Warnf("invalid keybindings detected, using defaults: %v", err)
			config.Keybindings = getDefaultKeybindings()
			result.Status = "Warning"
			result.Warnings = append(result.Warnings, fmt.Sprintf("Keybinding errors: %v", err))
		}
	}

	if config.Mousebindings == nil {
		config.Mousebindings = GetDefaultMousebindings()
	} else {
		defaults := GetDefaultMousebindings()
		for action, defaultActions := range defaults {
			if _, exists := config.Mousebindings[action]; !exists {
				config.Mousebindings[action] = defaultActions
			}
		}
	}

	if config.MouseSettings == (MouseSettings{}) {
		config.MouseSettings = GetDefaultMouseSettings()
	}

	result.Config = config
	return result
}

func saveConfig(config Config) {
	saveConfigToPath(config, getConfigPath())
}

func saveConfigToPath(config Config, configPath string) {
	// Don't save if size is too small
	if config.WindowWidth < minWidth || config.WindowHeight < minHeight {
		logrus.Warnf("not saving config with invalid window size: %dx%d",
			config.WindowWidth, config.WindowHeight)
		return
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		logrus.Errorf("failed to marshal config: %v", err)
		return
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		logrus.Errorf("failed to save config to %s: %v", configPath, err)
	}
}
