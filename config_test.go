package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".lume.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	result := loadConfigFromPath(filepath.Join(t.TempDir(), "nope.json"))

	assert.Equal(t, "Default", result.Status)
	assert.False(t, result.HasError)
	assert.Equal(t, defaultWidth, result.Config.WindowWidth)
	assert.Equal(t, defaultPanelWidth, result.Config.PanelWidth)
	assert.Equal(t, SortByCapture, result.Config.SortMethod)
	assert.NotEmpty(t, result.Config.Keybindings)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := writeConfig(t, "{broken")
	result := loadConfigFromPath(path)

	assert.Equal(t, "Error", result.Status)
	assert.True(t, result.HasError)
	assert.Equal(t, defaultWidth, result.Config.WindowWidth, "defaults survive a broken file")
}

func TestLoadConfigClampsValues(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		check func(t *testing.T, c Config)
	}{
		{
			"window too small",
			`{"window_width": 200, "window_height": 100}`,
			func(t *testing.T, c Config) {
				assert.Equal(t, defaultWidth, c.WindowWidth)
				assert.Equal(t, defaultHeight, c.WindowHeight)
			},
		},
		{
			"font too small",
			`{"font_size": 6}`,
			func(t *testing.T, c Config) { assert.Equal(t, 18.0, c.FontSize) },
		},
		{
			"cache size out of range",
			`{"cache_size": 1000}`,
			func(t *testing.T, c Config) { assert.Equal(t, 64, c.CacheSize) },
		},
		{
			"negative transition frames",
			`{"transition_frames": -5}`,
			func(t *testing.T, c Config) { assert.Equal(t, 18, c.TransitionFrames) },
		},
		{
			"transition frames capped",
			`{"transition_frames": 500}`,
			func(t *testing.T, c Config) { assert.Equal(t, 60, c.TransitionFrames) },
		},
		{
			"panel width out of range",
			`{"panel_width": 100}`,
			func(t *testing.T, c Config) { assert.Equal(t, defaultPanelWidth, c.PanelWidth) },
		},
		{
			"grid columns out of range",
			`{"grid_columns": 1}`,
			func(t *testing.T, c Config) { assert.Equal(t, defaultGridColumns, c.GridColumns) },
		},
		{
			"invalid sort method",
			`{"sort_method": 7}`,
			func(t *testing.T, c Config) { assert.Equal(t, SortByCapture, c.SortMethod) },
		},
		{
			"valid values pass through",
			`{"window_width": 1600, "window_height": 1000, "transition_frames": 0, "grid_columns": 6}`,
			func(t *testing.T, c Config) {
				assert.Equal(t, 1600, c.WindowWidth)
				assert.Equal(t, 1000, c.WindowHeight)
				assert.Equal(t, 0, c.TransitionFrames, "zero disables the crossfade")
				assert.Equal(t, 6, c.GridColumns)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := loadConfigFromPath(writeConfig(t, tt.json))
			tt.check(t, result.Config)
		})
	}
}

func TestLoadConfigKeybindingConflict(t *testing.T) {
	path := writeConfig(t, `{"keybindings": {"next": ["KeyQ"]}}`)
	result := loadConfigFromPath(path)

	assert.Equal(t, "Warning", result.Status, "KeyQ is already bound to quit")
	assert.NotEmpty(t, result.Warnings)
	assert.Equal(t, GetDefaultKeybindings()["next"], result.Config.Keybindings["next"])
}

func TestLoadConfigUnknownKeyName(t *testing.T) {
	path := writeConfig(t, `{"keybindings": {"next": ["KeyÖ"]}}`)
	result := loadConfigFromPath(path)

	assert.Equal(t, "Warning", result.Status)
	assert.Equal(t, GetDefaultKeybindings()["next"], result.Config.Keybindings["next"])
}

func TestLoadConfigFillsMissingActions(t *testing.T) {
	path := writeConfig(t, `{"keybindings": {"next": ["KeyN"]}}`)
	result := loadConfigFromPath(path)

	assert.Equal(t, []string{"KeyN"}, result.Config.Keybindings["next"])
	assert.Equal(t, GetDefaultKeybindings()["previous"], result.Config.Keybindings["previous"],
		"actions absent from the file keep their defaults")
}

func TestValidateKeyString(t *testing.T) {
	validKeys := getValidKeyNames()

	tests := []struct {
		keyStr  string
		wantErr bool
	}{
		{"KeyA", false},
		{"Shift+KeyS", false},
		{"Ctrl+Alt+Home", false},
		{"Meta+KeyA", true},
		{"KeyUnknown", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.keyStr, func(t *testing.T) {
			err := validateKeyString(tt.keyStr, validKeys)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveConfigRefusesTinyWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lume.json")
	config := loadConfigFromPath(path).Config
	config.WindowWidth = 100

	saveConfigToPath(config, path)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "undersized window sizes are not persisted")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lume.json")
	config := loadConfigFromPath(path).Config
	config.WindowWidth = 1440
	config.SortMethod = SortByTitle
	config.TransitionFrames = 30

	saveConfigToPath(config, path)

	reloaded := loadConfigFromPath(path)
	assert.Equal(t, "OK", reloaded.Status)
	assert.Equal(t, 1440, reloaded.Config.WindowWidth)
	assert.Equal(t, SortByTitle, reloaded.Config.SortMethod)
	assert.Equal(t, 30, reloaded.Config.TransitionFrames)
}
