package scriptfill

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Preferences are application settings kept apart from engine state.
// Keys this version does not know are preserved in Extras across a
// load and save.
type Preferences struct {
	// LibraryPath is the spreadsheet loaded at startup.
	LibraryPath string `yaml:"library_path,omitempty" json:"library_path,omitempty"`
	// OutputDir is where generated scripts are saved.
	OutputDir string `yaml:"output_dir,omitempty" json:"output_dir,omitempty"`
	// FontSize is the display font size of front ends.
	FontSize int `yaml:"font_size" json:"font_size"`
	// Theme is the display theme of front ends.
	Theme string `yaml:"theme" json:"theme"`
	// PlaceholderFormat overrides the unresolved marker format.
	PlaceholderFormat string `yaml:"placeholder_format,omitempty" json:"placeholder_format,omitempty"`
	// Store names the storage driver for engine state.
	Store string `yaml:"store,omitempty" json:"store,omitempty"`
	// DSN is the connection string passed to the storage driver.
	DSN string `yaml:"dsn,omitempty" json:"dsn,omitempty"`

	Extras map[string]any `yaml:",inline" json:"extras,omitempty"`
}

// DefaultPreferences returns preferences with default values
func DefaultPreferences() *Preferences {
	return &Preferences{
		FontSize: DefaultFontSize,
		Theme:    DefaultPreferencesTheme,
	}
}

// LoadPreferences reads preferences from a YAML file.
// A missing file yields DefaultPreferences; unset fields keep their defaults.
func LoadPreferences(path string) (*Preferences, error) {
	prefs := DefaultPreferences()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return prefs, nil
		}
		return nil, NewPreferencesError(ErrMsgReadPreferences, path, err)
	}

	if err := yaml.Unmarshal(data, prefs); err != nil {
		return nil, NewPreferencesError(ErrMsgParsePreferences, path, err)
	}
	if prefs.FontSize <= 0 {
		prefs.FontSize = DefaultFontSize
	}
	return prefs, nil
}

// Save writes the preferences to a YAML file atomically
func (p *Preferences) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return NewPreferencesError(ErrMsgWritePreferences, path, err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return NewPreferencesError(ErrMsgWritePreferences, path, err)
	}
	return nil
}
