package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Preference keys.
const (
	KeyCitationStyle     = "citation_style"
	KeyCustomStyleDir    = "custom_style_dir"
	KeyReplaceEnabled    = "export_replacement_enabled"
	KeyReplacementTable  = "export_replacement"
	DefaultCitationStyle = "apa"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "bipcite"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// EnvPrefix prefixes environment overrides, e.g. BIPCITE_CITATION_STYLE.
	EnvPrefix = "BIPCITE"
)

// Replacement maps one publication name to another.
type Replacement struct {
	From string `mapstructure:"from" json:"from"`
	To   string `mapstructure:"to" json:"to"`
}

// ReplacementConfig is the publication rewriting table.
type ReplacementConfig struct {
	Enabled bool
	Pairs   []Replacement
}

// Preferences is the key-value preference store consulted by the exporter.
type Preferences struct {
	v *viper.Viper
}

// NewPreferences wraps an existing viper instance.
func NewPreferences(v *viper.Viper) *Preferences {
	v.SetDefault(KeyCitationStyle, DefaultCitationStyle)
	v.SetDefault(KeyReplaceEnabled, false)
	return &Preferences{v: v}
}

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bipcite/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadPreferences reads the global config, then the library config on top of
// it, then environment overrides. Missing files are not an error.
// libraryRoot may be empty when no library is in use.
func LoadPreferences(libraryRoot string) (*Preferences, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	paths := []string{GlobalConfigPath()}
	if libraryRoot != "" {
		paths = append(paths, ConfigPath(libraryRoot))
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("checking %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	return NewPreferences(v), nil
}

// StyleKey returns the selected citation style.
func (p *Preferences) StyleKey() string {
	if key := p.v.GetString(KeyCitationStyle); key != "" {
		return key
	}
	return DefaultCitationStyle
}

// SetStyleKey overrides the selected style for this process.
func (p *Preferences) SetStyleKey(key string) {
	p.v.Set(KeyCitationStyle, key)
}

// CustomStyleDir returns the directory holding user style files, with ~ expanded.
// Empty means no custom styles are configured.
func (p *Preferences) CustomStyleDir() string {
	return ExpandPath(p.v.GetString(KeyCustomStyleDir))
}

// Replacement returns the publication rewriting table.
// An error means the stored table does not have the expected shape.
func (p *Preferences) Replacement() (ReplacementConfig, error) {
	cfg := ReplacementConfig{Enabled: p.v.GetBool(KeyReplaceEnabled)}
	if err := p.v.UnmarshalKey(KeyReplacementTable, &cfg.Pairs); err != nil {
		return ReplacementConfig{}, fmt.Errorf("decoding %s: %w", KeyReplacementTable, err)
	}
	return cfg, nil
}

// Settings returns all effective settings, for display.
func (p *Preferences) Settings() map[string]any {
	return p.v.AllSettings()
}

// SettableKeys lists the preferences that SetLibraryValue accepts.
var SettableKeys = []string{KeyCitationStyle, KeyCustomStyleDir, KeyReplaceEnabled}

// ErrUnknownKey is returned for preference keys that cannot be set from a string.
var ErrUnknownKey = errors.New("unknown configuration key")

// WriteLibraryConfig writes the default library config file.
func WriteLibraryConfig(root string) error {
	v := viper.New()
	v.Set(KeyCitationStyle, DefaultCitationStyle)
	v.Set(KeyReplaceEnabled, false)
	v.Set(KeyReplacementTable, []Replacement{})
	if err := v.WriteConfigAs(ConfigPath(root)); err != nil {
		return fmt.Errorf("writing %s: %w", ConfigPath(root), err)
	}
	return nil
}

// SetLibraryValue stores one preference in the library config file,
// keeping the other values in it.
func SetLibraryValue(root, key, value string) error {
	var typed any
	switch key {
	case KeyCitationStyle, KeyCustomStyleDir:
		typed = value
	case KeyReplaceEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false: %w", key, err)
		}
		typed = b
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	path := ConfigPath(root)
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}
	v.Set(key, typed)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
