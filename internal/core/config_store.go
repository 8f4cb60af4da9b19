package core

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/adam-gaia/checklints/internal/types"
)

// Settings are the fully resolved run options.
type Settings struct {
	UserChecklists     bool
	FailFast           bool
	ReadCache          bool
	WriteCache         bool
	ClearCache         bool
	ExternalChecklists []*types.RemoteFile
	ExternalTemplates  []*types.RemoteFile
}

// MaybeSettings is one configuration layer. A nil field leaves the value
// from lower layers untouched.
type MaybeSettings struct {
	UserChecklists     *bool    `yaml:"user_checklists,omitempty" env:"USER_CHECKLISTS"`
	FailFast           *bool    `yaml:"fail_fast,omitempty" env:"FAIL_FAST"`
	NoReadCache        *bool    `yaml:"no_read_cache,omitempty" env:"NO_READ_CACHE"`
	NoWriteCache       *bool    `yaml:"no_write_cache,omitempty" env:"NO_WRITE_CACHE"`
	NoCache            *bool    `yaml:"no_cache,omitempty" env:"NO_CACHE"`
	ClearCache         *bool    `yaml:"clear_cache,omitempty" env:"CLEAR_CACHE"`
	ExternalChecklists []string `yaml:"external_checklists,omitempty" env:"EXTERNAL_CHECKLISTS" envSeparator:","`
	ExternalTemplates  []string `yaml:"external_templates,omitempty" env:"EXTERNAL_TEMPLATES" envSeparator:","`
}

// DefaultSettings returns the bottom layer with every option set.
func DefaultSettings() MaybeSettings {
	f := false
	t := true
	return MaybeSettings{
		UserChecklists:     &t,
		FailFast:           &f,
		NoReadCache:        &f,
		NoWriteCache:       &f,
		NoCache:            &f,
		ClearCache:         &f,
		ExternalChecklists: []string{},
		ExternalTemplates:  []string{},
	}
}

// Layer overrides s with every field set in layer.
func (s *MaybeSettings) Layer(layer MaybeSettings) {
	if layer.UserChecklists != nil {
		s.UserChecklists = layer.UserChecklists
	}
	if layer.FailFast != nil {
		s.FailFast = layer.FailFast
	}
	if layer.NoReadCache != nil {
		s.NoReadCache = layer.NoReadCache
	}
	if layer.NoWriteCache != nil {
		s.NoWriteCache = layer.NoWriteCache
	}
	if layer.NoCache != nil {
		s.NoCache = layer.NoCache
	}
	if layer.ClearCache != nil {
		s.ClearCache = layer.ClearCache
	}
	if layer.ExternalChecklists != nil {
		s.ExternalChecklists = layer.ExternalChecklists
	}
	if layer.ExternalTemplates != nil {
		s.ExternalTemplates = layer.ExternalTemplates
	}
}

// Resolve converts the layered options into Settings. no_cache set to true
// disables both cache reads and writes regardless of the finer options.
func (s MaybeSettings) Resolve() (Settings, error) {
	var out Settings

	if s.UserChecklists == nil {
		return out, &SettingsError{Field: "user_checklists"}
	}
	if s.FailFast == nil {
		return out, &SettingsError{Field: "fail_fast"}
	}
	if s.ClearCache == nil {
		return out, &SettingsError{Field: "clear_cache"}
	}
	out.UserChecklists = *s.UserChecklists
	out.FailFast = *s.FailFast
	out.ClearCache = *s.ClearCache

	if s.NoCache != nil && *s.NoCache {
		out.ReadCache = false
		out.WriteCache = false
	} else {
		if s.NoReadCache == nil {
			return out, &SettingsError{Field: "no_read_cache"}
		}
		if s.NoWriteCache == nil {
			return out, &SettingsError{Field: "no_write_cache"}
		}
		out.ReadCache = !*s.NoReadCache
		out.WriteCache = !*s.NoWriteCache
	}

	var err error
	if out.ExternalChecklists, err = parseRemoteList(s.ExternalChecklists); err != nil {
		return out, fmt.Errorf("external_checklists: %w", err)
	}
	if out.ExternalTemplates, err = parseRemoteList(s.ExternalTemplates); err != nil {
		return out, fmt.Errorf("external_templates: %w", err)
	}
	return out, nil
}

func parseRemoteList(refs []string) ([]*types.RemoteFile, error) {
	out := make([]*types.RemoteFile, 0, len(refs))
	for _, ref := range refs {
		r, err := types.ParseRemoteFile(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// SettingsFromEnv reads the CHECKLINTS_-prefixed environment layer.
func SettingsFromEnv() (MaybeSettings, error) {
	var layer MaybeSettings
	if err := env.ParseWithOptions(&layer, env.Options{Prefix: EnvPrefix}); err != nil {
		return MaybeSettings{}, fmt.Errorf("invalid environment settings: %w", err)
	}
	return layer, nil
}

// SettingsStore reads and writes the user config file.
type SettingsStore struct {
	store *YAMLStore[MaybeSettings]
}

// NewSettingsStore creates a SettingsStore for <configDir>/config.yml.
func NewSettingsStore(fs FileSystem, configDir string) *SettingsStore {
	store := NewYAMLStore[MaybeSettings](fs, configDir, ConfigFile, true).WithHeader(
		"checklints configuration",
		"Environment variables ("+EnvPrefix+"<OPTION>) and command-line flags override these values.",
	)
	return &SettingsStore{store: store}
}

// Path returns the config file path
func (s *SettingsStore) Path() string {
	return s.store.Path()
}

// Load reads the config file layer. A missing file is an empty layer.
func (s *SettingsStore) Load() (MaybeSettings, error) {
	return s.store.Load()
}

// EnsureDefault writes the default settings when no config file exists.
func (s *SettingsStore) EnsureDefault() error {
	if s.store.Exists() {
		return nil
	}
	return s.store.Save(DefaultSettings())
}

// LoadSettings layers defaults, the config file, the environment, and
// finally args, then resolves the result.
func LoadSettings(store *SettingsStore, args MaybeSettings) (Settings, error) {
	merged := DefaultSettings()

	fileLayer, err := store.Load()
	if err != nil {
		return Settings{}, err
	}
	merged.Layer(fileLayer)

	envLayer, err := SettingsFromEnv()
	if err != nil {
		return Settings{}, err
	}
	merged.Layer(envLayer)

	merged.Layer(args)
	return merged.Resolve()
}
