package config

import (
	"fmt"

	"github.com/knadh/koanf/v2"
)

type Manager struct {
	sources []*Source
	config  Config
}

func NewManager(sources ...*Source) *Manager {
	return &Manager{
		sources: sources,
	}
}

func (m *Manager) Config() Config {
	return m.config
}

// Load merges the sources over the defaults, in order, so that later sources
// take precedence, and validates the result.
func (m *Manager) Load() error {
	k := koanf.New(".")
	if err := LoadStruct(k, DefaultConfig()); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	for _, source := range m.sources {
		err := k.Load(source.Provider(k), source.Parser, source.Options...)
		if err != nil {
			return fmt.Errorf("failed to load user-specified config: %w", err)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return err
	}

	m.config = config

	return nil
}
