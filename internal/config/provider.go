// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions selects where configuration is read from.
type LoadOptions struct {
	// ConfigFilePath forces a specific file (the --config flag).
	ConfigFilePath string
	// ConfigDirPath replaces the platform config directory.
	ConfigDirPath string
	// WorkDir is searched for config.cue when the config directory has none;
	// empty means the process working directory.
	WorkDir string
}

// Provider loads configuration.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider returns the file and environment backed Provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load layers defaults, the resolved config file and the environment.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
