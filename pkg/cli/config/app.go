package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// App represents the optional TOML application configuration. CLI flags
// take precedence over file values; the file supplies defaults for
// deployments that prefer checked-in configuration.
type App struct {
	Server struct {
		Addr string `toml:"addr"`
	} `toml:"server"`

	Slack struct {
		// ChannelTypes are the conversation types returned by the
		// channel listing (default: public_channel, private_channel)
		ChannelTypes []string `toml:"channel_types"`
	} `toml:"slack"`

	Limits struct {
		// MemberConcurrency caps the parallel user lookups when
		// listing channel members
		MemberConcurrency int64 `toml:"member_concurrency"`
	} `toml:"limits"`

	Worker struct {
		// RefreshInterval between full profile syncs ("0" disables)
		RefreshInterval string `toml:"refresh_interval"`
	} `toml:"worker"`
}

var allowedChannelTypes = map[string]bool{
	"public_channel":  true,
	"private_channel": true,
	"mpim":            true,
	"im":              true,
}

// Validate checks if the App configuration is valid
func (a *App) Validate() error {
	for _, t := range a.Slack.ChannelTypes {
		if !allowedChannelTypes[t] {
			return goerr.New("invalid channel type", goerr.V("type", t))
		}
	}

	if a.Limits.MemberConcurrency < 0 {
		return goerr.New("member_concurrency must not be negative",
			goerr.V("member_concurrency", a.Limits.MemberConcurrency))
	}

	if a.Worker.RefreshInterval != "" {
		if _, err := time.ParseDuration(a.Worker.RefreshInterval); err != nil {
			return goerr.Wrap(err, "invalid refresh_interval",
				goerr.V("refresh_interval", a.Worker.RefreshInterval))
		}
	}

	return nil
}

// RefreshInterval returns the parsed worker interval, or 0 when unset
func (a *App) RefreshInterval() time.Duration {
	if a.Worker.RefreshInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(a.Worker.RefreshInterval)
	if err != nil {
		return 0 // Validate rejects this earlier
	}
	return d
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*App, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var config App
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return &config, nil
}
