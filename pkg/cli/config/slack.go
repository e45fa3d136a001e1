package config

import (
	"time"

	"github.com/urfave/cli/v3"
	slacksvc "github.com/watchtower-lab/chanpulse/pkg/service/slack"
)

// Slack holds CLI flags for the Slack API integration
type Slack struct {
	botToken      string `masq:"secret"`
	signingSecret string `masq:"secret"`
	cacheTTL      time.Duration
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth token (xoxb-...)",
			Required:    true,
			Sources:     cli.EnvVars("CHANPULSE_SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack signing secret for webhook verification (verification disabled when empty)",
			Sources:     cli.EnvVars("CHANPULSE_SLACK_SIGNING_SECRET"),
			Destination: &s.signingSecret,
		},
		&cli.DurationFlag{
			Name:        "slack-channel-cache-ttl",
			Usage:       "TTL for channel name cache",
			Value:       slacksvc.DefaultCacheTTL,
			Sources:     cli.EnvVars("CHANPULSE_SLACK_CHANNEL_CACHE_TTL"),
			Destination: &s.cacheTTL,
		},
	}
}

// SigningSecret returns the configured signing secret
func (s *Slack) SigningSecret() string {
	return s.signingSecret
}

// IsWebhookVerified reports whether signature verification is enabled
func (s *Slack) IsWebhookVerified() bool {
	return s.signingSecret != ""
}

// Configure builds the Slack service client
func (s *Slack) Configure(channelTypes []string) (slacksvc.Service, error) {
	opts := []slacksvc.Option{
		slacksvc.WithCacheTTL(s.cacheTTL),
	}
	if len(channelTypes) > 0 {
		opts = append(opts, slacksvc.WithChannelTypes(channelTypes))
	}

	return slacksvc.New(s.botToken, opts...)
}
