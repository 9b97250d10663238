package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Sessions.SweepInterval)
	assert.Equal(t, 15*time.Second, cfg.Sessions.PressWindow)
	assert.Equal(t, 10, cfg.Sessions.SearchThreshold)
	assert.Equal(t, "WARUNG", cfg.Shop.Name)
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, Normalize(cfg))
}

func TestNormalizeRunMode(t *testing.T) {
	cases := []struct {
		mode    string
		want    string
		wantErr bool
	}{
		{"", RunModeLongpoll, false},
		{"longpoll", RunModeLongpoll, false},
		{"polling", RunModeLongpoll, false},
		{"LONGPOLL", RunModeLongpoll, false},
		{"carrier-pigeon", "", true},
	}
	for _, tc := range cases {
		cfg := validConfig()
		cfg.Telegram.RunMode = tc.mode
		err := Normalize(cfg)
		if tc.wantErr {
			assert.Error(t, err, "mode %q", tc.mode)
			continue
		}
		require.NoError(t, err, "mode %q", tc.mode)
		assert.Equal(t, tc.want, cfg.Telegram.RunMode)
	}
}

func TestNormalizeWebhookRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	assert.Error(t, Normalize(cfg), "url missing")

	cfg.Webhook = WebhookConfig{URL: "https://bot.example.com", Listen: "0.0.0.0"}
	assert.Error(t, Normalize(cfg), "port missing")

	cfg.Webhook.Port = 8443
	assert.NoError(t, Normalize(cfg))
}

func TestNormalizeSessionDurations(t *testing.T) {
	cfg := validConfig()
	cfg.Sessions.IdleTimeout = -time.Minute
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Sessions.IdleTimeout = time.Hour
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, time.Hour, cfg.Sessions.IdleTimeout, "explicit value kept")
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "MESSAGE"}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, []string{"callback", "message"}, cfg.RateLimit.ExcludeUpdates)

	cfg = validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{"inline_query"}
	assert.Error(t, Normalize(cfg))
}
