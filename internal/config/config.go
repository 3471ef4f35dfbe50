package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Store     StoreConfig     `mapstructure:"store"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Browser   BrowserConfig   `mapstructure:"browser"`
}

// ---- Leaf structs ----

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the status server
}

type StoreConfig struct {
	Dir string `mapstructure:"dir"`
}

type SchedulerConfig struct {
	Workers  int           `mapstructure:"workers"`
	Interval time.Duration `mapstructure:"interval"` // 0 = single pass
}

type NotifyConfig struct {
	ThresholdMinutes int          `mapstructure:"threshold_minutes"`
	Twilio           TwilioConfig `mapstructure:"twilio"`
}

type TwilioConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMs int    `mapstructure:"timeout_ms"`

	// credentials come from the environment only, never from file
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
}

type BrowserConfig struct {
	Mode            string        `mapstructure:"mode"` // amd64 | arch
	LocalURL        string        `mapstructure:"local_url"`
	RemoteURL       string        `mapstructure:"remote_url"`
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout"`
	WaitTimeout     time.Duration `mapstructure:"wait_timeout"`
}

// Endpoint returns the WebDriver endpoint for the configured mode:
// amd64 drives a local chromedriver, arch a remote grid hub.
func (b BrowserConfig) Endpoint() (string, error) {
	switch b.Mode {
	case "amd64":
		return b.LocalURL, nil
	case "arch":
		return b.RemoteURL, nil
	default:
		return "", fmt.Errorf("unknown browser mode %q (want amd64 or arch)", b.Mode)
	}
}

// Threshold returns the dedup cooldown as a duration.
func (n NotifyConfig) Threshold() time.Duration {
	return time.Duration(n.ThresholdMinutes) * time.Minute
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env
// overrides (RESY_*). Twilio credentials are bound to the conventional
// TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN variables.
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (RESY_*)
	v.SetEnvPrefix("RESY")
	v.AutomaticEnv()

	_ = v.BindEnv("notify.twilio.account_sid", "TWILIO_ACCOUNT_SID")
	_ = v.BindEnv("notify.twilio.auth_token", "TWILIO_AUTH_TOKEN")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
