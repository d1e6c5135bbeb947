package config

import (
	"time"

	"github.com/smazurov/alsaprobe/internal/logging"
)

// EnvPrefix is prepended to every env tag.
const EnvPrefix = "ALSAPROBE_"

const defaultDebounce = 500 * time.Millisecond

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"alsaprobe.toml"`

	// Probe settings
	Backend string `help:"Audio subsystem backend (ioctl, libasound)" short:"b" default:"ioctl" toml:"probe.backend" env:"PROBE_BACKEND"`
	Output  string `help:"Report format (text, json, toml)" short:"o" default:"text" toml:"probe.output" env:"PROBE_OUTPUT"`

	// Server settings
	Listen         string `help:"Address the serve command listens on" short:"l" default:":8091" toml:"server.listen" env:"SERVER_LISTEN"`
	ServeHotplug   bool   `help:"Re-probe on sound card hotplug while serving" default:"true" toml:"server.hotplug" env:"SERVER_HOTPLUG"`
	MetricsEnabled bool   `help:"Expose Prometheus metrics on /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Auth settings, both empty disables auth
	AuthUsername string `help:"Basic auth username for the API" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password for the API" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Watch settings
	WatchDebounce string `help:"Quiet period after a hotplug event before re-probing" default:"500ms" toml:"watch.debounce" env:"WATCH_DEBOUNCE"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingProbe   string `help:"Probe logging level" default:"info" toml:"logging.probe" env:"LOGGING_PROBE"`
	LoggingHotplug string `help:"Hotplug logging level" default:"info" toml:"logging.hotplug" env:"LOGGING_HOTPLUG"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

// LoggingConfig returns the logging configuration carried by the options.
func (o *Options) LoggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"probe":   o.LoggingProbe,
			"hotplug": o.LoggingHotplug,
			"api":     o.LoggingAPI,
		},
	}
}

// Debounce parses WatchDebounce, falling back to 500ms when it is empty,
// malformed or not positive.
func (o *Options) Debounce() time.Duration {
	d, err := time.ParseDuration(o.WatchDebounce)
	if err != nil || d <= 0 {
		return defaultDebounce
	}
	return d
}
