package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"gopkg.in/yaml.v3"
)

// Default configuration constants
const (
	DefaultReceiver = "localhost:30005" // Beast output port of a local receiver
	DefaultLogDir   = "./logs"
	DefaultLogLevel = "info"
)

// Config holds application configuration. Fields map one-to-one to CLI
// flags; the YAML tags allow the same settings to come from a config file.
type Config struct {
	Receiver string `yaml:"receiver"` // host:port supplying the Beast stream
	Server   string `yaml:"server"`   // host:port of the multilateration server
	User     string `yaml:"user"`     // user information passed to the server
	NoUDP    bool   `yaml:"no-udp"`   // don't offer UDP transport to the server

	Lat     float64 `yaml:"lat"`     // receiver latitude, decimal degrees
	Lon     float64 `yaml:"lon"`     // receiver longitude, decimal degrees
	Alt     string  `yaml:"alt"`     // receiver altitude, metres unless suffixed ft/m
	Privacy bool    `yaml:"privacy"` // withhold receiver location from coverage maps

	LogDir       string `yaml:"log-dir"`
	LogRotateUTC bool   `yaml:"utc"`
	LogLevel     string `yaml:"log-level"`

	ConfigFile  string `yaml:"-"`
	ShowVersion bool   `yaml:"-"`
}

// LoadFile reads a YAML config file.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings that can be wrong in ways that only surface
// much later, so they fail at startup instead.
func (c *Config) Validate() error {
	if c.Receiver == "" {
		return fmt.Errorf("receiver address must not be empty")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lon)
	}
	if _, err := ParseAltitude(c.Alt); err != nil {
		return err
	}
	return nil
}

// Location returns the receiver position.
func (c *Config) Location() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lon)
}

// AltitudeMetres returns the receiver altitude in metres.
func (c *Config) AltitudeMetres() float64 {
	alt, _ := ParseAltitude(c.Alt)
	return alt
}

// ParseAltitude parses an altitude string. Bare numbers are metres; an "ft"
// or "m" suffix selects the unit. The empty string is altitude zero.
func ParseAltitude(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	factor := 1.0
	switch {
	case strings.HasSuffix(s, "ft"):
		factor = 0.3048
		s = strings.TrimSpace(strings.TrimSuffix(s, "ft"))
	case strings.HasSuffix(s, "m"):
		s = strings.TrimSpace(strings.TrimSuffix(s, "m"))
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid altitude %q: %w", s, err)
	}
	return v * factor, nil
}

// EnvOr returns the environment variable's value, or def when unset.
func EnvOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// EnvFloat is EnvOr for float-valued flags. Unparseable values fall back to
// def; flag validation reports them later if they matter.
func EnvFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// EnvBool is EnvOr for boolean flags.
func EnvBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
