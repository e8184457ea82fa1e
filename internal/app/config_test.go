package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Receiver: DefaultReceiver,
		Lat:      51.47,
		Lon:      -0.45,
		Alt:      "25m",
		LogLevel: DefaultLogLevel,
	}
}

func TestParseAltitude(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"100", 100, false},
		{"100m", 100, false},
		{"-12.5", -12.5, false},
		{"328ft", 99.9744, false},
		{"25 m", 25, false},
		{"abc", 0, true},
		{"12q", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAltitude(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.Receiver = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Lat = 91
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Lon = -180.5
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Alt = "high"
	assert.Error(t, cfg.Validate())
}

func TestConfigLocation(t *testing.T) {
	cfg := validConfig()
	loc := cfg.Location()

	assert.InDelta(t, 51.47, loc.Lat.Degrees(), 1e-9)
	assert.InDelta(t, -0.45, loc.Lng.Degrees(), 1e-9)
	assert.InDelta(t, 25.0, cfg.AltitudeMetres(), 1e-9)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gomlat.yaml")
	content := []byte("receiver: 10.0.0.5:30005\nlat: 40.6\nlon: -73.7\nalt: 13ft\nprivacy: true\nlog-level: debug\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5:30005", cfg.Receiver)
	assert.InDelta(t, 40.6, cfg.Lat, 1e-9)
	assert.InDelta(t, -73.7, cfg.Lon, 1e-9)
	assert.Equal(t, "13ft", cfg.Alt)
	assert.True(t, cfg.Privacy)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("receiver: [unterminated"), 0644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("GOMLAT_TEST_STR", "hello")
	assert.Equal(t, "hello", EnvOr("GOMLAT_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", EnvOr("GOMLAT_TEST_UNSET", "fallback"))

	t.Setenv("GOMLAT_TEST_FLOAT", "51.47")
	assert.InDelta(t, 51.47, EnvFloat("GOMLAT_TEST_FLOAT", 0), 1e-9)
	assert.InDelta(t, 1.5, EnvFloat("GOMLAT_TEST_UNSET", 1.5), 1e-9)
	t.Setenv("GOMLAT_TEST_FLOAT", "not-a-number")
	assert.InDelta(t, 2.5, EnvFloat("GOMLAT_TEST_FLOAT", 2.5), 1e-9)

	t.Setenv("GOMLAT_TEST_BOOL", "true")
	assert.True(t, EnvBool("GOMLAT_TEST_BOOL", false))
	assert.False(t, EnvBool("GOMLAT_TEST_UNSET", false))
}
