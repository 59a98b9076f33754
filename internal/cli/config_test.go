package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Ch00k/cloud-compass/internal/compass"
	"github.com/Ch00k/cloud-compass/internal/logging"
	"github.com/Ch00k/cloud-compass/internal/regions"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := ParseFlags([]string{}, "dev")
	if err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	if cfg.Provider.Tag != "" {
		t.Errorf("Expected no provider selection, got %q", cfg.Provider.Tag)
	}
	if cfg.MatchMode != regions.MatchSubstring {
		t.Errorf("Expected match mode substring, got %v", cfg.MatchMode)
	}
	if cfg.RankMode != compass.RankRecord {
		t.Errorf("Expected rank mode record, got %v", cfg.RankMode)
	}
	if cfg.Observer != nil {
		t.Errorf("Expected no observer, got %+v", cfg.Observer)
	}
	if cfg.Timeout != 10000 {
		t.Errorf("Expected timeout to be 10000, got %d", cfg.Timeout)
	}
	if cfg.LogLevel != logging.LogLevelError {
		t.Errorf("Expected log level error, got %v", cfg.LogLevel)
	}
	if cfg.ShowHelp || cfg.ShowVersion || cfg.NoGeolocation || cfg.DeterministicOutput {
		t.Errorf("Expected boolean flags to be false, got %+v", cfg)
	}
}

func TestParseFlagsHelpAndVersion(t *testing.T) {
	tests := []struct {
		args        []string
		wantHelp    bool
		wantVersion bool
	}{
		{args: []string{"-h"}, wantHelp: true},
		{args: []string{"--help"}, wantHelp: true},
		{args: []string{"-v"}, wantVersion: true},
		{args: []string{"--version"}, wantVersion: true},
		// Help short-circuits parsing, so later invalid flags are ignored
		{args: []string{"--help", "--bogus"}, wantHelp: true},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cfg, err := ParseFlags(tt.args, "dev")
			if err != nil {
				t.Fatalf("Failed to parse flags: %v", err)
			}
			if cfg.ShowHelp != tt.wantHelp {
				t.Errorf("ShowHelp = %v, want %v", cfg.ShowHelp, tt.wantHelp)
			}
			if cfg.ShowVersion != tt.wantVersion {
				t.Errorf("ShowVersion = %v, want %v", cfg.ShowVersion, tt.wantVersion)
			}
		})
	}
}

func TestParseFlagsProvider(t *testing.T) {
	t.Run("Provider short flag", func(t *testing.T) {
		cfg, err := ParseFlags([]string{"-p", "azure"}, "dev")
		if err != nil {
			t.Fatalf("Failed to parse flags: %v", err)
		}
		if cfg.Provider.Tag != "azure" {
			t.Errorf("Expected provider azure, got %q", cfg.Provider.Tag)
		}
	})

	t.Run("Provider long flag with label", func(t *testing.T) {
		cfg, err := ParseFlags([]string{"--provider", "Google Cloud"}, "dev")
		if err != nil {
			t.Fatalf("Failed to parse flags: %v", err)
		}
		if cfg.Provider.Tag != "google" {
			t.Errorf("Expected provider google, got %q", cfg.Provider.Tag)
		}
	})

	t.Run("Provider with invalid value", func(t *testing.T) {
		_, err := ParseFlags([]string{"-p", "oracle"}, "dev")
		if err == nil {
			t.Error("Expected error for invalid provider, got nil")
		}
	})

	t.Run("Provider without value", func(t *testing.T) {
		_, err := ParseFlags([]string{"-p"}, "dev")
		if err == nil {
			t.Error("Expected error for missing provider value, got nil")
		}
	})

	t.Run("Strict provider", func(t *testing.T) {
		cfg, err := ParseFlags([]string{"-p", "do", "--strict-provider"}, "dev")
		if err != nil {
			t.Fatalf("Failed to parse flags: %v", err)
		}
		if cfg.MatchMode != regions.MatchPrefix {
			t.Errorf("Expected match mode prefix, got %v", cfg.MatchMode)
		}
	})
}

func TestParseFlagsRank(t *testing.T) {
	cfg, err := ParseFlags([]string{"--rank", "full"}, "dev")
	if err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	if cfg.RankMode != compass.RankFull {
		t.Errorf("Expected rank mode full, got %v", cfg.RankMode)
	}

	if _, err := ParseFlags([]string{"-r", "closest"}, "dev"); err == nil {
		t.Error("Expected error for invalid rank mode, got nil")
	}
}

func TestParseFlagsCoordinates(t *testing.T) {
	t.Run("Both coordinates", func(t *testing.T) {
		cfg, err := ParseFlags([]string{"--latitude", "51.0514", "--longitude", "13.7341"}, "dev")
		if err != nil {
			t.Fatalf("Failed to parse flags: %v", err)
		}
		if cfg.Observer == nil {
			t.Fatal("Expected observer to be set")
		}
		if cfg.Observer.Latitude != 51.0514 || cfg.Observer.Longitude != 13.7341 {
			t.Errorf("Unexpected observer %+v", *cfg.Observer)
		}
	})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "Latitude only", args: []string{"--latitude", "10"}, want: "must be used together"},
		{name: "Longitude only", args: []string{"--longitude", "10"}, want: "must be used together"},
		{name: "Latitude out of range", args: []string{"--latitude", "91", "--longitude", "0"}, want: "latitude must be between"},
		{name: "Longitude out of range", args: []string{"--latitude", "0", "--longitude", "-180.5"}, want: "longitude must be between"},
		{name: "Latitude not a number", args: []string{"--latitude", "north", "--longitude", "0"}, want: "invalid latitude value"},
		{name: "Latitude NaN", args: []string{"--latitude", "NaN", "--longitude", "0"}, want: "invalid latitude value"},
		{name: "Longitude infinite", args: []string{"--latitude", "0", "--longitude", "-Inf"}, want: "invalid longitude value"},
		{name: "Latitude without value", args: []string{"--latitude"}, want: "requires an argument"},
		{
			name: "Coordinates with no-geolocation",
			args: []string{"--latitude", "1", "--longitude", "1", "--no-geolocation"},
			want: "cannot be combined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlags(tt.args, "dev")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error to contain %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestParseFlagsDirectory(t *testing.T) {
	cfg, err := ParseFlags([]string{"-u", "http://localhost:9000/clouds", "-g", "http://localhost:9000/geo"}, "dev")
	if err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	if cfg.DirectoryURL != "http://localhost:9000/clouds" {
		t.Errorf("Unexpected directory URL %q", cfg.DirectoryURL)
	}
	if cfg.GeoURL != "http://localhost:9000/geo" {
		t.Errorf("Unexpected geo URL %q", cfg.GeoURL)
	}

	cfg, err = ParseFlags([]string{"--directory-file", "clouds.json"}, "dev")
	if err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	if cfg.DirectoryFile != "clouds.json" {
		t.Errorf("Unexpected directory file %q", cfg.DirectoryFile)
	}

	_, err = ParseFlags([]string{"-u", "http://localhost/clouds", "-f", "clouds.json"}, "dev")
	if err == nil {
		t.Error("Expected error for both directory URL and file, got nil")
	}
}

func TestParseFlagsTimeout(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{value: "100", want: 100},
		{value: "60000", want: 60000},
		{value: "99", wantErr: true},
		{value: "60001", wantErr: true},
		{value: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg, err := ParseFlags([]string{"-t", tt.value}, "dev")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFlags error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.Timeout != tt.want {
				t.Errorf("Timeout = %d, want %d", cfg.Timeout, tt.want)
			}
		})
	}
}

func TestParseFlagsServeAndLogLevel(t *testing.T) {
	cfg, err := ParseFlags([]string{"--serve", ":8080", "-l", "debug"}, "dev")
	if err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	if cfg.ServeAddr != ":8080" {
		t.Errorf("Expected serve address :8080, got %q", cfg.ServeAddr)
	}
	if cfg.LogLevel != logging.LogLevelDebug {
		t.Errorf("Expected log level debug, got %v", cfg.LogLevel)
	}

	if _, err := ParseFlags([]string{"-l", "verbose"}, "dev"); err == nil {
		t.Error("Expected error for invalid log level, got nil")
	}
}

func TestParseFlagsDeterministicOutput(t *testing.T) {
	cfg, err := ParseFlags([]string{"--deterministic-output"}, "dev")
	if err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	if !cfg.DeterministicOutput {
		t.Error("Expected deterministic output in dev builds")
	}

	cfg, err = ParseFlags([]string{"--deterministic-output"}, "1.0.0")
	if err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	if cfg.DeterministicOutput {
		t.Error("Expected deterministic output to be ignored in release builds")
	}
}

func TestParseFlagsUnknownAndUnexpected(t *testing.T) {
	_, err := ParseFlags([]string{"--unknown"}, "dev")
	if err == nil || !strings.Contains(err.Error(), "unknown flag: --unknown") {
		t.Errorf("Expected unknown flag error, got %v", err)
	}

	_, err = ParseFlags([]string{"aws"}, "dev")
	if err == nil || !strings.Contains(err.Error(), "unexpected argument: aws") {
		t.Errorf("Expected unexpected argument error, got %v", err)
	}
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf, "1.2.3")

	output := buf.String()
	for _, want := range []string{"cloud-compass 1.2.3", "--provider", "--latitude", "--serve", "--rank"} {
		if !strings.Contains(output, want) {
			t.Errorf("Usage should contain %q", want)
		}
	}
}
