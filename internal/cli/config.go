// Package cli provides command-line interface configuration and flag parsing functionality.
package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Ch00k/cloud-compass/internal/compass"
	"github.com/Ch00k/cloud-compass/internal/distance"
	"github.com/Ch00k/cloud-compass/internal/logging"
	"github.com/Ch00k/cloud-compass/internal/regions"
)

// Config holds all command-line configuration options for the application.
type Config struct {
	Provider            regions.ProviderFilter
	MatchMode           regions.MatchMode
	RankMode            compass.RankMode
	Observer            *distance.Point
	NoGeolocation       bool
	DirectoryURL        string
	DirectoryFile       string
	GeoURL              string
	Timeout             int
	ServeAddr           string
	ShowHelp            bool
	ShowVersion         bool
	LogLevel            logging.LogLevel
	DeterministicOutput bool
}

// ParseFlags parses command-line arguments manually to support GNU-style long flags
func ParseFlags(args []string, version string) (*Config, error) {
	cfg := &Config{
		Timeout:  10000,
		LogLevel: logging.LogLevelError,
	}

	var latitude, longitude *float64

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "-h" || arg == "--help":
			cfg.ShowHelp = true
			return cfg, nil

		case arg == "-v" || arg == "--version":
			cfg.ShowVersion = true
			return cfg, nil

		case arg == "-p" || arg == "--provider":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			i++
			provider, err := regions.ParseProvider(args[i])
			if err != nil {
				return nil, err
			}
			cfg.Provider = provider

		case arg == "--strict-provider":
			cfg.MatchMode = regions.MatchPrefix

		case arg == "-r" || arg == "--rank":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			i++
			mode, err := compass.ParseRankMode(args[i])
			if err != nil {
				return nil, err
			}
			cfg.RankMode = mode

		case arg == "--latitude":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			i++
			lat, err := strconv.ParseFloat(args[i], 64)
			if err != nil || math.IsNaN(lat) || math.IsInf(lat, 0) {
				return nil, fmt.Errorf("invalid latitude value: %s", args[i])
			}
			if lat < -90 || lat > 90 {
				return nil, fmt.Errorf("latitude must be between -90 and 90")
			}
			latitude = &lat

		case arg == "--longitude":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			i++
			lon, err := strconv.ParseFloat(args[i], 64)
			if err != nil || math.IsNaN(lon) || math.IsInf(lon, 0) {
				return nil, fmt.Errorf("invalid longitude value: %s", args[i])
			}
			if lon < -180 || lon > 180 {
				return nil, fmt.Errorf("longitude must be between -180 and 180")
			}
			longitude = &lon

		case arg == "--no-geolocation":
			cfg.NoGeolocation = true

		case arg == "-u" || arg == "--directory-url":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			i++
			cfg.DirectoryURL = args[i]

		case arg == "-f" || arg == "--directory-file":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			i++
			cfg.DirectoryFile = args[i]

		case arg == "-g" || arg == "--geo-url":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			i++
			cfg.GeoURL = args[i]

		case arg == "-t" || arg == "--timeout":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			i++
			timeout, err := strconv.Atoi(args[i])
			if err != nil {
				return nil, fmt.Errorf("invalid timeout value: %s", args[i])
			}
			if timeout < 100 || timeout > 60000 {
				return nil, fmt.Errorf("timeout must be between 100 and 60000")
			}
			cfg.Timeout = timeout

		case arg == "-s" || arg == "--serve":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			i++
			cfg.ServeAddr = args[i]

		case arg == "-l" || arg == "--log-level":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			i++
			level, err := logging.ParseLogLevel(args[i])
			if err != nil {
				return nil, err
			}
			cfg.LogLevel = level

		case arg == "--deterministic-output":
			// Only enable in dev builds, silently ignore otherwise
			if version == "dev" {
				cfg.DeterministicOutput = true
			}

		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown flag: %s", arg)

		default:
			return nil, fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	if (latitude == nil) != (longitude == nil) {
		return nil, fmt.Errorf("--latitude and --longitude must be used together")
	}
	if latitude != nil {
		if cfg.NoGeolocation {
			return nil, fmt.Errorf("--no-geolocation cannot be combined with --latitude and --longitude")
		}
		cfg.Observer = &distance.Point{Latitude: *latitude, Longitude: *longitude}
	}

	if cfg.DirectoryURL != "" && cfg.DirectoryFile != "" {
		return nil, fmt.Errorf("--directory-url and --directory-file are mutually exclusive")
	}

	return cfg, nil
}

// PrintUsage outputs the usage information and command-line options to the writer.
func PrintUsage(w io.Writer, version string) {
	_, _ = fmt.Fprintf(w, `cloud-compass %s

Find the cloud data centers nearest to your current location.

USAGE:
    cloud-compass [OPTIONS]

SELECTION OPTIONS:
    -p, --provider NAME           Cloud provider (aws, azure, google, do, upcloud)
        --strict-provider         Match the provider as a name prefix instead of a substring
    -r, --rank MODE               Ranking mode: record (default) or full

LOCATION OPTIONS:
        --latitude DEG            Your latitude (use with --longitude, skips geo-IP lookup)
        --longitude DEG           Your longitude (use with --latitude)
        --no-geolocation          Do not look up your location; list data centers unranked
    -g, --geo-url URL             Geo-IP lookup endpoint (default: https://ipapi.co/json/)

DIRECTORY OPTIONS:
    -u, --directory-url URL       Cloud directory endpoint (default: https://api.aiven.io/v1/clouds)
    -f, --directory-file PATH     Read the cloud directory from a saved JSON file
    -t, --timeout MS              Request timeout in milliseconds (default: 10000, range: 100-60000)

SERVER OPTIONS:
    -s, --serve ADDR              Serve results over HTTP on ADDR (e.g. :8080)

OTHER OPTIONS:
    -l, --log-level LEVEL         Set log level (debug, info, warning, error; default: error)
    -h, --help                    Show this help message
    -v, --version                 Show version information
`, version)
}
