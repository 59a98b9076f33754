// Package regions provides the cloud directory types and provider filtering.
package regions

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Ch00k/cloud-compass/internal/logging"
)

// FilterByProvider returns the regions whose provider tag contains tag, in directory order.
// An empty tag selects nothing.
func FilterByProvider(regions []Region, tag string) []Region {
	return FilterByProviderMode(regions, tag, MatchSubstring)
}

// FilterByProviderMode returns the regions matching tag under the given match mode
func FilterByProviderMode(regions []Region, tag string, mode MatchMode) []Region {
	filtered := []Region{}
	if tag == "" {
		return filtered
	}

	for _, region := range regions {
		if matchesProvider(region.ProviderTag, tag, mode) {
			filtered = append(filtered, region)
		}
	}

	return filtered
}

// matchesProvider reports whether a region's provider tag matches the selected tag
func matchesProvider(providerTag, tag string, mode MatchMode) bool {
	switch mode {
	case MatchPrefix:
		return providerTag == tag || strings.HasPrefix(providerTag, tag+"-")
	default:
		return strings.Contains(providerTag, tag)
	}
}

// ParseDirectoryFile reads and parses a saved cloud directory JSON file
func ParseDirectoryFile(path string) (*Directory, error) {
	return ParseDirectoryFileWithLogLevel(path, logging.LogLevelError)
}

// ParseDirectoryFileWithLogLevel reads and parses a saved cloud directory JSON file with logging support
func ParseDirectoryFileWithLogLevel(path string, logLevel logging.LogLevel) (*Directory, error) {
	if logLevel <= logging.LogLevelDebug {
		log.Printf("Reading directory file from: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if logLevel <= logging.LogLevelError {
			log.Printf("Failed to read directory file at %s: %v", path, err)
		}
		return nil, fmt.Errorf("failed to read directory file: %w", err)
	}

	var directory Directory
	if err := json.Unmarshal(data, &directory); err != nil {
		if logLevel <= logging.LogLevelError {
			log.Printf("Failed to parse JSON from directory file: %v", err)
		}
		return nil, fmt.Errorf("failed to parse directory file: %w", err)
	}

	if logLevel <= logging.LogLevelInfo {
		log.Printf("Parsed directory file: %d clouds", len(directory.Clouds))
	}

	return &directory, nil
}
