package regions

import (
	"fmt"
	"strings"
)

// ProviderFilter is one of the selectable cloud providers
type ProviderFilter struct {
	Label string `json:"label"`
	Tag   string `json:"tag"`
}

// Providers lists the selectable providers in display order
var Providers = []ProviderFilter{
	{Label: "AWS", Tag: "aws"},
	{Label: "Azure", Tag: "azure"},
	{Label: "Google Cloud", Tag: "google"},
	{Label: "Digital Ocean", Tag: "do"},
	{Label: "UpCloud", Tag: "upcloud"},
}

// ParseProvider resolves a provider by tag or label, case-insensitively.
// An empty string yields the zero ProviderFilter (no selection).
func ParseProvider(s string) (ProviderFilter, error) {
	if s == "" {
		return ProviderFilter{}, nil
	}
	for _, p := range Providers {
		if strings.EqualFold(s, p.Tag) || strings.EqualFold(s, p.Label) {
			return p, nil
		}
	}
	return ProviderFilter{}, fmt.Errorf(
		"invalid provider: %s (must be one of %s)",
		s,
		strings.Join(ProviderTags(), ", "),
	)
}

// ProviderTags returns the tags of all selectable providers
func ProviderTags() []string {
	tags := make([]string, len(Providers))
	for i, p := range Providers {
		tags[i] = p.Tag
	}
	return tags
}

// MatchMode controls how a provider tag is compared against a region's provider tag.
type MatchMode int

// Match mode constants
const (
	MatchSubstring MatchMode = iota // Tag appears anywhere in the region's provider tag
	MatchPrefix                     // Region's provider tag is the tag or starts with "tag-"
)

func (m MatchMode) String() string {
	switch m {
	case MatchSubstring:
		return "substring"
	case MatchPrefix:
		return "prefix"
	default:
		return "substring"
	}
}

// Region is one data-center location entry from the cloud directory
type Region struct {
	Description string  `json:"cloud_description"`
	ProviderTag string  `json:"cloud_name"`
	Latitude    float64 `json:"geo_latitude"`
	Longitude   float64 `json:"geo_longitude"`
	RegionCode  string  `json:"geo_region"`

	// Set for display only, never part of the directory payload
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// DirectoryError is a single error entry reported by the directory
type DirectoryError struct {
	Error string `json:"error"`
}

// Directory is the response body of the cloud directory endpoint
type Directory struct {
	Clouds   []Region         `json:"clouds"`
	Errors   []DirectoryError `json:"errors"`
	Message  string           `json:"message"`
	MoreInfo string           `json:"more_info"`
	Status   int              `json:"status"`
}
