package main

import (
	"github.com/Ch00k/cloud-compass/internal/compass"
	"github.com/Ch00k/cloud-compass/internal/distance"
	"github.com/Ch00k/cloud-compass/internal/regions"
)

// getDeterministicObserver returns a fixed observer position for testing/documentation
func getDeterministicObserver() distance.Point {
	return distance.Point{Latitude: 51.0514, Longitude: 13.7341}
}

// getDeterministicRegions returns a fixed set of data centers for testing/documentation
func getDeterministicRegions() []regions.Region {
	return []regions.Region{
		{
			Description: "Europe, Germany - Amazon Web Services: Frankfurt",
			ProviderTag: "aws-eu-central-1",
			Latitude:    50.11,
			Longitude:   8.68,
			RegionCode:  "europe",
		},
		{
			Description: "Europe, Sweden - Amazon Web Services: Stockholm",
			ProviderTag: "aws-eu-north-1",
			Latitude:    59.33,
			Longitude:   18.06,
			RegionCode:  "europe",
		},
		{
			Description: "Europe, Ireland - Amazon Web Services: Ireland",
			ProviderTag: "aws-eu-west-1",
			Latitude:    53.0,
			Longitude:   -8.0,
			RegionCode:  "europe",
		},
	}
}

// getDeterministicView returns a fixed ranked view for testing/documentation.
// Distances are computed from the fixed observer so the table stays consistent.
func getDeterministicView(provider regions.ProviderFilter) compass.View {
	if provider.Tag == "" {
		provider = regions.Providers[0]
	}
	observer := getDeterministicObserver()

	return compass.View{
		State:    compass.ViewRanked,
		Status:   compass.ViewRanked.String(),
		Title:    compass.RankedTitle,
		Provider: provider,
		Observer: &observer,
		Regions:  distance.Annotate(distance.SortByDistance(getDeterministicRegions(), observer), observer),
	}
}
