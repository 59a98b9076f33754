// Package distance provides great-circle distance calculation and distance ranking of regions.
package distance

import (
	"cmp"
	"log"
	"math"
	"slices"

	"github.com/Ch00k/cloud-compass/internal/logging"
	"github.com/Ch00k/cloud-compass/internal/regions"
)

// EarthRadiusKm is the mean Earth radius used by the haversine approximation
const EarthRadiusKm = 6372.8

// Point is a geographic coordinate in degrees
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance computes the great-circle distance between two points using the Haversine formula.
// Returns distance in kilometers. The Earth is treated as a sphere.
func Distance(observer, target Point) float64 {
	// Convert degrees to radians
	lat1Rad := degreesToRadians(observer.Latitude)
	lat2Rad := degreesToRadians(target.Latitude)
	deltaLat := degreesToRadians(target.Latitude - observer.Latitude)
	deltaLon := degreesToRadians(target.Longitude - observer.Longitude)

	// Haversine formula
	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Sin(deltaLon/2)*math.Sin(deltaLon/2)*
			math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// degreesToRadians converts degrees to radians
func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// RegionPoint returns the coordinates of a region
func RegionPoint(r regions.Region) Point {
	return Point{Latitude: r.Latitude, Longitude: r.Longitude}
}

// RankByDistance returns the regions that each beat the closest distance seen so far,
// in encounter order. The first region only seeds the running minimum and is never
// included, so a single region yields an empty result. Callers reverse the result to
// get the nearest region first.
func RankByDistance(candidates []regions.Region, observer Point) []regions.Region {
	return RankByDistanceWithLogLevel(candidates, observer, logging.LogLevelError)
}

// RankByDistanceWithLogLevel is RankByDistance with logging support
func RankByDistanceWithLogLevel(
	candidates []regions.Region,
	observer Point,
	logLevel logging.LogLevel,
) []regions.Region {
	ranked := []regions.Region{}
	if len(candidates) == 0 {
		return ranked
	}

	minDistance := Distance(observer, RegionPoint(candidates[0]))
	for _, candidate := range candidates[1:] {
		d := Distance(observer, RegionPoint(candidate))
		if d < minDistance {
			minDistance = d
			ranked = append(ranked, candidate)
		}
	}

	if logLevel <= logging.LogLevelDebug {
		log.Printf(
			"Ranked %d of %d regions from (%.4f, %.4f), closest at %.1f km",
			len(ranked),
			len(candidates),
			observer.Latitude,
			observer.Longitude,
			minDistance,
		)
	}

	return ranked
}

// SortByDistance returns all regions ordered by ascending distance from the observer.
// Ties keep their input order.
func SortByDistance(candidates []regions.Region, observer Point) []regions.Region {
	type scored struct {
		region   regions.Region
		distance float64
	}

	items := make([]scored, len(candidates))
	for i, r := range candidates {
		items[i] = scored{region: r, distance: Distance(observer, RegionPoint(r))}
	}

	slices.SortStableFunc(items, func(a, b scored) int {
		return cmp.Compare(a.distance, b.distance)
	})

	sorted := make([]regions.Region, len(items))
	for i, item := range items {
		sorted[i] = item.region
	}
	return sorted
}

// Reverse returns a new slice with the regions in reverse order
func Reverse(rs []regions.Region) []regions.Region {
	reversed := slices.Clone(rs)
	if reversed == nil {
		reversed = []regions.Region{}
	}
	slices.Reverse(reversed)
	return reversed
}

// Annotate returns copies of the regions with their distance from the observer set
func Annotate(rs []regions.Region, observer Point) []regions.Region {
	annotated := make([]regions.Region, len(rs))
	for i, r := range rs {
		d := Distance(observer, RegionPoint(r)) // Allocate new variable to avoid pointer aliasing
		r.DistanceKm = &d
		annotated[i] = r
	}
	return annotated
}
