package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/Ch00k/cloud-compass/internal/distance"
	"github.com/Ch00k/cloud-compass/internal/logging"
	"github.com/Ch00k/cloud-compass/internal/position"
)

// UserLocation represents the response from the geo-IP lookup service
type UserLocation struct {
	IP        string  `json:"ip"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country_name"`
	City      string  `json:"city"`
	Failed    bool    `json:"error"`
	Reason    string  `json:"reason"`
}

// GetUserLocation fetches the user's current geographic location from the geo-IP service
func (c *Client) GetUserLocation(ctx context.Context) (*UserLocation, error) {
	req, err := c.newRequest(ctx, c.geoURL)
	if err != nil {
		return nil, err
	}

	if c.logLevel <= logging.LogLevelDebug {
		log.Printf("Sending GET request to %s", c.geoURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logLevel <= logging.LogLevelError {
			log.Printf("HTTP request failed: %v", err)
		}
		return nil, fmt.Errorf("failed to fetch user location: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		if c.logLevel <= logging.LogLevelWarning {
			log.Printf("Unexpected HTTP status code: %d", resp.StatusCode)
		}
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code %d", resp.StatusCode),
		}
	}

	var location UserLocation
	if err := json.NewDecoder(resp.Body).Decode(&location); err != nil {
		if c.logLevel <= logging.LogLevelError {
			log.Printf("Failed to parse JSON response: %v", err)
		}
		return nil, &Error{Err: fmt.Errorf("failed to parse API response: %w", err)}
	}

	if location.Failed {
		return nil, &Error{Err: fmt.Errorf("geo-IP lookup failed: %s", location.Reason)}
	}

	if c.logLevel <= logging.LogLevelInfo {
		log.Printf(
			"Successfully fetched user location: %s, %s (%.4f, %.4f)",
			location.City,
			location.Country,
			location.Latitude,
			location.Longitude,
		)
	}

	return &location, nil
}

// Locate implements position.Source on top of the geo-IP service
func (c *Client) Locate(ctx context.Context) (distance.Point, error) {
	location, err := c.GetUserLocation(ctx)
	if err != nil {
		return distance.Point{}, classifyLocateError(err)
	}
	return distance.Point{Latitude: location.Latitude, Longitude: location.Longitude}, nil
}

// classifyLocateError maps transport and HTTP failures onto geolocation error kinds
func classifyLocateError(err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return position.NewError(position.KindPermissionDenied, position.ErrPermissionDenied.Message, err)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return position.NewError(position.KindTimeout, position.ErrTimeout.Message, err)
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return position.NewError(position.KindTimeout, position.ErrTimeout.Message, err)
	}

	return position.NewError(position.KindUnavailable, position.ErrUnavailable.Message, err)
}

var _ position.Source = (*Client)(nil)
