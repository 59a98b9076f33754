package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Ch00k/cloud-compass/internal/logging"
	"github.com/Ch00k/cloud-compass/internal/regions"
)

// FetchDirectory fetches the cloud directory. The request is made once; a
// directory is only returned when its status indicates success.
func (c *Client) FetchDirectory(ctx context.Context) (*regions.Directory, error) {
	req, err := c.newRequest(ctx, c.directoryURL)
	if err != nil {
		if c.logLevel <= logging.LogLevelError {
			log.Printf("Failed to create HTTP request: %v", err)
		}
		return nil, err
	}

	if c.logLevel <= logging.LogLevelDebug {
		log.Printf("Sending GET request to %s", c.directoryURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logLevel <= logging.LogLevelError {
			log.Printf("HTTP request failed: %v", err)
		}
		return nil, fmt.Errorf("failed to fetch cloud directory: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.logLevel <= logging.LogLevelDebug {
		log.Printf("Received HTTP %d response", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		if !isSuccessStatus(resp.StatusCode) {
			return nil, &Error{
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("unexpected status code %d", resp.StatusCode),
			}
		}
		if c.logLevel <= logging.LogLevelError {
			log.Printf("Unexpected content type: %s (expected application/json)", contentType)
		}
		return nil, &Error{
			Err: fmt.Errorf("unexpected content-type: %s (expected application/json)", contentType),
		}
	}

	var directory regions.Directory
	if err := json.NewDecoder(resp.Body).Decode(&directory); err != nil {
		if c.logLevel <= logging.LogLevelError {
			log.Printf("Failed to parse JSON response: %v", err)
		}
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to parse API response: %w", err),
		}
	}

	// The body status wins unless it is absent or contradicts a failed HTTP status
	status := directory.Status
	if status == 0 || (isSuccessStatus(status) && !isSuccessStatus(resp.StatusCode)) {
		status = resp.StatusCode
	}
	if !isSuccessStatus(status) {
		if c.logLevel <= logging.LogLevelWarning {
			log.Printf("Cloud directory reported status %d: %s", status, directory.Message)
		}
		return nil, &Error{
			StatusCode: status,
			Err:        directoryFailure(&directory),
		}
	}

	if c.logLevel <= logging.LogLevelInfo {
		log.Printf("Fetched cloud directory: %d clouds", len(directory.Clouds))
	}

	return &directory, nil
}

// directoryFailure builds an error from the message and error entries of a failed directory response
func directoryFailure(directory *regions.Directory) error {
	parts := make([]string, 0, len(directory.Errors)+1)
	if directory.Message != "" {
		parts = append(parts, directory.Message)
	}
	for _, e := range directory.Errors {
		if e.Error != "" {
			parts = append(parts, e.Error)
		}
	}
	if len(parts) == 0 {
		return errors.New("cloud directory request failed")
	}
	return errors.New(strings.Join(parts, "; "))
}
