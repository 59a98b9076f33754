package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http/httpproxy"

	"github.com/Ch00k/cloud-compass/internal/regions"
)

func jsonHandler(t *testing.T, status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		assert.NoError(t, json.NewEncoder(w).Encode(body))
	}
}

func TestClient_FetchDirectory_Success(t *testing.T) {
	expected := regions.Directory{
		Clouds: []regions.Region{
			{
				Description: "Europe, Finland - UpCloud: Helsinki",
				ProviderTag: "upcloud-fi-hel",
				Latitude:    60.1699,
				Longitude:   24.9384,
				RegionCode:  "europe",
			},
		},
		Message: "Completed",
		Status:  200,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "cloud-compass/dev", r.Header.Get("User-Agent"))
		jsonHandler(t, http.StatusOK, expected)(w, r)
	}))
	defer server.Close()

	client := NewClient(WithDirectoryURL(server.URL))
	directory, err := client.FetchDirectory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected.Clouds, directory.Clouds)
}

func TestClient_FetchDirectory_MissingBodyStatusUsesHTTPStatus(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]any{
		"clouds": []map[string]any{{"cloud_name": "aws-eu-west-1"}},
	}))
	defer server.Close()

	directory, err := NewClient(WithDirectoryURL(server.URL)).FetchDirectory(context.Background())
	require.NoError(t, err)
	require.Len(t, directory.Clouds, 1)
	assert.Equal(t, "aws-eu-west-1", directory.Clouds[0].ProviderTag)
}

func TestClient_FetchDirectory_Failures(t *testing.T) {
	tests := []struct {
		name           string
		handler        func(t *testing.T) http.HandlerFunc
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "body status reports failure",
			handler: func(t *testing.T) http.HandlerFunc {
				return jsonHandler(t, http.StatusOK, regions.Directory{
					Message: "Service unavailable",
					Errors:  []regions.DirectoryError{{Error: "maintenance"}},
					Status:  503,
				})
			},
			expectedStatus: 503,
			expectedMsg:    "Service unavailable; maintenance",
		},
		{
			name: "http status reports failure",
			handler: func(t *testing.T) http.HandlerFunc {
				return jsonHandler(t, http.StatusInternalServerError, regions.Directory{Status: 200})
			},
			expectedStatus: 500,
			expectedMsg:    "cloud directory request failed",
		},
		{
			name: "non-json error page",
			handler: func(*testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					w.Header().Set("Content-Type", "text/html")
					w.WriteHeader(http.StatusBadGateway)
				}
			},
			expectedStatus: 502,
			expectedMsg:    "unexpected status code 502",
		},
		{
			name: "wrong content type",
			handler: func(*testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					w.Header().Set("Content-Type", "text/html")
					_, _ = w.Write([]byte("<html>Not JSON</html>"))
				}
			},
			expectedMsg: "unexpected content-type",
		},
		{
			name: "invalid json",
			handler: func(*testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					w.Header().Set("Content-Type", "application/json")
					_, _ = w.Write([]byte("invalid json"))
				}
			},
			expectedStatus: 200,
			expectedMsg:    "failed to parse API response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler(t))
			defer server.Close()

			_, err := NewClient(WithDirectoryURL(server.URL)).FetchDirectory(context.Background())
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.expectedStatus, apiErr.StatusCode)
			assert.Contains(t, err.Error(), tt.expectedMsg)
		})
	}
}

func TestClient_FetchDirectory_NoRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(WithDirectoryURL(server.URL)).FetchDirectory(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestClient_FetchDirectory_Cancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewClient(WithDirectoryURL(server.URL)).FetchDirectory(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_FetchDirectory_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(WithDirectoryURL(server.URL), WithTimeout(10*time.Millisecond))
	_, err := client.FetchDirectory(context.Background())
	require.Error(t, err)
}

func TestClient_FetchDirectory_CustomVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cloud-compass/1.2.3", r.Header.Get("User-Agent"))
		jsonHandler(t, http.StatusOK, regions.Directory{Status: 200})(w, r)
	}))
	defer server.Close()

	_, err := NewClient(WithDirectoryURL(server.URL), WithVersion("1.2.3")).FetchDirectory(context.Background())
	require.NoError(t, err)
}

func TestClient_FetchDirectory_ThroughProxy(t *testing.T) {
	var proxiedURL string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxiedURL = r.URL.String()
		jsonHandler(t, http.StatusOK, regions.Directory{Status: 200})(w, r)
	}))
	defer proxy.Close()

	client := NewClient(
		WithDirectoryURL("http://clouds.example.test/v1/clouds"),
		WithProxyConfig(&httpproxy.Config{HTTPProxy: proxy.URL}),
	)
	_, err := client.FetchDirectory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://clouds.example.test/v1/clouds", proxiedURL)
}

func TestClient_FetchDirectory_NoProxyBypassesProxy(t *testing.T) {
	target := httptest.NewServer(jsonHandler(t, http.StatusOK, regions.Directory{Status: 200}))
	defer target.Close()

	client := NewClient(
		WithDirectoryURL(target.URL),
		WithProxyConfig(&httpproxy.Config{HTTPProxy: "http://127.0.0.1:1", NoProxy: "*"}),
	)
	_, err := client.FetchDirectory(context.Background())
	require.NoError(t, err)
}
