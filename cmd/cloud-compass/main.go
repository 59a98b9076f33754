// Package main provides the command-line interface for cloud-compass.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Ch00k/cloud-compass/internal/api"
	"github.com/Ch00k/cloud-compass/internal/cli"
	"github.com/Ch00k/cloud-compass/internal/compass"
	"github.com/Ch00k/cloud-compass/internal/distance"
	"github.com/Ch00k/cloud-compass/internal/formatter"
	"github.com/Ch00k/cloud-compass/internal/logging"
	"github.com/Ch00k/cloud-compass/internal/metrics"
	"github.com/Ch00k/cloud-compass/internal/position"
	"github.com/Ch00k/cloud-compass/internal/regions"
	"github.com/Ch00k/cloud-compass/internal/server"
)

var Version = "dev"

// Dependencies encapsulates external dependencies for testing
type Dependencies struct {
	FetchDirectory func(context.Context, *cli.Config) (*regions.Directory, error)
	LocateUser     func(context.Context, *cli.Config) (distance.Point, error)
	NewMetrics     func() *metrics.Metrics
	Clock          clockwork.Clock
	Stdout         io.Writer
}

// DefaultDependencies returns production dependencies
func DefaultDependencies() Dependencies {
	return Dependencies{
		FetchDirectory: makeFetchDirectory(Version),
		LocateUser:     makeLocateUser(Version),
		NewMetrics:     metrics.NewMetrics,
		Clock:          clockwork.NewRealClock(),
		Stdout:         os.Stdout,
	}
}

// newClient creates an API client configured from the command line
func newClient(version string, config *cli.Config) *api.Client {
	opts := []api.ClientOption{
		api.WithVersion(version),
		api.WithLogLevel(config.LogLevel),
		api.WithTimeout(time.Duration(config.Timeout) * time.Millisecond),
	}
	if config.DirectoryURL != "" {
		opts = append(opts, api.WithDirectoryURL(config.DirectoryURL))
	}
	if config.GeoURL != "" {
		opts = append(opts, api.WithGeoURL(config.GeoURL))
	}
	return api.NewClient(opts...)
}

// makeFetchDirectory creates a FetchDirectory function that reads either the
// saved directory file or the remote directory
func makeFetchDirectory(version string) func(context.Context, *cli.Config) (*regions.Directory, error) {
	return func(ctx context.Context, config *cli.Config) (*regions.Directory, error) {
		if config.DirectoryFile != "" {
			return regions.ParseDirectoryFileWithLogLevel(config.DirectoryFile, config.LogLevel)
		}
		return newClient(version, config).FetchDirectory(ctx)
	}
}

// makeLocateUser creates a LocateUser function backed by the geo-IP service
func makeLocateUser(version string) func(context.Context, *cli.Config) (distance.Point, error) {
	return func(ctx context.Context, config *cli.Config) (distance.Point, error) {
		return newClient(version, config).Locate(ctx)
	}
}

func main() {
	// Create a context that can be cancelled with SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := run(ctx, os.Args[1:], DefaultDependencies()); err != nil {
		// Don't print error if user cancelled with Ctrl-C
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Operation cancelled")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		cancel()
		os.Exit(1)
	}
	cancel()
}

// directorySource wraps the directory dependency with timing
func directorySource(config *cli.Config, deps Dependencies) compass.DirectorySource {
	return compass.DirectorySourceFunc(func(ctx context.Context) (*regions.Directory, error) {
		return fetchDirectory(ctx, deps.Clock, config, deps.FetchDirectory)
	})
}

// positionSource picks where the observer position comes from
func positionSource(config *cli.Config, deps Dependencies) position.Source {
	switch {
	case config.Observer != nil:
		return position.Static(*config.Observer)
	case config.NoGeolocation:
		return position.Unsupported()
	default:
		return position.SourceFunc(func(ctx context.Context) (distance.Point, error) {
			return locateUser(ctx, deps.Clock, config, deps.LocateUser)
		})
	}
}

// runServeMode serves lookups over HTTP until ctx is cancelled
func runServeMode(ctx context.Context, config *cli.Config, deps Dependencies) error {
	// The server's own geo-IP position says nothing about its clients
	var fallback position.Source = position.Unsupported()
	if config.Observer != nil {
		fallback = position.Static(*config.Observer)
	}

	srv := server.NewServer(config.ServeAddr, server.Config{
		Directory: directorySource(config, deps),
		Position:  fallback,
		MatchMode: config.MatchMode,
		RankMode:  config.RankMode,
		Timeout:   time.Duration(config.Timeout) * time.Millisecond,
		LogLevel:  config.LogLevel,
		Metrics:   deps.NewMetrics(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	if config.LogLevel <= logging.LogLevelInfo {
		log.Println("Shutting down HTTP server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func run(ctx context.Context, args []string, deps Dependencies) error {
	// Parse command-line flags
	config, err := cli.ParseFlags(args, Version)
	if err != nil {
		return err
	}
	if config.LogLevel <= logging.LogLevelDebug {
		log.Printf("Config: %+v", config)
	}

	// Handle help flag
	if config.ShowHelp {
		cli.PrintUsage(deps.Stdout, Version)
		return nil
	}

	// Handle version flag
	if config.ShowVersion {
		_, _ = fmt.Fprintf(deps.Stdout, "cloud-compass %s\n", Version)
		return nil
	}

	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	// Start timing for the entire operation
	operationStart := deps.Clock.Now()
	defer func() {
		if config.LogLevel <= logging.LogLevelDebug {
			elapsed := deps.Clock.Since(operationStart)
			log.Printf("Total operation completed in %v", elapsed)
		}
	}()

	if config.ServeAddr != "" {
		return runServeMode(ctx, config, deps)
	}

	session := compass.NewSession(
		directorySource(config, deps),
		positionSource(config, deps),
		compass.WithMatchMode(config.MatchMode),
		compass.WithRankMode(config.RankMode),
		compass.WithPositionTimeout(time.Duration(config.Timeout)*time.Millisecond),
		compass.WithLogLevel(config.LogLevel),
		compass.WithClock(deps.Clock),
	)
	defer session.Close()
	session.SetProvider(config.Provider)

	if config.LogLevel <= logging.LogLevelDebug {
		log.Printf("Session %s: looking up %q", session.ID, config.Provider.Tag)
	}

	view, err := waitForView(ctx, deps.Clock, config.LogLevel, session)
	if err != nil {
		return err
	}

	// Replace with deterministic data if flag is set
	if config.DeterministicOutput {
		view = getDeterministicView(config.Provider)
	}

	_, _ = fmt.Fprint(deps.Stdout, formatter.FormatView(view))

	return nil
}
