package main

import (
	"context"
	"log"

	"github.com/jonboulle/clockwork"

	"github.com/Ch00k/cloud-compass/internal/cli"
	"github.com/Ch00k/cloud-compass/internal/compass"
	"github.com/Ch00k/cloud-compass/internal/distance"
	"github.com/Ch00k/cloud-compass/internal/logging"
	"github.com/Ch00k/cloud-compass/internal/regions"
)

// fetchDirectory fetches the cloud directory with optional debug timing
func fetchDirectory(
	ctx context.Context,
	clock clockwork.Clock,
	config *cli.Config,
	fetchDirectoryFn func(context.Context, *cli.Config) (*regions.Directory, error),
) (*regions.Directory, error) {
	start := clock.Now()
	defer func() {
		if config.LogLevel <= logging.LogLevelDebug {
			elapsed := clock.Since(start)
			log.Printf("Cloud directory fetch completed in %v", elapsed)
		}
	}()

	return fetchDirectoryFn(ctx, config)
}

// locateUser looks up the user's position with optional debug timing
func locateUser(
	ctx context.Context,
	clock clockwork.Clock,
	config *cli.Config,
	locateUserFn func(context.Context, *cli.Config) (distance.Point, error),
) (distance.Point, error) {
	start := clock.Now()
	defer func() {
		if config.LogLevel <= logging.LogLevelDebug {
			elapsed := clock.Since(start)
			log.Printf("User location lookup completed in %v", elapsed)
		}
	}()

	return locateUserFn(ctx, config)
}

// waitForView starts the session and returns its view once both lookups have
// settled, with optional debug timing
func waitForView(
	ctx context.Context,
	clock clockwork.Clock,
	logLevel logging.LogLevel,
	session *compass.Session,
) (compass.View, error) {
	start := clock.Now()
	defer func() {
		if logLevel <= logging.LogLevelDebug {
			elapsed := clock.Since(start)
			log.Printf("Session %s settled in %v", session.ID, elapsed)
		}
	}()

	session.Start(ctx)
	if err := session.Wait(ctx); err != nil {
		return compass.View{}, err
	}
	// Both lookups may settle in the same instant the user cancels
	if err := ctx.Err(); err != nil {
		return compass.View{}, err
	}

	return session.View(), nil
}
