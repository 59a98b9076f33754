// Package compass composes the cloud directory, the observer position and the
// provider selection into an ordered list of nearby data centers.
package compass

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Ch00k/cloud-compass/internal/distance"
	"github.com/Ch00k/cloud-compass/internal/loader"
	"github.com/Ch00k/cloud-compass/internal/logging"
	"github.com/Ch00k/cloud-compass/internal/metrics"
	"github.com/Ch00k/cloud-compass/internal/position"
	"github.com/Ch00k/cloud-compass/internal/regions"
)

// DirectorySource fetches the cloud directory
type DirectorySource interface {
	FetchDirectory(ctx context.Context) (*regions.Directory, error)
}

// DirectorySourceFunc adapts a function to a DirectorySource
type DirectorySourceFunc func(ctx context.Context) (*regions.Directory, error)

// FetchDirectory calls f(ctx)
func (f DirectorySourceFunc) FetchDirectory(ctx context.Context) (*regions.Directory, error) {
	return f(ctx)
}

// RankMode selects how filtered regions are ordered
type RankMode int

// Rank mode constants
const (
	RankRecord RankMode = iota // Only regions that beat every earlier one, nearest first
	RankFull                   // All regions sorted by distance, nearest first
)

func (m RankMode) String() string {
	switch m {
	case RankFull:
		return "full"
	default:
		return "record"
	}
}

// ParseRankMode parses a rank mode string
func ParseRankMode(s string) (RankMode, error) {
	switch s {
	case "record":
		return RankRecord, nil
	case "full":
		return RankFull, nil
	default:
		return RankRecord, fmt.Errorf("invalid rank mode: %s (must be 'record' or 'full')", s)
	}
}

// Option configures a Session
type Option func(*Session)

// WithMatchMode sets how the provider selection is matched against regions
func WithMatchMode(mode regions.MatchMode) Option {
	return func(s *Session) {
		s.matchMode = mode
	}
}

// WithRankMode sets how filtered regions are ordered
func WithRankMode(mode RankMode) Option {
	return func(s *Session) {
		s.rankMode = mode
	}
}

// WithLogLevel sets the log level for the session
func WithLogLevel(logLevel logging.LogLevel) Option {
	return func(s *Session) {
		s.logLevel = logLevel
	}
}

// WithPositionTimeout bounds how long the position lookup may take
func WithPositionTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		s.positionTimeout = timeout
	}
}

// WithClock sets the clock used for timeouts and fetch durations
func WithClock(clock clockwork.Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithMetrics records session outcomes into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// Session owns the directory state, the position state and the provider selection
// of a single lookup. Derived lists are recomputed whenever one of them changes.
type Session struct {
	ID uuid.UUID

	directorySource DirectorySource
	positionSource  position.Source
	matchMode       regions.MatchMode
	rankMode        RankMode
	logLevel        logging.LogLevel
	positionTimeout time.Duration
	clock           clockwork.Clock
	metrics         *metrics.Metrics

	mu        sync.Mutex
	started   bool
	closed    bool
	directory loader.State[*regions.Directory]
	position  loader.State[distance.Point]
	provider  regions.ProviderFilter
	filtered  []regions.Region
	ranked    []regions.Region

	cancel        context.CancelFunc
	lookup        *position.Lookup
	directoryDone chan struct{}
	positionDone  chan struct{}
}

// NewSession creates a session that has not issued any request yet
func NewSession(directorySource DirectorySource, positionSource position.Source, opts ...Option) *Session {
	s := &Session{
		ID:              uuid.New(),
		directorySource: directorySource,
		positionSource:  positionSource,
		logLevel:        logging.LogLevelError,
		clock:           clockwork.NewRealClock(),
		directory:       loader.Idle[*regions.Directory](),
		position:        loader.Idle[distance.Point](),
		filtered:        []regions.Region{},
		ranked:          []regions.Region{},
		directoryDone:   make(chan struct{}),
		positionDone:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start issues the directory fetch and the position lookup. Both run independently
// and may resolve in any order. Start has no effect after the first call.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.directory, _ = s.directory.Transition(loader.Loading[*regions.Directory]())
	s.position, _ = s.position.Transition(loader.Loading[distance.Point]())

	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	var lookupOpts []position.LookupOption
	lookupOpts = append(lookupOpts, position.WithClock(s.clock))
	if s.positionTimeout > 0 {
		lookupOpts = append(lookupOpts, position.WithTimeout(s.positionTimeout))
	}
	// The position lookup is not tied to the session's lifetime; late results are dropped.
	s.lookup = position.Resolve(context.WithoutCancel(ctx), s.positionSource, lookupOpts...)
	lookup := s.lookup
	s.mu.Unlock()

	if s.logLevel <= logging.LogLevelDebug {
		log.Printf("Session %s: fetching cloud directory and locating observer", s.ID)
	}

	go s.fetchDirectory(fetchCtx)
	go func() {
		<-lookup.Done()
		p, err := lookup.Result()
		s.onPosition(p, err)
	}()
}

// fetchDirectory performs the directory request and records its outcome
func (s *Session) fetchDirectory(ctx context.Context) {
	start := s.clock.Now()
	directory, err := s.directorySource.FetchDirectory(ctx)
	elapsed := s.clock.Since(start)

	if s.metrics != nil {
		s.metrics.DirectoryFetchDuration.Observe(elapsed.Seconds())
	}
	if s.logLevel <= logging.LogLevelDebug {
		log.Printf("Session %s: directory fetch completed in %v", s.ID, elapsed)
	}

	s.onDirectory(directory, err)
}

// onDirectory is the directory fetch's resolution callback
func (s *Session) onDirectory(directory *regions.Directory, err error) {
	defer close(s.directoryDone)

	if err == nil && directory == nil {
		err = errors.New("empty cloud directory response")
	}

	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.metrics.DirectoryFetches.WithLabelValues(outcome).Inc()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if err != nil {
		if s.logLevel <= logging.LogLevelWarning {
			log.Printf("Session %s: failed to fetch cloud directory: %v", s.ID, err)
		}
		s.directory, _ = s.directory.Transition(loader.Failure[*regions.Directory](err))
	} else {
		if s.logLevel <= logging.LogLevelInfo {
			log.Printf("Session %s: cloud directory has %d regions", s.ID, len(directory.Clouds))
		}
		s.directory, _ = s.directory.Transition(loader.Success(directory))
	}

	s.refilter()
}

// onPosition is the position lookup's resolution callback
func (s *Session) onPosition(p distance.Point, err error) {
	defer close(s.positionDone)

	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = position.Classify(err).Kind.String()
		}
		s.metrics.PositionLookups.WithLabelValues(outcome).Inc()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if err != nil {
		if s.logLevel <= logging.LogLevelWarning {
			log.Printf("Session %s: observer position unavailable: %v", s.ID, err)
		}
		s.position, _ = s.position.Transition(loader.Failure[distance.Point](err))
	} else {
		if s.logLevel <= logging.LogLevelInfo {
			log.Printf("Session %s: observer at (%.4f, %.4f)", s.ID, p.Latitude, p.Longitude)
		}
		s.position, _ = s.position.Transition(loader.Success(p))
	}

	s.rerank()
}

// SetProvider changes the provider selection and recomputes the result
func (s *Session) SetProvider(provider regions.ProviderFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.provider == provider {
		return
	}

	if s.logLevel <= logging.LogLevelDebug {
		log.Printf("Session %s: provider selection changed to %q", s.ID, provider.Tag)
	}

	s.provider = provider
	s.refilter()
}

// refilter recomputes the filtered list and everything derived from it.
// Must be called with s.mu held.
func (s *Session) refilter() {
	directory, ok := s.directory.Data()
	if !ok {
		s.filtered = []regions.Region{}
	} else {
		s.filtered = regions.FilterByProviderMode(directory.Clouds, s.provider.Tag, s.matchMode)
	}

	if s.logLevel <= logging.LogLevelDebug {
		log.Printf("Session %s: %d regions match provider %q", s.ID, len(s.filtered), s.provider.Tag)
	}

	s.rerank()
}

// rerank recomputes the ranked list from the filtered list and the observer position.
// Must be called with s.mu held.
func (s *Session) rerank() {
	observer, ok := s.position.Data()
	if !ok {
		s.ranked = []regions.Region{}
		return
	}

	var ordered []regions.Region
	switch s.rankMode {
	case RankFull:
		ordered = distance.SortByDistance(s.filtered, observer)
	default:
		ordered = distance.Reverse(distance.RankByDistanceWithLogLevel(s.filtered, observer, s.logLevel))
	}

	s.ranked = distance.Annotate(ordered, observer)
}

// View returns a snapshot of what should currently be shown
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{Provider: s.provider, Regions: []regions.Region{}}

	switch s.directory.Status() {
	case loader.StatusIdle, loader.StatusLoading:
		v.State = ViewLoading
		v.Message = "Loading cloud directory..."
	case loader.StatusError:
		v.State = ViewError
		v.Err = s.directory.Err()
		v.Message = fmt.Sprintf("Failed to load cloud directory: %v", v.Err)
	default:
		switch {
		case s.provider.Tag == "":
			v.State = ViewNoSelection
			v.Message = "Select a cloud provider to list its data centers"
		case s.position.Status() == loader.StatusSuccess:
			observer, _ := s.position.Data()
			v.State = ViewRanked
			v.Title = RankedTitle
			v.Observer = &observer
			v.Regions = append(v.Regions, s.ranked...)
		default:
			v.State = ViewUnranked
			v.Regions = append(v.Regions, s.filtered...)
			if err := s.position.Err(); err != nil {
				v.Position = position.Classify(err)
				v.Reason = v.Position.Kind.String()
				v.Message = fmt.Sprintf("%s. Showing data centers in directory order.", v.Position.Message)
			} else {
				v.Reason = positionReasonPending
				v.Message = "Locating you... Showing data centers in directory order."
			}
		}
	}

	v.Status = v.State.String()

	if s.metrics != nil {
		s.metrics.Views.WithLabelValues(v.Status).Inc()
		if v.State == ViewRanked {
			s.metrics.RankedRegions.Observe(float64(len(v.Regions)))
		}
	}

	return v
}

// Wait blocks until both the directory fetch and the position lookup have resolved,
// or ctx is done
func (s *Session) Wait(ctx context.Context) error {
	for _, done := range []<-chan struct{}{s.directoryDone, s.positionDone} {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close aborts an in-flight directory fetch. Results arriving afterwards are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.cancel != nil {
		s.cancel()
	}
	if s.lookup != nil {
		s.lookup.Cancel()
	}
}
