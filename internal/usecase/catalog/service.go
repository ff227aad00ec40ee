package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/simaogato/adscope/internal/domain"
	"github.com/simaogato/adscope/internal/log"
)

// Selector labels for the two built-in options
const (
	LabelUnselected = "Select Location"
	LabelAll        = "All"
)

// Option is one entry of the location selector
type Option struct {
	Label string
	Value string
}

// Policy bounds the catalog load
type Policy struct {
	Attempts   int           // Total attempts, at least 1
	RetryDelay time.Duration // Pause between attempts
	Timeout    time.Duration // Per attempt
}

// DefaultPolicy returns the load policy used when none is configured
func DefaultPolicy() Policy {
	return Policy{
		Attempts:   3,
		RetryDelay: 500 * time.Millisecond,
		Timeout:    10 * time.Second,
	}
}

// Service loads the selectable locations once and serves them afterwards
type Service struct {
	Source domain.LocationSource
	Policy Policy

	logger *log.Logger

	once      sync.Once
	mu        sync.RWMutex
	locations []domain.Location
	byName    map[string]domain.Location
	loadErr   error
	loaded    bool
}

// NewService creates a new catalog Service instance
func NewService(source domain.LocationSource, policy Policy, logger *log.Logger) *Service {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Timeout <= 0 {
		policy.Timeout = DefaultPolicy().Timeout
	}
	return &Service{
		Source: source,
		Policy: policy,
		logger: logger.WithComponent(log.ComponentCatalog),
		byName: make(map[string]domain.Location),
	}
}

// Load fetches the catalog. Only the first call reaches the source;
// later calls return the same outcome.
// On failure the catalog stays empty and the error is returned to the caller.
func (s *Service) Load(ctx context.Context) ([]domain.Location, error) {
	s.once.Do(func() {
		locations, err := s.fetch(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.loadErr = err
			return
		}
		s.store(locations)
		s.loaded = true
	})

	return s.Locations(), s.Err()
}

func (s *Service) fetch(ctx context.Context) ([]domain.Location, error) {
	var lastErr error

	for attempt := 1; attempt <= s.Policy.Attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.Policy.Timeout)
		locations, err := s.Source.ListLocations(attemptCtx)
		cancel()

		if err == nil {
			s.logger.InfoContext(ctx, "catalog loaded", log.FieldRecords, len(locations), log.FieldAttempt, attempt)
			return locations, nil
		}

		lastErr = err
		fields := log.NewFields().WithOperation(log.OpLoad)
		fields[log.FieldAttempt] = attempt
		s.logger.LogError(ctx, "catalog load attempt failed", err, domain.ErrorType(err), fields)

		if attempt == s.Policy.Attempts || ctx.Err() != nil {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to load locations: %w", errors.Join(lastErr, ctx.Err()))
		case <-time.After(s.Policy.RetryDelay):
		}
	}

	return nil, fmt.Errorf("failed to load locations: %w", lastErr)
}

// store must be called with s.mu held
func (s *Service) store(locations []domain.Location) {
	s.locations = make([]domain.Location, 0, len(locations))
	for _, loc := range locations {
		if err := loc.Validate(); err != nil {
			s.logger.Warn("skipping location", log.FieldError, err.Error(), "location_id", loc.ID.String())
			continue
		}
		if _, exists := s.byName[loc.Name]; exists {
			s.logger.Warn("skipping duplicate location name", "location", loc.Name, "location_id", loc.ID.String())
			continue
		}
		s.byName[loc.Name] = loc
		s.locations = append(s.locations, loc)
	}
}

// Locations returns the loaded locations in catalog order
func (s *Service) Locations() []domain.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Location, len(s.locations))
	copy(out, s.locations)
	return out
}

// Options returns the selector entries: the two built-in options, then every location
func (s *Service) Options() []Option {
	s.mu.RLock()
	defer s.mu.RUnlock()

	options := make([]Option, 0, len(s.locations)+2)
	options = append(options,
		Option{Label: LabelUnselected, Value: domain.SelectionValueNone},
		Option{Label: LabelAll, Value: domain.SelectionValueAll},
	)
	for _, loc := range s.locations {
		options = append(options, Option{Label: loc.Name, Value: loc.Name})
	}
	return options
}

// Lookup finds a location by name
func (s *Service) Lookup(name string) (domain.Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.byName[name]
	return loc, ok
}

// Loaded reports whether the catalog loaded successfully
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Err returns the load failure, if any
func (s *Service) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}
