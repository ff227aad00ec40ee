package scope

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simaogato/adscope/internal/domain"
	"github.com/simaogato/adscope/internal/log"
)

// DefaultFetchTimeout bounds each fetch when no timeout is configured
const DefaultFetchTimeout = 10 * time.Second

// Sink receives tagged fetch results. The aggregation engine implements it.
type Sink interface {
	Begin(sel domain.Selection) domain.FetchTag
	Apply(tag domain.FetchTag, kind domain.RecordKind, records []domain.Record) bool
	Fail(tag domain.FetchTag, kind domain.RecordKind, err error) bool
}

// Resolver translates selection changes into fetches and feeds their results to the sink
type Resolver struct {
	Source       domain.RecordSource
	Sink         Sink
	FetchTimeout time.Duration

	logger *log.Logger

	pending  sync.WaitGroup // One per selection with outstanding fetches
	inflight atomic.Int64
}

// NewResolver creates a new Resolver instance
func NewResolver(source domain.RecordSource, sink Sink, fetchTimeout time.Duration, logger *log.Logger) *Resolver {
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &Resolver{
		Source:       source,
		Sink:         sink,
		FetchTimeout: fetchTimeout,
		logger:       logger.WithComponent(log.ComponentScope),
	}
}

// SelectByValue parses a selector value ("", "all" or a location name) and selects it
func (r *Resolver) SelectByValue(ctx context.Context, value string) domain.FetchTag {
	return r.OnSelectionChanged(ctx, domain.ParseSelection(value))
}

// OnSelectionChanged activates sel and issues the fetches it needs.
// Logic:
//   - Unselected: the sink is cleared, no fetch
//   - All: ad spends and crypto earnings without a location filter, concurrently
//   - Location(name): both kinds filtered by name, concurrently
//
// It returns without waiting for the fetches. Each result is applied on its own
// as soon as it arrives; results of a superseded selection are discarded by the sink.
// Fetches outlive ctx cancellation but keep its values; each is bounded by FetchTimeout.
func (r *Resolver) OnSelectionChanged(ctx context.Context, sel domain.Selection) domain.FetchTag {
	tag := r.Sink.Begin(sel)

	fields := log.NewFields().
		WithFetch(sel.String(), tag.Generation, "").
		WithRequestID(tag.RequestID.String()).
		WithOperation(log.OpSelect)
	r.logger.InfoContext(ctx, "selection changed", fields.ToSlice()...)

	location, needsFetch := sel.LocationFilter()
	if !needsFetch {
		return tag
	}

	base := context.WithoutCancel(ctx)
	g := new(errgroup.Group)

	g.Go(func() error {
		return r.fetch(base, tag, domain.RecordKindAdSpend, func(fetchCtx context.Context) ([]domain.Record, error) {
			spends, err := r.Source.ListAdSpends(fetchCtx, location)
			if err != nil {
				return nil, err
			}
			records := make([]domain.Record, 0, len(spends))
			for _, s := range spends {
				records = append(records, s.ToRecord(location))
			}
			return records, nil
		})
	})

	g.Go(func() error {
		return r.fetch(base, tag, domain.RecordKindCryptoEarning, func(fetchCtx context.Context) ([]domain.Record, error) {
			earnings, err := r.Source.ListCryptoEarnings(fetchCtx, location)
			if err != nil {
				return nil, err
			}
			records := make([]domain.Record, 0, len(earnings))
			for _, e := range earnings {
				records = append(records, e.ToRecord(location))
			}
			return records, nil
		})
	})

	r.pending.Add(1)
	r.inflight.Add(1)
	go func() {
		defer r.pending.Done()
		defer r.inflight.Add(-1)

		if err := g.Wait(); err != nil {
			fields := log.NewFields().
				WithFetch(sel.String(), tag.Generation, "").
				WithRequestID(tag.RequestID.String()).
				WithOperation(log.OpFetch)
			r.logger.WarnContext(base, "selection settled with failed fetches", fields.WithError(err).ToSlice()...)
		}
	}()

	return tag
}

// Wait blocks until the fetches of every selection made before the call have settled.
// Selections made while it blocks are waited for as well, as long as earlier fetches are still running.
func (r *Resolver) Wait() {
	r.pending.Wait()
}

// Pending returns the number of selections whose fetches have not all settled
func (r *Resolver) Pending() int {
	return int(r.inflight.Load())
}

// fetch runs one fetch under the fetch timeout and hands its outcome to the sink.
// The returned error is the classified failure, or nil when the records were handed over.
// A panicking source is reported as a failure of that kind only.
func (r *Resolver) fetch(base context.Context, tag domain.FetchTag, kind domain.RecordKind, load func(context.Context) ([]domain.Record, error)) (err error) {
	fetchCtx, cancel := context.WithTimeout(base, r.FetchTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s fetch panicked: %v", kind, p)
			r.Sink.Fail(tag, kind, err)
			r.logger.ErrorContext(fetchCtx, "fetch panicked", log.FieldKind, string(kind), log.FieldError, err.Error())
		}
	}()

	records, err := load(fetchCtx)
	if err != nil {
		err = classify(err)
		r.fail(fetchCtx, tag, kind, err)
		return err
	}

	r.apply(fetchCtx, tag, kind, records)
	return nil
}

func (r *Resolver) apply(ctx context.Context, tag domain.FetchTag, kind domain.RecordKind, records []domain.Record) {
	fields := log.NewFields().
		WithFetch(tag.Selection.String(), tag.Generation, string(kind)).
		WithRequestID(tag.RequestID.String()).
		WithOperation(log.OpFetch)
	fields[log.FieldRecords] = len(records)

	if !r.Sink.Apply(tag, kind, records) {
		r.logger.DebugContext(ctx, "fetch result superseded", fields.ToSlice()...)
		return
	}
	r.logger.InfoContext(ctx, "fetch applied", fields.ToSlice()...)
}

func (r *Resolver) fail(ctx context.Context, tag domain.FetchTag, kind domain.RecordKind, err error) {
	fields := log.NewFields().
		WithFetch(tag.Selection.String(), tag.Generation, string(kind)).
		WithRequestID(tag.RequestID.String()).
		WithOperation(log.OpFetch)

	if !r.Sink.Fail(tag, kind, err) {
		r.logger.DebugContext(ctx, "failed fetch superseded", fields.WithError(err).ToSlice()...)
		return
	}
	r.logger.LogError(ctx, "fetch failed", err, domain.ErrorType(err), fields)
}

// classify makes sure every fetch failure is a NetworkError or a ParseError
func classify(err error) error {
	var netErr *domain.NetworkError
	var parseErr *domain.ParseError
	if errors.As(err, &netErr) || errors.As(err, &parseErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.NetworkError{Err: fmt.Errorf("fetch timed out: %w", err)}
	}
	return &domain.NetworkError{Err: err}
}
