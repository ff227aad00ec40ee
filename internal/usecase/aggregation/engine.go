package aggregation

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/adscope/internal/domain"
	"github.com/simaogato/adscope/internal/log"
)

// Engine owns the canonical ViewSnapshot and is its only writer.
// Every mutation is one critical section that ends by publishing a complete snapshot,
// so readers never see a half-updated state.
type Engine struct {
	logger *log.Logger

	mu          sync.Mutex
	generation  uint64
	active      domain.FetchTag
	current     domain.ViewSnapshot
	subscribers map[int]chan domain.ViewSnapshot
	nextSubID   int
}

// NewEngine creates an engine holding the empty snapshot
func NewEngine(logger *log.Logger) *Engine {
	return &Engine{
		logger:      logger.WithComponent(log.ComponentAggregation),
		current:     domain.EmptySnapshot(),
		subscribers: make(map[int]chan domain.ViewSnapshot),
	}
}

// Summarize sums the contribution of every record.
// Invalid records add zero and are counted.
func Summarize(records []domain.Record) (decimal.Decimal, int) {
	total := decimal.Zero
	invalid := 0
	for _, rec := range records {
		if rec.Invalid {
			invalid++
			continue
		}
		total = total.Add(rec.Value)
	}
	return total, invalid
}

// Begin makes sel the active selection and returns the tag its fetches must carry.
// Both breakdowns are reset: Pending when fetches will follow, Idle when nothing is selected.
func (e *Engine) Begin(sel domain.Selection) domain.FetchTag {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.active = domain.FetchTag{
		Generation: e.generation,
		Selection:  sel,
		RequestID:  uuid.New(),
	}

	status := domain.KindStatusPending
	if sel.IsUnselected() {
		status = domain.KindStatusIdle
	}

	e.publish(domain.ViewSnapshot{
		Selection: sel,
		AdSpend:   domain.EmptyBreakdown(domain.RecordKindAdSpend, status),
		Crypto:    domain.EmptyBreakdown(domain.RecordKindCryptoEarning, status),
	})

	e.logger.Debug("selection activated",
		log.NewFields().WithFetch(sel.String(), e.generation, "").WithRequestID(e.active.RequestID.String()).ToSlice()...)

	return e.active
}

// Apply replaces the records of one kind for the active selection and recomputes its total.
// It returns false when the tag belongs to a superseded selection; nothing changes in that case.
// Applying the same records twice leaves the snapshot as it was after the first call.
func (e *Engine) Apply(tag domain.FetchTag, kind domain.RecordKind, records []domain.Record) bool {
	// Callers keep ownership of their slice
	owned := make([]domain.Record, len(records))
	copy(owned, records)

	total, invalid := Summarize(owned)

	return e.update(tag, domain.Breakdown{
		Kind:         kind,
		Records:      owned,
		Total:        total,
		InvalidCount: invalid,
		Status:       domain.KindStatusLoaded,
	})
}

// Fail records that one kind has no data for the active selection.
// The other kind is left untouched so it keeps rendering.
func (e *Engine) Fail(tag domain.FetchTag, kind domain.RecordKind, err error) bool {
	b := domain.EmptyBreakdown(kind, domain.KindStatusFailed)
	if err != nil {
		b.Error = err.Error()
	}
	return e.update(tag, b)
}

func (e *Engine) update(tag domain.FetchTag, b domain.Breakdown) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	fields := log.NewFields().
		WithFetch(tag.Selection.String(), tag.Generation, string(b.Kind)).
		WithRequestID(tag.RequestID.String()).
		WithOperation(log.OpApply)

	if tag.Generation != e.generation || tag.Selection.IsUnselected() {
		fields[log.FieldErrorType] = domain.ErrorType(domain.ErrStaleResult)
		e.logger.Debug("discarding stale result", fields.ToSlice()...)
		return false
	}

	if e.current.Breakdown(b.Kind).Equal(b) {
		return true
	}

	e.publish(e.current.WithBreakdown(b))

	fields[log.FieldRecords] = len(b.Records)
	fields[log.FieldInvalid] = b.InvalidCount
	fields[log.FieldTotal] = b.Total.String()
	e.logger.Debug("breakdown updated", fields.ToSlice()...)

	return true
}

// Snapshot returns the current snapshot
func (e *Engine) Snapshot() domain.ViewSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Active returns the tag of the active selection
func (e *Engine) Active() domain.FetchTag {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Subscribe returns a channel that always holds the latest snapshot.
// Slow readers skip intermediate snapshots but never miss the newest one.
// The current snapshot is delivered immediately. Call the returned func to unsubscribe.
func (e *Engine) Subscribe() (<-chan domain.ViewSnapshot, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSubID
	e.nextSubID++

	ch := make(chan domain.ViewSnapshot, 1)
	ch <- e.current
	e.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subscribers, id)
			close(ch)
		})
	}
}

// publish must be called with e.mu held
func (e *Engine) publish(next domain.ViewSnapshot) {
	next.Revision = e.current.Revision + 1
	e.current = next

	for _, ch := range e.subscribers {
		// Replace any snapshot the reader has not picked up yet
		select {
		case ch <- next:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}
