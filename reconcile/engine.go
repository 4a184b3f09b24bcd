package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/remote_ledger"
	"github.com/pdcgo/collection_service/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type LocalReader interface {
	QueryByZoneSince(ctx context.Context, zoneID uint, since time.Time) ([]*collection_model.LocalPayment, error)
}

// AfterCommitHandler runs once a batch is durable in the remote ledger.
type AfterCommitHandler func(ctx context.Context, sess *session.Session, uploaded collection_model.PaymentList) error

type Outcome struct {
	ZoneID      uint          `json:"zone_id"`
	Since       time.Time     `json:"since"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	LocalCount  int           `json:"local_count"`
	RemoteCount int           `json:"remote_count"`

	// Dropped counts local rows whose parsed time precedes the window.
	Dropped int `json:"dropped"`

	UploadedIDs []string `json:"uploaded_ids"`
	Committed   bool     `json:"committed"`
	Success     bool     `json:"success"`
	Diagnostic  string   `json:"diagnostic"`

	uploaded collection_model.PaymentList
}

func (o *Outcome) Uploaded() int {
	return len(o.UploadedIDs)
}

type Engine struct {
	local  LocalReader
	remote remote_ledger.RemoteLedger

	mu      sync.Mutex
	hookMu  sync.Mutex
	hooks   map[string]AfterCommitHandler
	history *History
	metrics *Metrics
	now     func() time.Time
}

func NewEngine(local LocalReader, remote remote_ledger.RemoteLedger) *Engine {
	return &Engine{
		local:  local,
		remote: remote,
		hooks:  map[string]AfterCommitHandler{},
		now:    time.Now,
	}
}

func (e *Engine) WithHistory(history *History) *Engine {
	e.history = history
	return e
}

func (e *Engine) WithMetrics(metrics *Metrics) *Engine {
	e.metrics = metrics
	return e
}

// RegisterAfterCommit adds a named handler and returns its unregister func.
func (e *Engine) RegisterAfterCommit(name string, handler AfterCommitHandler) func() {
	e.hookMu.Lock()
	defer e.hookMu.Unlock()

	e.hooks[name] = handler
	return func() {
		e.hookMu.Lock()
		defer e.hookMu.Unlock()
		delete(e.hooks, name)
	}
}

// Reconcile uploads every local payment of the session zone that the remote
// ledger does not hold yet, in one atomic batch. Local rows are never
// changed. The returned Outcome is never nil.
func (e *Engine) Reconcile(ctx context.Context, sess *session.Session) (*Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, span := otel.Tracer("collection_service/reconcile").Start(ctx, "reconcile")
	defer span.End()

	outcome := &Outcome{
		ZoneID:      sess.ZoneID(),
		Since:       sess.InitialLoadAt(),
		StartedAt:   e.now(),
		UploadedIDs: []string{},
	}
	span.SetAttributes(attribute.Int64("zone_id", int64(outcome.ZoneID)))

	err := e.run(ctx, sess, outcome)
	outcome.Duration = e.now().Sub(outcome.StartedAt)
	outcome.Success = err == nil

	if err != nil {
		outcome.Diagnostic = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome.Diagnostic)
		slog.Error(outcome.Diagnostic, slog.Uint64("zone_id", uint64(outcome.ZoneID)))
	} else {
		outcome.Diagnostic = successDiagnostic(outcome)
		span.SetAttributes(attribute.Int("uploaded", outcome.Uploaded()))
	}

	e.record(ctx, outcome, err)

	if outcome.Committed {
		e.afterCommit(ctx, sess, outcome)
	}

	return outcome, err
}

func successDiagnostic(outcome *Outcome) string {
	if !outcome.Committed {
		return fmt.Sprintf("zone %d up to date, %d local payments already in remote ledger", outcome.ZoneID, outcome.LocalCount-outcome.Dropped)
	}
	return fmt.Sprintf("zone %d uploaded %d payments", outcome.ZoneID, outcome.Uploaded())
}

func (e *Engine) run(ctx context.Context, sess *session.Session, outcome *Outcome) error {
	var err error

	localRows, err := e.local.QueryByZoneSince(ctx, outcome.ZoneID, outcome.Since)
	if err != nil {
		return &Error{Kind: kindOf(err), Step: StepReadLocal, Err: err}
	}
	outcome.LocalCount = len(localRows)

	localRows = e.inWindow(localRows, sess.Location, outcome)

	snap, err := e.remote.QueryByZoneSince(ctx, outcome.ZoneID, outcome.Since, remote_ledger.QueryOption{
		ForceServer: true,
	})
	if err != nil {
		return &Error{Kind: kindOf(err), Step: StepReadRemote, Err: err}
	}

	if snap.Source != remote_ledger.SourceServer {
		return &Error{
			Kind: collection_core.ErrStaleReadRisk,
			Step: StepReadRemote,
			Err:  fmt.Errorf("remote snapshot served from %s", snap.Source),
		}
	}
	outcome.RemoteCount = len(snap.Payments)

	missing := Missing(localRows, snap.Payments)

	batch := collection_model.PaymentList{}
	for _, row := range missing {
		pay, err := Normalize(row, sess.Location)
		if err != nil {
			return err
		}

		batch = append(batch, pay)
	}

	if len(batch) == 0 {
		return nil
	}

	limit := e.remote.MaxBatchSize()
	if limit > 0 && len(batch) > limit {
		return &Error{
			Kind: collection_core.ErrPartialBatchRisk,
			Step: StepCommit,
			Err:  fmt.Errorf("%d payments exceed atomic limit %d", len(batch), limit),
		}
	}

	err = e.remote.BatchInsert(ctx, batch)
	if err != nil {
		return &Error{Kind: kindOf(err), Step: StepCommit, Err: err}
	}

	ids := batch.IDs()
	sort.Strings(ids)
	outcome.UploadedIDs = ids
	outcome.uploaded = batch
	outcome.Committed = true

	return nil
}

// inWindow keeps the rows whose parsed time is not before the session
// initial load. Rows that do not parse are kept so normalization reports them.
func (e *Engine) inWindow(rows []*collection_model.LocalPayment, loc *time.Location, outcome *Outcome) []*collection_model.LocalPayment {
	kept := make([]*collection_model.LocalPayment, 0, len(rows))
	for _, row := range rows {
		paidAt, err := collection_core.ParseLocalTime(row.PaidAt, loc)
		if err == nil && paidAt.Before(outcome.Since) {
			outcome.Dropped++
			continue
		}
		kept = append(kept, row)
	}

	return kept
}

func kindOf(err error) error {
	for _, kind := range []error{
		collection_core.ErrStaleReadRisk,
		collection_core.ErrPartialBatchRisk,
		collection_core.ErrTransformError,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return collection_core.ErrStoreUnavailable
}

func (e *Engine) record(ctx context.Context, outcome *Outcome, runErr error) {
	if e.metrics != nil {
		e.metrics.Observe(outcome, runErr)
	}

	if e.history != nil {
		err := e.history.Save(ctx, outcome)
		if err != nil {
			slog.Error(err.Error())
		}
	}
}

func (e *Engine) afterCommit(ctx context.Context, sess *session.Session, outcome *Outcome) {
	e.hookMu.Lock()
	names := make([]string, 0, len(e.hooks))
	for name := range e.hooks {
		names = append(names, name)
	}
	hooks := make(map[string]AfterCommitHandler, len(e.hooks))
	for name, hook := range e.hooks {
		hooks[name] = hook
	}
	e.hookMu.Unlock()

	sort.Strings(names)

	for _, name := range names {
		err := hooks[name](ctx, sess, outcome.uploaded)
		if err != nil {
			slog.Error("after commit handler failed", slog.String("handler", name), slog.String("error", err.Error()))
		}
	}
}
