package sale

import (
	"context"
	"log/slog"
)

// Backend applies a confirmed sale to the inventory backend.
type Backend interface {
	AdjustSale(ctx context.Context, adj StockAdjustment) error
	CreateInvoice(ctx context.Context, header InvoiceHeader, entries []InvoiceEntry) error
}

// Recorder observes commit and lookup outcomes.
type Recorder interface {
	AdjustmentFinished(result string)
	CommitFinished(outcome string)
	LookupFailed(lookup string)
}

type nopRecorder struct{}

func (nopRecorder) AdjustmentFinished(string) {}
func (nopRecorder) CommitFinished(string)     {}
func (nopRecorder) LookupFailed(string)       {}

// Dispatcher commits a frozen review: one stock adjustment per line, in order,
// then the invoice.
type Dispatcher struct {
	backend  Backend
	journal  Journal
	recorder Recorder
	logger   *slog.Logger
}

// NewDispatcher wires the commit dependencies. journal, recorder and logger may be nil.
func NewDispatcher(backend Backend, journal Journal, recorder Recorder, logger *slog.Logger) *Dispatcher {
	if journal == nil {
		journal = NewMemoryJournal()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{backend: backend, journal: journal, recorder: recorder, logger: logger}
}

// Commit sends the adjustments sequentially and stops at the first failure.
// The invoice is created only after every adjustment succeeded. Adjustments
// journaled under scope by an earlier failed attempt are skipped.
func (d *Dispatcher) Commit(ctx context.Context, scope string, review *Review) error {
	for i, adj := range review.Adjustments() {
		key := journalKey(scope, adj)
		applied, err := d.journal.Applied(ctx, key)
		if err != nil {
			return &CommitError{Step: StepJournal, Line: i, Err: err}
		}
		if applied {
			d.recorder.AdjustmentFinished("skipped")
			d.logger.Info("stock adjustment already applied",
				slog.String("sale_id", scope),
				slog.Int("line", i+1),
			)
			continue
		}
		if err := d.backend.AdjustSale(ctx, adj); err != nil {
			d.recorder.AdjustmentFinished("failed")
			return &CommitError{Step: StepAdjustment, Line: i, Err: err}
		}
		d.recorder.AdjustmentFinished("applied")
		if err := d.journal.Record(ctx, scope, key); err != nil {
			d.logger.Warn("record stock adjustment",
				slog.String("sale_id", scope),
				slog.Int("line", i+1),
				slog.Any("error", err),
			)
		}
	}

	if err := d.backend.CreateInvoice(ctx, review.Header(), review.Entries()); err != nil {
		return &CommitError{Step: StepInvoice, Line: -1, Err: err}
	}
	if err := d.journal.Forget(ctx, scope); err != nil {
		d.logger.Warn("clear commit journal", slog.String("sale_id", scope), slog.Any("error", err))
	}
	return nil
}
