package sale

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loomhouse/fabricdesk/internal/catalog"
)

var errBackendDown = errors.New("backend down")

type fakeBackend struct {
	mu          sync.Mutex
	adjustments []StockAdjustment
	invoices    []InvoiceHeader
	entries     [][]InvoiceEntry
	failAdjust  map[int]error // keyed by zero-based call number
	failInvoice error
	calls       int
}

func (b *fakeBackend) AdjustSale(ctx context.Context, adj StockAdjustment) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	call := b.calls
	b.calls++
	if err := b.failAdjust[call]; err != nil {
		return err
	}
	b.adjustments = append(b.adjustments, adj)
	return nil
}

func (b *fakeBackend) CreateInvoice(ctx context.Context, header InvoiceHeader, entries []InvoiceEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failInvoice != nil {
		return b.failInvoice
	}
	b.invoices = append(b.invoices, header)
	b.entries = append(b.entries, entries)
	return nil
}

type fakeLookups struct {
	mu          sync.Mutex
	colors      map[int64][]string
	colorErr    error
	colorCalls  map[int64]int
	gates       map[int64]chan struct{}
	entered     chan int64
	categories  map[string][]string
	customers   []Customer
	customerErr error
}

func newFakeLookups() *fakeLookups {
	return &fakeLookups{
		colors:     map[int64][]string{7: {"Red", "Blue"}, 8: {"Black"}},
		colorCalls: map[int64]int{},
		gates:      map[int64]chan struct{}{},
		categories: map[string][]string{"7/Red": {"A", "B"}},
		customers:  []Customer{{ID: 3, Name: "Acme Textiles"}},
	}
}

func (l *fakeLookups) Colors(ctx context.Context, productID int64) ([]string, error) {
	l.mu.Lock()
	l.colorCalls[productID]++
	gate := l.gates[productID]
	err := l.colorErr
	colors := l.colors[productID]
	l.mu.Unlock()
	if gate != nil {
		if l.entered != nil {
			l.entered <- productID
		}
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return colors, nil
}

func (l *fakeLookups) Categories(ctx context.Context, productID int64, color string) ([]string, error) {
	return l.categories[categoryKey(productID, color)], nil
}

func (l *fakeLookups) Customers(ctx context.Context) ([]Customer, error) {
	if l.customerErr != nil {
		return nil, l.customerErr
	}
	return l.customers, nil
}

type fakeCatalog struct {
	err error
}

func (c fakeCatalog) Catalog(ctx context.Context) (catalog.Catalog, error) {
	if c.err != nil {
		return catalog.Catalog{}, c.err
	}
	return catalog.NewCatalog([]catalog.MasterProduct{
		{ID: 7, ProductName: "Cotton"},
		{ID: 8, ProductName: "Silk"},
	}), nil
}

type fakeRecorder struct {
	mu          sync.Mutex
	commits     map[string]int
	adjustments map[string]int
	lookups     map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{commits: map[string]int{}, adjustments: map[string]int{}, lookups: map[string]int{}}
}

func (r *fakeRecorder) AdjustmentFinished(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adjustments[result]++
}

func (r *fakeRecorder) CommitFinished(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits[outcome]++
}

func (r *fakeRecorder) LookupFailed(lookup string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups[lookup]++
}

type serviceFixture struct {
	service   *Service
	store     *MemoryStore
	backend   *fakeBackend
	lookups   *fakeLookups
	recorder  *fakeRecorder
	refreshes int
	now       time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		store:    NewMemoryStore(time.Hour),
		backend:  &fakeBackend{},
		lookups:  newFakeLookups(),
		recorder: newFakeRecorder(),
		now:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	f.store.now = func() time.Time { return f.now }
	f.service = NewService(ServiceParams{
		Store:      f.store,
		Dispatcher: NewDispatcher(f.backend, NewMemoryJournal(), f.recorder, nil),
		Catalog:    fakeCatalog{},
		Lookups:    f.lookups,
		OnCommit: func(ctx context.Context) error {
			f.refreshes++
			return nil
		},
		Recorder:      f.recorder,
		CloseDelay:    1500 * time.Millisecond,
		CommitTimeout: time.Minute,
		Clock:         func() time.Time { return f.now },
	})
	return f
}

// fillLine completes line index with product 7, color Red and the given quantities.
func (f *serviceFixture) fillLine(t *testing.T, id string, line int, price string, quantities ...string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.service.SetProduct(ctx, id, line, 7)
	require.NoError(t, err)
	_, err = f.service.SetColor(ctx, id, line, "Red")
	require.NoError(t, err)
	_, err = f.service.SetPieceCount(ctx, id, line, len(quantities))
	require.NoError(t, err)
	for i, q := range quantities {
		_, err = f.service.SetQuantity(ctx, id, line, i, q)
		require.NoError(t, err)
	}
	_, err = f.service.SetUnitPrice(ctx, id, line, price)
	require.NoError(t, err)
}
