package sale

import (
	"context"
	"fmt"
	"sync"
)

// Journal remembers stock adjustments already applied for a sale so a retried
// commit skips them.
type Journal interface {
	Applied(ctx context.Context, key string) (bool, error)
	Record(ctx context.Context, scope, key string) error
	Forget(ctx context.Context, scope string) error
}

// journalKey identifies one adjustment of one sale attempt by the line key,
// which survives removal of other lines. Editing the line after a failed
// commit changes the key, so the edited line is applied again.
func journalKey(scope string, adj StockAdjustment) string {
	return fmt.Sprintf("%s/%d/%d/%s/%s/%d/%s",
		scope, adj.LineKey, adj.ProductID, adj.Color, adj.SaleQuantity.String(), adj.SalePieceCount, adj.InvoiceNumber)
}

// MemoryJournal keeps journal entries in process memory.
type MemoryJournal struct {
	mu   sync.Mutex
	keys map[string]string
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{keys: make(map[string]string)}
}

func (j *MemoryJournal) Applied(ctx context.Context, key string) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.keys[key]
	return ok, nil
}

func (j *MemoryJournal) Record(ctx context.Context, scope, key string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.keys[key] = scope
	return nil
}

func (j *MemoryJournal) Forget(ctx context.Context, scope string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for key, s := range j.keys {
		if s == scope {
			delete(j.keys, key)
		}
	}
	return nil
}
