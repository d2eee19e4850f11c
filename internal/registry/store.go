package registry

import "context"

// Store is the key/value state the ledger runs against.
// Commit must apply the whole batch or nothing.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Commit(ctx context.Context, writes []Write) error
}

// Write is a single key assignment inside a commit batch.
type Write struct {
	Key   string
	Value []byte
}

// txn buffers writes on top of a Store so a failed operation leaves no trace.
type txn struct {
	ctx     context.Context
	store   Store
	pending map[string][]byte
	order   []string
}

func newTxn(ctx context.Context, store Store) *txn {
	return &txn{ctx: ctx, store: store, pending: make(map[string][]byte)}
}

func (t *txn) get(key string) ([]byte, bool, error) {
	if v, ok := t.pending[key]; ok {
		return v, true, nil
	}
	return t.store.Get(t.ctx, key)
}

func (t *txn) set(key string, value []byte) {
	if _, seen := t.pending[key]; !seen {
		t.order = append(t.order, key)
	}
	t.pending[key] = value
}

// writes returns the buffered batch in first-write order.
func (t *txn) writes() []Write {
	out := make([]Write, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, Write{Key: k, Value: t.pending[k]})
	}
	return out
}
