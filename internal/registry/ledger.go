// Package registry holds the reputation state machine: profiles, achievements,
// platform parameters and the owner gate. Every mutating operation runs against a
// write buffer and commits it to the Store as one batch, or not at all.
package registry

import (
	"context"
	"fmt"

	"github.com/devrep/reputation-registry/internal/domain"
)

// Call carries the host-supplied context of a mutating operation.
type Call struct {
	Caller domain.Identity
	Height uint64
}

// Ledger executes registry operations over a Store.
// It does not serialize callers; the host is expected to do so.
type Ledger struct {
	store Store
}

// NewLedger binds a ledger to its backing store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Init writes the owner and the default fee on first start. An owner already on
// record is never replaced; the returned flag tells whether this call initialized.
func (l *Ledger) Init(ctx context.Context, owner domain.Identity) (bool, error) {
	if !owner.Valid() {
		return false, fmt.Errorf("%w: malformed owner identity", ErrInvalidInput)
	}
	initialized := false
	err := l.mutate(ctx, func(tx *txn) error {
		_, ok, err := loadOwner(tx)
		if err != nil || ok {
			return err
		}
		tx.set(keyOwner, []byte(owner))
		setCount(tx, keyFee, domain.DefaultFeeBasisPoints)
		setCount(tx, keyTotalUsers, 0)
		initialized = true
		return nil
	})
	return initialized, err
}

func (l *Ledger) mutate(ctx context.Context, fn func(tx *txn) error) error {
	tx := newTxn(ctx, l.store)
	if err := fn(tx); err != nil {
		return err
	}
	writes := tx.writes()
	if len(writes) == 0 {
		return nil
	}
	if err := l.store.Commit(ctx, writes); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// view is a read-only transaction; nothing set on it is ever committed.
func (l *Ledger) view(ctx context.Context) *txn {
	return newTxn(ctx, l.store)
}

// GetTotalUsers returns the number of profiles ever created.
func (l *Ledger) GetTotalUsers(ctx context.Context) (uint64, error) {
	return getCount(l.view(ctx), keyTotalUsers)
}
