package registry

import (
	"context"

	"github.com/devrep/reputation-registry/internal/domain"
)

func isOwner(tx *txn, caller domain.Identity) (bool, error) {
	owner, ok, err := loadOwner(tx)
	if err != nil || !ok {
		return false, err
	}
	return caller == owner, nil
}

// requireOwner runs ahead of every other check in owner-only operations.
func requireOwner(tx *txn, caller domain.Identity) error {
	ok, err := isOwner(tx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

// IsOwner reports whether caller is the contract owner.
func (l *Ledger) IsOwner(ctx context.Context, caller domain.Identity) (bool, error) {
	return isOwner(l.view(ctx), caller)
}
