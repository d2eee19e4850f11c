package registry

import (
	"context"
	"fmt"

	"github.com/devrep/reputation-registry/internal/domain"
)

func loadOwner(tx *txn) (domain.Identity, bool, error) {
	raw, ok, err := tx.get(keyOwner)
	if err != nil || !ok {
		return "", false, err
	}
	return domain.Identity(raw), true, nil
}

func loadFee(tx *txn) (uint64, error) {
	_, ok, err := tx.get(keyFee)
	if err != nil {
		return 0, err
	}
	if !ok {
		return domain.DefaultFeeBasisPoints, nil
	}
	return getCount(tx, keyFee)
}

// SetPlatformFee replaces the platform fee, owner only.
func (l *Ledger) SetPlatformFee(ctx context.Context, call Call, fee uint64) (bool, error) {
	err := l.mutate(ctx, func(tx *txn) error {
		if err := requireOwner(tx, call.Caller); err != nil {
			return err
		}
		if fee > domain.MaxFeeBasisPoints {
			return fmt.Errorf("%w: fee %d exceeds %d basis points", ErrInvalidInput, fee, domain.MaxFeeBasisPoints)
		}
		setCount(tx, keyFee, fee)
		return nil
	})
	return err == nil, err
}

// GetPlatformFee returns the current fee in basis points.
func (l *Ledger) GetPlatformFee(ctx context.Context) (uint64, error) {
	return loadFee(l.view(ctx))
}

// GetContractOwner returns the owner fixed at initialization.
func (l *Ledger) GetContractOwner(ctx context.Context) (domain.Identity, error) {
	owner, _, err := loadOwner(l.view(ctx))
	return owner, err
}

// GetPlatformParameters returns owner and fee together.
func (l *Ledger) GetPlatformParameters(ctx context.Context) (domain.PlatformParameters, error) {
	tx := l.view(ctx)
	owner, _, err := loadOwner(tx)
	if err != nil {
		return domain.PlatformParameters{}, err
	}
	fee, err := loadFee(tx)
	if err != nil {
		return domain.PlatformParameters{}, err
	}
	return domain.PlatformParameters{Owner: owner, FeeBasisPoints: fee}, nil
}
