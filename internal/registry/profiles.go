package registry

import (
	"context"
	"fmt"

	"github.com/devrep/reputation-registry/internal/domain"
)

func loadProfile(tx *txn, id domain.Identity) (*domain.UserProfile, error) {
	raw, ok, err := tx.get(profileKey(id))
	if err != nil || !ok {
		return nil, err
	}
	return DecodeProfile(raw)
}

func saveProfile(tx *txn, id domain.Identity, p *domain.UserProfile) {
	tx.set(profileKey(id), EncodeProfile(p))
}

// requireProfile loads the target of an owner-only operation.
func requireProfile(tx *txn, target domain.Identity) (*domain.UserProfile, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: malformed target identity", ErrInvalidInput)
	}
	p, err := loadProfile(tx, target)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrUserNotFound
	}
	return p, nil
}

func validateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: username is empty", ErrInvalidInput)
	case len(username) > domain.MaxUsernameLength:
		return fmt.Errorf("%w: username longer than %d characters", ErrInvalidInput, domain.MaxUsernameLength)
	case !domain.IsPrintableASCII(username):
		return fmt.Errorf("%w: username must be printable ascii", ErrInvalidInput)
	}
	return nil
}

// CreateProfile registers a profile for the caller.
func (l *Ledger) CreateProfile(ctx context.Context, call Call, username string) (bool, error) {
	err := l.mutate(ctx, func(tx *txn) error {
		if err := validateUsername(username); err != nil {
			return err
		}
		if !call.Caller.Valid() {
			return fmt.Errorf("%w: malformed caller identity", ErrInvalidInput)
		}
		existing, err := loadProfile(tx, call.Caller)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrUserExists
		}
		saveProfile(tx, call.Caller, &domain.UserProfile{
			Username: username,
			JoinDate: call.Height,
		})
		return incCount(tx, keyTotalUsers)
	})
	return err == nil, err
}

// UserExists reports whether id has a profile.
func (l *Ledger) UserExists(ctx context.Context, id domain.Identity) (bool, error) {
	if !id.Valid() {
		return false, nil
	}
	_, ok, err := l.view(ctx).get(profileKey(id))
	return ok, err
}

// GetUserProfile returns the profile of id, or nil when none exists.
func (l *Ledger) GetUserProfile(ctx context.Context, id domain.Identity) (*domain.UserProfile, error) {
	if !id.Valid() {
		return nil, nil
	}
	return loadProfile(l.view(ctx), id)
}

// GetUserReputation returns the reputation of id; ok is false without a profile.
func (l *Ledger) GetUserReputation(ctx context.Context, id domain.Identity) (rep uint64, ok bool, err error) {
	p, err := l.GetUserProfile(ctx, id)
	if err != nil || p == nil {
		return 0, false, err
	}
	return p.Reputation, true, nil
}

// UpdateReputation sets the absolute reputation of target, owner only.
func (l *Ledger) UpdateReputation(ctx context.Context, call Call, target domain.Identity, points uint64) (bool, error) {
	err := l.mutate(ctx, func(tx *txn) error {
		if err := requireOwner(tx, call.Caller); err != nil {
			return err
		}
		p, err := requireProfile(tx, target)
		if err != nil {
			return err
		}
		p.Reputation = points
		saveProfile(tx, target, p)
		return nil
	})
	return err == nil, err
}

// VerifyUser marks target verified, owner only. Verifying twice is a no-op success.
func (l *Ledger) VerifyUser(ctx context.Context, call Call, target domain.Identity) (bool, error) {
	err := l.mutate(ctx, func(tx *txn) error {
		if err := requireOwner(tx, call.Caller); err != nil {
			return err
		}
		p, err := requireProfile(tx, target)
		if err != nil {
			return err
		}
		if p.IsVerified {
			return nil
		}
		p.IsVerified = true
		saveProfile(tx, target, p)
		return nil
	})
	return err == nil, err
}
