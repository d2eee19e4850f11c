package registry

import (
	"context"
	"fmt"
	"math"

	"github.com/devrep/reputation-registry/internal/domain"
)

// AchievementInput is the owner-supplied award.
type AchievementInput struct {
	ID          uint64
	Title       string
	Description string
	Points      uint64
}

func (in AchievementInput) validate() error {
	switch {
	case len(in.Title) > domain.MaxTitleLength:
		return fmt.Errorf("%w: title longer than %d characters", ErrInvalidInput, domain.MaxTitleLength)
	case !domain.IsPrintableASCII(in.Title):
		return fmt.Errorf("%w: title must be printable ascii", ErrInvalidInput)
	case len(in.Description) > domain.MaxDescriptionLength:
		return fmt.Errorf("%w: description longer than %d characters", ErrInvalidInput, domain.MaxDescriptionLength)
	case !domain.IsPrintableASCII(in.Description):
		return fmt.Errorf("%w: description must be printable ascii", ErrInvalidInput)
	case in.Points == 0:
		return fmt.Errorf("%w: achievement points must be positive", ErrInvalidInput)
	}
	return nil
}

func loadAchievement(tx *txn, id domain.Identity, achievementID uint64) (*domain.Achievement, error) {
	raw, ok, err := tx.get(achievementKey(id, achievementID))
	if err != nil || !ok {
		return nil, err
	}
	return DecodeAchievement(raw)
}

// AddAchievement records an award for target and adds its points to the
// target's reputation, owner only. An id already awarded to target is rejected.
func (l *Ledger) AddAchievement(ctx context.Context, call Call, target domain.Identity, in AchievementInput) (bool, error) {
	err := l.mutate(ctx, func(tx *txn) error {
		if err := requireOwner(tx, call.Caller); err != nil {
			return err
		}
		if err := in.validate(); err != nil {
			return err
		}
		p, err := requireProfile(tx, target)
		if err != nil {
			return err
		}
		existing, err := loadAchievement(tx, target, in.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAchievementExists
		}
		if p.Reputation > math.MaxUint64-in.Points {
			return fmt.Errorf("%w: reputation overflow", ErrInvalidInput)
		}

		tx.set(achievementKey(target, in.ID), EncodeAchievement(&domain.Achievement{
			Title:       in.Title,
			Description: in.Description,
			EarnedDate:  call.Height,
			Points:      in.Points,
		}))
		p.Reputation += in.Points
		saveProfile(tx, target, p)
		return nil
	})
	return err == nil, err
}

// GetUserAchievement returns the award (id, achievementID), or nil.
func (l *Ledger) GetUserAchievement(ctx context.Context, id domain.Identity, achievementID uint64) (*domain.Achievement, error) {
	if !id.Valid() {
		return nil, nil
	}
	return loadAchievement(l.view(ctx), id, achievementID)
}
