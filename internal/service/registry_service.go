package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devrep/reputation-registry/internal/domain"
	"github.com/devrep/reputation-registry/internal/events"
	"github.com/devrep/reputation-registry/internal/observability"
	"github.com/devrep/reputation-registry/internal/registry"
)

// heightKey persists the host height next to registry state.
const heightKey = "host:height"

// Receipt describes a submitted mutating call.
type Receipt struct {
	TxID   string `json:"tx_id"`
	Height uint64 `json:"height"`
	OK     bool   `json:"ok"`
}

// RegistryDependencies bundles collaborators for RegistryService.
// InitialHeight applies only when the store holds no height yet.
type RegistryDependencies struct {
	Store         registry.Store
	Owner         domain.Identity
	InitialHeight uint64
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// RegistryService hosts the ledger. Mutating calls are serialized and each one
// mines a block: the height advances whether or not the call succeeds.
type RegistryService struct {
	mu         sync.RWMutex
	store      registry.Store
	ledger     *registry.Ledger
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	height     uint64
	now        func() time.Time
}

// NewRegistryService restores the height and initializes the ledger for owner.
func NewRegistryService(ctx context.Context, deps RegistryDependencies) (*RegistryService, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RegistryService{
		store:      deps.Store,
		ledger:     registry.NewLedger(deps.Store),
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		height:     deps.InitialHeight,
		now:        time.Now,
	}

	raw, ok, err := deps.Store.Get(ctx, heightKey)
	if err != nil {
		return nil, fmt.Errorf("load height: %w", err)
	}
	if ok {
		if s.height, err = strconv.ParseUint(string(raw), 10, 64); err != nil {
			return nil, fmt.Errorf("parse height: %w", err)
		}
	}

	initialized, err := s.ledger.Init(ctx, deps.Owner)
	if err != nil {
		return nil, fmt.Errorf("init registry: %w", err)
	}
	owner, err := s.ledger.GetContractOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}
	switch {
	case initialized:
		logger.Info("registry initialized", zap.String("owner", owner.String()))
	case owner != deps.Owner:
		logger.Warn("configured owner ignored; registry already owned",
			zap.String("configured", deps.Owner.String()),
			zap.String("owner", owner.String()))
	}
	s.metrics.SetHeight(s.height)
	logger.Info("registry ready", zap.Uint64("height", s.height))
	return s, nil
}

// submit runs op as the next block under the write lock.
func (s *RegistryService) submit(ctx context.Context, op string, caller domain.Identity,
	run func(call registry.Call) (bool, error), event func(call registry.Call) *events.Event,
) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	height := s.height + 1
	err := s.store.Commit(ctx, []registry.Write{{Key: heightKey, Value: []byte(strconv.FormatUint(height, 10))}})
	if err != nil {
		return Receipt{}, fmt.Errorf("advance height: %w", err)
	}
	s.height = height
	s.metrics.SetHeight(height)

	call := registry.Call{Caller: caller, Height: height}
	receipt := Receipt{TxID: uuid.NewString(), Height: height}
	ok, err := run(call)
	code := registry.ResultCode(err)
	s.metrics.RecordOperation(op, code)

	fields := []zap.Field{
		zap.String("tx_id", receipt.TxID),
		zap.String("operation", op),
		zap.String("caller", caller.String()),
		zap.Uint64("height", height),
		zap.Uint32("code", code),
	}
	if err != nil {
		if code >= 500 {
			s.logger.Error("transaction failed", append(fields, zap.Error(err))...)
		} else {
			s.logger.Debug("transaction rejected", append(fields, zap.Error(err))...)
		}
		return receipt, err
	}
	receipt.OK = ok
	s.logger.Info("transaction committed", fields...)

	if s.dispatcher != nil && event != nil {
		if e := event(call); e != nil {
			e.ID = uuid.NewString()
			e.TxID = receipt.TxID
			e.Height = height
			e.Actor = caller
			e.Timestamp = s.now().UTC()
			if err := s.dispatcher.Publish(ctx, *e); err != nil {
				s.logger.Warn("event handlers failed", zap.String("tx_id", receipt.TxID), zap.Error(err))
			}
		}
	}
	return receipt, nil
}

// CreateProfile registers the caller's profile.
func (s *RegistryService) CreateProfile(ctx context.Context, caller domain.Identity, username string) (Receipt, error) {
	return s.submit(ctx, "create-profile", caller,
		func(call registry.Call) (bool, error) {
			return s.ledger.CreateProfile(ctx, call, username)
		},
		func(registry.Call) *events.Event {
			return &events.Event{
				Type:    events.EventProfileCreated,
				Subject: caller,
				Payload: events.ProfileCreatedPayload{Username: username},
			}
		})
}

// UpdateReputation sets target's reputation.
func (s *RegistryService) UpdateReputation(ctx context.Context, caller, target domain.Identity, points uint64) (Receipt, error) {
	return s.submit(ctx, "update-reputation", caller,
		func(call registry.Call) (bool, error) {
			return s.ledger.UpdateReputation(ctx, call, target, points)
		},
		func(registry.Call) *events.Event {
			return &events.Event{
				Type:    events.EventReputationUpdated,
				Subject: target,
				Payload: events.ReputationUpdatedPayload{Reputation: points},
			}
		})
}

// VerifyUser marks target verified.
func (s *RegistryService) VerifyUser(ctx context.Context, caller, target domain.Identity) (Receipt, error) {
	return s.submit(ctx, "verify-user", caller,
		func(call registry.Call) (bool, error) {
			return s.ledger.VerifyUser(ctx, call, target)
		},
		func(registry.Call) *events.Event {
			return &events.Event{Type: events.EventUserVerified, Subject: target}
		})
}

// AddAchievement awards an achievement to target.
func (s *RegistryService) AddAchievement(ctx context.Context, caller, target domain.Identity, in registry.AchievementInput) (Receipt, error) {
	return s.submit(ctx, "add-achievement", caller,
		func(call registry.Call) (bool, error) {
			return s.ledger.AddAchievement(ctx, call, target, in)
		},
		func(registry.Call) *events.Event {
			return &events.Event{
				Type:    events.EventAchievementAdded,
				Subject: target,
				Payload: events.AchievementAddedPayload{AchievementID: in.ID, Title: in.Title, Points: in.Points},
			}
		})
}

// SetPlatformFee replaces the platform fee.
func (s *RegistryService) SetPlatformFee(ctx context.Context, caller domain.Identity, fee uint64) (Receipt, error) {
	return s.submit(ctx, "set-platform-fee", caller,
		func(call registry.Call) (bool, error) {
			return s.ledger.SetPlatformFee(ctx, call, fee)
		},
		func(registry.Call) *events.Event {
			return &events.Event{
				Type:    events.EventPlatformFeeUpdated,
				Payload: events.PlatformFeeUpdatedPayload{FeeBasisPoints: fee},
			}
		})
}

// IsOwner reports whether caller is the contract owner.
func (s *RegistryService) IsOwner(ctx context.Context, caller domain.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.IsOwner(ctx, caller)
}

// UserExists reports whether id has a profile.
func (s *RegistryService) UserExists(ctx context.Context, id domain.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.UserExists(ctx, id)
}

// GetUserProfile returns id's profile or nil.
func (s *RegistryService) GetUserProfile(ctx context.Context, id domain.Identity) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.GetUserProfile(ctx, id)
}

// GetUserReputation returns id's reputation; ok is false without a profile.
func (s *RegistryService) GetUserReputation(ctx context.Context, id domain.Identity) (uint64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.GetUserReputation(ctx, id)
}

// GetUserAchievement returns the award or nil.
func (s *RegistryService) GetUserAchievement(ctx context.Context, id domain.Identity, achievementID uint64) (*domain.Achievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.GetUserAchievement(ctx, id, achievementID)
}

// GetPlatformFee returns the fee in basis points.
func (s *RegistryService) GetPlatformFee(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.GetPlatformFee(ctx)
}

// GetContractOwner returns the owner identity.
func (s *RegistryService) GetContractOwner(ctx context.Context) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.GetContractOwner(ctx)
}

// GetPlatformParameters returns owner and fee in one consistent read.
func (s *RegistryService) GetPlatformParameters(ctx context.Context) (domain.PlatformParameters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.GetPlatformParameters(ctx)
}

// GetTotalUsers returns the profile count.
func (s *RegistryService) GetTotalUsers(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.GetTotalUsers(ctx)
}

// Height returns the height of the last mined block.
func (s *RegistryService) Height() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height
}
