package events

import (
	"time"

	"github.com/devrep/reputation-registry/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProfileCreated     EventType = "profile_created"
	EventReputationUpdated  EventType = "reputation_updated"
	EventUserVerified       EventType = "user_verified"
	EventAchievementAdded   EventType = "achievement_added"
	EventPlatformFeeUpdated EventType = "platform_fee_updated"
)

// Event is emitted once a registry transaction has committed.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	TxID      string          `json:"tx_id"`
	Height    uint64          `json:"height"`
	Actor     domain.Identity `json:"actor"`
	Subject   domain.Identity `json:"subject,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   interface{}     `json:"payload"`
}

// ProfileCreatedPayload payload.
type ProfileCreatedPayload struct {
	Username string `json:"username"`
}

// ReputationUpdatedPayload payload.
type ReputationUpdatedPayload struct {
	Reputation uint64 `json:"reputation"`
}

// AchievementAddedPayload payload.
type AchievementAddedPayload struct {
	AchievementID uint64 `json:"achievement_id"`
	Title         string `json:"title"`
	Points        uint64 `json:"points"`
}

// PlatformFeeUpdatedPayload payload.
type PlatformFeeUpdatedPayload struct {
	FeeBasisPoints uint64 `json:"fee_basis_points"`
}
