package dto

import (
	"github.com/devrep/reputation-registry/internal/domain"
)

// CreateProfileRequest payload for POST /v1/profiles.
type CreateProfileRequest struct {
	Username string `json:"username"`
}

// UpdateReputationRequest payload for PUT /v1/profiles/:identity/reputation.
type UpdateReputationRequest struct {
	Points *uint64 `json:"points"`
}

// AddAchievementRequest payload for POST /v1/profiles/:identity/achievements.
type AddAchievementRequest struct {
	ID          *uint64 `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Points      uint64  `json:"points"`
}

// SetPlatformFeeRequest payload for PUT /v1/platform/fee.
type SetPlatformFeeRequest struct {
	Fee *uint64 `json:"fee"`
}

// ProfileResponse is a profile with its owner identity.
type ProfileResponse struct {
	Identity domain.Identity `json:"identity"`
	domain.UserProfile
}

// AchievementResponse is an award with its key.
type AchievementResponse struct {
	Identity      domain.Identity `json:"identity"`
	AchievementID uint64          `json:"achievement_id"`
	domain.Achievement
}

// AuthResponse carries a signed bearer token.
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
