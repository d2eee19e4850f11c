package domain

// Achievement is an award granted to a profile, keyed by (identity, id).
type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	EarnedDate  uint64 `json:"earned_date"`
	Points      uint64 `json:"points"`
}

// PlatformParameters are the global settings held by the registry.
type PlatformParameters struct {
	Owner          Identity `json:"owner"`
	FeeBasisPoints uint64   `json:"fee_basis_points"`
}

const (
	DefaultFeeBasisPoints uint64 = 100
	MaxFeeBasisPoints     uint64 = 1000
)
