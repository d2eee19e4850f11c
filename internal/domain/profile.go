package domain

// Identity is the opaque principal of a caller or profile owner.
type Identity string

const (
	MaxIdentityLength    = 128
	MaxUsernameLength    = 50
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// String returns the raw identity.
func (i Identity) String() string {
	return string(i)
}

// Valid reports whether the identity is non-empty, at most MaxIdentityLength
// bytes and made of visible ASCII only (no spaces or control bytes).
func (i Identity) Valid() bool {
	if i == "" || len(i) > MaxIdentityLength {
		return false
	}
	for j := 0; j < len(i); j++ {
		if i[j] <= 0x20 || i[j] > 0x7e {
			return false
		}
	}
	return true
}

// UserProfile is the per-identity reputation record.
type UserProfile struct {
	Username           string `json:"username"`
	Reputation         uint64 `json:"reputation"`
	TotalContributions uint64 `json:"total_contributions"`
	JoinDate           uint64 `json:"join_date"`
	IsVerified         bool   `json:"is_verified"`
}

// IsPrintableASCII reports whether s holds only ASCII bytes in the printable range.
func IsPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
