package registry

import (
	"strconv"

	"github.com/devrep/reputation-registry/internal/domain"
)

const (
	// pfxProfile holds encoded UserProfile records.
	pfxProfile = "p|"
	// pfxAchievement holds encoded Achievement records keyed by identity and id.
	pfxAchievement = "a|"

	keyOwner      = "cfg:owner"
	keyFee        = "cfg:fee"
	keyTotalUsers = "count:users"
)

func profileKey(id domain.Identity) string {
	return pfxProfile + string(id)
}

// achievementKey puts the numeric id last; ids never contain the separator,
// so the identity part stays unambiguous.
func achievementKey(id domain.Identity, achievementID uint64) string {
	return pfxAchievement + string(id) + "|" + strconv.FormatUint(achievementID, 10)
}
