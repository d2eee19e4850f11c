package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devrep/reputation-registry/internal/domain"
)

func TestProfileCodec(t *testing.T) {
	in := &domain.UserProfile{Username: "dev", Reputation: 1 << 40, JoinDate: 7, IsVerified: true}
	out, err := DecodeProfile(EncodeProfile(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeRejectsTruncatedAndForeignRecords(t *testing.T) {
	raw := EncodeAchievement(&domain.Achievement{Title: "t", Description: "d", EarnedDate: 1, Points: 2})

	_, err := DecodeAchievement(raw[:len(raw)-3])
	assert.Error(t, err)

	raw[0] = 9
	_, err = DecodeAchievement(raw)
	assert.ErrorContains(t, err, "unsupported record version")

	_, err = DecodeProfile(nil)
	assert.Error(t, err)
}

func TestTxnReadsItsOwnWrites(t *testing.T) {
	store := newMemStore()
	store.data["k"] = []byte("old")
	tx := newTxn(context.Background(), store)

	tx.set("k", []byte("new"))
	tx.set("j", []byte("1"))
	tx.set("k", []byte("newer"))

	v, ok, err := tx.get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "newer", string(v))
	assert.Equal(t, "old", string(store.data["k"]))
	assert.Equal(t, []Write{{Key: "k", Value: []byte("newer")}, {Key: "j", Value: []byte("1")}}, tx.writes())
}

func TestAchievementKeyIsUnambiguous(t *testing.T) {
	assert.NotEqual(t, achievementKey("x|1", 5), achievementKey("x", 15))
	assert.Equal(t, "a|x|1|5", achievementKey("x|1", 5))
}
