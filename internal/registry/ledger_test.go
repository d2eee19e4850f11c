package registry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devrep/reputation-registry/internal/domain"
)

const (
	owner   domain.Identity = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"
	wallet1 domain.Identity = "ST1SJ3DTE5DN7X54YDH5D64R3BCB6A2AG2ZQ8YPD5"
	wallet2 domain.Identity = "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG"
)

type memStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	commits   int
	commitErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Commit(_ context.Context, writes []Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	for _, w := range writes {
		m.data[w.Key] = w.Value
	}
	m.commits++
	return nil
}

func (m *memStore) snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = string(v)
	}
	return out
}

func newTestLedger(t *testing.T) (*Ledger, *memStore) {
	t.Helper()
	store := newMemStore()
	l := NewLedger(store)
	initialized, err := l.Init(context.Background(), owner)
	require.NoError(t, err)
	require.True(t, initialized)
	return l, store
}

func mustCreate(t *testing.T, l *Ledger, who domain.Identity, name string, height uint64) {
	t.Helper()
	ok, err := l.CreateProfile(context.Background(), Call{Caller: who, Height: height}, name)
	require.NoError(t, err)
	require.True(t, ok)
}

func requireCode(t *testing.T, err error, want *Error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, want), "want %s, got %v", want.Symbol, err)
	assert.Equal(t, want.Code, ResultCode(err))
}

func TestInitDefaults(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	total, err := l.GetTotalUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	fee, err := l.GetPlatformFee(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), fee)

	got, err := l.GetContractOwner(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	params, err := l.GetPlatformParameters(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformParameters{Owner: owner, FeeBasisPoints: 100}, params)
}

func TestInitNeverReplacesOwner(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	initialized, err := l.Init(ctx, wallet1)
	require.NoError(t, err)
	assert.False(t, initialized)

	got, err := l.GetContractOwner(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	_, err = l.Init(ctx, "")
	requireCode(t, err, ErrInvalidInput)
}

func TestCreateProfile(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	mustCreate(t, l, wallet1, "testuser", 3)

	exists, err := l.UserExists(ctx, wallet1)
	require.NoError(t, err)
	assert.True(t, exists)

	p, err := l.GetUserProfile(ctx, wallet1)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, domain.UserProfile{Username: "testuser", JoinDate: 3}, *p)

	total, err := l.GetTotalUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
}

func TestCreateProfileRejections(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	mustCreate(t, l, wallet1, "testuser", 2)
	before := store.snapshot()

	tests := []struct {
		name     string
		caller   domain.Identity
		username string
		want     *Error
	}{
		{name: "duplicate", caller: wallet1, username: "another", want: ErrUserExists},
		{name: "empty checked before existence", caller: wallet1, username: "", want: ErrInvalidInput},
		{name: "empty", caller: wallet2, username: "", want: ErrInvalidInput},
		{name: "too long", caller: wallet2, username: strings.Repeat("a", domain.MaxUsernameLength+1), want: ErrInvalidInput},
		{name: "not ascii", caller: wallet2, username: "dév", want: ErrInvalidInput},
		{name: "malformed caller", caller: "has space", username: "x", want: ErrInvalidInput},
		{name: "control byte in caller", caller: "ST1\x00NUL", username: "x", want: ErrInvalidInput},
		{name: "non-ascii caller", caller: "ST1ü", username: "x", want: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := l.CreateProfile(ctx, Call{Caller: tt.caller, Height: 5}, tt.username)
			assert.False(t, ok)
			requireCode(t, err, tt.want)
		})
	}
	assert.Equal(t, before, store.snapshot())

	mustCreate(t, l, wallet2, strings.Repeat("a", domain.MaxUsernameLength), 6)
}

func TestOwnerOnlyOperationsRejectOthersFirst(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	mustCreate(t, l, wallet1, "testuser", 2)
	before := store.snapshot()
	call := Call{Caller: wallet1, Height: 3}

	_, err := l.UpdateReputation(ctx, call, wallet1, 100)
	requireCode(t, err, ErrNotAuthorized)

	// gate precedes existence and input checks
	_, err = l.UpdateReputation(ctx, call, wallet2, 100)
	requireCode(t, err, ErrNotAuthorized)
	_, err = l.VerifyUser(ctx, call, wallet2)
	requireCode(t, err, ErrNotAuthorized)
	_, err = l.AddAchievement(ctx, call, wallet2, AchievementInput{ID: 1, Title: "T", Points: 5})
	requireCode(t, err, ErrNotAuthorized)
	_, err = l.SetPlatformFee(ctx, call, 5000)
	requireCode(t, err, ErrNotAuthorized)

	assert.Equal(t, before, store.snapshot())

	isOwner, err := l.IsOwner(ctx, wallet1)
	require.NoError(t, err)
	assert.False(t, isOwner)
	isOwner, err = l.IsOwner(ctx, owner)
	require.NoError(t, err)
	assert.True(t, isOwner)
}

func TestUpdateReputationIsAbsolute(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	mustCreate(t, l, wallet1, "testuser", 2)
	call := Call{Caller: owner, Height: 3}

	ok, err := l.UpdateReputation(ctx, call, wallet1, 100)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l.UpdateReputation(ctx, call, wallet1, 40)
	require.NoError(t, err)
	assert.True(t, ok)

	rep, found, err := l.GetUserReputation(ctx, wallet1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(40), rep)

	_, err = l.UpdateReputation(ctx, call, wallet2, 100)
	requireCode(t, err, ErrUserNotFound)
	_, err = l.UpdateReputation(ctx, call, "", 100)
	requireCode(t, err, ErrInvalidInput)
}

func TestVerifyUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	mustCreate(t, l, wallet1, "testuser", 2)
	call := Call{Caller: owner, Height: 3}

	ok, err := l.VerifyUser(ctx, call, wallet1)
	require.NoError(t, err)
	assert.True(t, ok)
	commits := store.commits

	ok, err = l.VerifyUser(ctx, call, wallet1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, commits, store.commits)

	p, err := l.GetUserProfile(ctx, wallet1)
	require.NoError(t, err)
	assert.True(t, p.IsVerified)

	_, err = l.VerifyUser(ctx, call, wallet2)
	requireCode(t, err, ErrUserNotFound)
}

func TestAddAchievement(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	mustCreate(t, l, wallet1, "achievement_user", 2)
	call := Call{Caller: owner, Height: 4}

	in := AchievementInput{ID: 1, Title: "First Contribution", Description: "Made first contribution to the platform", Points: 50}
	ok, err := l.AddAchievement(ctx, call, wallet1, in)
	require.NoError(t, err)
	assert.True(t, ok)

	a, err := l.GetUserAchievement(ctx, wallet1, 1)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, domain.Achievement{Title: in.Title, Description: in.Description, EarnedDate: 4, Points: 50}, *a)

	rep, _, err := l.GetUserReputation(ctx, wallet1)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), rep)

	t.Run("duplicate id leaves state untouched", func(t *testing.T) {
		before := store.snapshot()
		_, err := l.AddAchievement(ctx, Call{Caller: owner, Height: 5}, wallet1, in)
		requireCode(t, err, ErrAchievementExists)
		assert.Equal(t, before, store.snapshot())
	})

	t.Run("points accumulate across ids", func(t *testing.T) {
		_, err := l.AddAchievement(ctx, call, wallet1, AchievementInput{ID: 2, Title: "Second", Points: 25})
		require.NoError(t, err)
		rep, _, err := l.GetUserReputation(ctx, wallet1)
		require.NoError(t, err)
		assert.Equal(t, uint64(75), rep)
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := l.AddAchievement(ctx, call, wallet2, AchievementInput{ID: 1, Title: "Test", Points: 10})
		requireCode(t, err, ErrUserNotFound)
	})

	t.Run("bounded text", func(t *testing.T) {
		_, err := l.AddAchievement(ctx, call, wallet1, AchievementInput{ID: 9, Title: strings.Repeat("t", domain.MaxTitleLength+1)})
		requireCode(t, err, ErrInvalidInput)
		_, err = l.AddAchievement(ctx, call, wallet1, AchievementInput{ID: 9, Description: strings.Repeat("d", domain.MaxDescriptionLength+1)})
		requireCode(t, err, ErrInvalidInput)
	})

	t.Run("zero points", func(t *testing.T) {
		_, err := l.AddAchievement(ctx, call, wallet1, AchievementInput{ID: 10, Title: "Nothing"})
		requireCode(t, err, ErrInvalidInput)

		a, err := l.GetUserAchievement(ctx, wallet1, 10)
		require.NoError(t, err)
		assert.Nil(t, a)
	})
}

func TestAddAchievementOverflow(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	mustCreate(t, l, wallet1, "testuser", 2)
	call := Call{Caller: owner, Height: 3}

	_, err := l.UpdateReputation(ctx, call, wallet1, ^uint64(0))
	require.NoError(t, err)
	_, err = l.AddAchievement(ctx, call, wallet1, AchievementInput{ID: 1, Points: 1})
	requireCode(t, err, ErrInvalidInput)

	a, err := l.GetUserAchievement(ctx, wallet1, 1)
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestSetPlatformFeeBounds(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	call := Call{Caller: owner, Height: 2}

	for _, fee := range []uint64{0, 250, 1000} {
		ok, err := l.SetPlatformFee(ctx, call, fee)
		require.NoError(t, err)
		assert.True(t, ok)
		got, err := l.GetPlatformFee(ctx)
		require.NoError(t, err)
		assert.Equal(t, fee, got)
	}

	_, err := l.SetPlatformFee(ctx, call, 1001)
	requireCode(t, err, ErrInvalidInput)
	got, err := l.GetPlatformFee(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), got)
}

func TestReadsOnUnknownIdentity(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	exists, err := l.UserExists(ctx, wallet2)
	require.NoError(t, err)
	assert.False(t, exists)

	p, err := l.GetUserProfile(ctx, wallet2)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, found, err := l.GetUserReputation(ctx, "")
	require.NoError(t, err)
	assert.False(t, found)

	a, err := l.GetUserAchievement(ctx, wallet2, 1)
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestFailedCommitLeavesNoPartialWrites(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	before := store.snapshot()
	store.commitErr = errors.New("disk full")

	ok, err := l.CreateProfile(ctx, Call{Caller: wallet1, Height: 2}, "testuser")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint32(500), ResultCode(err))

	store.commitErr = nil
	assert.Equal(t, before, store.snapshot())
	total, err := l.GetTotalUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestProfileLifecycle(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	mustCreate(t, l, wallet1, "lifecycle_user", 2)

	ok, err := l.AddAchievement(ctx, Call{Caller: owner, Height: 3}, wallet1, AchievementInput{
		ID: 1, Title: "Lifecycle Test", Description: "Test achievement for lifecycle", Points: 25,
	})
	require.NoError(t, err)
	require.True(t, ok)

	_, err = l.VerifyUser(ctx, Call{Caller: owner, Height: 4}, wallet1)
	require.NoError(t, err)

	_, err = l.UpdateReputation(ctx, Call{Caller: owner, Height: 5}, wallet1, 100)
	require.NoError(t, err)

	p, err := l.GetUserProfile(ctx, wallet1)
	require.NoError(t, err)
	assert.Equal(t, domain.UserProfile{Username: "lifecycle_user", Reputation: 100, JoinDate: 2, IsVerified: true}, *p)

	mustCreate(t, l, wallet2, "second_user", 6)
	total, err := l.GetTotalUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
}
