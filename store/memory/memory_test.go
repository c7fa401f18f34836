package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"sosmed/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountsRejectDuplicateUsername(t *testing.T) {
	accounts := New().Accounts()
	ctx := context.Background()

	require.NoError(t, accounts.Create(ctx, &store.Account{Username: "alice"}))
	err := accounts.Create(ctx, &store.Account{Username: "alice", Firstname: "Other"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestFollowUpdatesBothSides(t *testing.T) {
	accounts := New().Accounts()
	ctx := context.Background()

	alice := &store.Account{Username: "alice"}
	bob := &store.Account{Username: "bob"}
	require.NoError(t, accounts.Create(ctx, alice))
	require.NoError(t, accounts.Create(ctx, bob))

	require.NoError(t, accounts.Follow(ctx, bob.ID.Hex(), alice.ID.Hex()))
	assert.ErrorIs(t, accounts.Follow(ctx, bob.ID.Hex(), alice.ID.Hex()), store.ErrNoChange)

	gotBob, err := accounts.FindByID(ctx, bob.ID.Hex())
	require.NoError(t, err)
	gotAlice, err := accounts.FindByID(ctx, alice.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID.Hex()}, gotBob.Followers)
	assert.Equal(t, []string{bob.ID.Hex()}, gotAlice.Following)

	require.NoError(t, accounts.Unfollow(ctx, bob.ID.Hex(), alice.ID.Hex()))
	assert.ErrorIs(t, accounts.Unfollow(ctx, bob.ID.Hex(), alice.ID.Hex()), store.ErrNoChange)

	gotBob, _ = accounts.FindByID(ctx, bob.ID.Hex())
	gotAlice, _ = accounts.FindByID(ctx, alice.ID.Hex())
	assert.Empty(t, gotBob.Followers)
	assert.Empty(t, gotAlice.Following)
}

func TestFollowNormalizesIDCase(t *testing.T) {
	accounts := New().Accounts()
	ctx := context.Background()

	alice := &store.Account{Username: "alice"}
	bob := &store.Account{Username: "bob"}
	require.NoError(t, accounts.Create(ctx, alice))
	require.NoError(t, accounts.Create(ctx, bob))

	require.NoError(t, accounts.Follow(ctx, strings.ToUpper(bob.ID.Hex()), strings.ToUpper(alice.ID.Hex())))
	assert.ErrorIs(t, accounts.Follow(ctx, bob.ID.Hex(), alice.ID.Hex()), store.ErrNoChange)

	gotBob, _ := accounts.FindByID(ctx, bob.ID.Hex())
	gotAlice, _ := accounts.FindByID(ctx, alice.ID.Hex())
	assert.Equal(t, []string{alice.ID.Hex()}, gotBob.Followers)
	assert.Equal(t, []string{bob.ID.Hex()}, gotAlice.Following)
}

func TestReturnedAccountsDoNotAliasStoredState(t *testing.T) {
	accounts := New().Accounts()
	ctx := context.Background()

	alice := &store.Account{Username: "alice"}
	require.NoError(t, accounts.Create(ctx, alice))

	got, err := accounts.FindByID(ctx, alice.ID.Hex())
	require.NoError(t, err)
	got.Followers = append(got.Followers, "intruder")

	again, err := accounts.FindByID(ctx, alice.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, again.Followers)
}

func TestFollowingPostsJoinsOnFollowingList(t *testing.T) {
	db := New()
	accounts, posts := db.Accounts(), db.Posts()
	ctx := context.Background()

	alice := &store.Account{Username: "alice"}
	bob := &store.Account{Username: "bob"}
	carol := &store.Account{Username: "carol"}
	for _, acc := range []*store.Account{alice, bob, carol} {
		require.NoError(t, accounts.Create(ctx, acc))
	}
	require.NoError(t, accounts.Follow(ctx, bob.ID.Hex(), alice.ID.Hex()))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, posts.Create(ctx, &store.Post{UserID: bob.ID.Hex(), Desc: "from bob", CreatedAt: base}))
	require.NoError(t, posts.Create(ctx, &store.Post{UserID: carol.ID.Hex(), Desc: "from carol", CreatedAt: base}))

	got, err := posts.FollowingPosts(ctx, alice.ID.Hex())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "from bob", got[0].Desc)

	none, err := posts.FollowingPosts(ctx, carol.ID.Hex())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = posts.FollowingPosts(ctx, "000000000000000000000000")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
