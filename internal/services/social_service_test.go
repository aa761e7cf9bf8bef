// internal/services/social_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbazaar/promptbazaar-backend/internal/apperrors"
	"github.com/promptbazaar/promptbazaar-backend/internal/utils"
)

func TestFollow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSocialService(db)

	alice := testAddress(1)
	bob := testAddress(2)

	require.NoError(t, svc.Follow(alice, bob))

	following, err := svc.IsFollowing(alice, bob)
	require.NoError(t, err)
	assert.True(t, following)

	// Both sides of the edge are counted.
	assert.Equal(t, 1, loadUser(t, db, alice).Stats.Following)
	assert.Equal(t, 1, loadUser(t, db, bob).Stats.Followers)
	assert.Equal(t, 0, loadUser(t, db, alice).Stats.Followers)
}

func TestFollowIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSocialService(db)

	alice := testAddress(1)
	bob := testAddress(2)

	require.NoError(t, svc.Follow(alice, bob))
	require.NoError(t, svc.Follow(alice, bob))

	assert.Equal(t, 1, loadUser(t, db, alice).Stats.Following)
	assert.Equal(t, 1, loadUser(t, db, bob).Stats.Followers)
}

func TestFollowSelf(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSocialService(db)

	err := svc.Follow(testAddress(1), testAddress(1))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindSelfAction, apperrors.KindOf(err))
}

func TestUnfollow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSocialService(db)

	alice := testAddress(1)
	bob := testAddress(2)

	require.NoError(t, svc.Follow(alice, bob))
	require.NoError(t, svc.Unfollow(alice, bob))

	following, err := svc.IsFollowing(alice, bob)
	require.NoError(t, err)
	assert.False(t, following)

	assert.Equal(t, 0, loadUser(t, db, alice).Stats.Following)
	assert.Equal(t, 0, loadUser(t, db, bob).Stats.Followers)

	// Unfollowing again must not drive counters negative.
	require.NoError(t, svc.Unfollow(alice, bob))
	assert.Equal(t, 0, loadUser(t, db, alice).Stats.Following)
	assert.Equal(t, 0, loadUser(t, db, bob).Stats.Followers)
}

func TestRefollowAfterUnfollow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSocialService(db)

	alice := testAddress(1)
	bob := testAddress(2)

	require.NoError(t, svc.Follow(alice, bob))
	require.NoError(t, svc.Unfollow(alice, bob))
	require.NoError(t, svc.Follow(alice, bob))

	assert.Equal(t, 1, loadUser(t, db, alice).Stats.Following)
	assert.Equal(t, 1, loadUser(t, db, bob).Stats.Followers)
}

func TestGetFollowersAndFollowing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSocialService(db)

	bob := testAddress(10)
	for i := 1; i <= 3; i++ {
		require.NoError(t, svc.Follow(testAddress(i), bob))
	}
	require.NoError(t, svc.Follow(bob, testAddress(1)))

	params := utils.PaginationParams{Page: 1, Limit: 20}

	followers, total, err := svc.GetFollowers(bob, params)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, followers, 3)

	following, total, err := svc.GetFollowing(bob, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, following, 1)
	assert.Equal(t, testAddress(1), following[0].Address)
}
