package social

import (
	"context"
	"testing"

	"github.com/inkstream-app/backend/internal/models"
	"github.com/inkstream-app/backend/internal/repositories"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupGraph(t *testing.T) (*Graph, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Follow{}))

	for _, username := range []string{"leo", "anna", "chris"} {
		require.NoError(t, db.Create(&models.User{Username: username, Email: username + "@example.com"}).Error)
	}

	return NewGraph(repositories.NewPostgresFollowRepository(db), zerolog.Nop()), db
}

func followCount(t *testing.T, db *gorm.DB, followerID, authorID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error)
	return count
}

func TestFollowCreatesSingleEdge(t *testing.T) {
	graph, db := setupGraph(t)
	ctx := context.Background()

	outcome, err := graph.Follow(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, FollowCreated, outcome)
	assert.EqualValues(t, 1, followCount(t, db, 1, 2))

	// A duplicate follow is absorbed, not raised, and inserts nothing.
	outcome, err = graph.Follow(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, FollowAlreadyExists, outcome)
	assert.EqualValues(t, 1, followCount(t, db, 1, 2))
}

func TestFollowSelfIsRejectedSilently(t *testing.T) {
	graph, db := setupGraph(t)

	outcome, err := graph.Follow(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, FollowRejectedSelf, outcome)
	assert.EqualValues(t, 0, followCount(t, db, 1, 1))
}

func TestFollowIsDirected(t *testing.T) {
	graph, _ := setupGraph(t)
	ctx := context.Background()

	_, err := graph.Follow(ctx, 1, 2)
	require.NoError(t, err)

	forward, err := graph.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, forward)

	reverse, err := graph.IsFollowing(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestUnfollow(t *testing.T) {
	graph, db := setupGraph(t)
	ctx := context.Background()

	_, err := graph.Follow(ctx, 1, 2)
	require.NoError(t, err)

	require.NoError(t, graph.Unfollow(ctx, 1, 2))
	assert.EqualValues(t, 0, followCount(t, db, 1, 2))

	// Unfollowing an absent edge and unfollowing yourself are no-ops.
	require.NoError(t, graph.Unfollow(ctx, 1, 2))
	require.NoError(t, graph.Unfollow(ctx, 1, 1))
}

func TestFollowCounts(t *testing.T) {
	graph, _ := setupGraph(t)
	ctx := context.Background()

	_, err := graph.Follow(ctx, 1, 3)
	require.NoError(t, err)
	_, err = graph.Follow(ctx, 2, 3)
	require.NoError(t, err)

	followers, err := graph.FollowerCount(ctx, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 2, followers)

	following, err := graph.FollowingCount(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, following)

	following, err = graph.FollowingCount(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, following)
}

func TestFollowingIDs(t *testing.T) {
	graph, _ := setupGraph(t)
	ctx := context.Background()

	_, err := graph.Follow(ctx, 1, 2)
	require.NoError(t, err)
	_, err = graph.Follow(ctx, 1, 3)
	require.NoError(t, err)
	_, err = graph.Follow(ctx, 2, 1)
	require.NoError(t, err)

	ids, err := graph.FollowingIDs(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{2, 3}, ids)

	ids, err = graph.FollowingIDs(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
