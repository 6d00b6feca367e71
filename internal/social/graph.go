package social

import (
	"context"
	"errors"

	"github.com/inkstream-app/backend/internal/models"
	"github.com/inkstream-app/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// FollowOutcome reports what a Follow call actually did. Handlers collapse
// every non-error outcome to the same redirect; the distinction exists so the
// graph itself stays testable instead of swallowing information.
type FollowOutcome int

const (
	FollowCreated FollowOutcome = iota
	FollowAlreadyExists
	FollowRejectedSelf
)

// Graph maintains the follow relation between users.
type Graph struct {
	repo   repositories.FollowRepository
	logger zerolog.Logger
}

// NewGraph creates a new Graph backed by the given repository.
func NewGraph(repo repositories.FollowRepository, logger zerolog.Logger) *Graph {
	return &Graph{repo: repo, logger: logger}
}

// Follow creates a follow edge from followerID to authorID.
// Self-follows and duplicates are absorbed, not raised: the storage-layer
// unique index is a last-resort guard, this check is the control path.
func (g *Graph) Follow(ctx context.Context, followerID, authorID uint) (FollowOutcome, error) {
	if followerID == authorID {
		return FollowRejectedSelf, nil
	}

	exists, err := g.repo.IsFollowing(followerID, authorID)
	if err != nil {
		return 0, err
	}
	if exists {
		return FollowAlreadyExists, nil
	}

	follow := &models.Follow{
		FollowerID: followerID,
		AuthorID:   authorID,
	}
	if err := g.repo.CreateFollow(follow); err != nil {
		g.logger.Error().Err(err).
			Uint("follower_id", followerID).
			Uint("author_id", authorID).
			Msg("failed to create follow")
		return 0, err
	}

	return FollowCreated, nil
}

// Unfollow removes the follow edge from followerID to authorID.
// Removing an absent edge is a no-op, as is a self-unfollow.
func (g *Graph) Unfollow(ctx context.Context, followerID, authorID uint) error {
	if followerID == authorID {
		return nil
	}

	err := g.repo.DeleteFollow(followerID, authorID)
	if errors.Is(err, repositories.ErrFollowNotFound) {
		return nil
	}
	if err != nil {
		g.logger.Error().Err(err).
			Uint("follower_id", followerID).
			Uint("author_id", authorID).
			Msg("failed to delete follow")
		return err
	}
	return nil
}

// IsFollowing reports whether followerID follows authorID. Read-only.
func (g *Graph) IsFollowing(ctx context.Context, followerID, authorID uint) (bool, error) {
	return g.repo.IsFollowing(followerID, authorID)
}

// FollowingIDs returns the ids of every author followerID follows.
func (g *Graph) FollowingIDs(ctx context.Context, followerID uint) ([]uint, error) {
	return g.repo.GetFollowingIDs(followerID)
}

// FollowerCount returns how many users follow authorID.
func (g *Graph) FollowerCount(ctx context.Context, authorID uint) (int64, error) {
	return g.repo.GetFollowersCount(authorID)
}

// FollowingCount returns how many authors followerID follows.
func (g *Graph) FollowingCount(ctx context.Context, followerID uint) (int64, error) {
	return g.repo.GetFollowingCount(followerID)
}
