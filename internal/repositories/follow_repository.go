package repositories

import (
	"errors"

	"github.com/inkstream-app/backend/internal/models"
	"gorm.io/gorm"
)

// ErrFollowNotFound is returned when deleting a follow edge that does not exist.
var ErrFollowNotFound = errors.New("follow relationship not found")

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(followerID, authorID uint) error
	IsFollowing(followerID, authorID uint) (bool, error)
	GetFollowingIDs(followerID uint) ([]uint, error)
	GetFollowersCount(authorID uint) (int64, error)
	GetFollowingCount(followerID uint) (int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	return r.db.Create(follow).Error
}

func (r *PostgresFollowRepository) DeleteFollow(followerID, authorID uint) error {
	res := r.db.Where("follower_id = ? AND author_id = ?", followerID, authorID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFollowNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(followerID, authorID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("follower_id = ? AND author_id = ?", followerID, authorID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowingIDs(followerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", followerID).Pluck("author_id", &ids).Error
	return ids, err
}

func (r *PostgresFollowRepository) GetFollowersCount(authorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingCount(followerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", followerID).Count(&count).Error
	return count, err
}
