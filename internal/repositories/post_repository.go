package repositories

import (
	"context"

	"github.com/inkstream-app/backend/internal/models"
	"gorm.io/gorm"
)

// PostFilter narrows a post listing. The zero value matches every post.
// AuthorIDs and the single-valued fields are mutually exclusive in practice;
// the feed assembler builds exactly one of them per selector.
type PostFilter struct {
	GroupID   *uint
	AuthorID  *uint
	AuthorIDs []uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
	ListPosts(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post in PostgreSQL
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// GetPostByID retrieves a post with its author and group preloaded
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost updates an existing post in PostgreSQL
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// DeletePost deletes a post and its comments in one transaction
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// CountPosts counts posts matching the filter
func (r *PostgresPostRepository) CountPosts(ctx context.Context, filter PostFilter) (int64, error) {
	var count int64
	err := applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).Count(&count).Error
	return count, err
}

// ListPosts returns one page of posts matching the filter, newest first.
// The secondary id sort keeps same-instant posts in a stable order so
// consecutive page fetches never skip or repeat an item.
func (r *PostgresPostRepository) ListPosts(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func applyFilter(q *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.GroupID != nil {
		q = q.Where("group_id = ?", *filter.GroupID)
	}
	if filter.AuthorID != nil {
		q = q.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.AuthorIDs != nil {
		q = q.Where("author_id IN ?", filter.AuthorIDs)
	}
	return q
}
