package models

import "time"

// Post is a single authored entry. Deleting the author cascades to the post;
// deleting the group keeps the post and nulls its group reference.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"not null"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null"`
	Author    User      `json:"author" gorm:"constraint:OnDelete:CASCADE"`
	GroupID   *uint     `json:"group_id,omitempty" gorm:"index"`
	Group     *Group    `json:"group,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	ImagePath string    `json:"image_path,omitempty"` // reference into the upload store, not the blob itself
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Text      string `json:"text" validate:"required,min=1"`
	GroupID   *uint  `json:"group_id,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Text      string `json:"text" validate:"required,min=1"`
	GroupID   *uint  `json:"group_id,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
}
