package models

import "time"

// Follow is a directed edge from a follower to a followed author.
// The composite unique index is the storage-layer backstop; the social
// graph service is the primary guard for duplicates and self-follows.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_author;not null"`
	Follower   User      `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	AuthorID   uint      `json:"author_id" gorm:"index;uniqueIndex:idx_follower_author;not null"`
	Author     User      `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"created_at"`
}
