package models

// Group is a named collection posts can be filed under. Groups are created
// by administrators and are immutable from the feed subsystem's perspective.
type Group struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"size:200;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:200;not null"`
	Description string `json:"description,omitempty"`
}

// CreateGroupRequest defines the request body for creating a new group
type CreateGroupRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Slug        string `json:"slug" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty"`
}
