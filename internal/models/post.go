// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a user-authored entry in the Quill application.
// CreatedAt is write-once: the `<-:create` tag keeps updates from touching it.
type Post struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Text      string `gorm:"type:text;not null" json:"text"`
	ImagePath string `json:"image_path,omitempty"`
	AuthorID  uint   `gorm:"not null;index" json:"author_id"`
	Author    User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	// GroupID is nullable; deleting a group detaches its posts instead of
	// removing them.
	GroupID   *uint          `gorm:"index" json:"group_id,omitempty"`
	Group     *Group         `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	CreatedAt time.Time      `gorm:"<-:create;index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
