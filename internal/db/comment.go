package db

import (
	"time"
)

type Comment struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	PostID   uint      `gorm:"column:post_id;not null;index"`
	AuthorID uint      `gorm:"column:author_id;not null;index"`
	Text     string    `gorm:"column:text;type:text;not null"`
	Created  time.Time `gorm:"column:created;not null;index"`

	Post   Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}
