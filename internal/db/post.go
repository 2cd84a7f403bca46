package db

import (
	"time"
)

// Post is ordered newest first everywhere it is listed.
type Post struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	Text     string    `gorm:"column:text;type:text;not null"`
	PubDate  time.Time `gorm:"column:pub_date;not null;index"`
	AuthorID uint      `gorm:"column:author_id;not null;index"`
	GroupID  *uint     `gorm:"column:group_id;index"`
	Image    string    `gorm:"column:image;size:100"` // media file id, empty when no image

	Author User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Group  *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
}
