package db

type Group struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"column:title;uniqueIndex;size:200;not null" json:"title"`
	Slug        string `gorm:"column:slug;uniqueIndex;size:250;not null" json:"slug"`
	Description string `gorm:"column:description;type:text;not null" json:"description"`
}
