package db

// Follow is a directed edge: User subscribes to Author's posts.
type Follow struct {
	ID       uint `gorm:"primaryKey;autoIncrement"`
	UserID   uint `gorm:"column:user_id;not null;uniqueIndex:idx_follow_user_author"`
	AuthorID uint `gorm:"column:author_id;not null;uniqueIndex:idx_follow_user_author;index"`

	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}
