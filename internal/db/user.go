package db

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"column:username;uniqueIndex;size:150;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	FirstName    string    `gorm:"column:first_name;size:150" json:"first_name"`
	LastName     string    `gorm:"column:last_name;size:150" json:"last_name"`
	Email        string    `gorm:"column:email;size:254" json:"email"`
	IsStaff      bool      `gorm:"column:is_staff;not null;default:false" json:"-"`
	DateJoined   time.Time `gorm:"column:date_joined;autoCreateTime" json:"date_joined"`
}

// FullName falls back to the username when no name was given at signup.
func (u User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}
