package models

import "time"

// User is a forum account. This service only reads users to validate
// ban targets and moderators; account management lives elsewhere.
type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"size:150;uniqueIndex;not null"`
	Email     string `gorm:"size:254"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (User) TableName() string {
	return "forum_user"
}
