package models

import (
	"time"
)

// Token is the opaque API credential of a user. Each user has at most one.
type Token struct {
	Key     string    `gorm:"column:key;primaryKey;size:40" json:"key"`
	UserID  uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Created time.Time `gorm:"not null" json:"created"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Token) TableName() string { return "authtoken_token" }
