package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents an account allowed to call the API
type User struct {
	BaseModel
	Username    string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Password    string    `gorm:"size:128;not null" json:"-"` // Never send password in JSON
	IsActive    bool      `gorm:"not null" json:"is_active"`
	IsStaff     bool      `gorm:"not null" json:"is_staff"`
	IsSuperuser bool      `gorm:"not null" json:"is_superuser"`
	DateJoined  time.Time `gorm:"not null" json:"date_joined"`

	Token *Token `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string { return "auth_user" }

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
