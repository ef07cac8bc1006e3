package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string     `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string     `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName string     `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName  string     `gorm:"size:150;not null;default:''" json:"last_name"`
	Bio       string     `gorm:"type:text;not null;default:''" json:"bio"`
	Role      Role       `gorm:"size:16;default:'user';not null" json:"role"`
	IsActive  bool       `gorm:"not null;default:false" json:"-"`
	IsStaff   bool       `gorm:"not null;default:false" json:"-"`
	Password  string     `gorm:"column:password_hash;not null" json:"-"` // never serialized
	LastLogin *time.Time `json:"-"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}

// IsAdmin is true for the admin role and for staff accounts regardless of role.
func (user *User) IsAdmin() bool {
	return user.Role.CanAdminister() || user.IsStaff
}

// IsModerator is true for moderators and for anyone IsAdmin covers.
func (user *User) IsModerator() bool {
	return user.IsAdmin() || user.Role.CanModerate()
}
