package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a platform account: regular users produce fingerprint observations,
// moderators (role "admin") work the review surface.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AppID     string         `gorm:"size:50;not null;uniqueIndex:idx_users_app_email,priority:1;uniqueIndex:idx_users_app_username,priority:1" json:"-"`
	Username  string         `gorm:"not null;size:50;uniqueIndex:idx_users_app_username,priority:2" json:"username"`
	Email     string         `gorm:"not null;size:255;uniqueIndex:idx_users_app_email,priority:2" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      string         `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
