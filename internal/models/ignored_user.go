package models

import (
	"time"

	"github.com/google/uuid"
)

// IgnoredUser is one direction of a symmetric known-benign pair. IgnoreService
// writes and deletes both directions together; the unique index makes each
// direction idempotent on its own.
type IgnoredUser struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AppID         string    `gorm:"size:50;not null;uniqueIndex:idx_ignored_users_identity,priority:1" json:"-"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ignored_users_identity,priority:2;index" json:"user_id"`
	IgnoredUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ignored_users_identity,priority:3" json:"ignored_user_id"`
	CreatedAt     time.Time `json:"created_at"`
	User          User      `gorm:"foreignKey:UserID" json:"-"`
}

func (IgnoredUser) TableName() string {
	return "ignored_users"
}
