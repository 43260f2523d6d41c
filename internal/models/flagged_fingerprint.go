package models

import (
	"time"

	"github.com/google/uuid"
)

// FlaggedFingerprint is moderator state on a fingerprint value. A row exists
// only while hidden OR silenced is true; FlagService deletes it the moment
// both bits are false. (app_id, value) uniqueness is enforced by the store so
// concurrent first-time flags cannot create duplicates.
type FlaggedFingerprint struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AppID     string    `gorm:"size:50;not null;uniqueIndex:idx_flagged_fingerprints_app_value,priority:1" json:"-"`
	Value     string    `gorm:"size:255;not null;uniqueIndex:idx_flagged_fingerprints_app_value,priority:2" json:"value"`
	Hidden    bool      `gorm:"not null;default:false" json:"hidden"`
	Silenced  bool      `gorm:"not null;default:false" json:"silenced"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FlaggedFingerprint) TableName() string {
	return "flagged_fingerprints"
}
