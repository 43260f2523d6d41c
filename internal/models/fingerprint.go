package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Fingerprint is one recorded sighting of a device/browser-derived
// identifier for a user. Repeat sightings of the same (user, name, value)
// refresh data and updated_at instead of inserting a new row.
type Fingerprint struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AppID     string         `gorm:"size:50;not null;uniqueIndex:idx_fingerprints_identity,priority:1" json:"-"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_fingerprints_identity,priority:2;index" json:"user_id"`
	Name      string         `gorm:"size:100;not null;uniqueIndex:idx_fingerprints_identity,priority:3" json:"name"`
	Value     string         `gorm:"size:255;not null;uniqueIndex:idx_fingerprints_identity,priority:4;index" json:"value"`
	Data      datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
}

func (Fingerprint) TableName() string {
	return "fingerprints"
}
