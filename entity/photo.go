package entity

import (
	"time"

	"github.com/google/uuid"
)

// Photo is the only persistent entity: one row per uploaded picture.
// ImageName is the object-store key; ImageURL is derived from it once at
// upload time and stored redundantly so listing never recomputes it.
type Photo struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ImageName string    `json:"image_name" gorm:"type:varchar(1024);not null;uniqueIndex"`
	ImageURL  string    `json:"image_url" gorm:"type:text;not null"`
	Caption   string    `json:"caption" gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime;index"`
}
