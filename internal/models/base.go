package models

import "time"

// BaseModel is gorm.Model without DeletedAt: deletes in this
// application are permanent, never soft.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
