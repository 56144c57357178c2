package models

import (
	"qms/src/types"
	"time"
)

type Service struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	Slug        string              `gorm:"uniqueIndex" json:"slug,omitempty"`
	Name        string              `json:"name,omitempty"`
	Description *string             `json:"description,omitempty"`
	MaxCapacity uint                `json:"max_capacity,omitempty"`
	Status      types.ServiceStatus `gorm:"default:'inactive'" json:"status,omitempty"`
	OrganizerID uint                `gorm:"index" json:"organizer,omitempty"`
	OpensAt     *time.Time          `json:"opens_at,omitempty"`
	ClosesAt    *time.Time          `json:"closes_at,omitempty"`

	Organizer User         `gorm:"foreignKey:organizer_id" json:"-"`
	Entries   []QueueEntry `gorm:"foreignKey:service_id" json:"entries,omitempty"`

	types.Timestamps
}
