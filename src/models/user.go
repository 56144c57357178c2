package models

import (
	"qms/src/types"
)

type User struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Name         string `json:"name,omitempty"`
	Email        string `gorm:"uniqueIndex" json:"email,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `gorm:"default:'consumer'" json:"role,omitempty"`

	Services []Service    `gorm:"foreignKey:organizer_id" json:"services,omitempty"`
	Entries  []QueueEntry `gorm:"foreignKey:user_id" json:"entries,omitempty"`

	types.Timestamps
}
