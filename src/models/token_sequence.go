package models

import (
	"qms/src/types"
)

// TokenSequence holds the highest token number ever issued for a service.
// Tokens are never reused, even after entries complete, so organizer-facing
// numbers stay stable and auditable.
type TokenSequence struct {
	ID        uint `gorm:"primarykey" json:"id"`
	ServiceID uint `gorm:"uniqueIndex" json:"service_id,omitempty"`
	LastValue uint `json:"last_value,omitempty"`

	types.Timestamps
}
