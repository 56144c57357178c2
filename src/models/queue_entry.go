package models

import (
	"qms/src/types"
)

type QueueEntry struct {
	ID          uint              `gorm:"primarykey" json:"id"`
	ServiceID   uint              `gorm:"index:idx_service_token,unique" json:"service_id,omitempty"`
	UserID      uint              `gorm:"index" json:"user_id,omitempty"`
	TokenNumber uint              `gorm:"index:idx_service_token,unique" json:"token_number,omitempty"`
	GroupSize   uint              `json:"group_size,omitempty"`
	MemberNames types.StringArray `gorm:"type:text" json:"member_names,omitempty"`
	Status      types.EntryStatus `gorm:"index;default:'waiting'" json:"status,omitempty"`

	Service *Service `gorm:"foreignKey:service_id" json:"service,omitempty"`
	User    *User    `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
