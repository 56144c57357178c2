package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// StringArray stores an ordered list of strings as a JSON column. Used for
// the member names attached to a queue entry.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *StringArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type ServiceStatus string

const (
	SERVICE_INACTIVE ServiceStatus = "inactive"
	SERVICE_ACTIVE   ServiceStatus = "active"
	SERVICE_PAUSED   ServiceStatus = "paused"
	SERVICE_CLOSED   ServiceStatus = "closed"
)

type EntryStatus string

const (
	ENTRY_WAITING  EntryStatus = "waiting"
	ENTRY_SERVING  EntryStatus = "serving"
	ENTRY_COMPLETE EntryStatus = "complete"
)

// entryTransitions lists the allowed next statuses for each entry status.
// ENTRY_COMPLETE is terminal and has no successors.
var entryTransitions = map[EntryStatus][]EntryStatus{
	ENTRY_WAITING:  {ENTRY_SERVING},
	ENTRY_SERVING:  {ENTRY_WAITING, ENTRY_COMPLETE},
	ENTRY_COMPLETE: {},
}

func ValidEntryTransition(from, to EntryStatus) bool {
	allowed, ok := entryTransitions[from]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}

const (
	GROUP_SIZE_MIN = 1
	GROUP_SIZE_MAX = 20
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type EntryRequestParams struct {
	ID      uint `uri:"id" binding:"required"`
	EntryID uint `uri:"entryId" binding:"required"`
}

type CreateServiceRequestBody struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description,omitempty"`
	MaxCapacity uint    `json:"max_capacity" binding:"required,min=1"`
	OpensAt     *string `json:"opens_at,omitempty" binding:"omitempty,servicedate" time_format:"2006-01-02 15:04:05 -07:00"`
	ClosesAt    *string `json:"closes_at,omitempty" binding:"omitempty,servicedate" time_format:"2006-01-02 15:04:05 -07:00"`
	Activate    bool    `json:"activate,omitempty"`
}

type UpdateServiceStatusRequestBody struct {
	NewStatus ServiceStatus `json:"new_status" binding:"required"`
}

type JoinQueueRequestBody struct {
	GroupSize   uint     `json:"group_size" binding:"required,min=1,max=20"`
	MemberNames []string `json:"member_names" binding:"required,membernames"`
}

type RegisterUserRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
