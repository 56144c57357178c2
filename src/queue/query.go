package queue

import (
	"errors"
	"fmt"
	"qms/src/db"
	"qms/src/models"
	"qms/src/types"

	"gorm.io/gorm"
)

type ServiceSnapshot struct {
	ServiceID       uint                `json:"service_id"`
	ServingEntries  []models.QueueEntry `json:"serving_entries"`
	WaitingEntries  []models.QueueEntry `json:"waiting_entries"`
	CompleteEntries []models.QueueEntry `json:"complete_entries"`
	ServingCapacity uint                `json:"serving_capacity"`
	MaxCapacity     uint                `json:"max_capacity"`
	IsFull          bool                `json:"is_full"`
}

type UserStatus struct {
	EntryID      uint              `json:"entry_id"`
	Status       types.EntryStatus `json:"status"`
	TokenNumber  uint              `json:"token_number"`
	WaitingAhead uint              `json:"waiting_ahead"`
}

// GetServiceSnapshot returns the full queue state of a service. Waiting
// entries come back ordered by token number, which is arrival order.
func GetServiceSnapshot(serviceID uint) (*ServiceSnapshot, error) {
	gdb := db.GetDb()
	var service models.Service
	if err := gdb.
		Where(&models.Service{ID: serviceID}).
		First(&service).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: service [%d]", ErrNotFound, serviceID)
		}
		return nil, err
	}

	snapshot := ServiceSnapshot{
		ServiceID:   serviceID,
		MaxCapacity: service.MaxCapacity,
	}
	for _, status := range []types.EntryStatus{types.ENTRY_SERVING, types.ENTRY_WAITING, types.ENTRY_COMPLETE} {
		var entries []models.QueueEntry
		if err := gdb.
			Where(&models.QueueEntry{ServiceID: serviceID, Status: status}).
			Order("token_number asc").
			Find(&entries).
			Error; err != nil {
			return nil, err
		}
		switch status {
		case types.ENTRY_SERVING:
			snapshot.ServingEntries = entries
			for _, e := range entries {
				snapshot.ServingCapacity += e.GroupSize
			}
		case types.ENTRY_WAITING:
			snapshot.WaitingEntries = entries
		case types.ENTRY_COMPLETE:
			snapshot.CompleteEntries = entries
		}
	}
	snapshot.IsFull = snapshot.ServingCapacity >= service.MaxCapacity
	return &snapshot, nil
}

// GetUserStatus reports a user's live entry in a service queue, with the
// count of waiting parties holding smaller tokens. Returns nil without an
// error when the user has no live entry.
func GetUserStatus(serviceID, userID uint) (*UserStatus, error) {
	gdb := db.GetDb()
	var entry models.QueueEntry
	err := gdb.
		Where(&models.QueueEntry{ServiceID: serviceID, UserID: userID}).
		Where("status IN ?", []types.EntryStatus{types.ENTRY_WAITING, types.ENTRY_SERVING}).
		First(&entry).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	status := UserStatus{
		EntryID:     entry.ID,
		Status:      entry.Status,
		TokenNumber: entry.TokenNumber,
	}
	if entry.Status == types.ENTRY_WAITING {
		var ahead int64
		if err := gdb.
			Model(&models.QueueEntry{}).
			Where(&models.QueueEntry{ServiceID: serviceID, Status: types.ENTRY_WAITING}).
			Where("token_number < ?", entry.TokenNumber).
			Count(&ahead).
			Error; err != nil {
			return nil, err
		}
		status.WaitingAhead = uint(ahead)
	}
	return &status, nil
}
