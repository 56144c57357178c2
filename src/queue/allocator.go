package queue

import (
	"errors"
	"fmt"
	"log"
	"qms/src/common"
	"qms/src/db"
	"qms/src/models"
	"qms/src/types"
	"strings"

	"gorm.io/gorm"
)

type JoinResult struct {
	Entry    *models.QueueEntry `json:"entry"`
	Position uint               `json:"position,omitempty"`
	Message  string             `json:"message"`
}

// servingCapacity sums the group sizes of all serving entries for a
// service. This is the quantity the capacity invariant bounds by
// Service.MaxCapacity.
func servingCapacity(tx *gorm.DB, serviceID uint) (uint, error) {
	var total int64
	err := tx.
		Model(&models.QueueEntry{}).
		Where(&models.QueueEntry{ServiceID: serviceID, Status: types.ENTRY_SERVING}).
		Select("COALESCE(SUM(group_size), 0)").
		Scan(&total).
		Error
	if err != nil {
		return 0, err
	}
	return uint(total), nil
}

// Join admits a party to a service queue. The party is placed directly in
// serving when its whole group fits under MaxCapacity, otherwise it waits.
// Token assignment and the entry insert commit atomically under the
// per-service lock.
func Join(serviceID, userID, groupSize uint, memberNames []string) (*JoinResult, error) {
	if groupSize < types.GROUP_SIZE_MIN || groupSize > types.GROUP_SIZE_MAX {
		return nil, fmt.Errorf("%w: group size must be between %d and %d", ErrValidation, types.GROUP_SIZE_MIN, types.GROUP_SIZE_MAX)
	}
	if uint(len(memberNames)) != groupSize {
		return nil, fmt.Errorf("%w: expected %d member names, got %d", ErrValidation, groupSize, len(memberNames))
	}
	names := make(types.StringArray, 0, len(memberNames))
	for _, name := range memberNames {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: member names must not be empty", ErrValidation)
		}
		names = append(names, trimmed)
	}

	mu := lockService(serviceID)
	defer mu.Unlock()

	var result JoinResult
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		var service models.Service
		if err := tx.
			Where(&models.Service{ID: serviceID}).
			First(&service).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: service [%d]", ErrNotFound, serviceID)
			}
			return err
		}
		if service.Status != types.SERVICE_ACTIVE {
			return fmt.Errorf("%w: service is not active", ErrInvalidState)
		}

		var live int64
		if err := tx.
			Model(&models.QueueEntry{}).
			Where(&models.QueueEntry{ServiceID: serviceID, UserID: userID}).
			Where("status IN ?", []types.EntryStatus{types.ENTRY_WAITING, types.ENTRY_SERVING}).
			Count(&live).
			Error; err != nil {
			return err
		}
		if live > 0 {
			return fmt.Errorf("%w: already joined", ErrConflict)
		}

		current, err := servingCapacity(tx, serviceID)
		if err != nil {
			return err
		}

		status := types.ENTRY_WAITING
		if current+groupSize <= service.MaxCapacity {
			status = types.ENTRY_SERVING
		}

		token, err := nextToken(tx, serviceID)
		if err != nil {
			return err
		}

		entry := models.QueueEntry{
			ServiceID:   serviceID,
			UserID:      userID,
			TokenNumber: token,
			GroupSize:   groupSize,
			MemberNames: names,
			Status:      status,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		result.Entry = &entry
		if status == types.ENTRY_SERVING {
			result.Message = fmt.Sprintf("Token %d is now being served", token)
		} else {
			var waiting int64
			if err := tx.
				Model(&models.QueueEntry{}).
				Where(&models.QueueEntry{ServiceID: serviceID, Status: types.ENTRY_WAITING}).
				Where("id <> ?", entry.ID).
				Count(&waiting).
				Error; err != nil {
				return err
			}
			result.Position = uint(waiting) + 1
			result.Message = fmt.Sprintf("Token %d added to the waiting line at position %d", token, result.Position)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := common.QUEUE_EVENT_WAITING
	if result.Entry.Status == types.ENTRY_SERVING {
		eventType = common.QUEUE_EVENT_SERVING
	}
	go common.PublishQueueEvent(common.QUEUE_EVENT_JOINED, serviceID, result.Entry.ID, result.Entry.TokenNumber, groupSize)
	go common.PublishQueueEvent(eventType, serviceID, result.Entry.ID, result.Entry.TokenNumber, groupSize)

	return &result, nil
}

// loadForTransition resolves the service and entry for an organizer action
// and enforces ownership. Runs inside the caller's transaction.
func loadForTransition(tx *gorm.DB, serviceID, entryID, requesterID uint) (*models.Service, *models.QueueEntry, error) {
	var service models.Service
	if err := tx.
		Where(&models.Service{ID: serviceID}).
		First(&service).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: service [%d]", ErrNotFound, serviceID)
		}
		return nil, nil, err
	}
	if service.OrganizerID != requesterID {
		return nil, nil, fmt.Errorf("%w: requester is not the service organizer", ErrAuthorization)
	}
	var entry models.QueueEntry
	if err := tx.
		Where(&models.QueueEntry{ID: entryID, ServiceID: serviceID}).
		First(&entry).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: entry [%d]", ErrNotFound, entryID)
		}
		return nil, nil, err
	}
	return &service, &entry, nil
}

// MoveToServing admits a whole waiting group, provided it fits in the
// remaining capacity. Groups are never split across waiting and serving.
func MoveToServing(serviceID, entryID, requesterID uint) (*models.QueueEntry, error) {
	mu := lockService(serviceID)
	defer mu.Unlock()

	var updated *models.QueueEntry
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		service, entry, err := loadForTransition(tx, serviceID, entryID, requesterID)
		if err != nil {
			return err
		}
		if !types.ValidEntryTransition(entry.Status, types.ENTRY_SERVING) {
			return fmt.Errorf("%w: cannot move entry from %s to %s", ErrInvalidState, entry.Status, types.ENTRY_SERVING)
		}
		current, err := servingCapacity(tx, serviceID)
		if err != nil {
			return err
		}
		if current+entry.GroupSize > service.MaxCapacity {
			return fmt.Errorf("%w", ErrCapacityExceeded)
		}
		if err := tx.
			Model(&models.QueueEntry{}).
			Where(&models.QueueEntry{ID: entry.ID}).
			Update("status", types.ENTRY_SERVING).
			Error; err != nil {
			return err
		}
		entry.Status = types.ENTRY_SERVING
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	go common.PublishQueueEvent(common.QUEUE_EVENT_SERVING, serviceID, updated.ID, updated.TokenNumber, updated.GroupSize)
	return updated, nil
}

// MoveToWaiting is an organizer correction that sends a serving entry back
// to the waiting line. It frees capacity but deliberately does not promote
// anyone; promotion only happens on completion.
func MoveToWaiting(serviceID, entryID, requesterID uint) (*models.QueueEntry, error) {
	mu := lockService(serviceID)
	defer mu.Unlock()

	var updated *models.QueueEntry
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		_, entry, err := loadForTransition(tx, serviceID, entryID, requesterID)
		if err != nil {
			return err
		}
		if !types.ValidEntryTransition(entry.Status, types.ENTRY_WAITING) {
			return fmt.Errorf("%w: cannot move entry from %s to %s", ErrInvalidState, entry.Status, types.ENTRY_WAITING)
		}
		if err := tx.
			Model(&models.QueueEntry{}).
			Where(&models.QueueEntry{ID: entry.ID}).
			Update("status", types.ENTRY_WAITING).
			Error; err != nil {
			return err
		}
		entry.Status = types.ENTRY_WAITING
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	go common.PublishQueueEvent(common.QUEUE_EVENT_WAITING, serviceID, updated.ID, updated.TokenNumber, updated.GroupSize)
	return updated, nil
}

// MarkComplete finishes a serving entry and runs the promotion cascade in
// the same transaction: the single oldest waiting entry whose group fits
// the freed capacity moves to serving. Exactly one promotion per
// completion; remaining free capacity stays open for later arrivals.
func MarkComplete(serviceID, entryID, requesterID uint) (*models.QueueEntry, *models.QueueEntry, error) {
	mu := lockService(serviceID)
	defer mu.Unlock()

	var completed *models.QueueEntry
	var promoted *models.QueueEntry
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		service, entry, err := loadForTransition(tx, serviceID, entryID, requesterID)
		if err != nil {
			return err
		}
		if !types.ValidEntryTransition(entry.Status, types.ENTRY_COMPLETE) {
			return fmt.Errorf("%w: cannot complete entry in status %s", ErrInvalidState, entry.Status)
		}
		if err := tx.
			Model(&models.QueueEntry{}).
			Where(&models.QueueEntry{ID: entry.ID}).
			Update("status", types.ENTRY_COMPLETE).
			Error; err != nil {
			return err
		}
		entry.Status = types.ENTRY_COMPLETE
		completed = entry

		current, err := servingCapacity(tx, serviceID)
		if err != nil {
			return err
		}
		if current >= service.MaxCapacity {
			return nil
		}
		var waiting []models.QueueEntry
		if err := tx.
			Where(&models.QueueEntry{ServiceID: serviceID, Status: types.ENTRY_WAITING}).
			Order("token_number asc").
			Find(&waiting).
			Error; err != nil {
			return err
		}
		for i := range waiting {
			candidate := &waiting[i]
			if current+candidate.GroupSize > service.MaxCapacity {
				continue
			}
			if err := tx.
				Model(&models.QueueEntry{}).
				Where(&models.QueueEntry{ID: candidate.ID}).
				Update("status", types.ENTRY_SERVING).
				Error; err != nil {
				return err
			}
			candidate.Status = types.ENTRY_SERVING
			promoted = candidate
			break
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	go common.PublishQueueEvent(common.QUEUE_EVENT_COMPLETE, serviceID, completed.ID, completed.TokenNumber, completed.GroupSize)
	if promoted != nil {
		log.Printf("Promoted token %d on service [%d] after completion of token %d\n", promoted.TokenNumber, serviceID, completed.TokenNumber)
		go common.PublishQueueEvent(common.QUEUE_EVENT_PROMOTED, serviceID, promoted.ID, promoted.TokenNumber, promoted.GroupSize)
	}
	return completed, promoted, nil
}
