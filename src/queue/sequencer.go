package queue

import (
	"errors"
	"qms/src/models"

	"gorm.io/gorm"
)

// nextToken issues the next token number for a service: previous max + 1,
// starting at 1. The counter survives completions, so tokens are never
// reused. Must run inside the same transaction as the entry insert, with
// the service lock held, so two concurrent joins cannot draw the same
// number.
func nextToken(tx *gorm.DB, serviceID uint) (uint, error) {
	var seq models.TokenSequence
	err := tx.
		Where(&models.TokenSequence{ServiceID: serviceID}).
		First(&seq).
		Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
		seq = models.TokenSequence{ServiceID: serviceID, LastValue: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
		return seq.LastValue, nil
	}
	seq.LastValue++
	if err := tx.
		Model(&models.TokenSequence{}).
		Where(&models.TokenSequence{ID: seq.ID}).
		Update("last_value", seq.LastValue).
		Error; err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}
