package utils

import (
	"errors"
	"fmt"
	"log"
	"os"
	"qms/src/config"
	"qms/src/db"
	"qms/src/lib"
	"qms/src/models"
	"qms/src/types"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}

// CreateNewService registers a service for an organizer and schedules its
// lifecycle jobs when opens_at/closes_at are provided.
func CreateNewService(params *types.CreateServiceRequestBody, organizerID uint) (uint, error) {
	var opensAt *time.Time
	var closesAt *time.Time
	if params.OpensAt != nil {
		t, err := time.Parse(config.TIME_PARSE_FORMAT, *params.OpensAt)
		if err != nil {
			return 0, err
		}
		opensAt = &t
	}
	if params.ClosesAt != nil {
		t, err := time.Parse(config.TIME_PARSE_FORMAT, *params.ClosesAt)
		if err != nil {
			return 0, err
		}
		closesAt = &t
	}

	status := types.SERVICE_INACTIVE
	if params.Activate {
		status = types.SERVICE_ACTIVE
	}
	service := models.Service{
		Name:        params.Name,
		Slug:        slug.Make(params.Name),
		MaxCapacity: params.MaxCapacity,
		Status:      status,
		OrganizerID: organizerID,
		OpensAt:     opensAt,
		ClosesAt:    closesAt,
	}
	if params.Description != "" {
		service.Description = &params.Description
	}

	gdb := db.GetDb()
	if err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&service).Error; err != nil {
			return err
		}
		return nil
	}); err != nil {
		log.Printf("Error creating Service: %s\n", err.Error())
		return 0, err
	}

	ScheduleServiceLifecycle(&service)

	return service.ID, nil
}

func GetService(id uint) (*models.Service, error) {
	var service models.Service
	gdb := db.GetDb()
	if err := gdb.
		Model(&models.Service{}).
		Where(&models.Service{ID: id}).
		First(&service).
		Error; err != nil {
		err := errors.New("service not found")
		return nil, err
	}
	return &service, nil
}

func ListActiveServices() ([]models.Service, error) {
	var services []models.Service
	gdb := db.GetDb()
	if err := gdb.
		Where(&models.Service{Status: types.SERVICE_ACTIVE}).
		Order("name asc").
		Find(&services).
		Error; err != nil {
		return nil, err
	}
	return services, nil
}

func ListOrganizerServices(organizerID uint) ([]models.Service, error) {
	var services []models.Service
	gdb := db.GetDb()
	if err := gdb.
		Where(&models.Service{OrganizerID: organizerID}).
		Order("created_at desc").
		Find(&services).
		Error; err != nil {
		return nil, err
	}
	return services, nil
}

// UpdateServiceStatus moves a service to newStatus, guarded by the status
// it is expected to currently hold. Used by both the PATCH handler and the
// scheduled lifecycle jobs.
func UpdateServiceStatus(id uint, newStatus types.ServiceStatus, oldStatus types.ServiceStatus) error {
	gdb := db.GetDb()
	if err := gdb.Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&models.Service{}).
			Where(&models.Service{ID: id, Status: oldStatus}).
			Update("status", newStatus)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("service [%d] is not in status %s", id, oldStatus)
		}
		return nil
	}); err != nil {
		return err
	}
	log.Printf("Service [%d] moved from %s to %s\n", id, oldStatus, newStatus)
	return nil
}

// ScheduleServiceLifecycle registers one-time jobs that activate the
// service at opens_at and close it at closes_at.
func ScheduleServiceLifecycle(service *models.Service) {
	if service.OpensAt != nil && service.Status == types.SERVICE_INACTIVE {
		id, err := lib.CreateOneTimeJob(func(serviceID uint) {
			if err := UpdateServiceStatus(serviceID, types.SERVICE_ACTIVE, types.SERVICE_INACTIVE); err != nil {
				log.Printf("Error activating service [%d]: %s\n", serviceID, err.Error())
			}
		}, *service.OpensAt, service.ID)
		if err != nil {
			log.Printf("Error scheduling activation for service [%d]: %s\n", service.ID, err.Error())
		} else {
			log.Printf("Scheduled activation job %s for service [%d]\n", *id, service.ID)
		}
	}
	if service.ClosesAt != nil {
		id, err := lib.CreateOneTimeJob(func(serviceID uint) {
			if err := UpdateServiceStatus(serviceID, types.SERVICE_CLOSED, types.SERVICE_ACTIVE); err != nil {
				log.Printf("Error closing service [%d]: %s\n", serviceID, err.Error())
			}
		}, *service.ClosesAt, service.ID)
		if err != nil {
			log.Printf("Error scheduling closure for service [%d]: %s\n", service.ID, err.Error())
		} else {
			log.Printf("Scheduled closure job %s for service [%d]\n", *id, service.ID)
		}
	}
}

func GenerateJWT(email string, userID uint, role string) (string, error) {
	jwtKey := []byte(os.Getenv("JWT_SECRET"))
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &types.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(userID)),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}
