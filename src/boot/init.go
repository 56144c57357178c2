package boot

import (
	"log"
	"qms/src/db"
	"qms/src/lib"
	"qms/src/models"
	"qms/src/types"
	"qms/src/utils"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	gdb := db.GetDb()

	err := gdb.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.QueueEntry{},
		&models.TokenSequence{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return gdb
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	go RecoverLifecycleJobs()
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

// RecoverLifecycleJobs re-registers activation and closure jobs for
// services whose opens_at/closes_at are still ahead. Jobs are in-process
// only, so a restart loses them without this pass.
func RecoverLifecycleJobs() error {
	gdb := db.GetDb()
	now := time.Now()

	var toOpen []models.Service
	if err := gdb.
		Where(&models.Service{Status: types.SERVICE_INACTIVE}).
		Where("opens_at > ?", now).
		Find(&toOpen).
		Error; err != nil {
		log.Printf("Error recovering activation jobs: %s\n", err.Error())
		return err
	}
	var toClose []models.Service
	if err := gdb.
		Where(&models.Service{Status: types.SERVICE_ACTIVE}).
		Where("closes_at > ?", now).
		Find(&toClose).
		Error; err != nil {
		log.Printf("Error recovering closure jobs: %s\n", err.Error())
		return err
	}

	for i := range toOpen {
		utils.ScheduleServiceLifecycle(&toOpen[i])
	}
	for i := range toClose {
		utils.ScheduleServiceLifecycle(&toClose[i])
	}
	log.Printf("Recovered lifecycle jobs: %d to open, %d to close\n", len(toOpen), len(toClose))
	return nil
}
