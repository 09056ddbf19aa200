package config

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	connectAttempts = 5
	connectDelay    = 3 * time.Second
)

// Connect opens the database and returns the handle. The handle is owned by
// main and injected into controllers; there is no package-level session.
// Startup is the one place we retry: a fixed number of attempts with a fixed
// delay, then the error is returned and the process exits.
func Connect(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			return db, nil
		}
		log.WithFields(log.Fields{
			"attempt": attempt,
			"error":   err,
		}).Warn("database connection failed")
		if attempt < connectAttempts {
			time.Sleep(connectDelay)
		}
	}

	return nil, err
}
