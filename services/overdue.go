// services/overdue.go
package services

import (
	"time"

	"zuperbill-backend/models"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OverdueService marks unpaid invoices past their due date as overdue.
// Estimates carry no payment obligation and are left alone.
type OverdueService struct {
	db *gorm.DB
}

func NewOverdueService(db *gorm.DB) *OverdueService {
	return &OverdueService{db: db}
}

// StartScheduler runs a sweep now and then every day at 6 AM.
func (s *OverdueService) StartScheduler() {
	c := cron.New()
	if _, err := c.AddFunc("0 6 * * *", func() { s.Sweep(time.Now()) }); err != nil {
		log.WithError(err).Error("failed to schedule overdue sweep")
		return
	}
	s.Sweep(time.Now())
	c.Start()
	log.Info("overdue scheduler started")
}

// Sweep flips status to "overdue" for active, unpaid, non-estimate invoices
// whose due date has passed.
func (s *OverdueService) Sweep(now time.Time) {
	result := s.db.Model(&models.Invoice{}).
		Where("status = ? AND is_estimate = ? AND is_active = ? AND due_date IS NOT NULL AND due_date < ?",
			"unpaid", false, true, now).
		Update("status", "overdue")
	if result.Error != nil {
		log.WithError(result.Error).Error("overdue sweep failed")
		return
	}
	if result.RowsAffected > 0 {
		log.WithField("invoices", result.RowsAffected).Info("marked invoices overdue")
	}
}
