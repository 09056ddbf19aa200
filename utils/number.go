package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"zuperbill-backend/models"
	"gorm.io/gorm"
)

// DocumentNumber allocates the next human-readable number for the given
// document kind, formatted PREFIX-YYYYMMDD-NNN. The sequence restarts each
// calendar day per prefix. Numbers whose suffix does not parse are skipped.
//
// The scan-then-insert window is closed by the unique index on
// invoices.number: callers retry once through this function when the insert
// reports a duplicate.
func DocumentNumber(db *gorm.DB, isEstimate bool, now time.Time) (string, error) {
	prefix := "INV"
	if isEstimate {
		prefix = "EST"
	}
	dayPrefix := fmt.Sprintf("%s-%s-", prefix, now.Format("20060102"))

	var numbers []string
	if err := db.Model(&models.Invoice{}).
		Where("number LIKE ?", dayPrefix+"%").
		Pluck("number", &numbers).Error; err != nil {
		return "", err
	}

	maxSeq := 0
	for _, number := range numbers {
		parts := strings.Split(number, "-")
		seq, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}

	return fmt.Sprintf("%s%03d", dayPrefix, maxSeq+1), nil
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
