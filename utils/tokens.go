package utils

import (
	"errors"
	"time"

	"zuperbill-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTokenInvalid covers both unknown and expired tokens so callers cannot
// distinguish the two.
var ErrTokenInvalid = errors.New("invalid or expired token")

// GetOrCreatePublicToken returns the invoice's existing public token, or
// mints one. expiresInHours == nil means the new token never expires.
func GetOrCreatePublicToken(db *gorm.DB, invoiceID uint, expiresInHours *int) (models.PublicToken, error) {
	var existing models.PublicToken
	err := db.Where("invoice_id = ?", invoiceID).First(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PublicToken{}, err
	}

	token := models.PublicToken{
		Token:     uuid.NewString(),
		InvoiceID: invoiceID,
	}
	if expiresInHours != nil {
		expiry := time.Now().UTC().Add(time.Duration(*expiresInHours) * time.Hour)
		token.ExpiresAt = &expiry
	}

	if err := db.Create(&token).Error; err != nil {
		return models.PublicToken{}, err
	}
	return token, nil
}

// ResolvePublicToken maps a token string to the bound invoice id. Unknown and
// expired tokens both return ErrTokenInvalid.
func ResolvePublicToken(db *gorm.DB, token string) (uint, error) {
	var record models.PublicToken
	if err := db.Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTokenInvalid
		}
		return 0, err
	}
	if record.ExpiresAt != nil && record.ExpiresAt.Before(time.Now().UTC()) {
		return 0, ErrTokenInvalid
	}
	return record.InvoiceID, nil
}
