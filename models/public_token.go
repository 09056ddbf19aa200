package models

import "time"

// PublicToken grants unauthenticated, possibly time-limited access to one
// invoice. A nil ExpiresAt means the token never expires. Issuance is
// get-or-create, so in practice there is one token per invoice.
type PublicToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Token     string     `gorm:"uniqueIndex;not null" json:"token"`
	InvoiceID uint       `gorm:"index;not null" json:"invoice_id"`
	ExpiresAt *time.Time `json:"expires_at"`
}
