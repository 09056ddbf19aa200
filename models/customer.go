package models

type Customer struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FirstName      string `gorm:"not null" json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	Phone          string `json:"phone"`
	Street         string `json:"street"`
	City           string `json:"city"`
	State          string `json:"state"`
	Zipcode        string `json:"zipcode"`
	ReferralSource string `json:"referral_source"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`

	// Deleting a customer takes its invoices (and transitively their line
	// items and public tokens) with it.
	Invoices []Invoice `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
}
