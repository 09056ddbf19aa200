package models

import "time"

// Invoice doubles as an estimate via the IsEstimate discriminator. The
// acceptance/signature fields exist once for each document kind; see
// controllers.signatureState for the view that selects the right pair.
type Invoice struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	CustomerID uint  `gorm:"index;not null" json:"customer_id"`
	TechID     *uint `gorm:"index" json:"tech_id"`

	Number  string     `gorm:"uniqueIndex;not null" json:"number"`
	Date    time.Time  `json:"date"`
	DueDate *time.Time `json:"due_date"`

	Total      float64 `json:"total"`
	Discount   float64 `gorm:"default:0" json:"discount"`
	Tax        float64 `gorm:"default:0" json:"tax"`
	FinalTotal float64 `json:"final_total"`

	Status      string     `gorm:"default:'unpaid'" json:"status"`
	PaymentType string     `json:"payment_type"`
	Notes       string     `gorm:"type:text" json:"notes"`
	PaidAt      *time.Time `json:"paid_at"`

	Accepted        bool       `gorm:"default:false" json:"accepted"`
	SignedAt        *time.Time `json:"signed_at"`
	SignatureBase64 string     `gorm:"type:text" json:"signature_base64"`

	EstimateAccepted        bool       `gorm:"default:false" json:"estimate_accepted"`
	EstimateSignedAt        *time.Time `json:"estimate_signed_at"`
	EstimateSignatureBase64 string     `gorm:"type:text" json:"estimate_signature_base64"`

	Testimonial    string `gorm:"type:text" json:"testimonial"`
	IsEstimate     bool   `gorm:"default:false" json:"is_estimate"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`
	MediaFolderURL string `json:"media_folder_url"`

	// Legacy one-off access token, superseded by PublicToken.
	UUIDToken   *string    `json:"uuid_token"`
	TokenExpiry *time.Time `json:"token_expiry"`

	OTPCode   *string    `json:"-"`
	OTPExpiry *time.Time `json:"-"`

	Customer     Customer      `gorm:"foreignKey:CustomerID" json:"customer"`
	Tech         *User         `gorm:"foreignKey:TechID" json:"-"`
	Items        []LineItem    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	PublicTokens []PublicToken `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"-"`
}

type LineItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	InvoiceID   uint    `gorm:"index;not null" json:"invoice_id"`
	Description string  `gorm:"not null" json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}
