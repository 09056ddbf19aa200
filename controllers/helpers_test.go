package controllers

import (
	"zuperbill-backend/config"
	"zuperbill-backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database")
	}

	db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Invoice{},
		&models.LineItem{},
		&models.PublicToken{},
	)
	return db
}

func testSettings() *config.Settings {
	return &config.Settings{
		JWTSecret:      "test-secret",
		JWTExpiryHours: 1,
		PublicBaseURL:  "https://invoice.example.com",
		FromEmail:      "billing@example.com",
	}
}

// 1x1 grayscale PNG, enough to exercise the signature rendering path.
const testSignaturePNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAAAAAA6fptVAAAACklEQVR4nGNgAAAAAgABSK+kcQAAAABJRU5ErkJggg=="

type sentMail struct {
	To         string
	Subject    string
	Body       string
	Attachment []byte
	Filename   string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeMailer) SendWithAttachment(to, subject, body string, attachment []byte, filename string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body, Attachment: attachment, Filename: filename})
	return nil
}

func seedCustomer(db *gorm.DB, email string) models.Customer {
	customer := models.Customer{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Phone:     "+15550100200",
		Street:    "1 Analytical Way",
		City:      "London",
		State:     "LN",
		Zipcode:   "00001",
		IsActive:  true,
	}
	db.Create(&customer)
	return customer
}
