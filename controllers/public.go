// controllers/public.go
package controllers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"zuperbill-backend/models"
	"zuperbill-backend/services"
	"zuperbill-backend/utils"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	otpValidity = 2 * time.Minute
	// A resend is declined while more than this much of the validity window
	// remains, i.e. for 90 seconds after issuance.
	otpResendThreshold = 30 * time.Second
)

type PublicController struct {
	DB     *gorm.DB
	Mailer services.Sender
	SMS    *services.SMSSender
}

func NewPublicController(db *gorm.DB, mailer services.Sender, sms *services.SMSSender) *PublicController {
	return &PublicController{DB: db, Mailer: mailer, SMS: sms}
}

// ViewInvoice returns the invoice bound to a public token. Unknown and
// expired tokens are both a plain 404 so existence is not leaked.
func (ctl *PublicController) ViewInvoice(c *gin.Context) {
	invoice, ok := ctl.resolve(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// RequestOTP issues a fresh 6-digit code valid for two minutes and emails it
// to the customer (and texts it when a phone number is on file). Requests
// arriving while a recent code is still comfortably valid are acknowledged
// without reissuing, which throttles the email channel.
func (ctl *PublicController) RequestOTP(c *gin.Context) {
	invoice, ok := ctl.resolve(c)
	if !ok {
		return
	}

	if invoice.Customer.Email == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "No customer email on file")
		return
	}

	now := time.Now().UTC()
	if invoice.OTPExpiry != nil && invoice.OTPExpiry.Sub(now) > otpResendThreshold {
		// Same acknowledgment as a fresh issue; the caller cannot tell.
		c.JSON(http.StatusOK, gin.H{"message": "A code has been sent to your email"})
		return
	}

	code, err := generateOTPCode()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate code")
		return
	}
	expiry := now.Add(otpValidity)
	invoice.OTPCode = &code
	invoice.OTPExpiry = &expiry

	if err := ctl.DB.Save(invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to store code")
		return
	}

	err = ctl.Mailer.Send(
		invoice.Customer.Email,
		fmt.Sprintf("Your access code for %s", invoice.Number),
		fmt.Sprintf("Your one-time access code is %s. It expires in 2 minutes.", code),
	)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to send code")
		return
	}

	if ctl.SMS != nil && invoice.Customer.Phone != "" {
		// Best effort; email is the channel of record.
		if err := ctl.SMS.SendOTP(invoice.Customer.Phone, code); err != nil {
			log.WithError(err).Warn("OTP SMS delivery failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "A code has been sent to your email"})
}

// OTPVerifyInput carries the submitted code
type OTPVerifyInput struct {
	Pin string `json:"pin" binding:"required"`
}

// VerifyOTP succeeds only while the stored code matches exactly and has not
// expired. The code is not consumed; the token keeps gating access.
func (ctl *PublicController) VerifyOTP(c *gin.Context) {
	var input OTPVerifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, ok := ctl.resolve(c)
	if !ok {
		return
	}

	now := time.Now().UTC()
	if invoice.OTPCode == nil || invoice.OTPExpiry == nil ||
		now.After(*invoice.OTPExpiry) || *invoice.OTPCode != input.Pin {
		utils.RespondWithError(c, http.StatusForbidden, "Invalid or expired code")
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true})
}

// GetTestimonials returns recent customer testimonials from signed invoices
func (ctl *PublicController) GetTestimonials(c *gin.Context) {
	var invoices []models.Invoice
	err := ctl.DB.Preload("Customer").
		Where("testimonial IS NOT NULL AND testimonial <> ''").
		Order("signed_at DESC").
		Limit(50).
		Find(&invoices).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve testimonials")
		return
	}

	results := make([]gin.H, 0, len(invoices))
	for _, inv := range invoices {
		results = append(results, gin.H{
			"testimonial": trimQuotes(inv.Testimonial),
			"name":        inv.Customer.FirstName,
		})
	}
	c.JSON(http.StatusOK, results)
}

// resolve maps the :token path parameter to its invoice, with customer and
// items preloaded. Writes the 404 itself on failure.
func (ctl *PublicController) resolve(c *gin.Context) (*models.Invoice, bool) {
	invoiceID, err := utils.ResolvePublicToken(ctl.DB, c.Param("token"))
	if err != nil {
		if errors.Is(err, utils.ErrTokenInvalid) {
			utils.RespondWithError(c, http.StatusNotFound, "Invalid or expired token")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}

	var invoice models.Invoice
	if err := ctl.DB.Preload("Items").Preload("Customer").First(&invoice, invoiceID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		return nil, false
	}
	return &invoice, true
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
