// controllers/acknowledgment.go
package controllers

import (
	"fmt"
	"net/http"
	"time"

	"zuperbill-backend/config"
	"zuperbill-backend/models"
	"zuperbill-backend/services"
	"zuperbill-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AcknowledgmentController struct {
	DB     *gorm.DB
	Cfg    *config.Settings
	Mailer services.Sender
}

func NewAcknowledgmentController(db *gorm.DB, cfg *config.Settings, mailer services.Sender) *AcknowledgmentController {
	return &AcknowledgmentController{DB: db, Cfg: cfg, Mailer: mailer}
}

// signatureState is the single view over the two acceptance field pairs: the
// document kind decides whether it reads and writes the invoice or the
// estimate columns.
type signatureState struct {
	inv *models.Invoice
}

func signatureStateFor(inv *models.Invoice) signatureState {
	return signatureState{inv: inv}
}

func (s signatureState) Accepted() bool {
	if s.inv.IsEstimate {
		return s.inv.EstimateAccepted
	}
	return s.inv.Accepted
}

func (s signatureState) SetAccepted(v bool) {
	if s.inv.IsEstimate {
		s.inv.EstimateAccepted = v
	} else {
		s.inv.Accepted = v
	}
}

func (s signatureState) SignedAt() *time.Time {
	if s.inv.IsEstimate {
		return s.inv.EstimateSignedAt
	}
	return s.inv.SignedAt
}

// SetSignedAtOnce records the signing time only if none exists yet; repeated
// acknowledgments leave the original timestamp intact.
func (s signatureState) SetSignedAtOnce(t time.Time) {
	if s.SignedAt() != nil {
		return
	}
	if s.inv.IsEstimate {
		s.inv.EstimateSignedAt = &t
	} else {
		s.inv.SignedAt = &t
	}
}

func (s signatureState) Signature() string {
	if s.inv.IsEstimate {
		return s.inv.EstimateSignatureBase64
	}
	return s.inv.SignatureBase64
}

func (s signatureState) SetSignature(sig string) {
	if s.inv.IsEstimate {
		s.inv.EstimateSignatureBase64 = sig
	} else {
		s.inv.SignatureBase64 = sig
	}
}

// AcknowledgmentInput carries the signature plus the optional business-field
// updates the customer can make in the same call.
type AcknowledgmentInput struct {
	Accepted        *bool      `json:"accepted"`
	SignedAt        *time.Time `json:"signed_at"`
	SignatureBase64 string     `json:"signature_base64"`
	Status          *string    `json:"status"`
	PaymentType     *string    `json:"payment_type"`
	Notes           *string    `json:"notes"`
	Testimonial     *string    `json:"testimonial"`
}

// Acknowledge records the signature and acceptance on the field pair matching
// the document kind. It persists only; sending the signed copy is a separate
// caller-invoked step.
func (ctl *AcknowledgmentController) Acknowledge(c *gin.Context) {
	var input AcknowledgmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, ok := ctl.lookupInvoice(c)
	if !ok {
		return
	}

	ctl.apply(invoice, input)

	if err := ctl.DB.Save(invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save acknowledgment")
		return
	}

	c.JSON(http.StatusOK, invoice)
}

func (ctl *AcknowledgmentController) apply(invoice *models.Invoice, input AcknowledgmentInput) {
	now := time.Now().UTC()
	state := signatureStateFor(invoice)

	if input.SignatureBase64 != "" {
		state.SetSignature(input.SignatureBase64)
	}
	if input.Accepted != nil {
		state.SetAccepted(*input.Accepted)
	}
	signedAt := now
	if input.SignedAt != nil {
		signedAt = *input.SignedAt
	}
	state.SetSignedAtOnce(signedAt)

	applyInvoiceFields(invoice, UpdateInvoiceInput{
		Status:      input.Status,
		PaymentType: input.PaymentType,
		Notes:       input.Notes,
		Testimonial: input.Testimonial,
	}, now)
}

// SendSignedCopy renders the current signature state to PDF and emails it to
// the customer with the public link.
func (ctl *AcknowledgmentController) SendSignedCopy(c *gin.Context) {
	invoice, ok := ctl.lookupInvoice(c)
	if !ok {
		return
	}

	docType := "Invoice"
	if invoice.IsEstimate {
		docType = "Estimate"
	}
	state := signatureStateFor(invoice)

	signedAt := ""
	if state.SignedAt() != nil {
		signedAt = state.SignedAt().Format("01/02/2006 15:04")
	}

	pdfBytes, err := services.RenderInvoicePDF(*invoice, services.PDFOptions{
		DocType:         docType,
		SignatureBase64: state.Signature(),
		SignedAt:        signedAt,
		Accepted:        state.Accepted(),
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to render PDF")
		return
	}

	token, err := utils.GetOrCreatePublicToken(ctl.DB, invoice.ID, nil)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to issue public token")
		return
	}
	publicLink := fmt.Sprintf("%s/public/invoice/%s", ctl.Cfg.PublicBaseURL, token.Token)

	err = ctl.Mailer.SendWithAttachment(
		invoice.Customer.Email,
		fmt.Sprintf("%s #%s - Signed Copy", docType, invoice.Number),
		fmt.Sprintf("Thank you for signing your %s! Attached is your signed copy.\n\nView it anytime at %s",
			docTypeLower(docType), publicLink),
		pdfBytes,
		fmt.Sprintf("%s_%s_signed.pdf", docTypeLower(docType), invoice.Number),
	)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to send email")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed copy sent"})
}

// lookupInvoice resolves the invoice either from :id or from a public :token
// path parameter, so the same handlers serve the staff and public routes.
func (ctl *AcknowledgmentController) lookupInvoice(c *gin.Context) (*models.Invoice, bool) {
	if token := c.Param("token"); token != "" {
		invoiceID, err := utils.ResolvePublicToken(ctl.DB, token)
		if err != nil {
			utils.RespondWithError(c, http.StatusNotFound, "Invalid or expired token")
			return nil, false
		}
		var invoice models.Invoice
		if err := ctl.DB.Preload("Items").Preload("Customer").First(&invoice, invoiceID).Error; err != nil {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
			return nil, false
		}
		return &invoice, true
	}

	ic := InvoiceController{DB: ctl.DB}
	return ic.loadInvoice(c)
}
