// controllers/invoice.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"zuperbill-backend/config"
	"zuperbill-backend/models"
	"zuperbill-backend/services"
	"zuperbill-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const cloneTokenExpiryHours = 72

type InvoiceController struct {
	DB     *gorm.DB
	Cfg    *config.Settings
	Mailer services.Sender
}

func NewInvoiceController(db *gorm.DB, cfg *config.Settings, mailer services.Sender) *InvoiceController {
	return &InvoiceController{DB: db, Cfg: cfg, Mailer: mailer}
}

// LineItemInput defines one billed unit in a create/replace request
type LineItemInput struct {
	Description string  `json:"description" binding:"required"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// CreateInvoiceInput is the full canonical field set; it drives both create
// and full replace.
type CreateInvoiceInput struct {
	CustomerID     uint            `json:"customer_id" binding:"required"`
	Items          []LineItemInput `json:"items" binding:"required"`
	Status         string          `json:"status"`
	DueDate        *time.Time      `json:"due_date"`
	Notes          string          `json:"notes"`
	PaymentType    string          `json:"payment_type"`
	Discount       float64         `json:"discount"`
	Tax            float64         `json:"tax"`
	Testimonial    string          `json:"testimonial"`
	TechID         *uint           `json:"tech_id"`
	MediaFolderURL string          `json:"media_folder_url"`
	IsEstimate     bool            `json:"is_estimate"`
}

// UpdateInvoiceInput is the sparse field set for PATCH; nil means "leave it".
type UpdateInvoiceInput struct {
	Status         *string          `json:"status"`
	DueDate        *time.Time       `json:"due_date"`
	Notes          *string          `json:"notes"`
	PaymentType    *string          `json:"payment_type"`
	Discount       *float64         `json:"discount"`
	Tax            *float64         `json:"tax"`
	Testimonial    *string          `json:"testimonial"`
	TechID         *uint            `json:"tech_id"`
	MediaFolderURL *string          `json:"media_folder_url"`
	Items          *[]LineItemInput `json:"items"`
}

// applyInvoiceFields is the single tagged-update routine shared by patch,
// replace and acknowledge: apply whatever fields are present, then re-derive
// final_total and the paid_at rule.
func applyInvoiceFields(inv *models.Invoice, in UpdateInvoiceInput, now time.Time) {
	if in.Status != nil {
		inv.Status = *in.Status
	}
	if in.DueDate != nil {
		inv.DueDate = in.DueDate
	}
	if in.Notes != nil {
		inv.Notes = *in.Notes
	}
	if in.PaymentType != nil {
		inv.PaymentType = *in.PaymentType
	}
	if in.Discount != nil {
		inv.Discount = *in.Discount
	}
	if in.Tax != nil {
		inv.Tax = *in.Tax
	}
	if in.Testimonial != nil {
		inv.Testimonial = *in.Testimonial
	}
	if in.TechID != nil {
		inv.TechID = in.TechID
	}
	if in.MediaFolderURL != nil {
		inv.MediaFolderURL = *in.MediaFolderURL
	}

	inv.FinalTotal = utils.FinalTotal(inv.Total, inv.Discount, inv.Tax)
	applyPaidAtRule(inv, now)
}

// applyPaidAtRule keeps the invariant: paid_at is set iff status is "paid".
func applyPaidAtRule(inv *models.Invoice, now time.Time) {
	if inv.Status == "paid" {
		if inv.PaidAt == nil {
			inv.PaidAt = &now
		}
	} else {
		inv.PaidAt = nil
	}
}

func buildLineItems(inputs []LineItemInput) []models.LineItem {
	items := make([]models.LineItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, models.LineItem{
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
		})
	}
	return items
}

// CreateInvoice validates the customer, computes totals, allocates a document
// number and persists the invoice with its line items in one transaction.
// A duplicate-number conflict from a concurrent creation is retried once.
func (ctl *InvoiceController) CreateInvoice(c *gin.Context) {
	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var customer models.Customer
	if err := ctl.DB.First(&customer, input.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	now := time.Now().UTC()
	items := buildLineItems(input.Items)
	subtotal := utils.Subtotal(items)

	status := input.Status
	if status == "" {
		status = "unpaid"
	}

	invoice := models.Invoice{
		CustomerID:     input.CustomerID,
		TechID:         input.TechID,
		Date:           now,
		DueDate:        input.DueDate,
		Total:          subtotal,
		Discount:       input.Discount,
		Tax:            input.Tax,
		FinalTotal:     utils.FinalTotal(subtotal, input.Discount, input.Tax),
		Status:         status,
		PaymentType:    input.PaymentType,
		Notes:          input.Notes,
		Testimonial:    input.Testimonial,
		IsEstimate:     input.IsEstimate,
		IsActive:       true,
		MediaFolderURL: input.MediaFolderURL,
		Items:          items,
	}
	applyPaidAtRule(&invoice, now)

	if err := ctl.createWithNumber(&invoice, now); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}

	invoice.Customer = customer
	c.JSON(http.StatusCreated, invoice)
}

// createWithNumber allocates a number and inserts; on a unique-constraint
// conflict (a concurrent writer won the same sequence) it re-scans and tries
// once more.
func (ctl *InvoiceController) createWithNumber(invoice *models.Invoice, now time.Time) error {
	for attempt := 0; attempt < 2; attempt++ {
		number, err := utils.DocumentNumber(ctl.DB, invoice.IsEstimate, now)
		if err != nil {
			return err
		}
		invoice.Number = number

		err = ctl.DB.Create(invoice).Error
		if err == nil {
			return nil
		}
		if !utils.IsDuplicateKey(err) {
			return err
		}
	}
	return fmt.Errorf("could not allocate document number for %s", invoice.Number)
}

// GetInvoices lists invoices with the standard filters, sorting and paging
func (ctl *InvoiceController) GetInvoices(c *gin.Context) {
	query := ctl.DB.Model(&models.Invoice{}).Preload("Items").Preload("Customer")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if techID := c.Query("tech_id"); techID != "" {
		query = query.Where("tech_id = ?", techID)
	}
	if c.Query("period") == "ytd" {
		ytdStart := time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		query = query.Where("date >= ?", ytdStart)
	}
	if from := c.Query("date_from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := c.Query("date_to"); to != "" {
		query = query.Where("date <= ?", to)
	}

	sortBy := c.DefaultQuery("sort_by", "date")
	switch sortBy {
	case "date", "number", "final_total", "status", "due_date":
	default:
		sortBy = "date"
	}
	dir := "DESC"
	if c.Query("sort_dir") == "asc" {
		dir = "ASC"
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	var invoices []models.Invoice
	if err := query.Order(sortBy + " " + dir).Limit(limit).Offset(offset).Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// GetInvoice retrieves one invoice with its items and customer
func (ctl *InvoiceController) GetInvoice(c *gin.Context) {
	invoice, ok := ctl.loadInvoice(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice applies a partial update (PATCH semantics)
func (ctl *InvoiceController) UpdateInvoice(c *gin.Context) {
	var input UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, ok := ctl.loadInvoice(c)
	if !ok {
		return
	}

	tx := ctl.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if input.Items != nil {
		if err := ctl.replaceItems(tx, invoice, *input.Items); err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to replace line items")
			return
		}
	}
	applyInvoiceFields(invoice, input, time.Now().UTC())

	if err := tx.Save(invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}
	tx.Commit()

	c.JSON(http.StatusOK, invoice)
}

// ReplaceInvoice overwrites all business fields and the whole line-item set
// (PUT semantics). It funnels through the same apply routine as PATCH with
// the full canonical field set.
func (ctl *InvoiceController) ReplaceInvoice(c *gin.Context) {
	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, ok := ctl.loadInvoice(c)
	if !ok {
		return
	}

	status := input.Status
	if status == "" {
		status = "unpaid"
	}

	tx := ctl.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	invoice.CustomerID = input.CustomerID
	if err := ctl.replaceItems(tx, invoice, input.Items); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to replace line items")
		return
	}

	applyInvoiceFields(invoice, UpdateInvoiceInput{
		Status:         &status,
		DueDate:        input.DueDate,
		Notes:          &input.Notes,
		PaymentType:    &input.PaymentType,
		Discount:       &input.Discount,
		Tax:            &input.Tax,
		Testimonial:    &input.Testimonial,
		TechID:         input.TechID,
		MediaFolderURL: &input.MediaFolderURL,
	}, time.Now().UTC())
	invoice.DueDate = input.DueDate
	invoice.TechID = input.TechID

	if err := tx.Save(invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}
	tx.Commit()

	c.JSON(http.StatusOK, invoice)
}

// replaceItems deletes the invoice's line items and inserts the new set
// (delete-all-then-insert-all, not a diff), updating the stored subtotal.
func (ctl *InvoiceController) replaceItems(tx *gorm.DB, invoice *models.Invoice, inputs []LineItemInput) error {
	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.LineItem{}).Error; err != nil {
		return err
	}

	items := buildLineItems(inputs)
	for i := range items {
		items[i].InvoiceID = invoice.ID
	}
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}

	invoice.Items = items
	invoice.Total = utils.Subtotal(items)
	return nil
}

// CloneInvoiceInput optionally retargets the copy's document kind
type CloneInvoiceInput struct {
	AsEstimate *bool `json:"as_estimate"`
}

// CloneInvoice deactivates the source and creates a fresh copy: new number
// honoring the target kind, line items copied by value, a new public token
// with a 3-day expiry. History stays append-only; the source is never mutated
// beyond its active flag.
func (ctl *InvoiceController) CloneInvoice(c *gin.Context) {
	var input CloneInvoiceInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}
	}

	source, ok := ctl.loadInvoice(c)
	if !ok {
		return
	}

	isEstimate := source.IsEstimate
	if input.AsEstimate != nil {
		isEstimate = *input.AsEstimate
	}

	now := time.Now().UTC()
	clone := models.Invoice{
		CustomerID:     source.CustomerID,
		TechID:         source.TechID,
		Date:           now,
		DueDate:        source.DueDate,
		Total:          source.Total,
		Discount:       source.Discount,
		Tax:            source.Tax,
		FinalTotal:     utils.FinalTotal(source.Total, source.Discount, source.Tax),
		Status:         "unpaid",
		Notes:          source.Notes,
		IsEstimate:     isEstimate,
		IsActive:       true,
		MediaFolderURL: source.MediaFolderURL,
		Items:          make([]models.LineItem, 0, len(source.Items)),
	}
	for _, item := range source.Items {
		clone.Items = append(clone.Items, models.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	if err := ctl.DB.Model(source).Update("is_active", false).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to deactivate source invoice")
		return
	}

	if err := ctl.createWithNumber(&clone, now); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create cloned invoice")
		return
	}

	expiry := cloneTokenExpiryHours
	if _, err := utils.GetOrCreatePublicToken(ctl.DB, clone.ID, &expiry); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to issue public token")
		return
	}

	clone.Customer = source.Customer
	c.JSON(http.StatusCreated, clone)
}

// DeleteInvoice hard-deletes the invoice; line items and tokens go with it
func (ctl *InvoiceController) DeleteInvoice(c *gin.Context) {
	invoice, ok := ctl.loadInvoice(c)
	if !ok {
		return
	}

	tx := ctl.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.PublicToken{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete public tokens")
		return
	}
	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.LineItem{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete line items")
		return
	}
	if err := tx.Delete(invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice")
		return
	}
	tx.Commit()

	c.Status(http.StatusNoContent)
}

// ResendInvoice regenerates the PDF from current state and re-sends it by
// email. No state changes.
func (ctl *InvoiceController) ResendInvoice(c *gin.Context) {
	invoice, ok := ctl.loadInvoice(c)
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

	err = ctl.Mailer.SendWithAttachment(
		invoice.Customer.Email,
		fmt.Sprintf("%s #%s", docType, invoice.Number),
		fmt.Sprintf("Here is your %s #%s for your records.", docType, invoice.Number),
		pdfBytes,
		fmt.Sprintf("%s_%s.pdf", docTypeLower(docType), invoice.Number),
	)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to send email")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": docType + " resent successfully"})
}

// GenerateToken sets the legacy one-off access token on the invoice itself.
// Kept for older clients; PublicToken is the supported mechanism.
func (ctl *InvoiceController) GenerateToken(c *gin.Context) {
	invoice, ok := ctl.loadInvoice(c)
	if !ok {
		return
	}

	token := uuid.NewString()
	expiry := time.Now().UTC().Add(cloneTokenExpiryHours * time.Hour)
	invoice.UUIDToken = &token
	invoice.TokenExpiry = &expiry

	if err := ctl.DB.Save(invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"expires": expiry,
		"url":     fmt.Sprintf("%s/public/invoice/%s", ctl.Cfg.PublicBaseURL, token),
	})
}

// loadInvoice fetches the :id invoice with customer and items, writing the
// error response itself when it fails.
func (ctl *InvoiceController) loadInvoice(c *gin.Context) (*models.Invoice, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID")
		return nil, false
	}

	var invoice models.Invoice
	if err := ctl.DB.Preload("Items").Preload("Customer").First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &invoice, true
}

func docTypeLower(docType string) string {
	if docType == "Estimate" {
		return "estimate"
	}
	return "invoice"
}
