// controllers/backup.go
package controllers

import (
	"net/http"

	"zuperbill-backend/models"
	"zuperbill-backend/utils"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type BackupController struct {
	DB *gorm.DB
}

func NewBackupController(db *gorm.DB) *BackupController {
	return &BackupController{DB: db}
}

// BackupPayload is the JSON document produced by Download and consumed by
// Upload.
type BackupPayload struct {
	Customers []models.Customer `json:"customers"`
	Invoices  []models.Invoice  `json:"invoices"`
	LineItems []models.LineItem `json:"line_items"`
}

// Download exports every customer, invoice and line item as one JSON document
func (ctl *BackupController) Download(c *gin.Context) {
	var payload BackupPayload

	if err := ctl.DB.Find(&payload.Customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to export customers")
		return
	}
	if err := ctl.DB.Find(&payload.Invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to export invoices")
		return
	}
	if err := ctl.DB.Find(&payload.LineItems).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to export line items")
		return
	}

	c.JSON(http.StatusOK, payload)
}

// Upload restores a backup document. Existing records are matched (customers
// by email, invoices by number) and reused; ids are remapped so relations
// survive the round trip. Duplicate line items are skipped.
func (ctl *BackupController) Upload(c *gin.Context) {
	var payload BackupPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid file format")
		return
	}

	customerMap := make(map[uint]uint) // old id -> new id
	for _, cust := range payload.Customers {
		oldID := cust.ID

		var existing models.Customer
		if err := ctl.DB.Where("email = ?", cust.Email).First(&existing).Error; err == nil {
			customerMap[oldID] = existing.ID
			continue
		}

		cust.ID = 0
		cust.Invoices = nil
		if err := ctl.DB.Create(&cust).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to import customers")
			return
		}
		customerMap[oldID] = cust.ID
	}

	invoiceMap := make(map[uint]uint)
	for _, inv := range payload.Invoices {
		oldID := inv.ID

		newCustomerID, ok := customerMap[inv.CustomerID]
		if !ok {
			continue
		}

		var existing models.Invoice
		if err := ctl.DB.Where("number = ? AND customer_id = ?", inv.Number, newCustomerID).
			First(&existing).Error; err == nil {
			invoiceMap[oldID] = existing.ID
			continue
		}

		inv.ID = 0
		inv.CustomerID = newCustomerID
		inv.Customer = models.Customer{}
		inv.Items = nil
		inv.PublicTokens = nil
		if err := ctl.DB.Omit("Customer", "Items", "PublicTokens", "Tech").Create(&inv).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to import invoices")
			return
		}
		invoiceMap[oldID] = inv.ID
	}

	for _, item := range payload.LineItems {
		newInvoiceID, ok := invoiceMap[item.InvoiceID]
		if !ok {
			continue
		}

		var existing models.LineItem
		err := ctl.DB.Where("invoice_id = ? AND description = ? AND quantity = ? AND unit_price = ?",
			newInvoiceID, item.Description, item.Quantity, item.UnitPrice).
			First(&existing).Error
		if err == nil {
			continue
		}

		item.ID = 0
		item.InvoiceID = newInvoiceID
		if err := ctl.DB.Create(&item).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to import line items")
			return
		}
	}

	log.Info("backup restored")
	c.JSON(http.StatusOK, gin.H{"message": "Backup successfully restored"})
}
