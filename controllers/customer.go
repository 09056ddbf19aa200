// controllers/customer.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"zuperbill-backend/models"
	"zuperbill-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone"`
	Street         string `json:"street"`
	City           string `json:"city"`
	State          string `json:"state"`
	Zipcode        string `json:"zipcode"`
	ReferralSource string `json:"referral_source"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	Street         *string `json:"street"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	Zipcode        *string `json:"zipcode"`
	ReferralSource *string `json:"referral_source"`
	IsActive       *bool   `json:"is_active"`
}

// CreateCustomer creates a new customer
func (ctl *CustomerController) CreateCustomer(c *gin.Context) {
	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	// Email is unique system-wide
	var existing models.Customer
	if err := ctl.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	customer := models.Customer{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          input.Phone,
		Street:         input.Street,
		City:           input.City,
		State:          input.State,
		Zipcode:        input.Zipcode,
		ReferralSource: input.ReferralSource,
		IsActive:       true,
	}

	if err := ctl.DB.Create(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomers retrieves customers, optionally filtered by a substring match
// on name or email.
func (ctl *CustomerController) GetCustomers(c *gin.Context) {
	query := ctl.DB.Model(&models.Customer{})

	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where(
			"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)",
			like, like, like)
	}

	var customers []models.Customer
	if err := query.Order("first_name").Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, customers)
}

// GetCustomer retrieves a specific customer by ID
func (ctl *CustomerController) GetCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	var customer models.Customer
	if err := ctl.DB.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer applies the provided fields to an existing customer
func (ctl *CustomerController) UpdateCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var customer models.Customer
	if err := ctl.DB.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Email != nil && *input.Email != customer.Email {
		var existing models.Customer
		if err := ctl.DB.Where("email = ?", *input.Email).First(&existing).Error; err == nil {
			utils.RespondWithError(c, http.StatusConflict, "Another customer with this email already exists")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		customer.Email = *input.Email
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		customer.Phone = *input.Phone
	}
	if input.FirstName != nil {
		customer.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		customer.LastName = *input.LastName
	}
	if input.Street != nil {
		customer.Street = *input.Street
	}
	if input.City != nil {
		customer.City = *input.City
	}
	if input.State != nil {
		customer.State = *input.State
	}
	if input.Zipcode != nil {
		customer.Zipcode = *input.Zipcode
	}
	if input.ReferralSource != nil {
		customer.ReferralSource = *input.ReferralSource
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}

	if err := ctl.DB.Save(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes a customer and everything hanging off it: invoices,
// their line items and their public tokens. Deletes are explicit so behavior
// does not depend on the engine's foreign-key enforcement.
func (ctl *CustomerController) DeleteCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	var customer models.Customer
	if err := ctl.DB.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	tx := ctl.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var invoiceIDs []uint
	if err := tx.Model(&models.Invoice{}).Where("customer_id = ?", customer.ID).
		Pluck("id", &invoiceIDs).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if len(invoiceIDs) > 0 {
		if err := tx.Where("invoice_id IN ?", invoiceIDs).Delete(&models.PublicToken{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete public tokens")
			return
		}
		if err := tx.Where("invoice_id IN ?", invoiceIDs).Delete(&models.LineItem{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete line items")
			return
		}
		if err := tx.Where("customer_id = ?", customer.ID).Delete(&models.Invoice{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoices")
			return
		}
	}

	if err := tx.Delete(&customer).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
