// controllers/lineitem.go
package controllers

import (
	"net/http"

	"zuperbill-backend/models"
	"zuperbill-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LineItemController struct {
	DB *gorm.DB
}

func NewLineItemController(db *gorm.DB) *LineItemController {
	return &LineItemController{DB: db}
}

// Descriptions suggests previously used line-item descriptions matching a
// substring, for autocomplete.
func (ctl *LineItemController) Descriptions(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusOK, []string{})
		return
	}

	var descriptions []string
	err := ctl.DB.Model(&models.LineItem{}).
		Distinct("description").
		Where("LOWER(description) LIKE LOWER(?)", "%"+q+"%").
		Limit(10).
		Pluck("description", &descriptions).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve descriptions")
		return
	}

	c.JSON(http.StatusOK, descriptions)
}
