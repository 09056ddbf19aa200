// controllers/report.go
package controllers

import (
	"net/http"
	"time"

	"zuperbill-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

type techSummaryRow struct {
	TechID     uint
	UserName   string
	Email      string
	YTDCount   int64
	YTDTotal   float64
	YTDPaid    float64
	YTDUnpaid  float64
	YTDOverdue float64
	AllCount   int64
	AllTotal   float64
}

// TechSummary aggregates invoice counts and totals per technician: YTD split
// by status plus all-time rollups. The LEFT JOIN keeps technicians with no
// invoices in the result with zero counts.
func (ctl *ReportController) TechSummary(c *gin.Context) {
	ytdStart := time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.UTC)

	var rows []techSummaryRow
	err := ctl.DB.Raw(`
		SELECT
			users.id AS tech_id,
			users.user_name,
			users.email,
			COUNT(CASE WHEN invoices.date >= ? THEN 1 END) AS ytd_count,
			COALESCE(SUM(CASE WHEN invoices.date >= ? THEN invoices.final_total END), 0) AS ytd_total,
			COALESCE(SUM(CASE WHEN invoices.date >= ? AND invoices.status = 'paid' THEN invoices.final_total END), 0) AS ytd_paid,
			COALESCE(SUM(CASE WHEN invoices.date >= ? AND invoices.status = 'unpaid' THEN invoices.final_total END), 0) AS ytd_unpaid,
			COALESCE(SUM(CASE WHEN invoices.date >= ? AND invoices.status = 'overdue' THEN invoices.final_total END), 0) AS ytd_overdue,
			COUNT(invoices.id) AS all_count,
			COALESCE(SUM(invoices.final_total), 0) AS all_total
		FROM users
		LEFT JOIN invoices ON invoices.tech_id = users.id
		GROUP BY users.id, users.user_name, users.email
		ORDER BY users.user_name`,
		ytdStart, ytdStart, ytdStart, ytdStart, ytdStart,
	).Scan(&rows).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build tech summary")
		return
	}

	results := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		name := row.UserName
		if name == "" {
			name = row.Email
		}
		results = append(results, gin.H{
			"tech_id":   row.TechID,
			"user_name": name,
			"ytd": gin.H{
				"invoice_count":  row.YTDCount,
				"total_amount":   row.YTDTotal,
				"paid_amount":    row.YTDPaid,
				"unpaid_amount":  row.YTDUnpaid,
				"overdue_amount": row.YTDOverdue,
			},
			"all_time": gin.H{
				"invoice_count": row.AllCount,
				"total_amount":  row.AllTotal,
			},
		})
	}

	c.JSON(http.StatusOK, results)
}
