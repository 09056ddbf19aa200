package routes

import (
	"zuperbill-backend/config"
	"zuperbill-backend/controllers"
	"zuperbill-backend/services"
	"zuperbill-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, cfg *config.Settings, mailer services.Sender, sms *services.SMSSender) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.PublicBaseURL, "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	userController := controllers.NewUserController(db, cfg)
	customerController := controllers.NewCustomerController(db)
	invoiceController := controllers.NewInvoiceController(db, cfg, mailer)
	ackController := controllers.NewAcknowledgmentController(db, cfg, mailer)
	publicController := controllers.NewPublicController(db, mailer, sms)
	reportController := controllers.NewReportController(db)
	lineItemController := controllers.NewLineItemController(db)
	testimonialController := controllers.NewTestimonialController()
	backupController := controllers.NewBackupController(db)

	auth := r.Group("/auth")
	{
		auth.POST("/register", userController.Register)
		auth.POST("/login", userController.Login)

		auth.Use(utils.AuthMiddleware(db, cfg))
		auth.GET("/me", userController.Me)
	}

	// Public, token-gated access for customers
	public := r.Group("/public")
	{
		public.GET("/invoice/:token", publicController.ViewInvoice)
		public.POST("/invoice/:token/request-otp", publicController.RequestOTP)
		public.POST("/invoice/:token/verify-otp", publicController.VerifyOTP)
		public.POST("/invoice/:token/acknowledge", ackController.Acknowledge)
		public.POST("/invoice/:token/send-signed-copy", ackController.SendSignedCopy)
		public.GET("/testimonials", publicController.GetTestimonials)
	}

	api := r.Group("/")
	api.Use(utils.AuthMiddleware(db, cfg))
	{
		customers := api.Group("/customers")
		{
			customers.POST("", customerController.CreateCustomer)
			customers.GET("", customerController.GetCustomers)
			customers.GET("/:id", customerController.GetCustomer)
			customers.PUT("/:id", customerController.UpdateCustomer)
			customers.DELETE("/:id", customerController.DeleteCustomer)
		}

		invoices := api.Group("/invoices")
		{
			invoices.POST("", invoiceController.CreateInvoice)
			invoices.GET("", invoiceController.GetInvoices)
			invoices.GET("/:id", invoiceController.GetInvoice)
			invoices.PATCH("/:id", invoiceController.UpdateInvoice)
			invoices.PUT("/:id", invoiceController.ReplaceInvoice)
			invoices.DELETE("/:id", invoiceController.DeleteInvoice)
			invoices.POST("/:id/clone", invoiceController.CloneInvoice)
			invoices.POST("/:id/resend", invoiceController.ResendInvoice)
			invoices.POST("/:id/generate-token", invoiceController.GenerateToken)
			invoices.POST("/:id/acknowledge", ackController.Acknowledge)
			invoices.POST("/:id/send-signed-copy", ackController.SendSignedCopy)
		}

		api.GET("/users", userController.GetUsers)
		api.GET("/reports/tech-summary", reportController.TechSummary)
		api.GET("/line-items/descriptions", lineItemController.Descriptions)
		api.GET("/ai/generate-testimonial", testimonialController.Generate)

		backup := api.Group("/backup")
		{
			backup.GET("/download", backupController.Download)
			backup.POST("/upload", backupController.Upload)
		}
	}

	return r
}
