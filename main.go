package main

import (
	"fmt"

	"zuperbill-backend/config"
	"zuperbill-backend/models"
	"zuperbill-backend/routes"
	"zuperbill-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := config.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Invoice{},
		&models.LineItem{},
		&models.PublicToken{},
	); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	mailer := services.NewMailer(cfg)
	sms := services.NewSMSSender(cfg)

	services.NewOverdueService(db).StartScheduler()

	r := routes.SetupRouter(db, cfg, mailer, sms)
	printRoutes(r)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
