// controllers/user.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"zuperbill-backend/config"
	"zuperbill-backend/models"
	"zuperbill-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Settings
}

func NewUserController(db *gorm.DB, cfg *config.Settings) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	UserName string `json:"user_name"`
	IsAdmin  bool   `json:"is_admin"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a staff account
func (ctl *UserController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var existing models.User
	if err := ctl.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		Email:          input.Email,
		HashedPassword: hashed,
		UserName:       input.UserName,
		IsActive:       true,
		IsAdmin:        input.IsAdmin,
	}
	if err := ctl.DB.Create(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login verifies credentials and returns a bearer token
func (ctl *UserController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	email := strings.TrimSpace(input.Email)

	var user models.User
	if err := ctl.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.HashedPassword) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.IsActive {
		utils.RespondWithError(c, http.StatusForbidden, "Inactive account")
		return
	}

	token, err := utils.GenerateToken(ctl.Cfg, user.Email)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"user_name": user.UserName,
			"is_admin":  user.IsAdmin,
		},
	})
}

// Me returns the authenticated user
func (ctl *UserController) Me(c *gin.Context) {
	current, exists := c.Get("currentUser")
	if !exists {
		utils.RespondWithError(c, http.StatusInternalServerError, "User not found in context")
		return
	}
	c.JSON(http.StatusOK, current.(models.User))
}

// GetUsers lists active staff accounts
func (ctl *UserController) GetUsers(c *gin.Context) {
	var users []models.User
	if err := ctl.DB.Where("is_active = ?", true).Order("user_name").Find(&users).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}
	c.JSON(http.StatusOK, users)
}
