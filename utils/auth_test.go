package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"zuperbill-backend/config"
	"zuperbill-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testSettings() *config.Settings {
	return &config.Settings{JWTSecret: "test-secret", JWTExpiryHours: 1}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)
	assert.True(t, CheckPasswordHash("correct-horse", hash))
	assert.False(t, CheckPasswordHash("wrong-horse", hash))
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	cfg := testSettings()

	db.Create(&models.User{Email: "active@example.com", HashedPassword: "x", IsActive: true})
	db.Create(&models.User{Email: "inactive@example.com", HashedPassword: "x", IsActive: false})

	activeToken, err := GenerateToken(cfg, "active@example.com")
	assert.NoError(t, err)
	inactiveToken, _ := GenerateToken(cfg, "inactive@example.com")
	ghostToken, _ := GenerateToken(cfg, "ghost@example.com")
	foreignToken, _ := GenerateToken(&config.Settings{JWTSecret: "other-secret", JWTExpiryHours: 1}, "active@example.com")

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "valid token", header: "Bearer " + activeToken, expectedStatus: http.StatusOK},
		{name: "missing header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", expectedStatus: http.StatusUnauthorized},
		{name: "wrong signing key", header: "Bearer " + foreignToken, expectedStatus: http.StatusUnauthorized},
		{name: "unknown user", header: "Bearer " + ghostToken, expectedStatus: http.StatusUnauthorized},
		{name: "inactive account", header: "Bearer " + inactiveToken, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			req, _ := http.NewRequest("GET", "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			c.Request = req

			AuthMiddleware(db, cfg)(c)

			if tt.expectedStatus == http.StatusOK {
				assert.False(t, c.IsAborted())
				current, exists := c.Get("currentUser")
				assert.True(t, exists)
				assert.Equal(t, "active@example.com", current.(models.User).Email)
			} else {
				assert.Equal(t, tt.expectedStatus, w.Code)
				assert.True(t, c.IsAborted())
			}
		})
	}
}
