package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGenerateTestimonial(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctl := NewTestimonialController()

	tests := []struct {
		name  string
		query string
		theme string
	}{
		{name: "known theme", query: "?theme=price", theme: "price"},
		{name: "unknown theme falls back to overall", query: "?theme=bogus", theme: "overall"},
		{name: "default theme", query: "", theme: "overall"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			req, _ := http.NewRequest("GET", "/ai/generate-testimonial"+tt.query, nil)
			c.Request = req
			ctl.Generate(c)

			assert.Equal(t, http.StatusOK, w.Code)
			var got string
			json.Unmarshal(w.Body.Bytes(), &got)
			assert.Contains(t, themeTemplates[tt.theme], got)
		})
	}
}
