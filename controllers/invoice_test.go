package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"zuperbill-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func performJSON(handler gin.HandlerFunc, method, path string, body interface{}, params gin.Params) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params

	handler(c)
	c.Writer.WriteHeaderNow()
	return w
}

func idParam(invoice models.Invoice) gin.Params {
	return gin.Params{{Key: "id", Value: strconv.FormatUint(uint64(invoice.ID), 10)}}
}

func seedInvoiceWithItems(db *gorm.DB, customer models.Customer, isEstimate bool) models.Invoice {
	prefix := "INV"
	if isEstimate {
		prefix = "EST"
	}
	invoice := models.Invoice{
		CustomerID: customer.ID,
		Number:     prefix + "-20260829-001",
		Date:       time.Now().UTC(),
		Total:      25.0,
		Tax:        10.0,
		FinalTotal: 27.5,
		Status:     "unpaid",
		IsEstimate: isEstimate,
		IsActive:   true,
		Items: []models.LineItem{
			{Description: "Faucet replacement", Quantity: 2, UnitPrice: 10},
			{Description: "Caulking", Quantity: 1, UnitPrice: 5},
		},
	}
	db.Create(&invoice)
	return invoice
}

func TestCreateInvoice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	ctl := NewInvoiceController(db, testSettings(), &fakeMailer{})
	customer := seedCustomer(db, "create@example.com")

	input := CreateInvoiceInput{
		CustomerID: customer.ID,
		Tax:        10,
		Items: []LineItemInput{
			{Description: "Faucet replacement", Quantity: 2, UnitPrice: 10},
			{Description: "Caulking", Quantity: 1, UnitPrice: 5},
		},
	}

	w := performJSON(ctl.CreateInvoice, "POST", "/invoices", input, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Invoice
	json.Unmarshal(w.Body.Bytes(), &created)

	today := time.Now().UTC().Format("20060102")
	assert.Equal(t, "INV-"+today+"-001", created.Number)
	assert.Equal(t, 25.0, created.Total)
	assert.InDelta(t, 27.50, created.FinalTotal, 0.001)
	assert.Equal(t, "unpaid", created.Status)
	assert.Nil(t, created.PaidAt)
	assert.Len(t, created.Items, 2)

	w = performJSON(ctl.CreateInvoice, "POST", "/invoices", input, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	json.Unmarshal(w.Body.Bytes(), &created)
	assert.Equal(t, "INV-"+today+"-002", created.Number)
}

func TestCreateInvoiceUnknownCustomer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	ctl := NewInvoiceController(db, testSettings(), &fakeMailer{})

	input := CreateInvoiceInput{
		CustomerID: 999,
		Items:      []LineItemInput{{Description: "Anything", Quantity: 1, UnitPrice: 1}},
	}
	w := performJSON(ctl.CreateInvoice, "POST", "/invoices", input, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateEstimateUsesEstimatePrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	ctl := NewInvoiceController(db, testSettings(), &fakeMailer{})
	customer := seedCustomer(db, "estimate@example.com")

	input := CreateInvoiceInput{
		CustomerID: customer.ID,
		IsEstimate: true,
		Items:      []LineItemInput{{Description: "Deck repair", Quantity: 1, UnitPrice: 400}},
	}
	w := performJSON(ctl.CreateInvoice, "POST", "/invoices", input, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Invoice
	json.Unmarshal(w.Body.Bytes(), &created)
	assert.Equal(t, "EST-"+time.Now().UTC().Format("20060102")+"-001", created.Number)
	assert.True(t, created.IsEstimate)
}

func TestUpdateInvoicePaidAtRule(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	ctl := NewInvoiceController(db, testSettings(), &fakeMailer{})
	customer := seedCustomer(db, "paidat@example.com")
	invoice := seedInvoiceWithItems(db, customer, false)

	paid := "paid"
	w := performJSON(ctl.UpdateInvoice, "PATCH", "/invoices/1", UpdateInvoiceInput{Status: &paid}, idParam(invoice))
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Invoice
	db.First(&got, invoice.ID)
	assert.Equal(t, "paid", got.Status)
	assert.NotNil(t, got.PaidAt)

	firstPaidAt := *got.PaidAt

	// Setting paid again must not move the timestamp.
	w = performJSON(ctl.UpdateInvoice, "PATCH", "/invoices/1", UpdateInvoiceInput{Status: &paid}, idParam(invoice))
	assert.Equal(t, http.StatusOK, w.Code)
	db.First(&got, invoice.ID)
	assert.Equal(t, firstPaidAt.Unix(), got.PaidAt.Unix())

	unpaid := "unpaid"
	w = performJSON(ctl.UpdateInvoice, "PATCH", "/invoices/1", UpdateInvoiceInput{Status: &unpaid}, idParam(invoice))
	assert.Equal(t, http.StatusOK, w.Code)
	got = models.Invoice{}
	db.First(&got, invoice.ID)
	assert.Equal(t, "unpaid", got.Status)
	assert.Nil(t, got.PaidAt)
}

func TestUpdateInvoiceRecomputesFinalTotal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	ctl := NewInvoiceController(db, testSettings(), &fakeMailer{})
	customer := seedCustomer(db, "recompute@example.com")
	invoice := seedInvoiceWithItems(db, customer, false)

	discount := 5.0
	w := performJSON(ctl.UpdateInvoice, "PATCH", "/invoices/1", UpdateInvoiceInput{Discount: &discount}, idParam(invoice))
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Invoice
	db.First(&got, invoice.ID)
	// (25 - 5) * 1.10 = 22.00
	assert.InDelta(t, 22.0, got.FinalTotal, 0.001)
}

func TestUpdateInvoiceReplacesItems(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	ctl := NewInvoiceController(db, testSettings(), &fakeMailer{})
	customer := seedCustomer(db, "items@example.com")
	invoice := seedInvoiceWithItems(db, customer, false)

	items := []LineItemInput{{Description: "Drywall patch", Quantity: 3, UnitPrice: 20}}
	w := performJSON(ctl.UpdateInvoice, "PATCH", "/invoices/1", UpdateInvoiceInput{Items: &items}, idParam(invoice))
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Invoice
	db.Preload("Items").First(&got, invoice.ID)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, "Drywall patch", got.Items[0].Description)
	assert.Equal(t, 60.0, got.Total)
	assert.InDelta(t, 66.0, got.FinalTotal, 0.001)
}

func TestReplaceInvoice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	ctl := NewInvoiceController(db, testSettings(), &fakeMailer{})
	customer := seedCustomer(db, "replace@example.com")
	invoice := seedInvoiceWithItems(db, customer, false)

	input := CreateInvoiceInput{
		CustomerID: customer.ID,
		Status:     "paid",
		Tax:        0,
		Discount:   10,
		Notes:      "Settled on site",
		Items:      []LineItemInput{{Description: "Full rework", Quantity: 1, UnitPrice: 100}},
	}
	w := performJSON(ctl.ReplaceInvoice, "PUT", "/invoices/1", input, idParam(invoice))
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Invoice
	db.Preload("Items").First(&got, invoice.ID)
	assert.Equal(t, invoice.Number, got.Number)
	assert.Equal(t, 100.0, got.Total)
	assert.InDelta(t, 90.0, got.FinalTotal, 0.001)
	assert.Equal(t, "paid", got.Status)
	assert.NotNil(t, got.PaidAt)
	assert.Equal(t, "Settled on site", got.Notes)
	assert.Nil(t, got.DueDate)
	assert.Len(t, got.Items, 1)
}

func TestCloneInvoice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	ctl := NewInvoiceController(db, testSettings(), &fakeMailer{})
	customer := seedCustomer(db, "clone@example.com")
	invoice := seedInvoiceWithItems(db, customer, false)
	paidAt := time.Now().UTC()
	db.Model(&invoice).Updates(map[string]interface{}{"status": "paid", "paid_at": paidAt})

	w := performJSON(ctl.CloneInvoice, "POST", "/invoices/1/clone", nil, idParam(invoice))
	assert.Equal(t, http.StatusCreated, w.Code)

	var clone models.Invoice
	json.Unmarshal(w.Body.Bytes(), &clone)
	assert.NotEqual(t, invoice.ID, clone.ID)
	assert.NotEqual(t, invoice.Number, clone.Number)
	assert.Equal(t, "unpaid", clone.Status)
	assert.Nil(t, clone.PaidAt)

	var source models.Invoice
	db.First(&source, invoice.ID)
	assert.False(t, source.IsActive)

	var items []models.LineItem
	db.Where("invoice_id = ?", clone.ID).Find(&items)
	assert.Len(t, items, 2)

	var token models.PublicToken
	err := db.Where("invoice_id = ?", clone.ID).First(&token).Error
	assert.NoError(t, err)
	assert.NotNil(t, token.ExpiresAt)
	assert.WithinDuration(t, time.Now().UTC().Add(72*time.Hour), *token.ExpiresAt, time.Minute)
}

func TestCloneInvoiceAsEstimate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	ctl := NewInvoiceController(db, testSettings(), &fakeMailer{})
	customer := seedCustomer(db, "cloneest@example.com")
	invoice := seedInvoiceWithItems(db, customer, false)

	asEstimate := true
	w := performJSON(ctl.CloneInvoice, "POST", "/invoices/1/clone", CloneInvoiceInput{AsEstimate: &asEstimate}, idParam(invoice))
	assert.Equal(t, http.StatusCreated, w.Code)

	var clone models.Invoice
	json.Unmarshal(w.Body.Bytes(), &clone)
	assert.True(t, clone.IsEstimate)
	assert.Equal(t, "EST-"+time.Now().UTC().Format("20060102")+"-001", clone.Number)
}

func TestDeleteInvoiceCascades(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	ctl := NewInvoiceController(db, testSettings(), &fakeMailer{})
	customer := seedCustomer(db, "delete@example.com")
	invoice := seedInvoiceWithItems(db, customer, false)
	db.Create(&models.PublicToken{Token: "cascade-token", InvoiceID: invoice.ID})

	w := performJSON(ctl.DeleteInvoice, "DELETE", "/invoices/1", nil, idParam(invoice))
	assert.Equal(t, http.StatusNoContent, w.Code)

	var count int64
	db.Model(&models.Invoice{}).Where("id = ?", invoice.ID).Count(&count)
	assert.EqualValues(t, 0, count)
	db.Model(&models.LineItem{}).Where("invoice_id = ?", invoice.ID).Count(&count)
	assert.EqualValues(t, 0, count)
	db.Model(&models.PublicToken{}).Where("invoice_id = ?", invoice.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestGetInvoicesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	ctl := NewInvoiceController(db, testSettings(), &fakeMailer{})
	customer := seedCustomer(db, "filters@example.com")

	invoices := []models.Invoice{
		{CustomerID: customer.ID, Number: "INV-20260829-001", Date: time.Now().UTC(), Status: "paid", IsActive: true},
		{CustomerID: customer.ID, Number: "INV-20260829-002", Date: time.Now().UTC(), Status: "unpaid", IsActive: true},
		{CustomerID: customer.ID, Number: "INV-20260829-003", Date: time.Now().UTC(), Status: "unpaid", IsActive: true},
	}
	for i := range invoices {
		db.Create(&invoices[i])
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest("GET", "/invoices?status=unpaid", nil)
	c.Request = req
	ctl.GetInvoices(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []models.Invoice
	json.Unmarshal(w.Body.Bytes(), &got)
	assert.Len(t, got, 2)
	for _, inv := range got {
		assert.Equal(t, "unpaid", inv.Status)
	}
}

func TestResendInvoiceSendsPDF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	mailer := &fakeMailer{}
	ctl := NewInvoiceController(db, testSettings(), mailer)
	customer := seedCustomer(db, "resend@example.com")
	invoice := seedInvoiceWithItems(db, customer, false)

	w := performJSON(ctl.ResendInvoice, "POST", "/invoices/1/resend", nil, idParam(invoice))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Len(t, mailer.sent, 1)
	assert.Equal(t, "resend@example.com", mailer.sent[0].To)
	assert.Equal(t, "Invoice #"+invoice.Number, mailer.sent[0].Subject)
	assert.Equal(t, "invoice_"+invoice.Number+".pdf", mailer.sent[0].Filename)
	assert.NotEmpty(t, mailer.sent[0].Attachment)
}
