// services/pdf.go
package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"zuperbill-backend/models"
	"zuperbill-backend/utils"
	"github.com/jung-kurt/gofpdf"
)

const (
	companyName    = "Zuper Handy"
	companyAddress = "Serving the greater metro area"
	companyEmail   = "billing@zuperhandy.com"
)

// PDFOptions carries the signature state the rendered document should show.
type PDFOptions struct {
	DocType         string // "Invoice" or "Estimate"
	SignatureBase64 string
	SignedAt        string // formatted, empty when unsigned
	Accepted        bool
}

// RenderInvoicePDF lays out the document: header, customer/invoice metadata,
// line-item table, totals block, signature block, optional testimonial and a
// PAID watermark when a payment timestamp is present.
func RenderInvoicePDF(inv models.Invoice, opts PDFOptions) ([]byte, error) {
	if opts.DocType == "" {
		opts.DocType = "Invoice"
	}

	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if inv.PaidAt != nil {
		drawPaidStamp(pdf, inv.PaidAt.Format("01-02-2006"))
	}

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(20, 60, 140)
	pdf.CellFormat(100, 10, companyName, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 5, companyAddress, "", 1, "R", false, 0, "")
	pdf.CellFormat(100, 5, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, companyEmail, "", 1, "R", false, 0, "")
	pdf.Ln(8)

	// Metadata: bill-to on the left, document details on the right.
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(95, 5, "Bill To", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("%s #%s", opts.DocType, inv.Number), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(95, 5, strings.TrimSpace(inv.Customer.FirstName+" "+inv.Customer.LastName), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Date: "+inv.Date.Format("01/02/2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 5, inv.Customer.Street, "", 0, "L", false, 0, "")
	if inv.DueDate != nil {
		pdf.CellFormat(0, 5, "Due: "+inv.DueDate.Format("01/02/2006"), "", 1, "R", false, 0, "")
	} else {
		pdf.CellFormat(0, 5, "", "", 1, "R", false, 0, "")
	}
	cityLine := strings.TrimSpace(strings.Trim(inv.Customer.City+", "+inv.Customer.State+" "+inv.Customer.Zipcode, ", "))
	pdf.CellFormat(95, 5, cityLine, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Status: "+inv.Status, "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 5, inv.Customer.Email, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Line-item table
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 238, 245)
	pdf.CellFormat(100, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(28, 7, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(28, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range inv.Items {
		amount := float64(item.Quantity) * item.UnitPrice
		pdf.CellFormat(100, 7, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 7, fmt.Sprintf("$%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 7, fmt.Sprintf("$%.2f", amount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals block
	writeTotal := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(120, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(28, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, value, "", 1, "R", false, 0, "")
	}
	writeTotal("Subtotal", fmt.Sprintf("$%.2f", inv.Total), false)
	if inv.Discount != 0 {
		writeTotal("Discount", fmt.Sprintf("-$%.2f", inv.Discount), false)
	}
	if inv.Tax != 0 {
		taxAmount := utils.Round2((inv.Total - inv.Discount) * inv.Tax / 100)
		writeTotal(fmt.Sprintf("Tax (%.1f%%)", inv.Tax), fmt.Sprintf("$%.2f", taxAmount), false)
	}
	writeTotal("Total", fmt.Sprintf("$%.2f", inv.FinalTotal), true)
	pdf.Ln(8)

	// Signature block
	if opts.SignatureBase64 != "" {
		if err := drawSignature(pdf, opts.SignatureBase64); err != nil {
			return nil, fmt.Errorf("render signature: %w", err)
		}
	}
	pdf.SetFont("Helvetica", "", 9)
	if opts.SignedAt != "" {
		accepted := "pending"
		if opts.Accepted {
			accepted = "accepted"
		}
		pdf.CellFormat(0, 5, fmt.Sprintf("Signed %s (%s)", opts.SignedAt, accepted), "", 1, "L", false, 0, "")
	}

	if inv.Testimonial != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, "\""+strings.Trim(inv.Testimonial, "\"")+"\"", "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawPaidStamp(pdf *gofpdf.Fpdf, paidDate string) {
	pdf.SetAlpha(0.25, "Normal")
	pdf.TransformBegin()
	pdf.TransformRotate(20, 108, 140)
	pdf.SetFont("Helvetica", "B", 72)
	pdf.SetTextColor(200, 30, 30)
	pdf.Text(60, 150, "PAID")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(78, 165, paidDate)
	pdf.TransformEnd()
	pdf.SetAlpha(1, "Normal")
	pdf.SetTextColor(0, 0, 0)
}

func drawSignature(pdf *gofpdf.Fpdf, signatureBase64 string) error {
	raw := signatureBase64
	if idx := strings.Index(raw, "base64,"); idx >= 0 {
		raw = raw[idx+len("base64,"):]
	}
	img, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return err
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("signature", opts, bytes.NewReader(img))
	if pdf.Err() {
		return pdf.Error()
	}
	pdf.ImageOptions("signature", pdf.GetX(), pdf.GetY(), 60, 0, true, opts, 0, "")
	return pdf.Error()
}
