// Package invoice renders booking invoices as PDF documents.
package invoice

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// Hotel is the issuer block printed in the invoice header.
type Hotel struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

// DefaultHotel returns the issuer details for the given hotel name.
func DefaultHotel(name string) Hotel {
	return Hotel{
		Name:    name,
		Address: "Rua Hotel Jan Camama, Talatona, Belas, Angola",
		Phone:   "+244 914 260 030",
		Email:   "reservas@hoteljan.co.ao",
		Website: "www.hoteljan.co.ao",
	}
}

// Invoice holds everything printed for one booking. Number is the booking number.
type Invoice struct {
	Number          string
	IssuedAt        time.Time
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	RoomName        string
	CheckIn         time.Time
	CheckOut        time.Time
	Nights          int
	Guests          int
	NightlyPrice    decimal.Decimal
	Total           decimal.Decimal
	PaymentStatus   string
	SpecialRequests string
}

// Filename is the download name of an invoice.
func Filename(number string) string {
	return "invoice_" + number + ".pdf"
}

// Amount formats a price as "Kz 1,234,567.89".
func Amount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "Kz " + sign + b.String() + "." + frac
}

const dateLayout = "02/01/2006"

var (
	accent    = [3]int{234, 179, 8}
	accentBg  = [3]int{254, 243, 199}
	textGrey  = [3]int{120, 120, 120}
	lineGrey  = [3]int{160, 160, 160}
	pageWidth = 170.0 // A4 minus 20mm margins
)

type Renderer struct {
	hotel Hotel
}

func NewRenderer(hotel Hotel) *Renderer {
	return &Renderer{hotel: hotel}
}

// Render produces the A4 PDF for inv.
func (r *Renderer) Render(inv Invoice) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("Invoice "+inv.Number, true)
	pdf.SetAuthor(r.hotel.Name, true)
	pdf.SetCreationDate(inv.IssuedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(accent[0], accent[1], accent[2])
	pdf.CellFormat(pageWidth, 12, tr(r.hotel.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(textGrey[0], textGrey[1], textGrey[2])
	pdf.CellFormat(pageWidth, 5, tr(r.hotel.Address), "", 1, "C", false, 0, "")
	pdf.CellFormat(pageWidth, 5, tr(fmt.Sprintf("Tel: %s | Email: %s", r.hotel.Phone, r.hotel.Email)), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(pageWidth, 10, "INVOICE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(pageWidth, 6, "Invoice No: "+tr(inv.Number), "", 1, "C", false, 0, "")
	pdf.CellFormat(pageWidth, 6, "Date: "+inv.IssuedAt.Format(dateLayout), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// Guest
	heading(pdf, "GUEST INFORMATION")
	for _, row := range [][2]string{
		{"Name:", inv.GuestName},
		{"Email:", inv.GuestEmail},
		{"Phone:", inv.GuestPhone},
		{"Guests:", fmt.Sprintf("%d", inv.Guests)},
	} {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(pageWidth-45, 7, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Booking table
	heading(pdf, "BOOKING DETAILS")
	cols := []float64{70, 25, 37.5, 37.5}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(accent[0], accent[1], accent[2])
	pdf.SetDrawColor(lineGrey[0], lineGrey[1], lineGrey[2])
	for i, h := range []string{"Description", "Qty", "Price", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lines := [][4]string{
		{tr(inv.RoomName), "", "", ""},
		{"Check-in: " + inv.CheckIn.Format(dateLayout) + " from 14:00", "", "", ""},
		{"Check-out: " + inv.CheckOut.Format(dateLayout) + " until 12:00", "", "", ""},
		{fmt.Sprintf("%d nights", inv.Nights), fmt.Sprintf("%d", inv.Nights), Amount(inv.NightlyPrice), Amount(inv.Total)},
	}
	for _, line := range lines {
		for i, v := range line {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(cols[i], 7, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	labelX := 20 + cols[0] + cols[1]
	summary := func(label, value string, bold bool) {
		style := ""
		size := 9.0
		if bold {
			style, size = "B", 12
		}
		pdf.SetX(labelX)
		pdf.SetFont("Helvetica", style, size)
		pdf.CellFormat(cols[2], 7, label, "B", 0, "R", bold, 0, "")
		pdf.CellFormat(cols[3], 7, value, "B", 1, "R", bold, 0, "")
	}
	summary("Subtotal:", Amount(inv.Total), false)
	summary("Taxes (included):", Amount(decimal.Zero), false)
	pdf.SetFillColor(accentBg[0], accentBg[1], accentBg[2])
	summary("TOTAL:", Amount(inv.Total), true)
	pdf.Ln(8)

	if inv.SpecialRequests != "" {
		heading(pdf, "SPECIAL REQUESTS")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(pageWidth, 5, tr(inv.SpecialRequests), "", "L", false)
		pdf.Ln(4)
	}

	heading(pdf, "PAYMENT INFORMATION")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(pageWidth, 6, "Status: "+paymentLabel(inv.PaymentStatus), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	heading(pdf, "TERMS & CONDITIONS")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(pageWidth, 5, strings.Join([]string{
		"- Check-in: 14:00 | Check-out: 12:00",
		"- Free cancellation up to 48h before arrival",
		"- Breakfast included",
		"- Free Wi-Fi",
	}, "\n"), "", "L", false)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(textGrey[0], textGrey[1], textGrey[2])
	pdf.CellFormat(pageWidth, 4, tr("Thank you for choosing "+r.hotel.Name+"!"), "", 1, "C", false, 0, "")
	pdf.CellFormat(pageWidth, 4, r.hotel.Website, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.Number, err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(accent[0], accent[1], accent[2])
	pdf.CellFormat(pageWidth, 8, title, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func paymentLabel(status string) string {
	switch status {
	case "paid":
		return "Paid"
	case "refunded":
		return "Refunded"
	default:
		return "Pending"
	}
}
