package artifact

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/notify"
	"github.com/farisali522/birojasaapp/internal/ports"
)

// PDFRenderer builds invoice and receipt artifacts. Rendering failures are
// logged and reported as nil so notifications go out without an attachment.
type PDFRenderer struct {
	BusinessName string
	Logger       *slog.Logger
}

func (r PDFRenderer) RenderInvoice(req *domain.Request, pay *domain.Payment) []byte {
	return r.render("INVOICE", req, pay, "pending")
}

func (r PDFRenderer) RenderReceipt(req *domain.Request, pay *domain.Payment) []byte {
	return r.render("STRUK LUNAS", req, pay, "LUNAS")
}

func (r PDFRenderer) render(title string, req *domain.Request, pay *domain.Payment, statusText string) []byte {
	if req == nil || pay == nil || req.Customer == nil || req.Offering == nil {
		return nil
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, r.BusinessName)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, title+" "+pay.InvoiceNumber)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.CellFormat(60, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}
	line("Tanggal", time.Now().Format("02-01-2006"))
	line("Kode Permohonan", req.Code)
	line("Pelanggan", req.Customer.Name)
	line("Layanan", req.Offering.Name)
	pdf.Ln(4)

	line("Biaya Jasa", notify.Rupiah(req.Offering.ServiceFee.Amount))
	line("Biaya Resmi", notify.Rupiah(req.OfficialFee.Amount))
	line("Biaya Pengiriman", notify.Rupiah(pay.ShippingFee.Amount))
	pdf.SetFont("Helvetica", "B", 12)
	line("TOTAL", notify.Rupiah(pay.Total.Amount))
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	line("Status", statusText)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.Logger.Error("pdf render failed", "invoice", pay.InvoiceNumber, "err", err)
		return nil
	}
	return buf.Bytes()
}

// RenderFinancialReport produces the combined income report for a period.
func (r PDFRenderer) RenderFinancialReport(rows []ports.PaidPaymentRow, start, end *time.Time) []byte {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Laporan Keuangan - "+r.BusinessName)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	period := "Semua periode"
	if start != nil && end != nil {
		period = start.Format("02-01-2006") + " s/d " + end.Format("02-01-2006")
	}
	pdf.Cell(0, 6, "Periode: "+period)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(50, 8, "No Invoice", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Tanggal", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Pelanggan", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	var sum int64
	for _, row := range rows {
		pdf.CellFormat(50, 7, row.InvoiceNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, row.PaidAt.Format("02-01-2006"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, row.CustomerName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, notify.Rupiah(row.Total), "1", 1, "R", false, 0, "")
		sum += row.Total
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(140, 8, "TOTAL PEMASUKAN", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, notify.Rupiah(sum), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.Logger.Error("report pdf render failed", "err", err)
		return nil
	}
	return buf.Bytes()
}
