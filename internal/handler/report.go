package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/farisali522/birojasaapp/internal/artifact"
	"github.com/farisali522/birojasaapp/internal/ports"
)

// ReportHandler serves the manager dashboard and the financial report
// exports.
type ReportHandler struct {
	Payments  ports.PaymentStore
	Requests  ports.RequestStore
	Customers ports.CustomerStore
	PDF       artifact.PDFRenderer
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/manager/dashboard", h.dashboard)
	r.Get("/manager/reports/financial", h.financial)
}

func (h ReportHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	totalRequests, err := h.Requests.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	counts, err := h.Requests.CountByStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	totalCustomers, err := h.Customers.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	revenue, err := h.Payments.SumPaid(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	statusCounts := make(map[string]int64, len(counts))
	for status, n := range counts {
		statusCounts[string(status)] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalRequests":  totalRequests,
		"totalCustomers": totalCustomers,
		"totalRevenue":   revenue,
		"statusCounts":   statusCounts,
	})
}

func (h ReportHandler) financial(w http.ResponseWriter, r *http.Request) {
	start, end, err := resolvePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.Payments.ListPaidBetween(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	filenameSuffix := time.Now().Format("20060102_150405")
	if start != nil && end != nil {
		filenameSuffix = fmt.Sprintf("%s_%s", start.Format("20060102"), end.Format("20060102"))
	}

	switch format {
	case "json":
		resp := make([]map[string]any, 0, len(rows))
		var sum int64
		for _, row := range rows {
			resp = append(resp, map[string]any{
				"invoiceNumber": row.InvoiceNumber,
				"paidAt":        row.PaidAt.UTC().Format(time.RFC3339),
				"customerName":  row.CustomerName,
				"total":         row.Total,
			})
			sum += row.Total
		}
		writeJSON(w, http.StatusOK, map[string]any{"rows": resp, "total": sum})
	case "csv":
		data, err := exportFinancialCSV(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"laporan_keuangan_%s.csv\"", filenameSuffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportFinancialXLSX(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"laporan_keuangan_%s.xlsx\"", filenameSuffix))
		_, _ = w.Write(data)
	case "pdf":
		data := h.PDF.RenderFinancialReport(rows, start, end)
		if data == nil {
			writeError(w, http.StatusInternalServerError, "pdf render failed")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"laporan_keuangan_%s.pdf\"", filenameSuffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use json, csv, xlsx or pdf)")
	}
}

func exportFinancialCSV(rows []ports.PaidPaymentRow) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"No Invoice", "Tanggal", "Pelanggan", "Total"})
	for _, row := range rows {
		_ = w.Write([]string{
			row.InvoiceNumber,
			row.PaidAt.Format("2006-01-02"),
			row.CustomerName,
			strconv.FormatInt(row.Total, 10),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportFinancialXLSX(rows []ports.PaidPaymentRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Laporan"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"No Invoice", "Tanggal", "Pelanggan", "Total"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	var sum int64
	for r, row := range rows {
		values := []any{
			row.InvoiceNumber,
			row.PaidAt.Format("2006-01-02"),
			row.CustomerName,
			row.Total,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		sum += row.Total
	}
	totalRow := len(rows) + 2
	cell, _ := excelize.CoordinatesToCellName(3, totalRow)
	_ = f.SetCellValue(sheet, cell, "TOTAL")
	cell, _ = excelize.CoordinatesToCellName(4, totalRow)
	_ = f.SetCellValue(sheet, cell, sum)

	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "B", "B", 14)
	_ = f.SetColWidth(sheet, "C", "C", 30)
	_ = f.SetColWidth(sheet, "D", "D", 16)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "D1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
