package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farisali522/birojasaapp/internal/domain"
)

func TestRupiah(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{1500, "Rp 1.500"},
		{400000, "Rp 400.000"},
		{1250000, "Rp 1.250.000"},
		{1000000000, "Rp 1.000.000.000"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Rupiah(tc.amount), tc.want)
	}
}

func TestMessagesAddressTheCustomer(t *testing.T) {
	req := &domain.Request{
		ID:     3,
		Code:   "PMH-20260101-1",
		Status: domain.StatusFieldReturned,
		Customer: &domain.Customer{
			Name: "Budi Santoso", Email: "budi@example.com",
		},
		Offering: &domain.ServiceOffering{Name: "Balik Nama Kendaraan"},
	}
	pay := &domain.Payment{
		InvoiceNumber: "INV-PMH-20260101-1",
		Total:         domain.Money{Amount: 550000},
	}
	base := "https://app.example.test"

	t.Run("invoice carries the total and a billing link", func(t *testing.T) {
		msg := InvoiceIssued(req, pay, base)
		assert.Equal(t, "budi@example.com", msg.To)
		assert.Contains(t, msg.HTMLBody, "Rp 550.000")
		assert.Contains(t, msg.HTMLBody, base+"/me/requests/3/billing")
		assert.Contains(t, msg.Subject, req.Code)
	})

	t.Run("receipt names the manual method when present", func(t *testing.T) {
		method := domain.MethodCash
		pay := *pay
		pay.Method = &method
		msg := PaidReceipt(req, &pay)
		assert.Contains(t, msg.HTMLBody, string(domain.MethodCash))
	})

	t.Run("revision lists the flagged documents", func(t *testing.T) {
		msg := RevisionRequested(req, []string{"KTP", "STNK"}, base)
		assert.Contains(t, msg.HTMLBody, "<li>KTP</li>")
		assert.Contains(t, msg.HTMLBody, "<li>STNK</li>")
	})

	t.Run("rejection quotes the reason", func(t *testing.T) {
		msg := RequestRejected(req, "dokumen kadaluarsa", base)
		assert.Contains(t, msg.HTMLBody, "dokumen kadaluarsa")
	})

	t.Run("progress update shows the current status label", func(t *testing.T) {
		msg := ProgressUpdate(req, base)
		assert.Contains(t, msg.HTMLBody, domain.StatusLabel[domain.StatusFieldReturned])
	})

	t.Run("shipping notice carries the tracking number", func(t *testing.T) {
		msg := Shipped(req, "JNE123456")
		assert.Contains(t, msg.HTMLBody, "JNE123456")
	})
}
