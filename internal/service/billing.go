package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/notify"
	"github.com/farisali522/birojasaapp/internal/ports"
)

// BillingService owns the one-to-one payment aggregate per request: invoice
// creation, the settlement paths, and the paid-once guard. The total is
// computed exactly once at invoice time and never recomputed.
type BillingService struct {
	Payments ports.PaymentStore
	Audit    ports.AuditStore
}

// CreateInvoice creates the payment row for a freshly verified request.
// total = service fee + official fee + shipping fee.
func (s BillingService) CreateInvoice(ctx context.Context, req *domain.Request, officialFee, shippingFee int64, byEmployee *int64) (*domain.Payment, error) {
	total := req.Offering.ServiceFee.Amount + officialFee + shippingFee

	pay, err := s.Payments.Create(ctx, ports.CreatePaymentInput{
		InvoiceNumber: "INV-" + req.Code,
		RequestID:     req.ID,
		ShippingFee:   shippingFee,
		Total:         total,
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if err := s.Audit.AppendPaymentEntry(ctx, domain.PaymentAuditEntry{
		PaymentID:  pay.ID,
		EmployeeID: byEmployee,
		Action:     domain.AuditInvoiceCreated,
		Note:       "Invoice generated. Total: " + notify.Rupiah(total),
	}); err != nil {
		return nil, err
	}
	return pay, nil
}

// IsSettleable reports whether the payment can still accept a settlement.
func (s BillingService) IsSettleable(pay *domain.Payment) bool {
	return pay != nil && pay.Status == domain.PaymentPending
}

// SettleOnline marks the payment paid through the simulated gateway and
// returns the generated transaction reference. A second call is rejected.
func (s BillingService) SettleOnline(ctx context.Context, pay *domain.Payment) (string, error) {
	if !s.IsSettleable(pay) {
		return "", ErrConflict
	}
	ref := "TRX-" + strings.ToUpper(uuid.NewString()[:8])
	if err := s.Payments.SettleOnline(ctx, pay.ID, ref); err != nil {
		return "", mapStoreErr(err)
	}
	if err := s.Audit.AppendPaymentEntry(ctx, domain.PaymentAuditEntry{
		PaymentID: pay.ID,
		Action:    domain.AuditPaidOnline,
		Note:      "Dibayar online. Ref: " + ref,
	}); err != nil {
		return "", err
	}
	return ref, nil
}

// ChooseCash records the cash method; the payment stays pending until
// finance confirms it at the counter.
func (s BillingService) ChooseCash(ctx context.Context, pay *domain.Payment) error {
	if !s.IsSettleable(pay) {
		return ErrConflict
	}
	return mapStoreErr(s.Payments.SetMethod(ctx, pay.ID, domain.MethodCash, nil))
}

// AttachProof records a manual transfer with its uploaded evidence; the
// payment stays pending until finance confirms.
func (s BillingService) AttachProof(ctx context.Context, pay *domain.Payment, proofPath string) error {
	if !s.IsSettleable(pay) {
		return ErrConflict
	}
	return mapStoreErr(s.Payments.SetMethod(ctx, pay.ID, domain.MethodManualTransfer, &proofPath))
}

// Confirm is the finance-staff settlement of a pending cash/manual payment.
// Confirming an already-paid invoice is rejected.
func (s BillingService) Confirm(ctx context.Context, pay *domain.Payment, method domain.PaymentMethod, byEmployee *int64) error {
	if !s.IsSettleable(pay) {
		return ErrConflict
	}
	if err := s.Payments.ConfirmPaid(ctx, pay.ID, method); err != nil {
		return mapStoreErr(err)
	}

	if err := s.Audit.AppendPaymentEntry(ctx, domain.PaymentAuditEntry{
		PaymentID:  pay.ID,
		EmployeeID: byEmployee,
		Action:     domain.AuditPaymentVerified,
		Note:       "Terima " + string(method) + ". Total: " + notify.Rupiah(pay.Total.Amount),
	}); err != nil {
		return err
	}
	return s.Audit.AppendPaymentEntry(ctx, domain.PaymentAuditEntry{
		PaymentID:  pay.ID,
		EmployeeID: byEmployee,
		Action:     domain.AuditPaymentConfirmed,
		Note:       "Pembayaran dikonfirmasi lunas",
	})
}
