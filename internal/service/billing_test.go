package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

type BillingSuite struct {
	suite.Suite
	ctx   context.Context
	pays  *memPayments
	audit *memAudit
	svc   BillingService
	req   *domain.Request
}

func TestBillingSuite(t *testing.T) {
	suite.Run(t, new(BillingSuite))
}

func (s *BillingSuite) SetupTest() {
	s.ctx = context.Background()
	s.pays = newMemPayments()
	s.audit = &memAudit{}
	s.svc = BillingService{Payments: s.pays, Audit: s.audit}
	s.req = &domain.Request{
		ID:   7,
		Code: "PMH-TEST",
		Offering: &domain.ServiceOffering{
			ID: 1, Name: "Perpanjang STNK", ServiceFee: domain.Money{Amount: 250_000},
		},
	}
}

func (s *BillingSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *BillingSuite) invoice(official, shipping int64) *domain.Payment {
	pay, err := s.svc.CreateInvoice(s.ctx, s.req, official, shipping, nil)
	s.Require().NoError(err)
	return pay
}

func (s *BillingSuite) TestCreateInvoice() {
	s.Run("total sums service, official and shipping fees", func() {
		pay := s.invoice(100_000, 25_000)
		s.Equal(int64(375_000), pay.Total.Amount)
		s.Equal(int64(25_000), pay.ShippingFee.Amount)
		s.Equal("INV-PMH-TEST", pay.InvoiceNumber)
		s.Equal(domain.PaymentPending, pay.Status)
		s.Equal([]string{"invoice_created"}, s.audit.paymentActions(pay.ID))
	})

	s.Run("one invoice per request", func() {
		s.invoice(100_000, 0)
		_, err := s.svc.CreateInvoice(s.ctx, s.req, 100_000, 0, nil)
		s.ErrorIs(err, ports.ErrDuplicate)
	})
}

func (s *BillingSuite) TestSettleOnline() {
	s.Run("marks paid with a transaction reference", func() {
		pay := s.invoice(100_000, 0)
		ref, err := s.svc.SettleOnline(s.ctx, pay)
		s.Require().NoError(err)
		s.NotEmpty(ref)

		stored, err := s.pays.GetByID(s.ctx, pay.ID)
		s.Require().NoError(err)
		s.Equal(domain.PaymentPaid, stored.Status)
		s.Require().NotNil(stored.GatewayRef)
		s.Equal(ref, *stored.GatewayRef)
	})

	s.Run("paid invoices reject a second settlement", func() {
		pay := s.invoice(100_000, 0)
		_, err := s.svc.SettleOnline(s.ctx, pay)
		s.Require().NoError(err)

		stored, err := s.pays.GetByID(s.ctx, pay.ID)
		s.Require().NoError(err)
		_, err = s.svc.SettleOnline(s.ctx, stored)
		s.ErrorIs(err, ErrConflict)
	})
}

func (s *BillingSuite) TestConfirm() {
	s.Run("settles a pending payment once", func() {
		pay := s.invoice(100_000, 0)
		s.Require().NoError(s.svc.ChooseCash(s.ctx, pay))
		s.Require().NoError(s.svc.Confirm(s.ctx, pay, domain.MethodCash, nil))

		stored, err := s.pays.GetByID(s.ctx, pay.ID)
		s.Require().NoError(err)
		s.Equal(domain.PaymentPaid, stored.Status)
		s.NotNil(stored.PaidAt)

		s.ErrorIs(s.svc.Confirm(s.ctx, stored, domain.MethodCash, nil), ErrConflict)
	})

	s.Run("proof attachment keeps the payment pending", func() {
		pay := s.invoice(100_000, 0)
		s.Require().NoError(s.svc.AttachProof(s.ctx, pay, "uploads/bukti.png"))

		stored, err := s.pays.GetByID(s.ctx, pay.ID)
		s.Require().NoError(err)
		s.Equal(domain.PaymentPending, stored.Status)
		s.Require().NotNil(stored.Method)
		s.Equal(domain.MethodManualTransfer, *stored.Method)
		s.Require().NotNil(stored.ProofPath)
		s.Equal("uploads/bukti.png", *stored.ProofPath)
	})
}
