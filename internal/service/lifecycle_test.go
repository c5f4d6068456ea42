package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

type LifecycleSuite struct {
	suite.Suite
	ctx context.Context

	customers *memCustomers
	employees *memEmployees
	offerings *memOfferings
	reqs      *memRequests
	docs      *memDocuments
	pays      *memPayments
	audit     *memAudit
	notifier  *memNotifier
	files     *memFiles

	svc LifecycleService

	customer *domain.Customer
	offering *domain.ServiceOffering
	admin    *domain.Employee
	finance  *domain.Employee
	field    *domain.Employee
	manager  *domain.Employee
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.ctx = context.Background()
	s.customers = newMemCustomers()
	s.employees = newMemEmployees()
	s.offerings = newMemOfferings()
	s.reqs = newMemRequests(s.customers, s.offerings, s.employees)
	s.docs = newMemDocuments()
	s.pays = newMemPayments()
	s.audit = &memAudit{}
	s.notifier = &memNotifier{}
	s.files = &memFiles{}

	s.svc = LifecycleService{
		Requests:  s.reqs,
		Documents: s.docs,
		Customers: s.customers,
		Employees: s.employees,
		Offerings: s.offerings,
		Billing:   BillingService{Payments: s.pays, Audit: s.audit},
		Payments:  s.pays,
		Audit:     s.audit,
		Notifier:  s.notifier,
		Renderer:  fakeRenderer{},
		Files:     s.files,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		BaseURL:   "https://app.example.test",
	}

	var err error
	s.customer, err = s.customers.Create(s.ctx, ports.CreateCustomerInput{
		Code: "PLG-1", Name: "Budi Santoso", Email: "budi@example.com",
		Phone: "0811111111", Address: "Jl. Melati 1, Jakarta",
	})
	s.Require().NoError(err)

	s.offering, err = s.offerings.Create(s.ctx, ports.SaveOfferingInput{
		Code: "SRV-BBN", Name: "Balik Nama Kendaraan", ServiceFee: 400_000, Estimate: "14 hari",
	})
	s.Require().NoError(err)

	s.admin = s.newEmployee("Ani", domain.RoleAdmin)
	s.finance = s.newEmployee("Citra", domain.RoleFinance)
	s.field = s.newEmployee("Dedi", domain.RoleField)
	s.manager = s.newEmployee("Eka", domain.RoleManager)
}

func (s *LifecycleSuite) newEmployee(name string, role domain.EmployeeRole) *domain.Employee {
	emp, err := s.employees.Create(s.ctx, ports.CreateEmployeeInput{
		Code: "KRY-" + name, Name: name, Email: strings.ToLower(name) + "@kantor.test", Role: role,
	})
	s.Require().NoError(err)
	return emp
}

func (s *LifecycleSuite) customerActor() Actor { return Actor{Customer: s.customer} }
func (s *LifecycleSuite) adminActor() Actor    { return Actor{Employee: s.admin} }
func (s *LifecycleSuite) financeActor() Actor  { return Actor{Employee: s.finance} }
func (s *LifecycleSuite) fieldActor() Actor    { return Actor{Employee: s.field} }

func (s *LifecycleSuite) upload(typeID int64, name string) DocumentUpload {
	return DocumentUpload{DocumentTypeID: typeID, Filename: name, Content: strings.NewReader("scan")}
}

// submitted creates a fresh request in awaiting_verification with one
// uploaded document of type 1.
func (s *LifecycleSuite) submitted() *domain.Request {
	req, err := s.svc.Submit(s.ctx, s.customerActor(), SubmitInput{
		OfferingID: s.offering.ID,
		Delivery:   domain.DeliveryPickup,
		Note:       "mohon dipercepat",
		Documents:  []DocumentUpload{s.upload(1, "ktp.jpg")},
	})
	s.Require().NoError(err)
	return req
}

// verified moves a submitted request through verification and returns the
// invoice created for it.
func (s *LifecycleSuite) verified(req *domain.Request) *domain.Payment {
	pay, err := s.svc.Verify(s.ctx, s.adminActor(), req.ID, 150_000, 0)
	s.Require().NoError(err)
	return pay
}

// paid settles the invoice online so the request reaches processing.
func (s *LifecycleSuite) paid(req *domain.Request) {
	s.Require().NoError(s.svc.SettleOnline(s.ctx, s.customerActor(), req.ID))
}

func (s *LifecycleSuite) status(id int64) domain.RequestStatus {
	req, err := s.reqs.GetByID(s.ctx, id)
	s.Require().NoError(err)
	return req.Status
}

func (s *LifecycleSuite) TestSubmit() {
	s.Run("creates request with audit entry and documents", func() {
		req := s.submitted()
		s.Equal(domain.StatusAwaitingVerification, req.Status)
		s.NotEmpty(req.Code)

		docs, err := s.docs.ListByRequest(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Len(docs, 1)
		s.Equal(domain.DocumentUploaded, docs[0].Status)

		s.Equal([]string{"created"}, s.audit.requestActions(req.ID))
	})

	s.Run("courier delivery requires an address on the profile", func() {
		s.Require().NoError(s.customers.UpdateProfile(s.ctx, s.customer.ID, s.customer.Name, s.customer.Phone, ""))
		s.customer.Address = ""

		_, err := s.svc.Submit(s.ctx, s.customerActor(), SubmitInput{
			OfferingID: s.offering.ID,
			Delivery:   domain.DeliveryCourier,
		})
		s.True(IsValidation(err))
	})

	s.Run("unknown delivery method is rejected", func() {
		_, err := s.svc.Submit(s.ctx, s.customerActor(), SubmitInput{
			OfferingID: s.offering.ID,
			Delivery:   "drone",
		})
		s.True(IsValidation(err))
	})

	s.Run("employees cannot submit", func() {
		_, err := s.svc.Submit(s.ctx, s.adminActor(), SubmitInput{
			OfferingID: s.offering.ID,
			Delivery:   domain.DeliveryPickup,
		})
		s.ErrorIs(err, ErrForbidden)
	})

	s.Run("unknown offering", func() {
		_, err := s.svc.Submit(s.ctx, s.customerActor(), SubmitInput{
			OfferingID: 999,
			Delivery:   domain.DeliveryPickup,
		})
		s.ErrorIs(err, ErrNotFound)
	})
}

func (s *LifecycleSuite) TestSubmitWalkIn() {
	s.Run("creates the customer when the email is new", func() {
		req, err := s.svc.SubmitWalkIn(s.ctx, s.adminActor(), WalkInInput{
			Name: "Siti Aminah", Email: "siti@example.com", Phone: "0822",
			OfferingID: s.offering.ID,
		})
		s.Require().NoError(err)
		s.Equal(domain.DeliveryPickup, req.Delivery)

		cust, err := s.customers.GetByEmail(s.ctx, "siti@example.com")
		s.Require().NoError(err)
		s.Equal(cust.ID, req.CustomerID)
	})

	s.Run("reuses an existing customer by email", func() {
		req, err := s.svc.SubmitWalkIn(s.ctx, s.adminActor(), WalkInInput{
			Name: "Budi Santoso", Email: s.customer.Email, OfferingID: s.offering.ID,
		})
		s.Require().NoError(err)
		s.Equal(s.customer.ID, req.CustomerID)
	})

	s.Run("requires name and email", func() {
		_, err := s.svc.SubmitWalkIn(s.ctx, s.adminActor(), WalkInInput{OfferingID: s.offering.ID})
		s.True(IsValidation(err))
	})

	s.Run("finance staff cannot create walk-ins", func() {
		_, err := s.svc.SubmitWalkIn(s.ctx, s.financeActor(), WalkInInput{
			Name: "X", Email: "x@example.com", OfferingID: s.offering.ID,
		})
		s.ErrorIs(err, ErrForbidden)
	})
}

func (s *LifecycleSuite) TestVerify() {
	s.Run("moves to awaiting payment and issues the invoice", func() {
		req := s.submitted()
		pay := s.verified(req)

		s.Equal(domain.StatusAwaitingPayment, s.status(req.ID))
		s.Equal("INV-"+req.Code, pay.InvoiceNumber)
		// total = service fee 400k + official 150k + shipping 0
		s.Equal(int64(550_000), pay.Total.Amount)

		s.Equal([]string{"created", "verified"}, s.audit.requestActions(req.ID))
		s.Equal([]string{"invoice_created"}, s.audit.paymentActions(pay.ID))

		s.Require().NotEmpty(s.notifier.sent)
		last := s.notifier.sent[len(s.notifier.sent)-1]
		s.Equal("Invoice_"+req.Code+".pdf", last.AttachmentName)
	})

	s.Run("negative fee is rejected", func() {
		req := s.submitted()
		_, err := s.svc.Verify(s.ctx, s.adminActor(), req.ID, -1, 0)
		s.True(IsValidation(err))
	})

	s.Run("only from awaiting verification", func() {
		req := s.submitted()
		s.verified(req)
		_, err := s.svc.Verify(s.ctx, s.adminActor(), req.ID, 150_000, 0)
		s.True(IsValidation(err))
	})

	s.Run("field staff cannot verify", func() {
		req := s.submitted()
		_, err := s.svc.Verify(s.ctx, s.fieldActor(), req.ID, 150_000, 0)
		s.ErrorIs(err, ErrForbidden)
	})
}

func (s *LifecycleSuite) TestSettleOnline() {
	s.Run("settles and advances to processing", func() {
		req := s.submitted()
		pay := s.verified(req)
		s.paid(req)

		s.Equal(domain.StatusProcessing, s.status(req.ID))

		stored, err := s.pays.GetByID(s.ctx, pay.ID)
		s.Require().NoError(err)
		s.Equal(domain.PaymentPaid, stored.Status)
		s.Require().NotNil(stored.Method)
		s.Equal(domain.MethodGateway, *stored.Method)
		s.NotNil(stored.GatewayRef)
		s.NotNil(stored.PaidAt)

		s.Equal([]string{"invoice_created", "paid_online"}, s.audit.paymentActions(pay.ID))
	})

	s.Run("second settle is rejected", func() {
		req := s.submitted()
		s.verified(req)
		s.paid(req)
		err := s.svc.SettleOnline(s.ctx, s.customerActor(), req.ID)
		s.True(IsValidation(err))
	})

	s.Run("before the invoice exists", func() {
		req := s.submitted()
		err := s.svc.SettleOnline(s.ctx, s.customerActor(), req.ID)
		s.True(IsValidation(err))
	})

	s.Run("someone else's request is forbidden", func() {
		req := s.submitted()
		s.verified(req)
		other, err := s.customers.Create(s.ctx, ports.CreateCustomerInput{
			Code: "PLG-2", Name: "Lain", Email: "lain@example.com",
		})
		s.Require().NoError(err)
		s.ErrorIs(s.svc.SettleOnline(s.ctx, Actor{Customer: other}, req.ID), ErrForbidden)
	})
}

func (s *LifecycleSuite) TestCashAndProof() {
	s.Run("cash choice stays pending", func() {
		req := s.submitted()
		pay := s.verified(req)
		s.Require().NoError(s.svc.ChooseCash(s.ctx, s.customerActor(), req.ID))

		stored, err := s.pays.GetByID(s.ctx, pay.ID)
		s.Require().NoError(err)
		s.Equal(domain.PaymentPending, stored.Status)
		s.Require().NotNil(stored.Method)
		s.Equal(domain.MethodCash, *stored.Method)
		s.Equal(domain.StatusAwaitingPayment, s.status(req.ID))
	})

	s.Run("proof upload records the manual transfer", func() {
		req := s.submitted()
		pay := s.verified(req)
		err := s.svc.SubmitPaymentProof(s.ctx, s.customerActor(), req.ID, "bukti.png", strings.NewReader("img"))
		s.Require().NoError(err)

		stored, err := s.pays.GetByID(s.ctx, pay.ID)
		s.Require().NoError(err)
		s.Equal(domain.PaymentPending, stored.Status)
		s.Require().NotNil(stored.Method)
		s.Equal(domain.MethodManualTransfer, *stored.Method)
		s.Require().NotNil(stored.ProofPath)
		s.True(strings.HasSuffix(*stored.ProofPath, ".png"))
	})

	s.Run("proof without a file is rejected", func() {
		req := s.submitted()
		s.verified(req)
		err := s.svc.SubmitPaymentProof(s.ctx, s.customerActor(), req.ID, "", nil)
		s.True(IsValidation(err))
	})
}

func (s *LifecycleSuite) TestConfirmPayment() {
	s.Run("finance settles a pending cash payment", func() {
		req := s.submitted()
		pay := s.verified(req)
		s.Require().NoError(s.svc.ChooseCash(s.ctx, s.customerActor(), req.ID))

		s.Require().NoError(s.svc.ConfirmPayment(s.ctx, s.financeActor(), pay.ID, domain.MethodCash))
		s.Equal(domain.StatusProcessing, s.status(req.ID))
		s.Equal([]string{"invoice_created", "payment_verified", "payment_confirmed"}, s.audit.paymentActions(pay.ID))
	})

	s.Run("confirming twice conflicts", func() {
		req := s.submitted()
		pay := s.verified(req)
		s.Require().NoError(s.svc.ConfirmPayment(s.ctx, s.financeActor(), pay.ID, domain.MethodCash))
		s.ErrorIs(s.svc.ConfirmPayment(s.ctx, s.financeActor(), pay.ID, domain.MethodCash), ErrConflict)
	})

	s.Run("gateway is not a manual confirmation method", func() {
		pay := s.verified(s.submitted())
		err := s.svc.ConfirmPayment(s.ctx, s.financeActor(), pay.ID, domain.MethodGateway)
		s.True(IsValidation(err))
	})

	s.Run("admin cannot confirm payments", func() {
		pay := s.verified(s.submitted())
		s.ErrorIs(s.svc.ConfirmPayment(s.ctx, s.adminActor(), pay.ID, domain.MethodCash), ErrForbidden)
	})
}

func (s *LifecycleSuite) TestAssignFieldStaff() {
	s.Run("assigns a paid request to a field worker", func() {
		req := s.submitted()
		s.verified(req)
		s.paid(req)

		s.Require().NoError(s.svc.AssignFieldStaff(s.ctx, s.adminActor(), req.ID, s.field.ID))
		s.Equal(domain.StatusFieldProcessing, s.status(req.ID))

		stored, err := s.reqs.GetByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Require().NotNil(stored.AssignedID)
		s.Equal(s.field.ID, *stored.AssignedID)
		s.Equal([]string{"created", "verified", "assigned"}, s.audit.requestActions(req.ID))
	})

	s.Run("non-field employees cannot be assigned", func() {
		req := s.submitted()
		s.verified(req)
		s.paid(req)
		err := s.svc.AssignFieldStaff(s.ctx, s.adminActor(), req.ID, s.finance.ID)
		s.True(IsValidation(err))
	})

	s.Run("only from processing", func() {
		req := s.submitted()
		err := s.svc.AssignFieldStaff(s.ctx, s.adminActor(), req.ID, s.field.ID)
		s.True(IsValidation(err))
	})
}

// assigned builds a request already in field_processing assigned to s.field.
func (s *LifecycleSuite) assigned() *domain.Request {
	req := s.submitted()
	s.verified(req)
	s.paid(req)
	s.Require().NoError(s.svc.AssignFieldStaff(s.ctx, s.adminActor(), req.ID, s.field.ID))
	return req
}

func (s *LifecycleSuite) TestUpdateFieldStatus() {
	s.Run("assigned worker records progress", func() {
		req := s.assigned()
		err := s.svc.UpdateFieldStatus(s.ctx, s.fieldActor(), req.ID, domain.StatusFieldReturned, "hasil.jpg", strings.NewReader("img"))
		s.Require().NoError(err)
		s.Equal(domain.StatusFieldReturned, s.status(req.ID))
	})

	s.Run("other field workers are rejected", func() {
		req := s.assigned()
		other := s.newEmployee("Fajar", domain.RoleField)
		err := s.svc.UpdateFieldStatus(s.ctx, Actor{Employee: other}, req.ID, domain.StatusFieldReturned, "", nil)
		s.ErrorIs(err, ErrForbidden)
	})

	s.Run("locked statuses cannot be touched", func() {
		req := s.assigned()
		s.Require().NoError(s.svc.UpdateFieldStatus(s.ctx, s.fieldActor(), req.ID, domain.StatusReadyForPickup, "", nil))
		err := s.svc.UpdateFieldStatus(s.ctx, s.fieldActor(), req.ID, domain.StatusFieldReturned, "", nil)
		s.True(IsValidation(err))
	})

	s.Run("statuses outside the field set are rejected", func() {
		req := s.assigned()
		err := s.svc.UpdateFieldStatus(s.ctx, s.fieldActor(), req.ID, domain.StatusCompleted, "", nil)
		s.True(IsValidation(err))
	})
}

func (s *LifecycleSuite) TestFinalize() {
	s.Run("pickup completes the request", func() {
		req := s.assigned()
		s.Require().NoError(s.svc.UpdateFieldStatus(s.ctx, s.fieldActor(), req.ID, domain.StatusFieldReturned, "", nil))
		s.Require().NoError(s.svc.Finalize(s.ctx, s.adminActor(), req.ID, ""))
		s.Equal(domain.StatusCompleted, s.status(req.ID))
	})

	s.Run("courier delivery requires a tracking number", func() {
		s.Require().NoError(s.customers.UpdateProfile(s.ctx, s.customer.ID, s.customer.Name, s.customer.Phone, "Jl. Melati 1"))
		req, err := s.svc.Submit(s.ctx, s.customerActor(), SubmitInput{
			OfferingID: s.offering.ID, Delivery: domain.DeliveryCourier,
		})
		s.Require().NoError(err)
		s.verified(req)
		s.paid(req)
		s.Require().NoError(s.svc.AssignFieldStaff(s.ctx, s.adminActor(), req.ID, s.field.ID))
		s.Require().NoError(s.svc.UpdateFieldStatus(s.ctx, s.fieldActor(), req.ID, domain.StatusFieldReturned, "", nil))

		err = s.svc.Finalize(s.ctx, s.adminActor(), req.ID, "  ")
		s.True(IsValidation(err))

		s.Require().NoError(s.svc.Finalize(s.ctx, s.adminActor(), req.ID, "JNE123456"))
		s.Equal(domain.StatusShipped, s.status(req.ID))

		stored, err := s.reqs.GetByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal("JNE123456", stored.TrackingNumber)

		s.Require().NoError(s.svc.ConfirmReceipt(s.ctx, s.customerActor(), req.ID))
		s.Equal(domain.StatusDelivered, s.status(req.ID))
	})

	s.Run("not yet finalizable", func() {
		req := s.assigned()
		err := s.svc.Finalize(s.ctx, s.adminActor(), req.ID, "")
		s.True(IsValidation(err))
	})
}

func (s *LifecycleSuite) TestReject() {
	s.Run("requires a reason", func() {
		req := s.submitted()
		err := s.svc.Reject(s.ctx, s.adminActor(), req.ID, "   ")
		s.True(IsValidation(err))
	})

	s.Run("moves to rejected with the note stored", func() {
		req := s.submitted()
		s.Require().NoError(s.svc.Reject(s.ctx, s.adminActor(), req.ID, "Dokumen tidak terbaca"))
		stored, err := s.reqs.GetByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusRejected, stored.Status)
		s.Equal("Dokumen tidak terbaca", stored.RejectionNote)
	})

	s.Run("only from awaiting verification", func() {
		req := s.submitted()
		s.verified(req)
		err := s.svc.Reject(s.ctx, s.adminActor(), req.ID, "terlambat")
		s.True(IsValidation(err))
	})
}

func (s *LifecycleSuite) TestRevisionAndResubmit() {
	s.Run("flagged documents drive the resubmission scope", func() {
		req := s.submitted()
		err := s.svc.RequestDocumentRevision(s.ctx, s.adminActor(), req.ID, []DocumentRejection{
			{DocumentTypeID: 1, Note: "foto buram"},
		})
		s.Require().NoError(err)
		s.Equal(domain.StatusRevision, s.status(req.ID))

		docs, err := s.docs.ListByRequest(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Require().Len(docs, 1)
		s.Equal(domain.DocumentNeedsRevision, docs[0].Status)
		s.Equal("foto buram", docs[0].RevisionNote)

		// a document that was not flagged cannot be replaced
		err = s.svc.Resubmit(s.ctx, s.customerActor(), req.ID, []DocumentUpload{s.upload(2, "stnk.jpg")}, nil)
		s.True(IsValidation(err))

		// the flagged one can, and the request returns to verification
		err = s.svc.Resubmit(s.ctx, s.customerActor(), req.ID, []DocumentUpload{s.upload(1, "ktp_v2.jpg")}, nil)
		s.Require().NoError(err)
		s.Equal(domain.StatusAwaitingVerification, s.status(req.ID))

		docs, err = s.docs.ListByRequest(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Require().Len(docs, 1)
		s.Equal(domain.DocumentUploaded, docs[0].Status)
		s.Empty(docs[0].RevisionNote)
	})

	s.Run("full rejection allows any document", func() {
		req := s.submitted()
		s.Require().NoError(s.svc.Reject(s.ctx, s.adminActor(), req.ID, "lengkapi dulu"))

		note := "sudah dilengkapi"
		err := s.svc.Resubmit(s.ctx, s.customerActor(), req.ID, []DocumentUpload{s.upload(2, "kk.pdf")}, &note)
		s.Require().NoError(err)

		stored, err := s.reqs.GetByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusAwaitingVerification, stored.Status)
		s.Empty(stored.RejectionNote)
		s.Equal(note, stored.CustomerNote)
	})

	s.Run("revision without rejections is a no-op error", func() {
		req := s.submitted()
		err := s.svc.RequestDocumentRevision(s.ctx, s.adminActor(), req.ID, nil)
		s.True(IsValidation(err))
	})

	s.Run("resubmit without uploads is rejected", func() {
		req := s.submitted()
		s.Require().NoError(s.svc.Reject(s.ctx, s.adminActor(), req.ID, "kurang"))
		err := s.svc.Resubmit(s.ctx, s.customerActor(), req.ID, nil, nil)
		s.True(IsValidation(err))
	})
}
