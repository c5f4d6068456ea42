package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/notify"
	"github.com/farisali522/birojasaapp/internal/ports"
)

// LifecycleService is the request state machine. Every action validates the
// actor's role and the request's current state, applies the mutation with a
// compare-and-swap on status, appends exactly one audit entry, and fires the
// matching notification off the critical path.
type LifecycleService struct {
	Requests     ports.RequestStore
	Documents    ports.DocumentStore
	Customers    ports.CustomerStore
	Employees    ports.EmployeeStore
	Offerings    ports.OfferingStore
	Requirements RequirementService
	Billing      BillingService
	Payments     ports.PaymentStore
	Audit        ports.AuditStore
	Notifier     ports.Notifier
	Renderer     ports.DocumentRenderer
	Files        ports.FileStore
	Logger       *slog.Logger
	BaseURL      string
}

type DocumentUpload struct {
	DocumentTypeID int64
	Filename       string
	Content        io.Reader
}

type SubmitInput struct {
	OfferingID int64
	Delivery   domain.DeliveryMethod
	Note       string
	Documents  []DocumentUpload
}

// Submit creates a new request for the acting customer. Partial document
// upload is permitted; mandatory completeness is reported to staff later,
// not enforced here.
func (s LifecycleService) Submit(ctx context.Context, actor Actor, in SubmitInput) (*domain.Request, error) {
	if !actor.IsCustomer() {
		return nil, ErrForbidden
	}
	cust := actor.Customer

	if in.Delivery != domain.DeliveryPickup && in.Delivery != domain.DeliveryCourier {
		return nil, validationf("metode pengiriman tidak dikenal")
	}
	if in.Delivery == domain.DeliveryCourier && cust.Address == "" {
		return nil, validationf("pengiriman kurir dipilih tetapi alamat masih kosong, lengkapi profil terlebih dahulu")
	}
	offering, err := s.Offerings.GetByID(ctx, in.OfferingID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	req, err := s.Requests.Create(ctx, ports.CreateRequestInput{
		Code:         newRequestCode(),
		CustomerID:   cust.ID,
		OfferingID:   offering.ID,
		Delivery:     in.Delivery,
		CustomerNote: in.Note,
	})
	if err != nil {
		return nil, err
	}

	if err := s.storeDocuments(ctx, req.ID, in.Documents, domain.DocumentUploaded); err != nil {
		return nil, err
	}

	if err := s.Audit.AppendRequestEntry(ctx, domain.RequestAuditEntry{
		RequestID: req.ID,
		Action:    domain.AuditCreated,
		Note:      fmt.Sprintf("Permohonan dibuat oleh %s via %s", cust.Name, in.Delivery),
	}); err != nil {
		return nil, err
	}
	return req, nil
}

type WalkInInput struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	OfferingID int64
}

// SubmitWalkIn is the staff-entry path for customers at the counter. The
// customer record is found by email or created on the spot; delivery is
// always office pickup.
func (s LifecycleService) SubmitWalkIn(ctx context.Context, actor Actor, in WalkInInput) (*domain.Request, error) {
	if !actor.hasRole(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	if in.Email == "" || in.Name == "" {
		return nil, validationf("nama dan email pelanggan wajib diisi")
	}

	cust, err := s.Customers.GetByEmail(ctx, in.Email)
	if errors.Is(err, ports.ErrNotFound) {
		cust, err = s.Customers.Create(ctx, ports.CreateCustomerInput{
			Code:    "PLG-" + strings.ToUpper(uuid.NewString()[:8]),
			Name:    in.Name,
			Email:   in.Email,
			Phone:   in.Phone,
			Address: in.Address,
		})
	}
	if err != nil {
		return nil, err
	}

	offering, err := s.Offerings.GetByID(ctx, in.OfferingID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	req, err := s.Requests.Create(ctx, ports.CreateRequestInput{
		Code:         newRequestCode(),
		CustomerID:   cust.ID,
		OfferingID:   offering.ID,
		Delivery:     domain.DeliveryPickup,
		CustomerNote: "Walk-in via " + actor.Employee.Name,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Audit.AppendRequestEntry(ctx, domain.RequestAuditEntry{
		RequestID:  req.ID,
		EmployeeID: actor.employeeID(),
		Action:     domain.AuditCreated,
		Note:       "Permohonan walk-in dibuat untuk " + cust.Name,
	}); err != nil {
		return nil, err
	}
	return req, nil
}

// ArchiveDocuments stores the physical documents received at the counter
// for a walk-in request, marked as archived rather than customer-uploaded.
func (s LifecycleService) ArchiveDocuments(ctx context.Context, actor Actor, requestID int64, uploads []DocumentUpload) error {
	if !actor.hasRole(domain.RoleAdmin) {
		return ErrForbidden
	}
	if _, err := s.Requests.GetByID(ctx, requestID); err != nil {
		return mapStoreErr(err)
	}
	return s.storeDocuments(ctx, requestID, uploads, domain.DocumentArchived)
}

// Verify is the full-verification path: staff-admin sets the official fee,
// the invoice is created, and the request moves to awaiting payment.
func (s LifecycleService) Verify(ctx context.Context, actor Actor, requestID int64, officialFee, shippingFee int64) (*domain.Payment, error) {
	if !actor.hasRole(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	if officialFee < 0 || shippingFee < 0 {
		return nil, validationf("biaya tidak boleh negatif")
	}

	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if req.Status != domain.StatusAwaitingVerification {
		return nil, validationf("permohonan tidak dalam status %s", domain.StatusLabel[domain.StatusAwaitingVerification])
	}

	if err := s.Requests.SetVerified(ctx, requestID, officialFee); err != nil {
		return nil, mapStoreErr(err)
	}
	req.OfficialFee = domain.Money{Amount: officialFee, Currency: req.OfficialFee.Currency}
	req.Status = domain.StatusAwaitingPayment

	pay, err := s.Billing.CreateInvoice(ctx, req, officialFee, shippingFee, actor.employeeID())
	if err != nil {
		return nil, err
	}

	if err := s.Audit.AppendRequestEntry(ctx, domain.RequestAuditEntry{
		RequestID:  req.ID,
		EmployeeID: actor.employeeID(),
		Action:     domain.AuditVerified,
		Note:       "Diverifikasi. Biaya resmi: " + notify.Rupiah(officialFee),
	}); err != nil {
		return nil, err
	}

	s.notifyWithArtifact(notify.InvoiceIssued(req, pay, s.BaseURL), s.renderInvoice(req, pay), "Invoice_"+req.Code+".pdf")
	return pay, nil
}

type DocumentRejection struct {
	DocumentTypeID int64
	Note           string
}

// RequestDocumentRevision is the partial-rejection path of verification:
// individual documents are flagged for re-upload and the request moves to
// revision. Calling it with zero rejections is a no-op error.
func (s LifecycleService) RequestDocumentRevision(ctx context.Context, actor Actor, requestID int64, rejections []DocumentRejection) error {
	if !actor.hasRole(domain.RoleAdmin) {
		return ErrForbidden
	}
	if len(rejections) == 0 {
		return validationf("tidak ada dokumen yang ditolak")
	}

	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return mapStoreErr(err)
	}
	if req.Status != domain.StatusAwaitingVerification {
		return validationf("permohonan tidak dalam status %s", domain.StatusLabel[domain.StatusAwaitingVerification])
	}

	docs, err := s.Documents.ListByRequest(ctx, requestID)
	if err != nil {
		return err
	}
	byType := make(map[int64]domain.UploadedDocument, len(docs))
	for _, d := range docs {
		byType[d.DocumentTypeID] = d
	}

	var names []string
	for _, rej := range rejections {
		doc, ok := byType[rej.DocumentTypeID]
		if !ok {
			return validationf("dokumen tidak ditemukan pada permohonan ini")
		}
		if err := s.Documents.MarkNeedsRevision(ctx, requestID, rej.DocumentTypeID, rej.Note); err != nil {
			return mapStoreErr(err)
		}
		names = append(names, doc.DocumentName)
	}

	if err := s.Requests.SetStatus(ctx, requestID, domain.StatusRevision, domain.StatusAwaitingVerification); err != nil {
		return mapStoreErr(err)
	}
	req.Status = domain.StatusRevision

	if err := s.Audit.AppendRequestEntry(ctx, domain.RequestAuditEntry{
		RequestID:  req.ID,
		EmployeeID: actor.employeeID(),
		Action:     domain.AuditRejected,
		Note:       "Perlu revisi dokumen: " + strings.Join(names, ", "),
	}); err != nil {
		return err
	}

	s.send(notify.RevisionRequested(req, names, s.BaseURL))
	return nil
}

// SettleOnline is the customer's gateway payment: immediate settlement,
// request advances to processing, receipt goes out.
func (s LifecycleService) SettleOnline(ctx context.Context, actor Actor, requestID int64) error {
	req, pay, err := s.ownedBilling(ctx, actor, requestID)
	if err != nil {
		return err
	}
	if req.Status != domain.StatusAwaitingPayment {
		return validationf("permohonan tidak dalam status %s", domain.StatusLabel[domain.StatusAwaitingPayment])
	}

	ref, err := s.Billing.SettleOnline(ctx, pay)
	if err != nil {
		return err
	}
	if err := s.Requests.SetStatus(ctx, requestID, domain.StatusProcessing, domain.StatusAwaitingPayment); err != nil {
		return mapStoreErr(err)
	}
	req.Status = domain.StatusProcessing
	pay.Status = domain.PaymentPaid
	method := domain.MethodGateway
	pay.Method = &method
	pay.GatewayRef = &ref

	s.notifyWithArtifact(notify.PaidReceipt(req, pay), s.renderReceipt(req, pay), "Struk_Lunas_"+req.Code+".pdf")
	return nil
}

// ChooseCash records the customer's intent to pay at the counter. The
// payment stays pending and the request does not advance.
func (s LifecycleService) ChooseCash(ctx context.Context, actor Actor, requestID int64) error {
	req, pay, err := s.ownedBilling(ctx, actor, requestID)
	if err != nil {
		return err
	}
	if req.Status != domain.StatusAwaitingPayment {
		return validationf("permohonan tidak dalam status %s", domain.StatusLabel[domain.StatusAwaitingPayment])
	}
	if err := s.Billing.ChooseCash(ctx, pay); err != nil {
		return err
	}
	s.send(notify.CashPending(req))
	return nil
}

// SubmitPaymentProof records a manual transfer with its uploaded evidence.
// Rejected when no file is attached.
func (s LifecycleService) SubmitPaymentProof(ctx context.Context, actor Actor, requestID int64, filename string, content io.Reader) error {
	if content == nil || filename == "" {
		return validationf("bukti pembayaran wajib dilampirkan")
	}
	req, pay, err := s.ownedBilling(ctx, actor, requestID)
	if err != nil {
		return err
	}
	if req.Status != domain.StatusAwaitingPayment {
		return validationf("permohonan tidak dalam status %s", domain.StatusLabel[domain.StatusAwaitingPayment])
	}

	path, err := s.Files.Save(filename, content)
	if err != nil {
		return err
	}
	if err := s.Billing.AttachProof(ctx, pay, path); err != nil {
		return err
	}
	s.send(notify.ProofReceived(req))
	return nil
}

// ConfirmPayment is the finance-staff settlement of a pending payment.
// Idempotency-guarded: an already-paid invoice is rejected with a conflict.
func (s LifecycleService) ConfirmPayment(ctx context.Context, actor Actor, paymentID int64, method domain.PaymentMethod) error {
	if !actor.hasRole(domain.RoleFinance) {
		return ErrForbidden
	}
	if method != domain.MethodCash && method != domain.MethodManualTransfer {
		return validationf("metode pembayaran tidak dikenal")
	}

	pay, err := s.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return mapStoreErr(err)
	}
	req, err := s.Requests.GetByID(ctx, pay.RequestID)
	if err != nil {
		return mapStoreErr(err)
	}

	if err := s.Billing.Confirm(ctx, pay, method, actor.employeeID()); err != nil {
		return err
	}
	if err := s.Requests.SetStatus(ctx, req.ID, domain.StatusProcessing, domain.StatusAwaitingPayment); err != nil {
		return mapStoreErr(err)
	}
	req.Status = domain.StatusProcessing
	pay.Status = domain.PaymentPaid
	pay.Method = &method

	s.notifyWithArtifact(notify.PaidReceipt(req, pay), s.renderReceipt(req, pay), "Struk_Lunas_"+req.Code+".pdf")
	return nil
}

// AssignFieldStaff hands a paid request to a field worker.
func (s LifecycleService) AssignFieldStaff(ctx context.Context, actor Actor, requestID, employeeID int64) error {
	if !actor.hasRole(domain.RoleAdmin) {
		return ErrForbidden
	}

	worker, err := s.Employees.GetByID(ctx, employeeID)
	if err != nil {
		return mapStoreErr(err)
	}
	if worker.Role != domain.RoleField {
		return validationf("%s bukan staff lapangan", worker.Name)
	}

	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return mapStoreErr(err)
	}
	if req.Status != domain.StatusProcessing {
		return validationf("permohonan tidak dalam status %s", domain.StatusLabel[domain.StatusProcessing])
	}

	if err := s.Requests.Assign(ctx, requestID, employeeID); err != nil {
		return mapStoreErr(err)
	}

	return s.Audit.AppendRequestEntry(ctx, domain.RequestAuditEntry{
		RequestID:  requestID,
		EmployeeID: actor.employeeID(),
		Action:     domain.AuditAssigned,
		Note:       fmt.Sprintf("Ditugaskan ke %s (%s)", worker.Name, worker.Role),
	})
}

// UpdateFieldStatus records field progress. Only the assigned field worker
// may call it, and only while the request is not in the locked set.
func (s LifecycleService) UpdateFieldStatus(ctx context.Context, actor Actor, requestID int64, newStatus domain.RequestStatus, photoName string, photo io.Reader) error {
	if !actor.hasRole(domain.RoleField) {
		return ErrForbidden
	}

	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return mapStoreErr(err)
	}
	if req.AssignedID == nil || *req.AssignedID != actor.Employee.ID {
		return ErrForbidden
	}
	if domain.FieldLocked(req.Status) {
		return validationf("status %s sudah terkunci", domain.StatusLabel[req.Status])
	}

	allowed := false
	for _, st := range domain.FieldUpdatable {
		if st == newStatus {
			allowed = true
			break
		}
	}
	if !allowed || !domain.CanTransition(req.Status, newStatus) {
		return validationf("perubahan status tidak diizinkan")
	}

	if err := s.Requests.SetStatus(ctx, requestID, newStatus, req.Status); err != nil {
		return mapStoreErr(err)
	}

	note := "Status diupdate menjadi: " + domain.StatusLabel[newStatus]
	if photo != nil && photoName != "" {
		path, err := s.Files.Save(photoName, photo)
		if err != nil {
			s.Logger.Error("field photo store failed", "request", req.Code, "err", err)
		} else {
			note += ". Foto hasil: " + path
		}
	}

	if err := s.Audit.AppendRequestEntry(ctx, domain.RequestAuditEntry{
		RequestID:  requestID,
		EmployeeID: actor.employeeID(),
		Action:     domain.FieldAuditAction(newStatus),
		Note:       note,
	}); err != nil {
		return err
	}

	req.Status = newStatus
	s.send(notify.ProgressUpdate(req, s.BaseURL))
	return nil
}

// Finalize closes out field work: courier delivery requires a tracking
// number and ships the documents; pickup completes the request.
func (s LifecycleService) Finalize(ctx context.Context, actor Actor, requestID int64, trackingNumber string) error {
	if !actor.hasRole(domain.RoleAdmin) {
		return ErrForbidden
	}

	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return mapStoreErr(err)
	}

	finalizable := []domain.RequestStatus{
		domain.StatusFieldReturned,
		domain.StatusAwaitingFinalization,
		domain.StatusReadyForPickup,
	}
	eligible := false
	for _, st := range finalizable {
		if req.Status == st {
			eligible = true
			break
		}
	}
	if !eligible {
		return validationf("permohonan belum siap difinalisasi")
	}

	var note string
	if req.Delivery == domain.DeliveryCourier {
		if strings.TrimSpace(trackingNumber) == "" {
			return validationf("nomor resi wajib diisi untuk pengiriman kurir")
		}
		if err := s.Requests.SetShipped(ctx, requestID, trackingNumber, finalizable...); err != nil {
			return mapStoreErr(err)
		}
		req.Status = domain.StatusShipped
		req.TrackingNumber = trackingNumber
		note = "Finalisasi: dikirim via kurir. Resi: " + trackingNumber
	} else {
		if err := s.Requests.SetStatus(ctx, requestID, domain.StatusCompleted, finalizable...); err != nil {
			return mapStoreErr(err)
		}
		req.Status = domain.StatusCompleted
		note = "Finalisasi: selesai, diambil di kantor"
	}

	if err := s.Audit.AppendRequestEntry(ctx, domain.RequestAuditEntry{
		RequestID:  requestID,
		EmployeeID: actor.employeeID(),
		Action:     domain.AuditFinalized,
		Note:       note,
	}); err != nil {
		return err
	}

	if req.Status == domain.StatusShipped {
		s.send(notify.Shipped(req, trackingNumber))
	} else {
		s.send(notify.ReadyForPickup(req))
	}
	return nil
}

// Reject is the full rejection of an unverified request. Reason required.
func (s LifecycleService) Reject(ctx context.Context, actor Actor, requestID int64, reason string) error {
	if !actor.hasRole(domain.RoleAdmin) {
		return ErrForbidden
	}
	if strings.TrimSpace(reason) == "" {
		return validationf("alasan penolakan wajib diisi")
	}

	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return mapStoreErr(err)
	}
	if req.Status != domain.StatusAwaitingVerification {
		return validationf("permohonan tidak dalam status %s", domain.StatusLabel[domain.StatusAwaitingVerification])
	}

	if err := s.Requests.MarkRejected(ctx, requestID, reason); err != nil {
		return mapStoreErr(err)
	}
	req.Status = domain.StatusRejected

	if err := s.Audit.AppendRequestEntry(ctx, domain.RequestAuditEntry{
		RequestID:  requestID,
		EmployeeID: actor.employeeID(),
		Action:     domain.AuditRejected,
		Note:       "Ditolak. Alasan: " + reason,
	}); err != nil {
		return err
	}

	s.send(notify.RequestRejected(req, reason, s.BaseURL))
	return nil
}

// Resubmit is the customer's revision path from rejected or revision. For a
// revision request only the flagged documents may be replaced; after a full
// rejection any document may be.
func (s LifecycleService) Resubmit(ctx context.Context, actor Actor, requestID int64, uploads []DocumentUpload, note *string) error {
	req, err := s.ownedRequest(ctx, actor, requestID)
	if err != nil {
		return err
	}
	if req.Status != domain.StatusRejected && req.Status != domain.StatusRevision {
		return validationf("permohonan tidak dalam status %s atau %s",
			domain.StatusLabel[domain.StatusRejected], domain.StatusLabel[domain.StatusRevision])
	}
	if len(uploads) == 0 {
		return validationf("tidak ada dokumen yang diupload ulang")
	}

	if req.Status == domain.StatusRevision {
		docs, err := s.Documents.ListByRequest(ctx, requestID)
		if err != nil {
			return err
		}
		revisable := make(map[int64]bool)
		for _, d := range docs {
			if d.Status == domain.DocumentNeedsRevision {
				revisable[d.DocumentTypeID] = true
			}
		}
		for _, up := range uploads {
			if !revisable[up.DocumentTypeID] {
				return validationf("dokumen ini tidak diminta untuk direvisi")
			}
		}
	}

	if err := s.storeDocuments(ctx, requestID, uploads, domain.DocumentUploaded); err != nil {
		return err
	}
	if err := s.Requests.ResetForResubmission(ctx, requestID, note); err != nil {
		return mapStoreErr(err)
	}

	return s.Audit.AppendRequestEntry(ctx, domain.RequestAuditEntry{
		RequestID: requestID,
		Action:    domain.AuditResubmitted,
		Note:      fmt.Sprintf("Revisi dikirim oleh %s (%d dokumen)", actor.Customer.Name, len(uploads)),
	})
}

// ConfirmReceipt is the customer's acknowledgement of a courier delivery.
func (s LifecycleService) ConfirmReceipt(ctx context.Context, actor Actor, requestID int64) error {
	req, err := s.ownedRequest(ctx, actor, requestID)
	if err != nil {
		return err
	}
	if req.Status != domain.StatusShipped {
		return validationf("permohonan tidak dalam status %s", domain.StatusLabel[domain.StatusShipped])
	}

	if err := s.Requests.SetStatus(ctx, requestID, domain.StatusDelivered, domain.StatusShipped); err != nil {
		return mapStoreErr(err)
	}

	return s.Audit.AppendRequestEntry(ctx, domain.RequestAuditEntry{
		RequestID: requestID,
		Action:    domain.AuditCompleted,
		Note:      "Penerimaan dikonfirmasi oleh pelanggan",
	})
}

func (s LifecycleService) storeDocuments(ctx context.Context, requestID int64, uploads []DocumentUpload, status domain.DocumentStatus) error {
	for _, up := range uploads {
		if up.Content == nil {
			continue
		}
		path, err := s.Files.Save(up.Filename, up.Content)
		if err != nil {
			return err
		}
		_, err = s.Documents.Upsert(ctx, ports.UpsertDocumentInput{
			Code:           fmt.Sprintf("DOK-%d-%d", requestID, up.DocumentTypeID),
			RequestID:      requestID,
			DocumentTypeID: up.DocumentTypeID,
			FilePath:       path,
			Status:         status,
		})
		if err != nil {
			return mapStoreErr(err)
		}
	}
	return nil
}

func (s LifecycleService) ownedRequest(ctx context.Context, actor Actor, requestID int64) (*domain.Request, error) {
	if !actor.IsCustomer() {
		return nil, ErrForbidden
	}
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if req.CustomerID != actor.Customer.ID {
		return nil, ErrForbidden
	}
	return req, nil
}

func (s LifecycleService) ownedBilling(ctx context.Context, actor Actor, requestID int64) (*domain.Request, *domain.Payment, error) {
	req, err := s.ownedRequest(ctx, actor, requestID)
	if err != nil {
		return nil, nil, err
	}
	pay, err := s.Payments.GetByRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, nil, validationf("tagihan belum dibuat oleh admin")
		}
		return nil, nil, err
	}
	return req, pay, nil
}

func (s LifecycleService) send(msg ports.Message) {
	if s.Notifier != nil {
		s.Notifier.Notify(msg)
	}
}

func (s LifecycleService) notifyWithArtifact(msg ports.Message, artifact []byte, name string) {
	if artifact != nil {
		msg.Attachment = artifact
		msg.AttachmentName = name
	}
	s.send(msg)
}

func (s LifecycleService) renderInvoice(req *domain.Request, pay *domain.Payment) []byte {
	if s.Renderer == nil {
		return nil
	}
	return s.Renderer.RenderInvoice(req, pay)
}

func (s LifecycleService) renderReceipt(req *domain.Request, pay *domain.Payment) []byte {
	if s.Renderer == nil {
		return nil
	}
	return s.Renderer.RenderReceipt(req, pay)
}

func newRequestCode() string {
	return "PMH-" + time.Now().Format("20060102-150405") + "-" + strings.ToUpper(uuid.NewString()[:4])
}
