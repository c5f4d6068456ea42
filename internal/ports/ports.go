package ports

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/farisali522/birojasaapp/internal/domain"
)

// Store errors shared by every implementation.
var (
	ErrNotFound = errors.New("not found")

	// ErrStaleStatus is returned when a compare-and-swap status update
	// matched zero rows: another actor moved the aggregate first.
	ErrStaleStatus = errors.New("stale status")

	// ErrDuplicate is returned on unique-key conflicts.
	ErrDuplicate = errors.New("duplicate")

	// ErrInUse is returned when a delete is blocked by referencing rows.
	ErrInUse = errors.New("in use")
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type CreateCustomerInput struct {
	Code    string
	Name    string
	Email   string
	Phone   string
	Address string
}

type CustomerStore interface {
	Create(ctx context.Context, in CreateCustomerInput) (*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	UpdateProfile(ctx context.Context, id int64, name, phone, address string) error
	Count(ctx context.Context) (int64, error)
}

type CreateEmployeeInput struct {
	Code         string
	Name         string
	Email        string
	Phone        string
	Role         domain.EmployeeRole
	PasswordHash *string
}

type EmployeeStore interface {
	Create(ctx context.Context, in CreateEmployeeInput) (*domain.Employee, error)
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	ListByRole(ctx context.Context, role domain.EmployeeRole) ([]domain.Employee, error)
	Update(ctx context.Context, id int64, name, email, phone string, role domain.EmployeeRole) error
	Delete(ctx context.Context, id int64) error
}

type StageInput struct {
	Sequence        int
	Name            string
	Cost            int64
	RequiresPayment bool
}

type SaveOfferingInput struct {
	Code       string
	Name       string
	ServiceFee int64
	Estimate   string
	Stages     []StageInput
}

type OfferingStore interface {
	Create(ctx context.Context, in SaveOfferingInput) (*domain.ServiceOffering, error)
	Update(ctx context.Context, id int64, in SaveOfferingInput) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.ServiceOffering, error)
	List(ctx context.Context) ([]domain.ServiceOffering, error)
}

type DocumentTypeStore interface {
	Create(ctx context.Context, name, description string) (*domain.DocumentType, error)
	Update(ctx context.Context, id int64, name, description string) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.DocumentType, error)
	List(ctx context.Context) ([]domain.DocumentType, error)
}

// RequirementSelection is one (document type, mandatory) pair submitted by a
// manager when editing an offering's requirement set.
type RequirementSelection struct {
	DocumentTypeID int64
	Mandatory      bool
}

type RequirementStore interface {
	ListByOffering(ctx context.Context, offeringID int64) ([]domain.RequirementLink, error)
	// Replace applies the submitted selection as an added/removed/changed
	// diff inside one transaction.
	Replace(ctx context.Context, offeringID int64, selection []RequirementSelection) error
}

type CreateRequestInput struct {
	Code         string
	CustomerID   int64
	OfferingID   int64
	Delivery     domain.DeliveryMethod
	CustomerNote string
}

type RequestStore interface {
	Create(ctx context.Context, in CreateRequestInput) (*domain.Request, error)
	// GetByID hydrates Customer, Offering and Assigned relations.
	GetByID(ctx context.Context, id int64) (*domain.Request, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Request, error)
	ListByStatus(ctx context.Context, statuses ...domain.RequestStatus) ([]domain.Request, error)
	ListUnassignedProcessing(ctx context.Context) ([]domain.Request, error)
	ListAssigned(ctx context.Context, employeeID int64) ([]domain.Request, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error)

	// Compare-and-swap mutators. Each matches the row only while its status
	// is one of the expected values and returns ErrStaleStatus otherwise.
	SetVerified(ctx context.Context, id int64, officialFee int64) error
	MarkRejected(ctx context.Context, id int64, note string) error
	Assign(ctx context.Context, id int64, employeeID int64) error
	SetShipped(ctx context.Context, id int64, trackingNumber string, from ...domain.RequestStatus) error
	SetStatus(ctx context.Context, id int64, to domain.RequestStatus, from ...domain.RequestStatus) error
	ResetForResubmission(ctx context.Context, id int64, customerNote *string) error
}

type UpsertDocumentInput struct {
	Code           string
	RequestID      int64
	DocumentTypeID int64
	FilePath       string
	Status         domain.DocumentStatus
}

type DocumentStore interface {
	ListByRequest(ctx context.Context, requestID int64) ([]domain.UploadedDocument, error)
	// Upsert creates the row for (request, document type) or replaces the
	// stored file in place, resetting status and clearing any revision note.
	Upsert(ctx context.Context, in UpsertDocumentInput) (*domain.UploadedDocument, error)
	MarkNeedsRevision(ctx context.Context, requestID, documentTypeID int64, note string) error
}

type CreatePaymentInput struct {
	InvoiceNumber string
	RequestID     int64
	ShippingFee   int64
	Total         int64
}

// PaidPaymentRow is one line of the financial report.
type PaidPaymentRow struct {
	InvoiceNumber string
	PaidAt        time.Time
	CustomerName  string
	Total         int64
}

type PaymentStore interface {
	Create(ctx context.Context, in CreatePaymentInput) (*domain.Payment, error)
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetByRequest(ctx context.Context, requestID int64) (*domain.Payment, error)
	// SettleOnline flips pending -> paid with the gateway method and
	// reference; ErrStaleStatus once paid.
	SettleOnline(ctx context.Context, id int64, gatewayRef string) error
	// SetMethod records the chosen method (and optional proof file) while
	// the payment stays pending.
	SetMethod(ctx context.Context, id int64, method domain.PaymentMethod, proofPath *string) error
	// ConfirmPaid flips pending -> paid on finance confirmation;
	// ErrStaleStatus once paid.
	ConfirmPaid(ctx context.Context, id int64, method domain.PaymentMethod) error
	ListPendingForFinance(ctx context.Context) ([]domain.Payment, error)
	ListPaidBetween(ctx context.Context, start, end *time.Time) ([]PaidPaymentRow, error)
	SumPaid(ctx context.Context) (int64, error)
}

type AuditStore interface {
	AppendRequestEntry(ctx context.Context, e domain.RequestAuditEntry) error
	AppendPaymentEntry(ctx context.Context, e domain.PaymentAuditEntry) error
	ListRequestEntries(ctx context.Context, requestID int64) ([]domain.RequestAuditEntry, error)
	ListPaymentEntries(ctx context.Context, paymentID int64) ([]domain.PaymentAuditEntry, error)
}

// Message is one outbound notification.
type Message struct {
	To             string
	Subject        string
	HTMLBody       string
	Attachment     []byte
	AttachmentName string
}

// Notifier hands a message to the outbound channel. Best-effort: it must
// never block the caller and never report failure back to it.
type Notifier interface {
	Notify(msg Message)
}

// DocumentRenderer produces invoice/receipt artifacts. A nil slice means
// rendering failed; callers send the notification without the attachment.
type DocumentRenderer interface {
	RenderInvoice(req *domain.Request, pay *domain.Payment) []byte
	RenderReceipt(req *domain.Request, pay *domain.Payment) []byte
}

// FileStore persists an upload under a randomized name and returns the
// stored path. The original filename is only used for its extension.
type FileStore interface {
	Save(originalName string, r io.Reader) (string, error)
}
