package domain

import "time"

// Enumerations
const (
	RoleManager EmployeeRole = "manajer"
	RoleAdmin   EmployeeRole = "staff_admin"
	RoleFinance EmployeeRole = "staff_keuangan"
	RoleField   EmployeeRole = "lapangan"

	DeliveryPickup  DeliveryMethod = "pickup"
	DeliveryCourier DeliveryMethod = "courier"

	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"

	MethodGateway        PaymentMethod = "gateway"
	MethodCash           PaymentMethod = "tunai"
	MethodManualTransfer PaymentMethod = "transfer_manual"

	DocumentUploaded      DocumentStatus = "uploaded"
	DocumentArchived      DocumentStatus = "archived_physical"
	DocumentNeedsRevision DocumentStatus = "needs_revision"
)

type EmployeeRole string
type DeliveryMethod string
type PaymentStatus string
type PaymentMethod string
type DocumentStatus string

type Money struct {
	Amount   int64
	Currency string
}

type Customer struct {
	ID        int64
	Code      string
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Employee struct {
	ID           int64
	Code         string
	Name         string
	Email        string
	Phone        string
	Role         EmployeeRole
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ServiceStage is an ordered sub-step of a multi-stage offering.
type ServiceStage struct {
	ID              int64
	OfferingID      int64
	Sequence        int
	Name            string
	Cost            Money
	RequiresPayment bool
}

type ServiceOffering struct {
	ID         int64
	Code       string
	Name       string
	ServiceFee Money
	Estimate   string
	Stages     []ServiceStage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type DocumentType struct {
	ID          int64
	Name        string
	Description string
}

// RequirementLink declares that an offering needs a document type.
type RequirementLink struct {
	ID             int64
	OfferingID     int64
	DocumentTypeID int64
	DocumentName   string
	Mandatory      bool
}

type Request struct {
	ID             int64
	Code           string
	CustomerID     int64
	OfferingID     int64
	AssignedID     *int64
	Status         RequestStatus
	OfficialFee    Money
	Delivery       DeliveryMethod
	CustomerNote   string
	RejectionNote  string
	TrackingNumber string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Customer *Customer
	Offering *ServiceOffering
	Assigned *Employee
}

type UploadedDocument struct {
	ID             int64
	Code           string
	RequestID      int64
	DocumentTypeID int64
	DocumentName   string
	FilePath       string
	Status         DocumentStatus
	RevisionNote   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Payment struct {
	ID            int64
	InvoiceNumber string
	RequestID     int64
	ShippingFee   Money
	Total         Money
	Method        *PaymentMethod
	Status        PaymentStatus
	GatewayRef    *string
	ProofPath     *string
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AuditAction is the closed set of recordable state-changing actions.
type AuditAction string

const (
	AuditCreated          AuditAction = "created"
	AuditVerified         AuditAction = "verified"
	AuditRejected         AuditAction = "rejected"
	AuditAssigned         AuditAction = "assigned"
	AuditInProgress       AuditAction = "in_progress"
	AuditCompleted        AuditAction = "completed"
	AuditDelivered        AuditAction = "delivered"
	AuditFinalized        AuditAction = "finalized"
	AuditResubmitted      AuditAction = "resubmitted"
	AuditInvoiceCreated   AuditAction = "invoice_created"
	AuditPaidOnline       AuditAction = "paid_online"
	AuditPaymentVerified  AuditAction = "payment_verified"
	AuditPaymentConfirmed AuditAction = "payment_confirmed"
)

// RequestAuditEntry is append-only. A nil EmployeeID means the action was
// performed by the customer or the system.
type RequestAuditEntry struct {
	ID         int64
	RequestID  int64
	EmployeeID *int64
	Action     AuditAction
	Note       string
	LoggedAt   time.Time
}

type PaymentAuditEntry struct {
	ID         int64
	PaymentID  int64
	EmployeeID *int64
	Action     AuditAction
	Note       string
	LoggedAt   time.Time
}
