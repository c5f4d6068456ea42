package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

// In-memory fakes for the store ports. CAS semantics mirror the SQL
// implementations: a mutation that does not match the expected status
// returns ports.ErrStaleStatus.

type memCustomers struct {
	seq   int64
	items map[int64]*domain.Customer
}

func newMemCustomers() *memCustomers {
	return &memCustomers{items: map[int64]*domain.Customer{}}
}

func (m *memCustomers) Create(_ context.Context, in ports.CreateCustomerInput) (*domain.Customer, error) {
	for _, c := range m.items {
		if c.Email == in.Email {
			return nil, ports.ErrDuplicate
		}
	}
	m.seq++
	c := &domain.Customer{
		ID: m.seq, Code: in.Code, Name: in.Name, Email: in.Email,
		Phone: in.Phone, Address: in.Address, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.items[c.ID] = c
	return c, nil
}

func (m *memCustomers) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return c, nil
}

func (m *memCustomers) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	for _, c := range m.items {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (m *memCustomers) UpdateProfile(_ context.Context, id int64, name, phone, address string) error {
	c, ok := m.items[id]
	if !ok {
		return ports.ErrNotFound
	}
	c.Name, c.Phone, c.Address = name, phone, address
	return nil
}

func (m *memCustomers) Count(_ context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

type memEmployees struct {
	seq   int64
	items map[int64]*domain.Employee
}

func newMemEmployees() *memEmployees {
	return &memEmployees{items: map[int64]*domain.Employee{}}
}

func (m *memEmployees) Create(_ context.Context, in ports.CreateEmployeeInput) (*domain.Employee, error) {
	m.seq++
	e := &domain.Employee{
		ID: m.seq, Code: in.Code, Name: in.Name, Email: in.Email,
		Phone: in.Phone, Role: in.Role, PasswordHash: in.PasswordHash,
	}
	m.items[e.ID] = e
	return e, nil
}

func (m *memEmployees) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	e, ok := m.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return e, nil
}

func (m *memEmployees) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	for _, e := range m.items {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (m *memEmployees) List(_ context.Context) ([]domain.Employee, error) {
	var out []domain.Employee
	for _, e := range m.items {
		out = append(out, *e)
	}
	return out, nil
}

func (m *memEmployees) ListByRole(_ context.Context, role domain.EmployeeRole) ([]domain.Employee, error) {
	var out []domain.Employee
	for _, e := range m.items {
		if e.Role == role {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memEmployees) Update(_ context.Context, id int64, name, email, phone string, role domain.EmployeeRole) error {
	e, ok := m.items[id]
	if !ok {
		return ports.ErrNotFound
	}
	e.Name, e.Email, e.Phone, e.Role = name, email, phone, role
	return nil
}

func (m *memEmployees) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ports.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memOfferings struct {
	seq   int64
	items map[int64]*domain.ServiceOffering
}

func newMemOfferings() *memOfferings {
	return &memOfferings{items: map[int64]*domain.ServiceOffering{}}
}

func (m *memOfferings) Create(_ context.Context, in ports.SaveOfferingInput) (*domain.ServiceOffering, error) {
	m.seq++
	o := &domain.ServiceOffering{
		ID: m.seq, Code: in.Code, Name: in.Name,
		ServiceFee: domain.Money{Amount: in.ServiceFee}, Estimate: in.Estimate,
	}
	for _, st := range in.Stages {
		o.Stages = append(o.Stages, domain.ServiceStage{
			OfferingID: o.ID, Sequence: st.Sequence, Name: st.Name,
			Cost: domain.Money{Amount: st.Cost}, RequiresPayment: st.RequiresPayment,
		})
	}
	m.items[o.ID] = o
	return o, nil
}

func (m *memOfferings) Update(_ context.Context, id int64, in ports.SaveOfferingInput) error {
	o, ok := m.items[id]
	if !ok {
		return ports.ErrNotFound
	}
	o.Code, o.Name, o.ServiceFee, o.Estimate = in.Code, in.Name, domain.Money{Amount: in.ServiceFee}, in.Estimate
	return nil
}

func (m *memOfferings) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ports.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memOfferings) GetByID(_ context.Context, id int64) (*domain.ServiceOffering, error) {
	o, ok := m.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return o, nil
}

func (m *memOfferings) List(_ context.Context) ([]domain.ServiceOffering, error) {
	var out []domain.ServiceOffering
	for _, o := range m.items {
		out = append(out, *o)
	}
	return out, nil
}

type memRequirements struct {
	seq   int64
	links map[int64][]domain.RequirementLink
	names map[int64]string
}

func newMemRequirements() *memRequirements {
	return &memRequirements{links: map[int64][]domain.RequirementLink{}, names: map[int64]string{}}
}

func (m *memRequirements) ListByOffering(_ context.Context, offeringID int64) ([]domain.RequirementLink, error) {
	return m.links[offeringID], nil
}

func (m *memRequirements) Replace(_ context.Context, offeringID int64, selection []ports.RequirementSelection) error {
	var out []domain.RequirementLink
	for _, sel := range selection {
		m.seq++
		out = append(out, domain.RequirementLink{
			ID: m.seq, OfferingID: offeringID, DocumentTypeID: sel.DocumentTypeID,
			DocumentName: m.names[sel.DocumentTypeID], Mandatory: sel.Mandatory,
		})
	}
	m.links[offeringID] = out
	return nil
}

type memRequests struct {
	seq       int64
	items     map[int64]*domain.Request
	customers *memCustomers
	offerings *memOfferings
	employees *memEmployees
}

func newMemRequests(c *memCustomers, o *memOfferings, e *memEmployees) *memRequests {
	return &memRequests{items: map[int64]*domain.Request{}, customers: c, offerings: o, employees: e}
}

func (m *memRequests) Create(_ context.Context, in ports.CreateRequestInput) (*domain.Request, error) {
	m.seq++
	req := &domain.Request{
		ID: m.seq, Code: in.Code, CustomerID: in.CustomerID, OfferingID: in.OfferingID,
		Status: domain.StatusAwaitingVerification, Delivery: in.Delivery,
		CustomerNote: in.CustomerNote, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.items[req.ID] = req
	return m.hydrate(req), nil
}

func (m *memRequests) hydrate(req *domain.Request) *domain.Request {
	cp := *req
	if c, ok := m.customers.items[req.CustomerID]; ok {
		cc := *c
		cp.Customer = &cc
	}
	if o, ok := m.offerings.items[req.OfferingID]; ok {
		oo := *o
		cp.Offering = &oo
	}
	if req.AssignedID != nil {
		if e, ok := m.employees.items[*req.AssignedID]; ok {
			ee := *e
			cp.Assigned = &ee
		}
	}
	return &cp
}

func (m *memRequests) GetByID(_ context.Context, id int64) (*domain.Request, error) {
	req, ok := m.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return m.hydrate(req), nil
}

func (m *memRequests) ListByCustomer(_ context.Context, customerID int64) ([]domain.Request, error) {
	var out []domain.Request
	for _, req := range m.items {
		if req.CustomerID == customerID {
			out = append(out, *m.hydrate(req))
		}
	}
	return out, nil
}

func (m *memRequests) ListByStatus(_ context.Context, statuses ...domain.RequestStatus) ([]domain.Request, error) {
	var out []domain.Request
	for _, req := range m.items {
		for _, st := range statuses {
			if req.Status == st {
				out = append(out, *m.hydrate(req))
				break
			}
		}
	}
	return out, nil
}

func (m *memRequests) ListUnassignedProcessing(_ context.Context) ([]domain.Request, error) {
	var out []domain.Request
	for _, req := range m.items {
		if req.Status == domain.StatusProcessing && req.AssignedID == nil {
			out = append(out, *m.hydrate(req))
		}
	}
	return out, nil
}

func (m *memRequests) ListAssigned(_ context.Context, employeeID int64) ([]domain.Request, error) {
	var out []domain.Request
	for _, req := range m.items {
		if req.AssignedID != nil && *req.AssignedID == employeeID {
			out = append(out, *m.hydrate(req))
		}
	}
	return out, nil
}

func (m *memRequests) Count(_ context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

func (m *memRequests) CountByStatus(_ context.Context) (map[domain.RequestStatus]int64, error) {
	out := map[domain.RequestStatus]int64{}
	for _, req := range m.items {
		out[req.Status]++
	}
	return out, nil
}

func (m *memRequests) casStatus(id int64, from []domain.RequestStatus, mutate func(*domain.Request)) error {
	req, ok := m.items[id]
	if !ok {
		return ports.ErrStaleStatus
	}
	if len(from) > 0 {
		matched := false
		for _, st := range from {
			if req.Status == st {
				matched = true
				break
			}
		}
		if !matched {
			return ports.ErrStaleStatus
		}
	}
	mutate(req)
	req.UpdatedAt = time.Now()
	return nil
}

func (m *memRequests) SetVerified(_ context.Context, id int64, officialFee int64) error {
	return m.casStatus(id, []domain.RequestStatus{domain.StatusAwaitingVerification}, func(req *domain.Request) {
		req.Status = domain.StatusAwaitingPayment
		req.OfficialFee = domain.Money{Amount: officialFee}
		req.RejectionNote = ""
	})
}

func (m *memRequests) MarkRejected(_ context.Context, id int64, note string) error {
	return m.casStatus(id, []domain.RequestStatus{domain.StatusAwaitingVerification}, func(req *domain.Request) {
		req.Status = domain.StatusRejected
		req.RejectionNote = note
	})
}

func (m *memRequests) Assign(_ context.Context, id int64, employeeID int64) error {
	return m.casStatus(id, []domain.RequestStatus{domain.StatusProcessing}, func(req *domain.Request) {
		req.Status = domain.StatusFieldProcessing
		req.AssignedID = &employeeID
	})
}

func (m *memRequests) SetShipped(_ context.Context, id int64, trackingNumber string, from ...domain.RequestStatus) error {
	return m.casStatus(id, from, func(req *domain.Request) {
		req.Status = domain.StatusShipped
		req.TrackingNumber = trackingNumber
	})
}

func (m *memRequests) SetStatus(_ context.Context, id int64, to domain.RequestStatus, from ...domain.RequestStatus) error {
	return m.casStatus(id, from, func(req *domain.Request) {
		req.Status = to
	})
}

func (m *memRequests) ResetForResubmission(_ context.Context, id int64, customerNote *string) error {
	return m.casStatus(id, []domain.RequestStatus{domain.StatusRejected, domain.StatusRevision}, func(req *domain.Request) {
		req.Status = domain.StatusAwaitingVerification
		req.RejectionNote = ""
		if customerNote != nil {
			req.CustomerNote = *customerNote
		}
	})
}

type memDocuments struct {
	seq   int64
	items map[int64]*domain.UploadedDocument
	names map[int64]string
}

func newMemDocuments() *memDocuments {
	return &memDocuments{items: map[int64]*domain.UploadedDocument{}, names: map[int64]string{}}
}

func (m *memDocuments) ListByRequest(_ context.Context, requestID int64) ([]domain.UploadedDocument, error) {
	var out []domain.UploadedDocument
	for _, d := range m.items {
		if d.RequestID == requestID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memDocuments) Upsert(_ context.Context, in ports.UpsertDocumentInput) (*domain.UploadedDocument, error) {
	for _, d := range m.items {
		if d.RequestID == in.RequestID && d.DocumentTypeID == in.DocumentTypeID {
			d.FilePath = in.FilePath
			d.Status = in.Status
			d.RevisionNote = ""
			d.UpdatedAt = time.Now()
			cp := *d
			return &cp, nil
		}
	}
	m.seq++
	d := &domain.UploadedDocument{
		ID: m.seq, Code: in.Code, RequestID: in.RequestID, DocumentTypeID: in.DocumentTypeID,
		DocumentName: m.names[in.DocumentTypeID], FilePath: in.FilePath, Status: in.Status,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.items[d.ID] = d
	cp := *d
	return &cp, nil
}

func (m *memDocuments) MarkNeedsRevision(_ context.Context, requestID, documentTypeID int64, note string) error {
	for _, d := range m.items {
		if d.RequestID == requestID && d.DocumentTypeID == documentTypeID {
			d.Status = domain.DocumentNeedsRevision
			d.RevisionNote = note
			return nil
		}
	}
	return ports.ErrNotFound
}

type memPayments struct {
	seq   int64
	items map[int64]*domain.Payment
}

func newMemPayments() *memPayments {
	return &memPayments{items: map[int64]*domain.Payment{}}
}

func (m *memPayments) Create(_ context.Context, in ports.CreatePaymentInput) (*domain.Payment, error) {
	for _, p := range m.items {
		if p.RequestID == in.RequestID {
			return nil, ports.ErrDuplicate
		}
	}
	m.seq++
	p := &domain.Payment{
		ID: m.seq, InvoiceNumber: in.InvoiceNumber, RequestID: in.RequestID,
		ShippingFee: domain.Money{Amount: in.ShippingFee}, Total: domain.Money{Amount: in.Total},
		Status: domain.PaymentPending, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.items[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *memPayments) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPayments) GetByRequest(_ context.Context, requestID int64) (*domain.Payment, error) {
	for _, p := range m.items {
		if p.RequestID == requestID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (m *memPayments) SettleOnline(_ context.Context, id int64, gatewayRef string) error {
	p, ok := m.items[id]
	if !ok || p.Status != domain.PaymentPending {
		return ports.ErrStaleStatus
	}
	method := domain.MethodGateway
	now := time.Now()
	p.Status = domain.PaymentPaid
	p.Method = &method
	p.GatewayRef = &gatewayRef
	p.PaidAt = &now
	return nil
}

func (m *memPayments) SetMethod(_ context.Context, id int64, method domain.PaymentMethod, proofPath *string) error {
	p, ok := m.items[id]
	if !ok || p.Status != domain.PaymentPending {
		return ports.ErrStaleStatus
	}
	p.Method = &method
	if proofPath != nil {
		p.ProofPath = proofPath
	}
	return nil
}

func (m *memPayments) ConfirmPaid(_ context.Context, id int64, method domain.PaymentMethod) error {
	p, ok := m.items[id]
	if !ok || p.Status != domain.PaymentPending {
		return ports.ErrStaleStatus
	}
	now := time.Now()
	p.Status = domain.PaymentPaid
	p.Method = &method
	p.PaidAt = &now
	return nil
}

func (m *memPayments) ListPendingForFinance(_ context.Context) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range m.items {
		if p.Status != domain.PaymentPending {
			continue
		}
		if p.Method == nil || *p.Method == domain.MethodCash {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPayments) ListPaidBetween(_ context.Context, start, end *time.Time) ([]ports.PaidPaymentRow, error) {
	var out []ports.PaidPaymentRow
	for _, p := range m.items {
		if p.Status != domain.PaymentPaid || p.PaidAt == nil {
			continue
		}
		if start != nil && p.PaidAt.Before(*start) {
			continue
		}
		if end != nil && p.PaidAt.After(*end) {
			continue
		}
		out = append(out, ports.PaidPaymentRow{
			InvoiceNumber: p.InvoiceNumber, PaidAt: *p.PaidAt, Total: p.Total.Amount,
		})
	}
	return out, nil
}

func (m *memPayments) SumPaid(_ context.Context) (int64, error) {
	var sum int64
	for _, p := range m.items {
		if p.Status == domain.PaymentPaid {
			sum += p.Total.Amount
		}
	}
	return sum, nil
}

type memAudit struct {
	requestEntries []domain.RequestAuditEntry
	paymentEntries []domain.PaymentAuditEntry
}

func (m *memAudit) AppendRequestEntry(_ context.Context, e domain.RequestAuditEntry) error {
	e.ID = int64(len(m.requestEntries) + 1)
	e.LoggedAt = time.Now()
	m.requestEntries = append(m.requestEntries, e)
	return nil
}

func (m *memAudit) AppendPaymentEntry(_ context.Context, e domain.PaymentAuditEntry) error {
	e.ID = int64(len(m.paymentEntries) + 1)
	e.LoggedAt = time.Now()
	m.paymentEntries = append(m.paymentEntries, e)
	return nil
}

func (m *memAudit) ListRequestEntries(_ context.Context, requestID int64) ([]domain.RequestAuditEntry, error) {
	var out []domain.RequestAuditEntry
	for _, e := range m.requestEntries {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAudit) ListPaymentEntries(_ context.Context, paymentID int64) ([]domain.PaymentAuditEntry, error) {
	var out []domain.PaymentAuditEntry
	for _, e := range m.paymentEntries {
		if e.PaymentID == paymentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAudit) requestActions(requestID int64) []string {
	var out []string
	for _, e := range m.requestEntries {
		if e.RequestID == requestID {
			out = append(out, string(e.Action))
		}
	}
	return out
}

func (m *memAudit) paymentActions(paymentID int64) []string {
	var out []string
	for _, e := range m.paymentEntries {
		if e.PaymentID == paymentID {
			out = append(out, string(e.Action))
		}
	}
	return out
}

type memNotifier struct {
	sent []ports.Message
}

func (m *memNotifier) Notify(msg ports.Message) {
	m.sent = append(m.sent, msg)
}

type fakeRenderer struct{}

func (fakeRenderer) RenderInvoice(*domain.Request, *domain.Payment) []byte { return []byte("pdf") }
func (fakeRenderer) RenderReceipt(*domain.Request, *domain.Payment) []byte { return []byte("pdf") }

type memFiles struct {
	seq int64
}

func (m *memFiles) Save(originalName string, r io.Reader) (string, error) {
	if r != nil {
		_, _ = io.Copy(io.Discard, r)
	}
	m.seq++
	ext := ""
	if i := strings.LastIndex(originalName, "."); i >= 0 {
		ext = originalName[i:]
	}
	return fmt.Sprintf("uploads/file-%d%s", m.seq, ext), nil
}
