package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
	"github.com/farisali522/birojasaapp/internal/service"
)

// StaffAdminHandler serves the back-office desk: verification queue, walk-in
// entry, assignment and finalization.
type StaffAdminHandler struct {
	Identity     *service.IdentityService
	Lifecycle    service.LifecycleService
	Requirements service.RequirementService
	Requests     ports.RequestStore
	Documents    ports.DocumentStore
	Payments     ports.PaymentStore
	Audit        ports.AuditStore
	Employees    ports.EmployeeStore
}

func (h StaffAdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/staff/dashboard", h.dashboard)
	r.Get("/staff/requests", h.list)
	r.Get("/staff/requests/{id}", h.detail)
	r.Post("/staff/requests/walkin", h.walkIn)
	r.Post("/staff/requests/{id}/documents", h.archiveDocuments)
	r.Post("/staff/requests/{id}/verify", h.verify)
	r.Post("/staff/requests/{id}/revision", h.revision)
	r.Post("/staff/requests/{id}/reject", h.reject)
	r.Post("/staff/requests/{id}/assign", h.assign)
	r.Post("/staff/requests/{id}/finalize", h.finalize)
	r.Get("/staff/field-workers", h.fieldWorkers)
}

func (h StaffAdminHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Requests.CountByStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	queue, err := h.Requests.ListByStatus(r.Context(), domain.StatusAwaitingVerification)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	unassigned, err := h.Requests.ListUnassignedProcessing(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	statusCounts := make(map[string]int64, len(counts))
	for status, n := range counts {
		statusCounts[string(status)] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"statusCounts":      statusCounts,
		"verificationQueue": requestList(queue),
		"unassignedQueue":   requestList(unassigned),
	})
}

func (h StaffAdminHandler) list(w http.ResponseWriter, r *http.Request) {
	statusParam := r.URL.Query().Get("status")
	var (
		items []domain.Request
		err   error
	)
	if statusParam == "" {
		items, err = h.Requests.ListByStatus(r.Context(),
			domain.StatusAwaitingVerification, domain.StatusAwaitingPayment,
			domain.StatusRevision, domain.StatusRejected, domain.StatusProcessing,
			domain.StatusFieldProcessing, domain.StatusFieldReturned,
			domain.StatusAwaitingFinalization, domain.StatusReadyForPickup,
			domain.StatusShipped, domain.StatusCompleted, domain.StatusDelivered)
	} else {
		var statuses []domain.RequestStatus
		for _, s := range strings.Split(statusParam, ",") {
			st := domain.RequestStatus(strings.TrimSpace(s))
			if !domain.IsValidStatus(st) {
				writeError(w, http.StatusBadRequest, "unknown status: "+s)
				return
			}
			statuses = append(statuses, st)
		}
		items, err = h.Requests.ListByStatus(r.Context(), statuses...)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, requestList(items))
}

func (h StaffAdminHandler) detail(w http.ResponseWriter, r *http.Request) {
	req, ok := h.pathRequest(w, r)
	if !ok {
		return
	}

	docs, err := h.Documents.ListByRequest(r.Context(), req.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	links, err := h.Requirements.Resolve(r.Context(), req.OfferingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	entries, err := h.Audit.ListRequestEntries(r.Context(), req.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := requestPayload(*req)
	docList := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		docList = append(docList, documentPayload(d))
	}
	payload["documents"] = docList
	payload["missingMandatory"] = h.Requirements.MissingMandatory(links, docs)
	payload["history"] = requestAuditPayload(entries)

	if pay, err := h.Payments.GetByRequest(r.Context(), req.ID); err == nil {
		payload["payment"] = paymentPayload(*pay)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h StaffAdminHandler) walkIn(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Address    string `json:"address"`
		OfferingID int64  `json:"offeringId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	created, err := h.Lifecycle.SubmitWalkIn(r.Context(), actor, service.WalkInInput{
		Name:       req.Name,
		Email:      strings.ToLower(req.Email),
		Phone:      req.Phone,
		Address:    req.Address,
		OfferingID: req.OfferingID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, requestPayload(*created))
}

func (h StaffAdminHandler) archiveDocuments(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := h.pathRequest(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	uploads, cleanup, err := parseDocumentUploads(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	if err := h.Lifecycle.ArchiveDocuments(r.Context(), actor, req.ID, uploads); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h StaffAdminHandler) verify(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := h.pathRequest(w, r)
	if !ok {
		return
	}
	var body struct {
		OfficialFee int64 `json:"officialFee"`
		ShippingFee int64 `json:"shippingFee"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	pay, err := h.Lifecycle.Verify(r.Context(), actor, req.ID, body.OfficialFee, body.ShippingFee)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentPayload(*pay))
}

func (h StaffAdminHandler) revision(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := h.pathRequest(w, r)
	if !ok {
		return
	}
	var body struct {
		Rejections []struct {
			DocumentTypeID int64  `json:"documentTypeId"`
			Note           string `json:"note"`
		} `json:"rejections"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	rejections := make([]service.DocumentRejection, 0, len(body.Rejections))
	for _, rej := range body.Rejections {
		rejections = append(rejections, service.DocumentRejection{
			DocumentTypeID: rej.DocumentTypeID,
			Note:           rej.Note,
		})
	}
	if err := h.Lifecycle.RequestDocumentRevision(r.Context(), actor, req.ID, rejections); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h StaffAdminHandler) reject(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := h.pathRequest(w, r)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Lifecycle.Reject(r.Context(), actor, req.ID, body.Reason); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h StaffAdminHandler) assign(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := h.pathRequest(w, r)
	if !ok {
		return
	}
	var body struct {
		EmployeeID int64 `json:"employeeId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Lifecycle.AssignFieldStaff(r.Context(), actor, req.ID, body.EmployeeID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h StaffAdminHandler) finalize(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := h.pathRequest(w, r)
	if !ok {
		return
	}
	var body struct {
		TrackingNumber string `json:"trackingNumber"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Lifecycle.Finalize(r.Context(), actor, req.ID, body.TrackingNumber); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h StaffAdminHandler) fieldWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Employees.ListByRole(r.Context(), domain.RoleField)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(workers))
	for _, emp := range workers {
		resp = append(resp, map[string]any{
			"id":    emp.ID,
			"code":  emp.Code,
			"name":  emp.Name,
			"email": emp.Email,
			"phone": emp.Phone,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h StaffAdminHandler) pathRequest(w http.ResponseWriter, r *http.Request) (*domain.Request, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	req, err := h.Requests.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return req, true
}

func requestList(items []domain.Request) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, req := range items {
		out = append(out, requestPayload(req))
	}
	return out
}
