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

const maxUploadSize = 10 << 20

// RequestHandler serves the customer-facing request lifecycle.
type RequestHandler struct {
	Identity  *service.IdentityService
	Lifecycle service.LifecycleService
	Requests  ports.RequestStore
	Documents ports.DocumentStore
	Payments  ports.PaymentStore
	Audit     ports.AuditStore
	Customers ports.CustomerStore
}

func (h RequestHandler) RegisterRoutes(r chi.Router) {
	r.Get("/me/profile", h.profile)
	r.Put("/me/profile", h.updateProfile)
	r.Get("/me/requests", h.list)
	r.Post("/me/requests", h.submit)
	r.Get("/me/requests/{id}", h.detail)
	r.Post("/me/requests/{id}/resubmit", h.resubmit)
	r.Post("/me/requests/{id}/receipt", h.confirmReceipt)
	r.Post("/me/requests/{id}/pay/online", h.payOnline)
	r.Post("/me/requests/{id}/pay/cash", h.payCash)
	r.Post("/me/requests/{id}/pay/proof", h.payProof)
}

func (h RequestHandler) profile(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil || !actor.IsCustomer() {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	cust := actor.Customer
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      cust.ID,
		"code":    cust.Code,
		"name":    cust.Name,
		"email":   cust.Email,
		"phone":   cust.Phone,
		"address": cust.Address,
	})
}

func (h RequestHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil || !actor.IsCustomer() {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "nama wajib diisi")
		return
	}
	if err := h.Customers.UpdateProfile(r.Context(), actor.Customer.ID, req.Name, req.Phone, req.Address); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h RequestHandler) list(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil || !actor.IsCustomer() {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.Requests.ListByCustomer(r.Context(), actor.Customer.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, req := range items {
		resp = append(resp, requestPayload(req))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h RequestHandler) submit(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	offeringID, err := strconv.ParseInt(r.FormValue("offeringId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offeringId")
		return
	}

	uploads, closers, err := parseDocumentUploads(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closers()

	req, err := h.Lifecycle.Submit(r.Context(), actor, service.SubmitInput{
		OfferingID: offeringID,
		Delivery:   domain.DeliveryMethod(r.FormValue("delivery")),
		Note:       r.FormValue("note"),
		Documents:  uploads,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, requestPayload(*req))
}

func (h RequestHandler) detail(w http.ResponseWriter, r *http.Request) {
	_, req, ok := h.ownedRequest(w, r)
	if !ok {
		return
	}

	docs, err := h.Documents.ListByRequest(r.Context(), req.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
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
	payload["history"] = requestAuditPayload(entries)

	if pay, err := h.Payments.GetByRequest(r.Context(), req.ID); err == nil {
		payload["payment"] = paymentPayload(*pay)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h RequestHandler) resubmit(w http.ResponseWriter, r *http.Request) {
	actor, req, ok := h.ownedRequest(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	uploads, closers, err := parseDocumentUploads(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closers()

	var note *string
	if v := r.FormValue("note"); v != "" {
		note = &v
	}
	if err := h.Lifecycle.Resubmit(r.Context(), actor, req.ID, uploads, note); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h RequestHandler) confirmReceipt(w http.ResponseWriter, r *http.Request) {
	actor, req, ok := h.ownedRequest(w, r)
	if !ok {
		return
	}
	if err := h.Lifecycle.ConfirmReceipt(r.Context(), actor, req.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h RequestHandler) payOnline(w http.ResponseWriter, r *http.Request) {
	actor, req, ok := h.ownedRequest(w, r)
	if !ok {
		return
	}
	if err := h.Lifecycle.SettleOnline(r.Context(), actor, req.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h RequestHandler) payCash(w http.ResponseWriter, r *http.Request) {
	actor, req, ok := h.ownedRequest(w, r)
	if !ok {
		return
	}
	if err := h.Lifecycle.ChooseCash(r.Context(), actor, req.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h RequestHandler) payProof(w http.ResponseWriter, r *http.Request) {
	actor, req, ok := h.ownedRequest(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("proof")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bukti pembayaran wajib dilampirkan")
		return
	}
	defer file.Close()

	if err := h.Lifecycle.SubmitPaymentProof(r.Context(), actor, req.ID, header.Filename, file); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ownedRequest resolves the actor and the request, rejecting reads of other
// customers' requests.
func (h RequestHandler) ownedRequest(w http.ResponseWriter, r *http.Request) (service.Actor, *domain.Request, bool) {
	actor, err := currentActor(r, h.Identity)
	if err != nil || !actor.IsCustomer() {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return service.Actor{}, nil, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return service.Actor{}, nil, false
	}
	req, err := h.Requests.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return service.Actor{}, nil, false
	}
	if req.CustomerID != actor.Customer.ID {
		writeError(w, http.StatusForbidden, "forbidden")
		return service.Actor{}, nil, false
	}
	return actor, req, true
}
