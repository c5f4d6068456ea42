package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
	"github.com/farisali522/birojasaapp/internal/service"
)

// FinanceHandler serves the finance desk: the manual settlement queue and
// payment history.
type FinanceHandler struct {
	Identity  *service.IdentityService
	Lifecycle service.LifecycleService
	Payments  ports.PaymentStore
	Requests  ports.RequestStore
	Audit     ports.AuditStore
}

func (h FinanceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/finance/dashboard", h.dashboard)
	r.Get("/finance/payments/{id}", h.detail)
	r.Post("/finance/payments/{id}/confirm", h.confirm)
}

func (h FinanceHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Payments.ListPendingForFinance(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	totalPaid, err := h.Payments.SumPaid(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	queue := make([]map[string]any, 0, len(pending))
	for _, pay := range pending {
		item := paymentPayload(pay)
		if req, err := h.Requests.GetByID(r.Context(), pay.RequestID); err == nil {
			item["request"] = requestPayload(*req)
		}
		queue = append(queue, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pendingQueue": queue,
		"totalPaid":    totalPaid,
	})
}

func (h FinanceHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	pay, err := h.Payments.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	entries, err := h.Audit.ListPaymentEntries(r.Context(), pay.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := paymentPayload(*pay)
	payload["history"] = paymentAuditPayload(entries)
	if req, err := h.Requests.GetByID(r.Context(), pay.RequestID); err == nil {
		payload["request"] = requestPayload(*req)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h FinanceHandler) confirm(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var body struct {
		Method string `json:"method"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Lifecycle.ConfirmPayment(r.Context(), actor, id, domain.PaymentMethod(body.Method)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
