package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
	"github.com/farisali522/birojasaapp/internal/service"
)

// FieldHandler serves the field worker's task list and progress updates.
type FieldHandler struct {
	Identity  *service.IdentityService
	Lifecycle service.LifecycleService
	Requests  ports.RequestStore
	Documents ports.DocumentStore
	Audit     ports.AuditStore
}

func (h FieldHandler) RegisterRoutes(r chi.Router) {
	r.Get("/field/tasks", h.tasks)
	r.Get("/field/tasks/{id}", h.detail)
	r.Post("/field/tasks/{id}/status", h.updateStatus)
}

func (h FieldHandler) tasks(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil || !actor.IsEmployee() {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.Requests.ListAssigned(r.Context(), actor.Employee.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, requestList(items))
}

func (h FieldHandler) detail(w http.ResponseWriter, r *http.Request) {
	_, req, ok := h.assignedRequest(w, r)
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
	payload["locked"] = domain.FieldLocked(req.Status)
	writeJSON(w, http.StatusOK, payload)
}

// updateStatus takes a multipart form so the optional result photo rides
// along with the new status.
func (h FieldHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, req, ok := h.assignedRequest(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	newStatus := domain.RequestStatus(r.FormValue("status"))
	if !domain.IsValidStatus(newStatus) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	var photoName string
	var photo io.Reader
	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photoName = header.Filename
		photo = file
	}

	if err := h.Lifecycle.UpdateFieldStatus(r.Context(), actor, req.ID, newStatus, photoName, photo); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h FieldHandler) assignedRequest(w http.ResponseWriter, r *http.Request) (service.Actor, *domain.Request, bool) {
	actor, err := currentActor(r, h.Identity)
	if err != nil || !actor.IsEmployee() {
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
	if req.AssignedID == nil || *req.AssignedID != actor.Employee.ID {
		writeError(w, http.StatusForbidden, "forbidden")
		return service.Actor{}, nil, false
	}
	return actor, req, true
}
