package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
	"github.com/farisali522/birojasaapp/internal/server/authctx"
	"github.com/farisali522/birojasaapp/internal/service"
)

// MasterDataHandler serves the manager's master data: offerings with their
// stages, document types, requirement sets and employees.
type MasterDataHandler struct {
	Identity      *service.IdentityService
	Requirements  service.RequirementService
	Offerings     ports.OfferingStore
	DocumentTypes ports.DocumentTypeStore
	Employees     ports.EmployeeStore
}

func (h MasterDataHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/offerings", h.listOfferings)
	r.Post("/admin/offerings", h.createOffering)
	r.Put("/admin/offerings/{id}", h.updateOffering)
	r.Delete("/admin/offerings/{id}", h.deleteOffering)
	r.Get("/admin/offerings/{id}/requirements", h.listRequirements)
	r.Put("/admin/offerings/{id}/requirements", h.saveRequirements)

	r.Get("/admin/document-types", h.listDocumentTypes)
	r.Post("/admin/document-types", h.createDocumentType)
	r.Put("/admin/document-types/{id}", h.updateDocumentType)
	r.Delete("/admin/document-types/{id}", h.deleteDocumentType)

	r.Get("/admin/employees", h.listEmployees)
	r.Post("/admin/employees", h.createEmployee)
	r.Put("/admin/employees/{id}", h.updateEmployee)
	r.Delete("/admin/employees/{id}", h.deleteEmployee)
}

// RegisterPublicRoutes exposes the service catalog to unauthenticated
// visitors: what services exist and which documents each needs.
func (h MasterDataHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/offerings", h.listOfferings)
	r.Get("/offerings/{id}/requirements", h.listRequirements)
}

type offeringRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ServiceFee int64  `json:"serviceFee"`
	Estimate   string `json:"estimate"`
	Stages     []struct {
		Sequence        int    `json:"sequence"`
		Name            string `json:"name"`
		Cost            int64  `json:"cost"`
		RequiresPayment bool   `json:"requiresPayment"`
	} `json:"stages"`
}

func (req offeringRequest) toInput() (ports.SaveOfferingInput, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Code) == "" {
		return ports.SaveOfferingInput{}, errors.New("code and name are required")
	}
	if req.ServiceFee < 0 {
		return ports.SaveOfferingInput{}, errors.New("serviceFee must not be negative")
	}
	in := ports.SaveOfferingInput{
		Code:       req.Code,
		Name:       req.Name,
		ServiceFee: req.ServiceFee,
		Estimate:   req.Estimate,
	}
	for _, st := range req.Stages {
		in.Stages = append(in.Stages, ports.StageInput{
			Sequence:        st.Sequence,
			Name:            st.Name,
			Cost:            st.Cost,
			RequiresPayment: st.RequiresPayment,
		})
	}
	return in, nil
}

func (h MasterDataHandler) listOfferings(w http.ResponseWriter, r *http.Request) {
	items, err := h.Offerings.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, o := range items {
		resp = append(resp, offeringPayload(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h MasterDataHandler) createOffering(w http.ResponseWriter, r *http.Request) {
	var req offeringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.Offerings.Create(r.Context(), in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, offeringPayload(*created))
}

func (h MasterDataHandler) updateOffering(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req offeringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Offerings.Update(r.Context(), id, in); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h MasterDataHandler) deleteOffering(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Offerings.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h MasterDataHandler) listRequirements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	links, err := h.Requirements.Resolve(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(links))
	for _, link := range links {
		resp = append(resp, map[string]any{
			"documentTypeId": link.DocumentTypeID,
			"documentName":   link.DocumentName,
			"mandatory":      link.Mandatory,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h MasterDataHandler) saveRequirements(w http.ResponseWriter, r *http.Request) {
	actor, err := currentActor(r, h.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Selection []struct {
			DocumentTypeID int64 `json:"documentTypeId"`
			Mandatory      bool  `json:"mandatory"`
		} `json:"selection"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	selection := make([]ports.RequirementSelection, 0, len(body.Selection))
	for _, sel := range body.Selection {
		selection = append(selection, ports.RequirementSelection{
			DocumentTypeID: sel.DocumentTypeID,
			Mandatory:      sel.Mandatory,
		})
	}
	if err := h.Requirements.Save(r.Context(), actor, id, selection); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h MasterDataHandler) listDocumentTypes(w http.ResponseWriter, r *http.Request) {
	items, err := h.DocumentTypes.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, dt := range items {
		resp = append(resp, map[string]any{
			"id":          dt.ID,
			"name":        dt.Name,
			"description": dt.Description,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h MasterDataHandler) createDocumentType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	created, err := h.DocumentTypes.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          created.ID,
		"name":        created.Name,
		"description": created.Description,
	})
}

func (h MasterDataHandler) updateDocumentType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.DocumentTypes.Update(r.Context(), id, req.Name, req.Description); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h MasterDataHandler) deleteDocumentType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.DocumentTypes.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h MasterDataHandler) listEmployees(w http.ResponseWriter, r *http.Request) {
	items, err := h.Employees.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, emp := range items {
		resp = append(resp, map[string]any{
			"id":    emp.ID,
			"code":  emp.Code,
			"name":  emp.Name,
			"email": emp.Email,
			"phone": emp.Phone,
			"role":  string(emp.Role),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h MasterDataHandler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code     string `json:"code"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	role := domain.EmployeeRole(req.Role)
	if !validEmployeeRole(role) {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	var hash *string
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s := string(hashed)
		hash = &s
	}

	created, err := h.Employees.Create(r.Context(), ports.CreateEmployeeInput{
		Code:         req.Code,
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    created.ID,
		"code":  created.Code,
		"name":  created.Name,
		"email": created.Email,
		"role":  string(created.Role),
	})
}

func (h MasterDataHandler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
		Role  string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	role := domain.EmployeeRole(req.Role)
	if !validEmployeeRole(role) {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	if err := h.Employees.Update(r.Context(), id, req.Name, strings.ToLower(req.Email), req.Phone, role); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h MasterDataHandler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if u := authctx.FromContext(r.Context()); u != nil && u.IsEmployee() && u.ID == id {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	if err := h.Employees.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func validEmployeeRole(role domain.EmployeeRole) bool {
	switch role {
	case domain.RoleManager, domain.RoleAdmin, domain.RoleFinance, domain.RoleField:
		return true
	}
	return false
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// writeStoreError maps the store sentinels used directly by CRUD handlers.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ports.ErrDuplicate):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, ports.ErrInUse):
		writeError(w, http.StatusConflict, "record is referenced and cannot be deleted")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
