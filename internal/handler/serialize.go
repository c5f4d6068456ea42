package handler

import (
	"time"

	"github.com/farisali522/birojasaapp/internal/domain"
)

func requestPayload(req domain.Request) map[string]any {
	p := map[string]any{
		"id":           req.ID,
		"code":         req.Code,
		"status":       string(req.Status),
		"statusLabel":  domain.StatusLabel[req.Status],
		"delivery":     string(req.Delivery),
		"officialFee":  req.OfficialFee.Amount,
		"customerNote": req.CustomerNote,
		"createdAt":    req.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt":    req.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if req.RejectionNote != "" {
		p["rejectionNote"] = req.RejectionNote
	}
	if req.TrackingNumber != "" {
		p["trackingNumber"] = req.TrackingNumber
	}
	if req.Customer != nil {
		p["customer"] = map[string]any{
			"id":    req.Customer.ID,
			"code":  req.Customer.Code,
			"name":  req.Customer.Name,
			"email": req.Customer.Email,
			"phone": req.Customer.Phone,
		}
	}
	if req.Offering != nil {
		p["offering"] = map[string]any{
			"id":         req.Offering.ID,
			"code":       req.Offering.Code,
			"name":       req.Offering.Name,
			"serviceFee": req.Offering.ServiceFee.Amount,
			"estimate":   req.Offering.Estimate,
		}
	}
	if req.Assigned != nil {
		p["assigned"] = map[string]any{
			"id":   req.Assigned.ID,
			"name": req.Assigned.Name,
			"role": string(req.Assigned.Role),
		}
	}
	return p
}

func documentPayload(d domain.UploadedDocument) map[string]any {
	p := map[string]any{
		"id":             d.ID,
		"code":           d.Code,
		"documentTypeId": d.DocumentTypeID,
		"documentName":   d.DocumentName,
		"filePath":       d.FilePath,
		"status":         string(d.Status),
		"uploadedAt":     d.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if d.RevisionNote != "" {
		p["revisionNote"] = d.RevisionNote
	}
	return p
}

func paymentPayload(pay domain.Payment) map[string]any {
	p := map[string]any{
		"id":            pay.ID,
		"invoiceNumber": pay.InvoiceNumber,
		"requestId":     pay.RequestID,
		"shippingFee":   pay.ShippingFee.Amount,
		"total":         pay.Total.Amount,
		"status":        string(pay.Status),
		"createdAt":     pay.CreatedAt.UTC().Format(time.RFC3339),
	}
	if pay.Method != nil {
		p["method"] = string(*pay.Method)
	}
	if pay.GatewayRef != nil {
		p["gatewayRef"] = *pay.GatewayRef
	}
	if pay.ProofPath != nil {
		p["proofPath"] = *pay.ProofPath
	}
	if pay.PaidAt != nil {
		p["paidAt"] = pay.PaidAt.UTC().Format(time.RFC3339)
	}
	return p
}

func requestAuditPayload(entries []domain.RequestAuditEntry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		item := map[string]any{
			"action":   string(e.Action),
			"note":     e.Note,
			"loggedAt": e.LoggedAt.UTC().Format(time.RFC3339),
		}
		if e.EmployeeID != nil {
			item["employeeId"] = *e.EmployeeID
		}
		out = append(out, item)
	}
	return out
}

func paymentAuditPayload(entries []domain.PaymentAuditEntry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		item := map[string]any{
			"action":   string(e.Action),
			"note":     e.Note,
			"loggedAt": e.LoggedAt.UTC().Format(time.RFC3339),
		}
		if e.EmployeeID != nil {
			item["employeeId"] = *e.EmployeeID
		}
		out = append(out, item)
	}
	return out
}

func offeringPayload(o domain.ServiceOffering) map[string]any {
	stages := make([]map[string]any, 0, len(o.Stages))
	for _, st := range o.Stages {
		stages = append(stages, map[string]any{
			"sequence":        st.Sequence,
			"name":            st.Name,
			"cost":            st.Cost.Amount,
			"requiresPayment": st.RequiresPayment,
		})
	}
	return map[string]any{
		"id":         o.ID,
		"code":       o.Code,
		"name":       o.Name,
		"serviceFee": o.ServiceFee.Amount,
		"estimate":   o.Estimate,
		"stages":     stages,
	}
}
