package service

import (
	"context"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

// RequirementService resolves which documents a service offering needs and
// lets managers edit the requirement set.
type RequirementService struct {
	Requirements ports.RequirementStore
	Offerings    ports.OfferingStore
}

// Resolve returns the ordered requirement links for an offering.
func (s RequirementService) Resolve(ctx context.Context, offeringID int64) ([]domain.RequirementLink, error) {
	if _, err := s.Offerings.GetByID(ctx, offeringID); err != nil {
		return nil, mapStoreErr(err)
	}
	links, err := s.Requirements.ListByOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	return links, nil
}

// MissingMandatory lists the mandatory document names absent from the
// uploaded set. Completeness is informative only: submission and
// verification proceed regardless, matching the established workflow.
func (s RequirementService) MissingMandatory(links []domain.RequirementLink, uploaded []domain.UploadedDocument) []string {
	have := make(map[int64]bool, len(uploaded))
	for _, doc := range uploaded {
		have[doc.DocumentTypeID] = true
	}

	var missing []string
	for _, link := range links {
		if link.Mandatory && !have[link.DocumentTypeID] {
			missing = append(missing, link.DocumentName)
		}
	}
	return missing
}

// Save replaces an offering's requirement set with the submitted selection.
// Manager only. The store applies the change as a diff within one
// transaction, so concurrent edits cannot wipe links mid-save.
func (s RequirementService) Save(ctx context.Context, actor Actor, offeringID int64, selection []ports.RequirementSelection) error {
	if !actor.hasRole(domain.RoleManager) {
		return ErrForbidden
	}
	if _, err := s.Offerings.GetByID(ctx, offeringID); err != nil {
		return mapStoreErr(err)
	}

	seen := make(map[int64]bool, len(selection))
	for _, sel := range selection {
		if seen[sel.DocumentTypeID] {
			return validationf("dokumen dipilih dua kali")
		}
		seen[sel.DocumentTypeID] = true
	}
	return mapStoreErr(s.Requirements.Replace(ctx, offeringID, selection))
}
