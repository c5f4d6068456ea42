package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

type RequirementSuite struct {
	suite.Suite
	ctx       context.Context
	reqs      *memRequirements
	offerings *memOfferings
	svc       RequirementService
	offering  *domain.ServiceOffering
	manager   Actor
}

func TestRequirementSuite(t *testing.T) {
	suite.Run(t, new(RequirementSuite))
}

func (s *RequirementSuite) SetupTest() {
	s.ctx = context.Background()
	s.reqs = newMemRequirements()
	s.reqs.names = map[int64]string{1: "KTP", 2: "STNK", 3: "BPKB"}
	s.offerings = newMemOfferings()
	s.svc = RequirementService{Requirements: s.reqs, Offerings: s.offerings}

	var err error
	s.offering, err = s.offerings.Create(s.ctx, ports.SaveOfferingInput{
		Code: "SRV-1", Name: "Balik Nama", ServiceFee: 400_000,
	})
	s.Require().NoError(err)
	s.manager = Actor{Employee: &domain.Employee{ID: 1, Name: "Eka", Role: domain.RoleManager}}
}

func (s *RequirementSuite) TestSave() {
	s.Run("replaces the selection", func() {
		err := s.svc.Save(s.ctx, s.manager, s.offering.ID, []ports.RequirementSelection{
			{DocumentTypeID: 1, Mandatory: true},
			{DocumentTypeID: 2, Mandatory: false},
		})
		s.Require().NoError(err)

		links, err := s.svc.Resolve(s.ctx, s.offering.ID)
		s.Require().NoError(err)
		s.Len(links, 2)
	})

	s.Run("duplicate document types are rejected", func() {
		err := s.svc.Save(s.ctx, s.manager, s.offering.ID, []ports.RequirementSelection{
			{DocumentTypeID: 1, Mandatory: true},
			{DocumentTypeID: 1, Mandatory: false},
		})
		s.True(IsValidation(err))
	})

	s.Run("only managers may edit", func() {
		admin := Actor{Employee: &domain.Employee{ID: 2, Role: domain.RoleAdmin}}
		err := s.svc.Save(s.ctx, admin, s.offering.ID, nil)
		s.ErrorIs(err, ErrForbidden)
	})

	s.Run("unknown offering", func() {
		err := s.svc.Save(s.ctx, s.manager, 999, nil)
		s.ErrorIs(err, ErrNotFound)
	})
}

func (s *RequirementSuite) TestMissingMandatory() {
	links := []domain.RequirementLink{
		{DocumentTypeID: 1, DocumentName: "KTP", Mandatory: true},
		{DocumentTypeID: 2, DocumentName: "STNK", Mandatory: true},
		{DocumentTypeID: 3, DocumentName: "BPKB", Mandatory: false},
	}

	s.Run("reports absent mandatory names", func() {
		uploaded := []domain.UploadedDocument{{DocumentTypeID: 1}}
		s.Equal([]string{"STNK"}, s.svc.MissingMandatory(links, uploaded))
	})

	s.Run("optional documents never count as missing", func() {
		uploaded := []domain.UploadedDocument{{DocumentTypeID: 1}, {DocumentTypeID: 2}}
		s.Empty(s.svc.MissingMandatory(links, uploaded))
	})

	s.Run("nothing uploaded", func() {
		s.Equal([]string{"KTP", "STNK"}, s.svc.MissingMandatory(links, nil))
	})
}
