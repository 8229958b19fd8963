package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ctoutbank/portal-outbank-sub005/internal/dto"
	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
	"github.com/ctoutbank/portal-outbank-sub005/internal/repository"
)

type IsoService interface {
	Create(ctx context.Context, req dto.CreateIsoRequest) (*dto.IsoResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ISO, error)
	List(ctx context.Context) (*dto.IsoListResponse, error)
	// SetOutbankMargin configures the platform-side margin gating link
	// validation. Restricted to super-operators at the route level.
	SetOutbankMargin(ctx context.Context, id uuid.UUID, req dto.SetOutbankMarginRequest) (*dto.IsoResponse, error)
}

type isoService struct {
	isos repository.IsoRepository
}

func NewIsoService(isos repository.IsoRepository) IsoService {
	return &isoService{isos: isos}
}

func (s *isoService) Create(ctx context.Context, req dto.CreateIsoRequest) (*dto.IsoResponse, error) {
	iso := &model.ISO{
		Name:         req.Name,
		Document:     req.Document,
		Hostname:     req.Hostname,
		ContactEmail: req.ContactEmail,
		Active:       true,
	}
	if err := s.isos.Create(ctx, iso); err != nil {
		return nil, wrap("iso: create", err)
	}
	return toIsoResponse(iso), nil
}

func (s *isoService) Get(ctx context.Context, id uuid.UUID) (*model.ISO, error) {
	iso, err := s.isos.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return iso, nil
}

func (s *isoService) List(ctx context.Context) (*dto.IsoListResponse, error) {
	isos, err := s.isos.List(ctx)
	if err != nil {
		return nil, wrap("iso: list", err)
	}
	resp := &dto.IsoListResponse{Isos: make([]dto.IsoResponse, 0, len(isos)), Count: len(isos)}
	for i := range isos {
		resp.Isos = append(resp.Isos, *toIsoResponse(&isos[i]))
	}
	return resp, nil
}

func (s *isoService) SetOutbankMargin(ctx context.Context, id uuid.UUID, req dto.SetOutbankMarginRequest) (*dto.IsoResponse, error) {
	margin, err := pricing.NormalizeMargin("margin", req.Margin, pricing.BoundPercent)
	if err != nil {
		return nil, err
	}
	iso, err := s.isos.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.isos.SetOutbankMargin(ctx, id, margin); err != nil {
		return nil, wrap("iso: set outbank margin", err)
	}
	iso.OutbankMargin = &margin
	return toIsoResponse(iso), nil
}

func toIsoResponse(iso *model.ISO) *dto.IsoResponse {
	var margin *string
	if iso.OutbankMargin != nil {
		m := pricing.FormatMargin(*iso.OutbankMargin)
		margin = &m
	}
	return &dto.IsoResponse{
		ID:            iso.ID.String(),
		Name:          iso.Name,
		Document:      iso.Document,
		Hostname:      iso.Hostname,
		ContactEmail:  iso.ContactEmail,
		OutbankMargin: margin,
		Active:        iso.Active,
	}
}
