package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ctoutbank/portal-outbank-sub005/internal/dto"
	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
	"github.com/ctoutbank/portal-outbank-sub005/internal/repository"
)

type LinkService interface {
	Create(ctx context.Context, req dto.CreateLinkRequest) (*dto.LinkResponse, error)
	// ListByIso requires ordinary access; read-only, so the full-access flag
	// counts here.
	ListByIso(ctx context.Context, actor *model.User, isoID uuid.UUID) (*dto.LinkListResponse, error)
	// SetValidity is restricted to the privileged role at the route level.
	SetValidity(ctx context.Context, linkID uuid.UUID, req dto.SetValidityRequest) (*dto.LinkResponse, error)
	// RenewExpired swaps in the pending cost table version on auto-renew
	// links whose contract window lapsed.
	RenewExpired(ctx context.Context, now time.Time) (int, error)
}

type linkService struct {
	links   repository.LinkRepository
	tables  repository.CostTableRepository
	isos    repository.IsoRepository
	margins MarginService
	access  AccessService
}

func NewLinkService(
	links repository.LinkRepository,
	tables repository.CostTableRepository,
	isos repository.IsoRepository,
	margins MarginService,
	access AccessService,
) LinkService {
	return &linkService{links: links, tables: tables, isos: isos, margins: margins, access: access}
}

func (s *linkService) Create(ctx context.Context, req dto.CreateLinkRequest) (*dto.LinkResponse, error) {
	isoID, err := uuid.Parse(req.IsoID)
	if err != nil {
		return nil, &pricing.FieldError{Field: "iso_id", Message: "invalid iso id"}
	}
	tableID, err := uuid.Parse(req.CostTableID)
	if err != nil {
		return nil, &pricing.FieldError{Field: "cost_table_id", Message: "invalid cost table id"}
	}
	if _, err := s.isos.FindByID(ctx, isoID); err != nil {
		return nil, notFound(err)
	}
	if _, err := s.tables.FindByID(ctx, tableID); err != nil {
		return nil, notFound(err)
	}

	link := &model.IsoLink{IsoID: isoID, CostTableID: tableID, Status: pricing.StatusDraft}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, wrap("link: create", err)
	}
	return s.toResponse(ctx, link), nil
}

func (s *linkService) ListByIso(ctx context.Context, actor *model.User, isoID uuid.UUID) (*dto.LinkListResponse, error) {
	ok, err := s.access.HasOrdinaryAccess(ctx, actor, isoID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	links, err := s.links.ListByIso(ctx, isoID)
	if err != nil {
		return nil, wrap("link: list", err)
	}
	resp := &dto.LinkListResponse{Links: make([]dto.LinkResponse, 0, len(links)), Count: len(links)}
	for i := range links {
		resp.Links = append(resp.Links, *s.toResponse(ctx, &links[i]))
	}
	return resp, nil
}

func (s *linkService) SetValidity(ctx context.Context, linkID uuid.UUID, req dto.SetValidityRequest) (*dto.LinkResponse, error) {
	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return nil, notFound(err)
	}
	link.ValidFrom = req.ValidFrom
	link.ValidUntil = req.ValidUntil
	link.AutoRenew = req.AutoRenew
	if err := s.links.SetValidity(ctx, link); err != nil {
		return nil, wrap("link: set validity", err)
	}
	return s.toResponse(ctx, link), nil
}

func (s *linkService) RenewExpired(ctx context.Context, now time.Time) (int, error) {
	// Renewal only retargets the cost table pointer; the link keeps its
	// status and the next validation regenerates snapshots from the new base.
	renewed := 0
	isos, err := s.isos.List(ctx)
	if err != nil {
		return 0, wrap("link: renew list isos", err)
	}
	for _, iso := range isos {
		links, err := s.links.ListByIso(ctx, iso.ID)
		if err != nil {
			return renewed, wrap("link: renew list", err)
		}
		for i := range links {
			l := &links[i]
			if !l.AutoRenew || l.PendingTableID == nil || l.ValidUntil == nil || now.Before(*l.ValidUntil) {
				continue
			}
			l.CostTableID = *l.PendingTableID
			l.PendingTableID = nil
			from := now
			l.ValidFrom = &from
			l.ValidUntil = nil
			if err := s.links.Renew(ctx, l); err != nil {
				return renewed, wrap("link: renew save", err)
			}
			renewed++
		}
	}
	return renewed, nil
}

func (s *linkService) toResponse(ctx context.Context, link *model.IsoLink) *dto.LinkResponse {
	complete := false
	if s.margins != nil {
		if c, err := s.margins.IsComplete(ctx, link.ID); err == nil {
			complete = c
		}
	}
	targets := pricing.ValidTargets(link.Status)
	actions := make([]string, 0, len(targets))
	for _, t := range targets {
		actions = append(actions, string(t))
	}
	return &dto.LinkResponse{
		ID:              link.ID.String(),
		IsoID:           link.IsoID.String(),
		CostTableID:     link.CostTableID.String(),
		Status:          string(link.Status),
		ValidFrom:       link.ValidFrom,
		ValidUntil:      link.ValidUntil,
		AutoRenew:       link.AutoRenew,
		MarginsComplete: complete,
		ValidActions:    actions,
	}
}
