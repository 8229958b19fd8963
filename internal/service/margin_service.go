package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/dto"
	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
	"github.com/ctoutbank/portal-outbank-sub005/internal/repository"
)

type MarginService interface {
	// SetMargin upserts one margin value. When the link is billable the
	// paired snapshot is recomputed in the same transaction — the two stores
	// never observe an inconsistent (margin, final rate) pair.
	SetMargin(ctx context.Context, actor *model.User, isoID uuid.UUID, req dto.SetMarginRequest) (*dto.MarginResponse, error)
	// BatchSetMargins validates each item independently and applies all the
	// valid ones; invalid items are reported per-index, never abort the rest.
	BatchSetMargins(ctx context.Context, actor *model.User, isoID uuid.UUID, req dto.BatchMarginsRequest) (*dto.BatchMarginsResponse, error)
	// IsComplete: every required modality (debit, credit, credit_2x, pix) has
	// a positive margin on at least one brand of the link's table. Advisory.
	IsComplete(ctx context.Context, linkID uuid.UUID) (bool, error)
}

type marginService struct {
	links     repository.LinkRepository
	margins   repository.MarginRepository
	history   repository.HistoryRepository
	snapshots SnapshotService
	access    AccessService
}

func NewMarginService(
	links repository.LinkRepository,
	margins repository.MarginRepository,
	history repository.HistoryRepository,
	snapshots SnapshotService,
	access AccessService,
) MarginService {
	return &marginService{links: links, margins: margins, history: history, snapshots: snapshots, access: access}
}

// marginKey validates the enum triple of a margin write.
func marginKey(brand, modality, channel string) (pricing.Key, error) {
	b := pricing.Brand(brand)
	if !b.Valid() {
		return pricing.Key{}, &pricing.FieldError{Field: "brand", Message: fmt.Sprintf("unknown brand %q", brand)}
	}
	m := pricing.Modality(modality)
	if !m.Valid() {
		return pricing.Key{}, &pricing.FieldError{Field: "modality", Message: fmt.Sprintf("unknown modality %q", modality)}
	}
	c := pricing.Channel(channel).OrDefault()
	if !c.Valid() {
		return pricing.Key{}, &pricing.FieldError{Field: "channel", Message: fmt.Sprintf("unknown channel %q", channel)}
	}
	return pricing.Key{Brand: b, Modality: m, Channel: c}, nil
}

func (s *marginService) loadOwnedLink(ctx context.Context, actor *model.User, isoID uuid.UUID, linkIDStr string) (*model.IsoLink, error) {
	linkID, err := uuid.Parse(linkIDStr)
	if err != nil {
		return nil, &pricing.FieldError{Field: "link_id", Message: "invalid link id"}
	}
	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return nil, notFound(err)
	}
	if link.IsoID != isoID {
		return nil, ErrForbidden
	}
	// Margin edits feed billing — explicit tenant access only.
	ok, err := s.access.HasExplicitAccess(ctx, actor, isoID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return link, nil
}

func (s *marginService) SetMargin(ctx context.Context, actor *model.User, isoID uuid.UUID, req dto.SetMarginRequest) (*dto.MarginResponse, error) {
	link, err := s.loadOwnedLink(ctx, actor, isoID, req.LinkID)
	if err != nil {
		return nil, err
	}
	key, err := marginKey(req.Brand, req.Modality, req.Channel)
	if err != nil {
		return nil, err
	}
	value, err := pricing.NormalizeMargin("margin_value", req.MarginValue, pricing.BoundPercent)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.links.DB(), func(tx *gorm.DB) error {
		locked, err := s.lockLink(ctx, tx, link)
		if err != nil {
			return err
		}
		return s.applyOne(ctx, tx, actor, locked, key, value)
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.MarginResponse{
		LinkID:      link.ID.String(),
		Brand:       string(key.Brand),
		Modality:    string(key.Modality),
		Channel:     string(key.Channel),
		MarginValue: pricing.FormatMargin(value),
	}, nil
}

// lockLink re-reads the link row under FOR UPDATE so billability is decided
// from the in-transaction status, not the unlocked pre-flight read — a
// concurrent transition cannot slip between the status check and the write.
func (s *marginService) lockLink(ctx context.Context, tx *gorm.DB, link *model.IsoLink) (*model.IsoLink, error) {
	locked, err := s.links.FindByIDForUpdate(ctx, tx, link.ID)
	if err != nil {
		return nil, wrap("margin: lock link", err)
	}
	return locked, nil
}

// applyOne runs the margin write, its audit entry and the snapshot recompute
// inside one transaction.
func (s *marginService) applyOne(ctx context.Context, tx *gorm.DB, actor *model.User, link *model.IsoLink, key pricing.Key, value decimal.Decimal) error {
	action := "create"
	var prev *string
	existing, err := s.margins.FindByKey(ctx, tx, link.ID, key)
	switch {
	case err == nil:
		action = "update"
		p := pricing.FormatMargin(existing.Value)
		prev = &p
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first write on this key
	default:
		return wrap("margin: find", err)
	}

	if err := s.margins.Upsert(ctx, tx, &model.Margin{
		IsoLinkID: link.ID,
		Brand:     key.Brand,
		Modality:  key.Modality,
		Channel:   key.Channel,
		Value:     value,
	}); err != nil {
		return wrap("margin: upsert", err)
	}

	if err := s.history.AppendOverride(ctx, tx, &model.OverrideHistory{
		IsoID:         link.IsoID,
		Category:      link.CostTable.Category,
		Brand:         key.Brand,
		Product:       key.Modality,
		Channel:       key.Channel,
		PreviousValue: prev,
		NewValue:      pricing.FormatMargin(value),
		Action:        action,
		Source:        model.OverrideSourcePortal,
		ActorID:       &actor.ID,
	}); err != nil {
		return wrap("margin: audit", err)
	}

	if link.Status.Billable() {
		if _, err := s.snapshots.RecomputeOnMarginChange(ctx, tx, link.ID, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *marginService) BatchSetMargins(ctx context.Context, actor *model.User, isoID uuid.UUID, req dto.BatchMarginsRequest) (*dto.BatchMarginsResponse, error) {
	link, err := s.loadOwnedLink(ctx, actor, isoID, req.LinkID)
	if err != nil {
		return nil, err
	}

	type validItem struct {
		key   pricing.Key
		value decimal.Decimal
	}
	var (
		valid    []validItem
		itemErrs []dto.BatchMarginError
	)
	for i, item := range req.Margins {
		key, err := marginKey(item.Brand, item.Modality, item.Channel)
		if err != nil {
			itemErrs = append(itemErrs, batchErr(i, err))
			continue
		}
		value, err := pricing.NormalizeMargin("margin_value", item.MarginValue, pricing.BoundPercent)
		if err != nil {
			itemErrs = append(itemErrs, batchErr(i, err))
			continue
		}
		valid = append(valid, validItem{key: key, value: value})
	}

	txErr := runTx(ctx, s.links.DB(), func(tx *gorm.DB) error {
		locked, err := s.lockLink(ctx, tx, link)
		if err != nil {
			return err
		}
		for _, v := range valid {
			if err := s.applyOne(ctx, tx, actor, locked, v.key, v.value); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := &dto.BatchMarginsResponse{
		Success: len(itemErrs) == 0,
		Applied: len(valid),
		Skipped: len(itemErrs),
		Errors:  itemErrs,
	}
	resp.Message = fmt.Sprintf("%d margins applied, %d skipped", resp.Applied, resp.Skipped)
	return resp, nil
}

func batchErr(index int, err error) dto.BatchMarginError {
	var fe *pricing.FieldError
	if errors.As(err, &fe) {
		return dto.BatchMarginError{Index: index, Field: fe.Field, Message: fe.Message}
	}
	return dto.BatchMarginError{Index: index, Message: err.Error()}
}

func (s *marginService) IsComplete(ctx context.Context, linkID uuid.UUID) (bool, error) {
	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return false, notFound(err)
	}
	margins, err := s.margins.ListByLink(ctx, nil, linkID)
	if err != nil {
		return false, wrap("margin: list", err)
	}

	tableBrands := make(map[pricing.Brand]bool)
	for _, b := range link.CostTable.ConfiguredBrands() {
		tableBrands[b] = true
	}

	for _, required := range pricing.RequiredModalities {
		found := false
		for _, m := range margins {
			if m.Modality != required || !m.Value.GreaterThan(decimal.Zero) {
				continue
			}
			if tableBrands[m.Brand] || m.Brand == pricing.BrandAll {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}
