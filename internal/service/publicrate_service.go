package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/dto"
	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
	"github.com/ctoutbank/portal-outbank-sub005/internal/repository"
)

// PublicRateService backs the partner-facing margin API. The caller is
// identified by API key (resolved to a tenant in the middleware); items
// address rates by pricing key, so a validated link with a snapshot for the
// key must already exist.
type PublicRateService interface {
	UpdateMargins(ctx context.Context, isoID uuid.UUID, keyHash string, req dto.PublicMarginRequest) (*dto.PublicMarginResponse, error)
}

type publicRateService struct {
	snapshots repository.SnapshotRepository
	margins   repository.MarginRepository
	links     repository.LinkRepository
	history   repository.HistoryRepository
	apiKeys   repository.APIKeyRepository
}

func NewPublicRateService(
	snapshots repository.SnapshotRepository,
	margins repository.MarginRepository,
	links repository.LinkRepository,
	history repository.HistoryRepository,
	apiKeys repository.APIKeyRepository,
) PublicRateService {
	return &publicRateService{snapshots: snapshots, margins: margins, links: links, history: history, apiKeys: apiKeys}
}

func (s *publicRateService) UpdateMargins(ctx context.Context, isoID uuid.UUID, keyHash string, req dto.PublicMarginRequest) (*dto.PublicMarginResponse, error) {
	resp := &dto.PublicMarginResponse{Results: make([]dto.PublicMarginResult, 0, len(req.Margins))}

	for _, item := range req.Margins {
		result := dto.PublicMarginResult{
			Brand:    item.Brand,
			Modality: item.Modality,
			Channel:  string(pricing.Channel(item.Channel).OrDefault()),
		}

		key, err := marginKey(item.Brand, item.Modality, item.Channel)
		if err != nil {
			result.Status = "error"
			result.Error = err.Error()
			resp.Results = append(resp.Results, result)
			continue
		}
		// Public entry point: non-negative only, no 100 cap.
		value, err := pricing.NormalizeMargin("margin_iso", item.MarginIso, pricing.BoundNonNegative)
		if err != nil {
			result.Status = "error"
			result.Error = err.Error()
			resp.Results = append(resp.Results, result)
			continue
		}

		txErr := runTx(ctx, s.snapshots.DB(), func(tx *gorm.DB) error {
			snap, err := s.snapshots.FindByIsoKey(ctx, tx, isoID, key)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &pricing.FieldError{Field: "margin_iso", Message: "rate not found for this combination"}
				}
				return wrap("public rates: find snapshot", err)
			}

			action := "create"
			var prev *string
			existing, err := s.margins.FindByKey(ctx, tx, snap.IsoLinkID, key)
			switch {
			case err == nil:
				action = "update"
				p := pricing.FormatMargin(existing.Value)
				prev = &p
			case errors.Is(err, gorm.ErrRecordNotFound):
			default:
				return wrap("public rates: find margin", err)
			}

			// Margin row and snapshot move together or not at all.
			if err := s.margins.Upsert(ctx, tx, &model.Margin{
				IsoLinkID: snap.IsoLinkID,
				Brand:     key.Brand,
				Modality:  key.Modality,
				Channel:   key.Channel,
				Value:     value,
			}); err != nil {
				return wrap("public rates: upsert margin", err)
			}

			// Raw value edits hit the ledger regardless of entry point; here
			// the key itself is the actor, so only the tenant is recorded.
			link, err := s.links.FindByID(ctx, snap.IsoLinkID)
			if err != nil {
				return wrap("public rates: find link", err)
			}
			if err := s.history.AppendOverride(ctx, tx, &model.OverrideHistory{
				IsoID:         isoID,
				Category:      link.CostTable.Category,
				Brand:         key.Brand,
				Product:       key.Modality,
				Channel:       key.Channel,
				PreviousValue: prev,
				NewValue:      pricing.FormatMargin(value),
				Action:        action,
				Source:        model.OverrideSourcePartnerAPI,
			}); err != nil {
				return wrap("public rates: audit", err)
			}

			snap.Recompute(value)
			if err := s.snapshots.Save(ctx, tx, snap); err != nil {
				return wrap("public rates: save snapshot", err)
			}
			result.MarginIso = pricing.FormatMargin(snap.MarginIso)
			result.TaxaFinal = pricing.FormatMargin(snap.TaxaFinal)
			return nil
		})
		if txErr != nil {
			result.Status = "error"
			result.Error = txErr.Error()
		} else {
			result.Status = "ok"
		}
		resp.Results = append(resp.Results, result)
	}

	if err := s.apiKeys.TouchLastUsed(ctx, keyHash); err != nil {
		log.Error().Err(err).Msg("public rates: touch last used failed")
	}
	return resp, nil
}
