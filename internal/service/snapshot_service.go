package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/dto"
	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
	"github.com/ctoutbank/portal-outbank-sub005/internal/repository"
)

// SnapshotService materializes and maintains the billable cost snapshots.
// Generate and Teardown only ever run inside the validation transaction;
// RecomputeOnMarginChange only inside a margin-write transaction. The
// taxa_final = custo_base + margin_iso law is enforced here and nowhere else.
type SnapshotService interface {
	// Generate writes one snapshot per pricing key of the link's cost table,
	// copying the current base cost and current margin. Idempotent: existing
	// rows for the link are replaced, never duplicated.
	Generate(ctx context.Context, tx *gorm.DB, link *model.IsoLink) (int, error)
	// Teardown deletes every snapshot of the link, returning the count.
	Teardown(ctx context.Context, tx *gorm.DB, linkID uuid.UUID) (int64, error)
	// RecomputeOnMarginChange overwrites margin_iso on the existing snapshot
	// and recomputes taxa_final. Returns false when the link has no snapshot
	// for the key (not billable, or key absent from the table).
	RecomputeOnMarginChange(ctx context.Context, tx *gorm.DB, linkID uuid.UUID, key pricing.Key, margin decimal.Decimal) (bool, error)
	ListRateTables(ctx context.Context, isoID uuid.UUID) (*dto.RateTableListResponse, error)
	ListByIso(ctx context.Context, isoID uuid.UUID) ([]model.CostSnapshot, error)
}

type snapshotService struct {
	snapshots repository.SnapshotRepository
	margins   repository.MarginRepository
}

func NewSnapshotService(snapshots repository.SnapshotRepository, margins repository.MarginRepository) SnapshotService {
	return &snapshotService{snapshots: snapshots, margins: margins}
}

func (s *snapshotService) Generate(ctx context.Context, tx *gorm.DB, link *model.IsoLink) (int, error) {
	table := &link.CostTable

	current, err := s.margins.ListByLink(ctx, tx, link.ID)
	if err != nil {
		return 0, wrap("snapshot: list margins", err)
	}
	marginByKey := make(map[pricing.Key]decimal.Decimal, len(current))
	for _, m := range current {
		k := pricing.Key{Brand: m.Brand, Modality: m.Modality, Channel: m.Channel.OrDefault()}
		marginByKey[k] = m.Value
	}

	var rows []model.CostSnapshot
	for _, key := range pricing.Keys(table) {
		base, ok := pricing.ResolveBaseCost(table, key.Brand, key.Modality, key.Channel)
		if !ok {
			continue
		}
		margin := marginByKey[key] // zero when unset
		rows = append(rows, model.CostSnapshot{
			IsoLinkID: link.ID,
			Brand:     key.Brand,
			Modality:  key.Modality,
			Channel:   key.Channel,
			CustoBase: base,
			MarginIso: margin,
			TaxaFinal: base.Add(margin),
		})
	}

	if err := s.snapshots.ReplaceForLink(ctx, tx, link.ID, rows); err != nil {
		return 0, wrap("snapshot: replace", err)
	}
	return len(rows), nil
}

func (s *snapshotService) Teardown(ctx context.Context, tx *gorm.DB, linkID uuid.UUID) (int64, error) {
	n, err := s.snapshots.DeleteByLink(ctx, tx, linkID)
	return n, wrap("snapshot: teardown", err)
}

func (s *snapshotService) RecomputeOnMarginChange(ctx context.Context, tx *gorm.DB, linkID uuid.UUID, key pricing.Key, margin decimal.Decimal) (bool, error) {
	snap, err := s.snapshots.FindByKey(ctx, tx, linkID, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, wrap("snapshot: find", err)
	}
	snap.Recompute(margin)
	if err := s.snapshots.Save(ctx, tx, snap); err != nil {
		return false, wrap("snapshot: save", err)
	}
	return true, nil
}

func (s *snapshotService) ListRateTables(ctx context.Context, isoID uuid.UUID) (*dto.RateTableListResponse, error) {
	rows, err := s.snapshots.ListByIso(ctx, isoID)
	if err != nil {
		return nil, wrap("snapshot: list by iso", err)
	}
	resp := &dto.RateTableListResponse{Tables: make([]dto.RateTableRow, 0, len(rows)), Count: len(rows)}
	for _, r := range rows {
		resp.Tables = append(resp.Tables, dto.RateTableRow{
			LinkID:    r.IsoLinkID.String(),
			Brand:     string(r.Brand),
			Modality:  string(r.Modality),
			Channel:   string(r.Channel),
			CustoBase: pricing.FormatMargin(r.CustoBase),
			MarginIso: pricing.FormatMargin(r.MarginIso),
			TaxaFinal: pricing.FormatMargin(r.TaxaFinal),
		})
	}
	return resp, nil
}

func (s *snapshotService) ListByIso(ctx context.Context, isoID uuid.UUID) ([]model.CostSnapshot, error) {
	return s.snapshots.ListByIso(ctx, isoID)
}
