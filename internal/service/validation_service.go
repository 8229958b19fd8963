package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/dto"
	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
	"github.com/ctoutbank/portal-outbank-sub005/internal/repository"
	"github.com/ctoutbank/portal-outbank-sub005/internal/worker"
)

// ValidationService owns the link status state machine. Every status write
// in the system goes through Transition or BatchTransition — there is no
// other path to the status column.
type ValidationService interface {
	Transition(ctx context.Context, actor *model.User, isoID uuid.UUID, req dto.TransitionRequest) (*dto.TransitionResponse, error)
	// BatchTransition applies the same transition to every eligible link of
	// the set; ineligible ids are counted as skipped, never errored.
	BatchTransition(ctx context.Context, actor *model.User, isoID uuid.UUID, req dto.BatchTransitionRequest) (*dto.BatchTransitionResponse, error)
	// History returns the validation ledger; callers must be super-operators.
	History(ctx context.Context, actor *model.User, isoID uuid.UUID, linkID *uuid.UUID) ([]dto.ValidationHistoryResponse, error)
}

type validationService struct {
	links      repository.LinkRepository
	history    repository.HistoryRepository
	snapshots  SnapshotService
	access     AccessService
	dispatcher *worker.Dispatcher // nil in unit tests: side effects skipped
}

func NewValidationService(
	links repository.LinkRepository,
	history repository.HistoryRepository,
	snapshots SnapshotService,
	access AccessService,
	dispatcher *worker.Dispatcher,
) ValidationService {
	return &validationService{links: links, history: history, snapshots: snapshots, access: access, dispatcher: dispatcher}
}

func (s *validationService) Transition(ctx context.Context, actor *model.User, isoID uuid.UUID, req dto.TransitionRequest) (*dto.TransitionResponse, error) {
	linkID, err := uuid.Parse(req.LinkID)
	if err != nil {
		return nil, &pricing.FieldError{Field: "link_id", Message: "invalid link id"}
	}
	target := pricing.LinkStatus(req.NewStatus)
	if !target.Valid() {
		return nil, &pricing.FieldError{Field: "new_status", Message: "unknown status"}
	}

	// Status writes mutate billable pricing: the explicit check applies and
	// the full-access flag is deliberately not consulted.
	ok, err := s.access.HasExplicitAccess(ctx, actor, isoID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	return s.transitionOne(ctx, actor, isoID, linkID, target, req.Reason)
}

// transitionOne runs one full transition inside its own locked transaction
// and fires the async side effects on success.
func (s *validationService) transitionOne(ctx context.Context, actor *model.User, isoID, linkID uuid.UUID, target pricing.LinkStatus, reason string) (*dto.TransitionResponse, error) {
	var (
		resp   dto.TransitionResponse
		notice worker.TransitionNotice
		locked *model.IsoLink
	)

	txErr := runTx(ctx, s.links.DB(), func(tx *gorm.DB) error {
		link, err := s.links.FindByIDForUpdate(ctx, tx, linkID)
		if err != nil {
			return notFound(err)
		}
		if link.IsoID != isoID {
			return ErrForbidden
		}
		locked = link

		if err := pricing.CheckTransition(link.Status, target); err != nil {
			return err
		}
		if target == pricing.StatusRejected && reason == "" {
			return &pricing.FieldError{Field: "reason", Message: "reason is required for rejection"}
		}

		snapshotCount := 0
		switch {
		case target == pricing.StatusValidated:
			if !link.Iso.HasOutbankMargin() {
				return &ConfigError{Msg: "Outbank margin must be configured before validation"}
			}
			n, err := s.snapshots.Generate(ctx, tx, link)
			if err != nil {
				return err
			}
			snapshotCount = n
		case target == pricing.StatusInactive || target == pricing.StatusDraft:
			// Leaving the billable state: snapshots are deleted, not archived.
			n, err := s.snapshots.Teardown(ctx, tx, link.ID)
			if err != nil {
				return err
			}
			snapshotCount = int(n)
		}

		if err := s.links.UpdateStatus(ctx, tx, link.ID, target); err != nil {
			return wrap("transition: update status", err)
		}

		entry := &model.ValidationHistory{
			IsoLinkID:      link.ID,
			PreviousStatus: link.Status,
			NewStatus:      target,
			ActorID:        actor.ID,
		}
		if reason != "" {
			entry.Reason = &reason
		}
		if err := s.history.AppendValidation(ctx, tx, entry); err != nil {
			return wrap("transition: audit", err)
		}

		resp = dto.TransitionResponse{
			LinkID:         link.ID.String(),
			PreviousStatus: string(link.Status),
			NewStatus:      string(target),
			Snapshots:      snapshotCount,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.dispatcher != nil {
		contact := ""
		if locked.Iso.ContactEmail != nil {
			contact = *locked.Iso.ContactEmail
		}
		notice = worker.TransitionNotice{
			LinkID:         resp.LinkID,
			IsoName:        locked.Iso.Name,
			ContactEmail:   contact,
			PreviousStatus: resp.PreviousStatus,
			NewStatus:      resp.NewStatus,
			Reason:         reason,
		}
		if err := s.dispatcher.EnqueueTransitionNotice(ctx, notice); err != nil {
			log.Error().Err(err).Str("link_id", resp.LinkID).Msg("transition: enqueue notice failed")
		}
		// Billing only cares about entering or leaving the billable state.
		if target.Billable() || pricing.LinkStatus(resp.PreviousStatus).Billable() {
			job := worker.BillingSyncJob{LinkID: resp.LinkID, IsoID: isoID.String(), Status: string(target)}
			if err := s.dispatcher.EnqueueBillingSync(ctx, job); err != nil {
				log.Error().Err(err).Str("link_id", resp.LinkID).Msg("transition: enqueue billing sync failed")
			}
		}
	}

	return &resp, nil
}

func (s *validationService) BatchTransition(ctx context.Context, actor *model.User, isoID uuid.UUID, req dto.BatchTransitionRequest) (*dto.BatchTransitionResponse, error) {
	target := pricing.LinkStatus(req.NewStatus)
	if !target.Valid() {
		return nil, &pricing.FieldError{Field: "new_status", Message: "unknown status"}
	}
	if target == pricing.StatusRejected && req.Reason == "" {
		return nil, &pricing.FieldError{Field: "reason", Message: "reason is required for rejection"}
	}

	ok, err := s.access.HasExplicitAccess(ctx, actor, isoID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	resp := &dto.BatchTransitionResponse{}
	for _, idStr := range req.LinkIDs {
		linkID, err := uuid.Parse(idStr)
		if err != nil {
			resp.Skipped++
			continue
		}
		// Same rules as the single path, Outbank precondition included; any
		// per-link failure (wrong tenant, ineligible status, missing config)
		// is a silent skip by the batch contract.
		if _, err := s.transitionOne(ctx, actor, isoID, linkID, target, req.Reason); err != nil {
			resp.Skipped++
			continue
		}
		resp.Updated++
	}
	return resp, nil
}

func (s *validationService) History(ctx context.Context, actor *model.User, isoID uuid.UUID, linkID *uuid.UUID) ([]dto.ValidationHistoryResponse, error) {
	if actor == nil || actor.Role != model.RoleSuperOperator {
		return nil, ErrForbidden
	}

	var (
		entries []model.ValidationHistory
		err     error
	)
	if linkID != nil {
		entries, err = s.history.ListValidationByLink(ctx, *linkID)
	} else {
		entries, err = s.history.ListValidationByIso(ctx, isoID)
	}
	if err != nil {
		return nil, wrap("history: list", err)
	}

	out := make([]dto.ValidationHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ValidationHistoryResponse{
			ID:             e.ID.String(),
			LinkID:         e.IsoLinkID.String(),
			PreviousStatus: string(e.PreviousStatus),
			NewStatus:      string(e.NewStatus),
			Actor:          e.Actor.Username,
			Reason:         e.Reason,
			CreatedAt:      e.CreatedAt,
		})
	}
	return out, nil
}
