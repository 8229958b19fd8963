package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateLinkRequest struct {
	IsoID       string `json:"iso_id"        validate:"required,uuid4"`
	CostTableID string `json:"cost_table_id" validate:"required,uuid4"`
}

// SetValidityRequest sets the contract window of a link
// (POST /iso-links/:linkId/validity — privileged role only).
type SetValidityRequest struct {
	ValidFrom  *time.Time `json:"valid_from"  validate:"required"`
	ValidUntil *time.Time `json:"valid_until" validate:"required,gtfield=ValidFrom"`
	AutoRenew  bool       `json:"auto_renew"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LinkResponse struct {
	ID          string     `json:"id"`
	IsoID       string     `json:"iso_id"`
	CostTableID string     `json:"cost_table_id"`
	Status      string     `json:"status"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	AutoRenew   bool       `json:"auto_renew"`
	// MarginsComplete is advisory: every required modality has a positive
	// margin on at least one brand. It never blocks a transition by itself.
	MarginsComplete bool     `json:"margins_complete"`
	ValidActions    []string `json:"valid_actions"`
}

type LinkListResponse struct {
	Links []LinkResponse `json:"links"`
	Count int            `json:"count"`
}
