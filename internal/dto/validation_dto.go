package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// TransitionRequest drives a single-link status transition
// (POST /isos/:id/validation).
type TransitionRequest struct {
	LinkID    string `json:"link_id"    validate:"required,uuid4"`
	NewStatus string `json:"new_status" validate:"required"`
	Reason    string `json:"reason"     validate:"omitempty,max=500"`
}

// BatchTransitionRequest applies the same transition to a set of links.
// Ineligible links are silently skipped, never individually errored.
type BatchTransitionRequest struct {
	LinkIDs   []string `json:"link_ids"   validate:"required,min=1,dive,uuid4"`
	NewStatus string   `json:"new_status" validate:"required"`
	Reason    string   `json:"reason"     validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TransitionResponse struct {
	LinkID         string `json:"link_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	// Snapshots is the number of snapshot rows materialized (entering
	// validated) or removed (leaving it).
	Snapshots int `json:"snapshots"`
}

type BatchTransitionResponse struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type ValidationHistoryResponse struct {
	ID             string    `json:"id"`
	LinkID         string    `json:"link_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Actor          string    `json:"actor"`
	Reason         *string   `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
