package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SetMarginRequest is the single-margin upsert body (PUT /isos/:id/margins).
// MarginValue is a raw string: both "." and "," separators are accepted.
type SetMarginRequest struct {
	LinkID      string `json:"link_id"      validate:"required,uuid4"`
	Brand       string `json:"brand"        validate:"required"`
	Modality    string `json:"modality"     validate:"required"`
	Channel     string `json:"channel"      validate:"omitempty,oneof=pos online"`
	MarginValue string `json:"margin_value" validate:"required"`
}

type BatchMarginItem struct {
	Brand       string `json:"brand"        validate:"required"`
	Modality    string `json:"modality"     validate:"required"`
	Channel     string `json:"channel"      validate:"omitempty,oneof=pos online"`
	MarginValue string `json:"margin_value" validate:"required"`
}

// BatchMarginsRequest is the batch upsert body (PATCH /isos/:id/margins).
type BatchMarginsRequest struct {
	LinkID  string            `json:"link_id" validate:"required,uuid4"`
	Margins []BatchMarginItem `json:"margins" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MarginResponse struct {
	LinkID      string `json:"link_id"`
	Brand       string `json:"brand"`
	Modality    string `json:"modality"`
	Channel     string `json:"channel"`
	MarginValue string `json:"margin_value"` // fixed-point, 4 fractional digits
}

type BatchMarginError struct {
	Index   int    `json:"index"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type BatchMarginsResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Applied int                `json:"applied"`
	Skipped int                `json:"skipped"`
	Errors  []BatchMarginError `json:"errors,omitempty"`
}
