package dto

// ─── Public partner API (PUT /public/rates/margin) ───────────────────────────

type PublicMarginItem struct {
	Brand     string `json:"brand"      validate:"required"`
	Modality  string `json:"modality"   validate:"required"`
	Channel   string `json:"channel"    validate:"omitempty,oneof=pos online"`
	MarginIso string `json:"margin_iso" validate:"required"`
}

type PublicMarginRequest struct {
	Margins []PublicMarginItem `json:"margins" validate:"required,min=1,dive"`
}

// PublicMarginResult mixes successes and per-item errors: Status is "ok" or
// "error", and TaxaFinal is set only on success. One failing item never
// fails the batch.
type PublicMarginResult struct {
	Brand     string `json:"brand"`
	Modality  string `json:"modality"`
	Channel   string `json:"channel"`
	MarginIso string `json:"margin_iso,omitempty"`
	TaxaFinal string `json:"taxa_final,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type PublicMarginResponse struct {
	Results []PublicMarginResult `json:"results"`
}
