package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateIsoRequest struct {
	Name         string  `json:"name"          validate:"required,min=2,max=150"`
	Document     string  `json:"document"      validate:"required,min=5,max=30"`
	Hostname     string  `json:"hostname"      validate:"required,hostname_rfc1123"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
}

// SetOutbankMarginRequest configures the platform-side margin that gates
// link validation. Accepts "." or "," as the decimal separator.
type SetOutbankMarginRequest struct {
	Margin string `json:"margin" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type IsoResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Document      string  `json:"document"`
	Hostname      string  `json:"hostname"`
	ContactEmail  *string `json:"contact_email,omitempty"`
	OutbankMargin *string `json:"outbank_margin,omitempty"`
	Active        bool    `json:"active"`
}

type IsoListResponse struct {
	Isos  []IsoResponse `json:"isos"`
	Count int           `json:"count"`
}
