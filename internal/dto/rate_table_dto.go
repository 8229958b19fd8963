package dto

// ─── Response DTOs ───────────────────────────────────────────────────────────

// RateTableRow is one billable snapshot line. All rates are fixed-point
// strings with 4 fractional digits.
type RateTableRow struct {
	LinkID    string `json:"link_id"`
	Brand     string `json:"brand"`
	Modality  string `json:"modality"`
	Channel   string `json:"channel"`
	CustoBase string `json:"custo_base"`
	MarginIso string `json:"margin_iso"`
	TaxaFinal string `json:"taxa_final"`
}

type RateTableListResponse struct {
	Tables []RateTableRow `json:"tables"`
	Count  int            `json:"count"`
}
