package pricing

import (
	"github.com/shopspring/decimal"
)

// Key identifies one rate line: (card brand, payment modality, sales channel).
type Key struct {
	Brand    Brand
	Modality Modality
	Channel  Channel
}

// RateSource is the read side of a supplier cost table. model.CostTable
// implements it; tests use lightweight fakes.
type RateSource interface {
	// BaseRate returns the representative base cost for (modality, channel)
	// and whether that rate line is configured at all.
	BaseRate(m Modality, c Channel) (decimal.Decimal, bool)
	// AnticipationRate is the channel- and brand-agnostic anticipation cost.
	AnticipationRate() (decimal.Decimal, bool)
	// ConfiguredBrands lists the card brands the table covers, in the order
	// they were configured.
	ConfiguredBrands() []Brand
}

// ResolveBaseCost resolves the base supplier cost for one pricing key.
//
// Anticipation is a single global line: brand is forced to ALL and the
// channel argument is ignored. Every other modality resolves from the table's
// representative (modality, channel) value regardless of which configured
// brand is asked for — the base table stores one value per modality, not a
// true per-brand matrix. That fallback is deliberately confined to this
// function; correcting it to a per-brand lookup must not touch any caller.
func ResolveBaseCost(t RateSource, brand Brand, modality Modality, channel Channel) (decimal.Decimal, bool) {
	if modality == ModalityAnticipation {
		return t.AnticipationRate()
	}
	if brand != BrandAll && !brandConfigured(t, brand) {
		return decimal.Zero, false
	}
	return t.BaseRate(modality, channel.OrDefault())
}

// Keys enumerates every pricing key present in the table: one (brand,
// modality, channel) line per configured brand for each configured rate, plus
// a single ALL-brand anticipation line when the table carries one.
func Keys(t RateSource) []Key {
	var keys []Key
	brands := t.ConfiguredBrands()
	for _, m := range allModalities {
		if m == ModalityAnticipation {
			if _, ok := t.AnticipationRate(); ok {
				keys = append(keys, Key{Brand: BrandAll, Modality: ModalityAnticipation, Channel: ChannelPos})
			}
			continue
		}
		for _, c := range []Channel{ChannelPos, ChannelOnline} {
			if _, ok := t.BaseRate(m, c); !ok {
				continue
			}
			for _, b := range brands {
				keys = append(keys, Key{Brand: b, Modality: m, Channel: c})
			}
		}
	}
	return keys
}

func brandConfigured(t RateSource, brand Brand) bool {
	for _, b := range t.ConfiguredBrands() {
		if b == brand {
			return true
		}
	}
	return false
}

// FirstBrand returns the table's first configured brand, the representative
// brand used when a caller needs exactly one line per modality.
func FirstBrand(t RateSource) (Brand, bool) {
	brands := t.ConfiguredBrands()
	if len(brands) == 0 {
		return "", false
	}
	return brands[0], true
}
