package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTable is a minimal RateSource for resolver tests.
type fakeTable struct {
	rates        map[Modality]map[Channel]decimal.Decimal
	anticipation *decimal.Decimal
	brands       []Brand
}

func (f *fakeTable) BaseRate(m Modality, c Channel) (decimal.Decimal, bool) {
	v, ok := f.rates[m][c]
	return v, ok
}

func (f *fakeTable) AnticipationRate() (decimal.Decimal, bool) {
	if f.anticipation == nil {
		return decimal.Zero, false
	}
	return *f.anticipation, true
}

func (f *fakeTable) ConfiguredBrands() []Brand { return f.brands }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFakeTable() *fakeTable {
	ant := dec("1.9900")
	return &fakeTable{
		rates: map[Modality]map[Channel]decimal.Decimal{
			ModalityDebit:  {ChannelPos: dec("0.9900"), ChannelOnline: dec("1.2000")},
			ModalityCredit: {ChannelPos: dec("2.5000")},
			ModalityPix:    {ChannelPos: dec("0.7500")},
		},
		anticipation: &ant,
		brands:       []Brand{BrandVisa, BrandMastercard},
	}
}

func TestResolveBaseCost_ConfiguredBrand(t *testing.T) {
	table := newFakeTable()

	got, ok := ResolveBaseCost(table, BrandVisa, ModalityDebit, ChannelPos)
	require.True(t, ok)
	assert.Equal(t, "0.9900", FormatMargin(got))
}

func TestResolveBaseCost_FallbackSharesRateAcrossBrands(t *testing.T) {
	// The base table stores one representative value per modality, so every
	// configured brand resolves to the same number.
	table := newFakeTable()

	visa, ok := ResolveBaseCost(table, BrandVisa, ModalityCredit, ChannelPos)
	require.True(t, ok)
	master, ok := ResolveBaseCost(table, BrandMastercard, ModalityCredit, ChannelPos)
	require.True(t, ok)
	assert.True(t, visa.Equal(master))
}

func TestResolveBaseCost_UnconfiguredBrand(t *testing.T) {
	table := newFakeTable()

	_, ok := ResolveBaseCost(table, BrandAmex, ModalityDebit, ChannelPos)
	assert.False(t, ok)
}

func TestResolveBaseCost_AnticipationIgnoresBrandAndChannel(t *testing.T) {
	table := newFakeTable()

	pos, ok := ResolveBaseCost(table, BrandVisa, ModalityAnticipation, ChannelPos)
	require.True(t, ok)
	online, ok := ResolveBaseCost(table, BrandAll, ModalityAnticipation, ChannelOnline)
	require.True(t, ok)
	assert.True(t, pos.Equal(online))
	assert.Equal(t, "1.9900", FormatMargin(pos))
}

func TestResolveBaseCost_MissingRateLine(t *testing.T) {
	table := newFakeTable()

	_, ok := ResolveBaseCost(table, BrandVisa, ModalityVoucher, ChannelPos)
	assert.False(t, ok)
	// credit has no online column
	_, ok = ResolveBaseCost(table, BrandVisa, ModalityCredit, ChannelOnline)
	assert.False(t, ok)
}

func TestKeys_Enumeration(t *testing.T) {
	table := newFakeTable()
	keys := Keys(table)

	// debit pos+online and credit+pix pos only, per configured brand, plus
	// one ALL-brand anticipation line.
	assert.Len(t, keys, 2*2+1*2+1*2+1)

	antCount := 0
	for _, k := range keys {
		if k.Modality == ModalityAnticipation {
			antCount++
			assert.Equal(t, BrandAll, k.Brand)
		} else {
			assert.NotEqual(t, BrandAll, k.Brand)
		}
	}
	assert.Equal(t, 1, antCount)
}

func TestKeys_NoAnticipationLine(t *testing.T) {
	table := newFakeTable()
	table.anticipation = nil

	for _, k := range Keys(table) {
		assert.NotEqual(t, ModalityAnticipation, k.Modality)
	}
}

func TestFirstBrand(t *testing.T) {
	table := newFakeTable()
	b, ok := FirstBrand(table)
	require.True(t, ok)
	assert.Equal(t, BrandVisa, b)

	table.brands = nil
	_, ok = FirstBrand(table)
	assert.False(t, ok)
}
