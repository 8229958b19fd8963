package tests

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctoutbank/portal-outbank-sub005/internal/dto"
	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
	"github.com/ctoutbank/portal-outbank-sub005/internal/service"
)

func setMarginReq(f *fixture, brand, modality, value string) dto.SetMarginRequest {
	return dto.SetMarginRequest{
		LinkID:      f.link.ID.String(),
		Brand:       brand,
		Modality:    modality,
		Channel:     "pos",
		MarginValue: value,
	}
}

func TestSetMargin_NormalizesCommaInput(t *testing.T) {
	f := newFixture()
	svc := f.marginService()

	resp, err := svc.SetMargin(context.Background(), f.operator, f.iso.ID, setMarginReq(f, "visa", "credit", "1,25"))
	require.NoError(t, err)
	assert.Equal(t, "1.2500", resp.MarginValue)
	assert.Equal(t, "visa", resp.Brand)
	assert.Equal(t, "credit", resp.Modality)
	assert.Equal(t, "pos", resp.Channel)
}

func TestSetMargin_AuditTrail(t *testing.T) {
	f := newFixture()
	svc := f.marginService()
	ctx := context.Background()

	_, err := svc.SetMargin(ctx, f.operator, f.iso.ID, setMarginReq(f, "visa", "credit", "1.25"))
	require.NoError(t, err)
	_, err = svc.SetMargin(ctx, f.operator, f.iso.ID, setMarginReq(f, "visa", "credit", "2.00"))
	require.NoError(t, err)

	entries, _ := f.history.ListOverrideByIso(ctx, f.iso.ID)
	require.Len(t, entries, 2)

	first, second := entries[0], entries[1]
	assert.Equal(t, "create", first.Action)
	assert.Nil(t, first.PreviousValue)
	assert.Equal(t, "1.2500", first.NewValue)
	assert.Equal(t, model.OverrideSourcePortal, first.Source)
	require.NotNil(t, first.ActorID)
	assert.Equal(t, f.operator.ID, *first.ActorID)

	assert.Equal(t, "update", second.Action)
	require.NotNil(t, second.PreviousValue)
	assert.Equal(t, "1.2500", *second.PreviousValue)
	assert.Equal(t, "2.0000", second.NewValue)
	assert.Equal(t, "retail", second.Category)
}

func TestSetMargin_Rejections(t *testing.T) {
	f := newFixture()
	svc := f.marginService()
	ctx := context.Background()

	cases := []struct {
		name  string
		req   dto.SetMarginRequest
		field string
	}{
		{"negative", setMarginReq(f, "visa", "credit", "-1"), "margin_value"},
		{"over 100", setMarginReq(f, "visa", "credit", "150"), "margin_value"},
		{"garbage", setMarginReq(f, "visa", "credit", "abc"), "margin_value"},
		{"unknown brand", setMarginReq(f, "diners", "credit", "1.0"), "brand"},
		{"unknown modality", setMarginReq(f, "visa", "credit_99x", "1.0"), "modality"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SetMargin(ctx, f.operator, f.iso.ID, tc.req)
			var fe *pricing.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.field, fe.Field)
		})
	}
}

func TestSetMargin_ExplicitAccessOnly(t *testing.T) {
	f := newFixture()
	svc := f.marginService()

	// FullAccess grants reads everywhere but never margin writes.
	_, err := svc.SetMargin(context.Background(), f.outsider, f.iso.ID, setMarginReq(f, "visa", "credit", "1.0"))
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestSetMargin_RecomputesBillableSnapshot(t *testing.T) {
	f := newFixture()
	validation := f.validationService()
	margins := f.marginService()
	ctx := context.Background()

	_, err := validation.Transition(ctx, f.operator, f.iso.ID, transitionReq(f.link.ID, pricing.StatusValidated, ""))
	require.NoError(t, err)

	_, err = margins.SetMargin(ctx, f.operator, f.iso.ID, setMarginReq(f, "visa", "debit", "0.5"))
	require.NoError(t, err)

	snap, err := f.snapshots.FindByKey(ctx, nil, f.link.ID,
		pricing.Key{Brand: pricing.BrandVisa, Modality: pricing.ModalityDebit, Channel: pricing.ChannelPos})
	require.NoError(t, err)
	assert.Equal(t, "0.5000", pricing.FormatMargin(snap.MarginIso))
	assert.Equal(t, "1.4900", pricing.FormatMargin(snap.TaxaFinal)) // 0.99 base + 0.5
}

// A transition committing between the margin write's pre-flight read and its
// transaction must not let the write skip the recompute: billability is
// decided from the locked in-transaction row.
func TestSetMargin_ValidationConcurrentWithWriteStillRecomputes(t *testing.T) {
	f := newFixture()
	validation := f.validationService()
	margins := f.marginService()
	ctx := context.Background()

	// The pre-flight read sees draft; the link is validated before the
	// write's transaction takes its row lock.
	f.links.beforeLock = func() {
		_, err := validation.Transition(ctx, f.operator, f.iso.ID, transitionReq(f.link.ID, pricing.StatusValidated, ""))
		require.NoError(t, err)
	}

	_, err := margins.SetMargin(ctx, f.operator, f.iso.ID, setMarginReq(f, "visa", "debit", "1.25"))
	require.NoError(t, err)

	snap, err := f.snapshots.FindByKey(ctx, nil, f.link.ID,
		pricing.Key{Brand: pricing.BrandVisa, Modality: pricing.ModalityDebit, Channel: pricing.ChannelPos})
	require.NoError(t, err)
	assert.Equal(t, "1.2500", pricing.FormatMargin(snap.MarginIso))
	assert.Equal(t, "2.2400", pricing.FormatMargin(snap.TaxaFinal)) // 0.99 base + 1.25
}

func TestSetMargin_NoSnapshotTouchWhileDraft(t *testing.T) {
	f := newFixture()
	svc := f.marginService()
	ctx := context.Background()

	_, err := svc.SetMargin(ctx, f.operator, f.iso.ID, setMarginReq(f, "visa", "debit", "0.5"))
	require.NoError(t, err)

	snaps, _ := f.snapshots.ListByLink(ctx, f.link.ID)
	assert.Empty(t, snaps)
}

func TestBatchSetMargins_PartialFailure(t *testing.T) {
	f := newFixture()
	svc := f.marginService()

	resp, err := svc.BatchSetMargins(context.Background(), f.operator, f.iso.ID, dto.BatchMarginsRequest{
		LinkID: f.link.ID.String(),
		Margins: []dto.BatchMarginItem{
			{Brand: "visa", Modality: "debit", Channel: "pos", MarginValue: "1.0"},
			{Brand: "mastercard", Modality: "credit", Channel: "pos", MarginValue: "2,5"},
			{Brand: "visa", Modality: "credit", Channel: "pos", MarginValue: "-3"},
		},
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, 2, resp.Applied)
	assert.Equal(t, 1, resp.Skipped)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 2, resp.Errors[0].Index)
	assert.Equal(t, "margin_value", resp.Errors[0].Field)

	// the valid items landed
	m, err := f.margins.FindByKey(context.Background(), nil, f.link.ID,
		pricing.Key{Brand: pricing.BrandMastercard, Modality: pricing.ModalityCredit, Channel: pricing.ChannelPos})
	require.NoError(t, err)
	assert.Equal(t, "2.5000", pricing.FormatMargin(m.Value))
}

func TestBatchSetMargins_AllValid(t *testing.T) {
	f := newFixture()
	svc := f.marginService()

	resp, err := svc.BatchSetMargins(context.Background(), f.operator, f.iso.ID, dto.BatchMarginsRequest{
		LinkID: f.link.ID.String(),
		Margins: []dto.BatchMarginItem{
			{Brand: "visa", Modality: "debit", Channel: "pos", MarginValue: "1.0"},
			{Brand: "visa", Modality: "pix", Channel: "pos", MarginValue: "0.8"},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Applied)
	assert.Zero(t, resp.Skipped)
	assert.Empty(t, resp.Errors)
}

func TestIsComplete(t *testing.T) {
	f := newFixture()
	svc := f.marginService()
	ctx := context.Background()

	complete, err := svc.IsComplete(ctx, f.link.ID)
	require.NoError(t, err)
	assert.False(t, complete, "no margins yet")

	// three of four required modalities
	for _, m := range []string{"debit", "credit", "credit_2x"} {
		_, err := svc.SetMargin(ctx, f.operator, f.iso.ID, setMarginReq(f, "visa", m, "1.0"))
		require.NoError(t, err)
	}
	complete, err = svc.IsComplete(ctx, f.link.ID)
	require.NoError(t, err)
	assert.False(t, complete, "pix missing")

	// zero-value margin does not count as configured
	_, err = svc.SetMargin(ctx, f.operator, f.iso.ID, setMarginReq(f, "visa", "pix", "0"))
	require.NoError(t, err)
	complete, err = svc.IsComplete(ctx, f.link.ID)
	require.NoError(t, err)
	assert.False(t, complete, "pix margin is zero")

	_, err = svc.SetMargin(ctx, f.operator, f.iso.ID, setMarginReq(f, "visa", "pix", "0.8"))
	require.NoError(t, err)
	complete, err = svc.IsComplete(ctx, f.link.ID)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestIsComplete_AllBrandCounts(t *testing.T) {
	f := newFixture()
	svc := f.marginService()
	ctx := context.Background()

	for _, m := range pricing.RequiredModalities {
		_, err := svc.SetMargin(ctx, f.operator, f.iso.ID, setMarginReq(f, string(pricing.BrandAll), string(m), "1.0"))
		require.NoError(t, err)
	}
	complete, err := svc.IsComplete(ctx, f.link.ID)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestIsComplete_UnconfiguredBrandDoesNotCount(t *testing.T) {
	f := newFixture()
	svc := f.marginService()
	ctx := context.Background()

	// amex is a valid brand but not on this table
	for _, m := range pricing.RequiredModalities {
		_, err := svc.SetMargin(ctx, f.operator, f.iso.ID, setMarginReq(f, "amex", string(m), "1.0"))
		require.NoError(t, err)
	}
	complete, err := svc.IsComplete(ctx, f.link.ID)
	require.NoError(t, err)
	assert.False(t, complete)
}

func TestSetMargin_RoundsToScale(t *testing.T) {
	f := newFixture()
	svc := f.marginService()

	resp, err := svc.SetMargin(context.Background(), f.operator, f.iso.ID, setMarginReq(f, "visa", "credit", "1.23456"))
	require.NoError(t, err)
	assert.Equal(t, "1.2346", resp.MarginValue)

	m, err := f.margins.FindByKey(context.Background(), nil, f.link.ID,
		pricing.Key{Brand: pricing.BrandVisa, Modality: pricing.ModalityCredit, Channel: pricing.ChannelPos})
	require.NoError(t, err)
	assert.True(t, m.Value.Equal(decimal.RequireFromString("1.2346")))
}
