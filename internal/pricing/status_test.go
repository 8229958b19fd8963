package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_Matrix(t *testing.T) {
	cases := []struct {
		from, to LinkStatus
		want     bool
	}{
		{StatusDraft, StatusValidated, true},
		{StatusDraft, StatusPendingValidation, true},
		{StatusDraft, StatusRejected, false},
		{StatusDraft, StatusInactive, false},
		{StatusPendingValidation, StatusValidated, true},
		{StatusPendingValidation, StatusRejected, true},
		{StatusPendingValidation, StatusDraft, true},
		{StatusPendingValidation, StatusInactive, false},
		{StatusValidated, StatusInactive, true},
		{StatusValidated, StatusDraft, false},
		{StatusValidated, StatusRejected, false},
		{StatusValidated, StatusPendingValidation, false},
		{StatusRejected, StatusDraft, true},
		{StatusRejected, StatusValidated, false},
		{StatusInactive, StatusValidated, true},
		{StatusInactive, StatusDraft, false},
		// no self-transitions
		{StatusDraft, StatusDraft, false},
		{StatusValidated, StatusValidated, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCheckTransition_ErrorCarriesValidTargets(t *testing.T) {
	err := CheckTransition(StatusValidated, StatusDraft)
	require.Error(t, err)

	te, ok := err.(*TransitionError)
	require.True(t, ok)
	assert.Equal(t, StatusValidated, te.Current)
	assert.Equal(t, StatusDraft, te.Target)
	assert.Equal(t, []LinkStatus{StatusInactive}, te.Valid)
}

func TestCheckTransition_LegalReturnsNil(t *testing.T) {
	assert.NoError(t, CheckTransition(StatusDraft, StatusValidated))
	assert.NoError(t, CheckTransition(StatusInactive, StatusValidated))
}

func TestLinkStatus_Valid(t *testing.T) {
	for _, s := range []LinkStatus{StatusDraft, StatusPendingValidation, StatusValidated, StatusRejected, StatusInactive} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, LinkStatus("archived").Valid())
	assert.False(t, LinkStatus("").Valid())
}

func TestLinkStatus_Billable(t *testing.T) {
	assert.True(t, StatusValidated.Billable())
	for _, s := range []LinkStatus{StatusDraft, StatusPendingValidation, StatusRejected, StatusInactive} {
		assert.False(t, s.Billable(), s)
	}
}
