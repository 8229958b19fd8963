package tests

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/service"
)

// The two access checks are deliberately different capabilities: ordinary
// access is the broad read check, explicit access requires a membership row
// and nothing else.
func TestAccessDuality(t *testing.T) {
	users := newStubUserRepo()
	svc := service.NewAccessService(users)
	ctx := context.Background()
	isoID := uuid.New()

	member := &model.User{ID: uuid.New(), Username: "member", Role: model.RoleIsoOperator, Active: true}
	require.NoError(t, users.Create(ctx, member))
	require.NoError(t, users.AddMembership(ctx, &model.IsoMembership{
		UserID: member.ID, IsoID: isoID, Kind: model.MembershipOrdinary,
	}))

	super := &model.User{ID: uuid.New(), Username: "root", Role: model.RoleSuperOperator, Active: true}
	fullAccess := &model.User{ID: uuid.New(), Username: "auditor", Role: model.RoleOperator, FullAccess: true, Active: true}
	primary := &model.User{ID: uuid.New(), Username: "native", Role: model.RoleIsoOperator, PrimaryIsoID: &isoID, Active: true}
	stranger := &model.User{ID: uuid.New(), Username: "stranger", Role: model.RoleIsoOperator, Active: true}
	for _, u := range []*model.User{super, fullAccess, primary, stranger} {
		require.NoError(t, users.Create(ctx, u))
	}

	cases := []struct {
		name         string
		user         *model.User
		wantOrdinary bool
		wantExplicit bool
	}{
		{"membership record", member, true, true},
		{"super operator", super, true, false},
		{"full access flag", fullAccess, true, false},
		{"primary tenant", primary, true, false},
		{"no relation", stranger, false, false},
		{"nil user", nil, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ordinary, err := svc.HasOrdinaryAccess(ctx, tc.user, isoID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantOrdinary, ordinary, "ordinary")

			explicit, err := svc.HasExplicitAccess(ctx, tc.user, isoID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantExplicit, explicit, "explicit")
		})
	}
}

func TestAccess_AdminMembershipGrantsExplicit(t *testing.T) {
	users := newStubUserRepo()
	svc := service.NewAccessService(users)
	ctx := context.Background()
	isoID := uuid.New()

	admin := &model.User{ID: uuid.New(), Username: "admin", Role: model.RoleIsoOperator, Active: true}
	require.NoError(t, users.Create(ctx, admin))
	require.NoError(t, users.AddMembership(ctx, &model.IsoMembership{
		UserID: admin.ID, IsoID: isoID, Kind: model.MembershipAdmin,
	}))

	explicit, err := svc.HasExplicitAccess(ctx, admin, isoID)
	require.NoError(t, err)
	assert.True(t, explicit)
}

func TestAccess_MembershipIsPerTenant(t *testing.T) {
	users := newStubUserRepo()
	svc := service.NewAccessService(users)
	ctx := context.Background()

	isoA, isoB := uuid.New(), uuid.New()
	user := &model.User{ID: uuid.New(), Username: "scoped", Role: model.RoleIsoOperator, Active: true}
	require.NoError(t, users.Create(ctx, user))
	require.NoError(t, users.AddMembership(ctx, &model.IsoMembership{UserID: user.ID, IsoID: isoA}))

	okA, err := svc.HasExplicitAccess(ctx, user, isoA)
	require.NoError(t, err)
	okB, err := svc.HasExplicitAccess(ctx, user, isoB)
	require.NoError(t, err)
	assert.True(t, okA)
	assert.False(t, okB)
}
