package tests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
	"github.com/ctoutbank/portal-outbank-sub005/internal/repository"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubLinkRepo is an in-memory LinkRepository. FindByID* return copies, like
// a real query would, so a caller mutating its copy never leaks into the
// store before UpdateStatus.
type stubLinkRepo struct {
	links map[uuid.UUID]*model.IsoLink

	// beforeLock, when set, runs at the top of FindByIDForUpdate. Tests use
	// it to commit a concurrent change between a caller's unlocked pre-flight
	// read and its locked in-transaction read.
	beforeLock func()
}

func newStubLinkRepo() *stubLinkRepo {
	return &stubLinkRepo{links: make(map[uuid.UUID]*model.IsoLink)}
}

func (r *stubLinkRepo) Create(_ context.Context, link *model.IsoLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	stored := *link
	r.links[link.ID] = &stored
	return nil
}

func (r *stubLinkRepo) FindByID(_ context.Context, id uuid.UUID) (*model.IsoLink, error) {
	link, ok := r.links[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *link
	return &cp, nil
}

func (r *stubLinkRepo) FindByIDForUpdate(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.IsoLink, error) {
	if r.beforeLock != nil {
		hook := r.beforeLock
		r.beforeLock = nil
		hook()
	}
	return r.FindByID(ctx, id)
}

func (r *stubLinkRepo) ListByIso(_ context.Context, isoID uuid.UUID) ([]model.IsoLink, error) {
	var out []model.IsoLink
	for _, l := range r.links {
		if l.IsoID == isoID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLinkRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.IsoLink, error) {
	var out []model.IsoLink
	for _, id := range ids {
		if l, ok := r.links[id]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLinkRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status pricing.LinkStatus) error {
	link, ok := r.links[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	link.Status = status
	return nil
}

func (r *stubLinkRepo) SetValidity(_ context.Context, link *model.IsoLink) error {
	stored, ok := r.links[link.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.ValidFrom = link.ValidFrom
	stored.ValidUntil = link.ValidUntil
	stored.AutoRenew = link.AutoRenew
	return nil
}

func (r *stubLinkRepo) Renew(_ context.Context, link *model.IsoLink) error {
	stored, ok := r.links[link.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.CostTableID = link.CostTableID
	stored.PendingTableID = link.PendingTableID
	stored.ValidFrom = link.ValidFrom
	stored.ValidUntil = link.ValidUntil
	return nil
}

func (r *stubLinkRepo) DB() *gorm.DB { return nil }

var _ repository.LinkRepository = (*stubLinkRepo)(nil)

// stubMarginRepo keys margins the way the unique index does.
type stubMarginRepo struct {
	margins map[string]*model.Margin
}

func newStubMarginRepo() *stubMarginRepo {
	return &stubMarginRepo{margins: make(map[string]*model.Margin)}
}

func marginMapKey(linkID uuid.UUID, key pricing.Key) string {
	return fmt.Sprintf("%s|%s|%s|%s", linkID, key.Brand, key.Modality, key.Channel)
}

func (r *stubMarginRepo) Upsert(_ context.Context, _ *gorm.DB, m *model.Margin) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	stored := *m
	r.margins[marginMapKey(m.IsoLinkID, pricing.Key{Brand: m.Brand, Modality: m.Modality, Channel: m.Channel})] = &stored
	return nil
}

func (r *stubMarginRepo) FindByKey(_ context.Context, _ *gorm.DB, linkID uuid.UUID, key pricing.Key) (*model.Margin, error) {
	m, ok := r.margins[marginMapKey(linkID, key)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *stubMarginRepo) ListByLink(_ context.Context, _ *gorm.DB, linkID uuid.UUID) ([]model.Margin, error) {
	var out []model.Margin
	for _, m := range r.margins {
		if m.IsoLinkID == linkID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMarginRepo) DB() *gorm.DB { return nil }

var _ repository.MarginRepository = (*stubMarginRepo)(nil)

// stubSnapshotRepo tracks snapshots per link plus the link→iso mapping the
// iso-scoped lookups need.
type stubSnapshotRepo struct {
	snapshots map[string]*model.CostSnapshot
	linkIso   map[uuid.UUID]uuid.UUID
}

func newStubSnapshotRepo() *stubSnapshotRepo {
	return &stubSnapshotRepo{
		snapshots: make(map[string]*model.CostSnapshot),
		linkIso:   make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *stubSnapshotRepo) ReplaceForLink(_ context.Context, _ *gorm.DB, linkID uuid.UUID, rows []model.CostSnapshot) error {
	for k, s := range r.snapshots {
		if s.IsoLinkID == linkID {
			delete(r.snapshots, k)
		}
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		stored := row
		r.snapshots[marginMapKey(linkID, pricing.Key{Brand: row.Brand, Modality: row.Modality, Channel: row.Channel})] = &stored
	}
	return nil
}

func (r *stubSnapshotRepo) DeleteByLink(_ context.Context, _ *gorm.DB, linkID uuid.UUID) (int64, error) {
	var n int64
	for k, s := range r.snapshots {
		if s.IsoLinkID == linkID {
			delete(r.snapshots, k)
			n++
		}
	}
	return n, nil
}

func (r *stubSnapshotRepo) FindByKey(_ context.Context, _ *gorm.DB, linkID uuid.UUID, key pricing.Key) (*model.CostSnapshot, error) {
	s, ok := r.snapshots[marginMapKey(linkID, key)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSnapshotRepo) FindByIsoKey(_ context.Context, _ *gorm.DB, isoID uuid.UUID, key pricing.Key) (*model.CostSnapshot, error) {
	for _, s := range r.snapshots {
		if r.linkIso[s.IsoLinkID] == isoID && s.Brand == key.Brand && s.Modality == key.Modality && s.Channel == key.Channel {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSnapshotRepo) Save(_ context.Context, _ *gorm.DB, s *model.CostSnapshot) error {
	stored := *s
	r.snapshots[marginMapKey(s.IsoLinkID, pricing.Key{Brand: s.Brand, Modality: s.Modality, Channel: s.Channel})] = &stored
	return nil
}

func (r *stubSnapshotRepo) ListByLink(_ context.Context, linkID uuid.UUID) ([]model.CostSnapshot, error) {
	var out []model.CostSnapshot
	for _, s := range r.snapshots {
		if s.IsoLinkID == linkID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSnapshotRepo) ListByIso(_ context.Context, isoID uuid.UUID) ([]model.CostSnapshot, error) {
	var out []model.CostSnapshot
	for _, s := range r.snapshots {
		if r.linkIso[s.IsoLinkID] == isoID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSnapshotRepo) DB() *gorm.DB { return nil }

var _ repository.SnapshotRepository = (*stubSnapshotRepo)(nil)

// stubHistoryRepo captures ledger appends for assertion.
type stubHistoryRepo struct {
	validations []model.ValidationHistory
	overrides   []model.OverrideHistory
}

func newStubHistoryRepo() *stubHistoryRepo { return &stubHistoryRepo{} }

func (r *stubHistoryRepo) AppendValidation(_ context.Context, _ *gorm.DB, e *model.ValidationHistory) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	r.validations = append(r.validations, *e)
	return nil
}

func (r *stubHistoryRepo) ListValidationByLink(_ context.Context, linkID uuid.UUID) ([]model.ValidationHistory, error) {
	var out []model.ValidationHistory
	for _, e := range r.validations {
		if e.IsoLinkID == linkID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubHistoryRepo) ListValidationByIso(_ context.Context, _ uuid.UUID) ([]model.ValidationHistory, error) {
	return append([]model.ValidationHistory(nil), r.validations...), nil
}

func (r *stubHistoryRepo) AppendOverride(_ context.Context, _ *gorm.DB, e *model.OverrideHistory) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	r.overrides = append(r.overrides, *e)
	return nil
}

func (r *stubHistoryRepo) ListOverrideByIso(_ context.Context, isoID uuid.UUID) ([]model.OverrideHistory, error) {
	var out []model.OverrideHistory
	for _, e := range r.overrides {
		if e.IsoID == isoID {
			out = append(out, e)
		}
	}
	return out, nil
}

var _ repository.HistoryRepository = (*stubHistoryRepo)(nil)

// stubUserRepo backs the access checks: memberships keyed by user|iso.
type stubUserRepo struct {
	users       map[uuid.UUID]*model.User
	byUsername  map[string]*model.User
	byEmail     map[string]*model.User
	memberships map[string]*model.IsoMembership
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:       make(map[uuid.UUID]*model.User),
		byUsername:  make(map[string]*model.User),
		byEmail:     make(map[string]*model.User),
		memberships: make(map[string]*model.IsoMembership),
	}
}

func membershipKey(userID, isoID uuid.UUID) string { return userID.String() + "|" + isoID.String() }

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	r.byUsername[u.Username] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := r.byUsername[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) FindMembership(_ context.Context, userID, isoID uuid.UUID) (*model.IsoMembership, error) {
	m, ok := r.memberships[membershipKey(userID, isoID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubUserRepo) AddMembership(_ context.Context, m *model.IsoMembership) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.memberships[membershipKey(m.UserID, m.IsoID)] = m
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// stubTokenRepo mirrors the conditional-update consume semantics.
type stubTokenRepo struct {
	tokens map[string]*model.OneTimeToken
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: make(map[string]*model.OneTimeToken)}
}

func (r *stubTokenRepo) Create(_ context.Context, t *model.OneTimeToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.tokens[t.TokenHash] = t
	return nil
}

func (r *stubTokenRepo) FindByHash(_ context.Context, tokenHash string) (*model.OneTimeToken, error) {
	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubTokenRepo) Consume(_ context.Context, tokenHash string) error {
	t, ok := r.tokens[tokenHash]
	if !ok || t.ConsumedAt != nil || !time.Now().Before(t.ExpiresAt) {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	t.ConsumedAt = &now
	return nil
}

func (r *stubTokenRepo) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for k, t := range r.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

var _ repository.OneTimeTokenRepository = (*stubTokenRepo)(nil)

// stubAPIKeyRepo for the public partner API tests.
type stubAPIKeyRepo struct {
	keys     map[string]*model.APIKey
	lastUsed map[string]time.Time
}

func newStubAPIKeyRepo() *stubAPIKeyRepo {
	return &stubAPIKeyRepo{keys: make(map[string]*model.APIKey), lastUsed: make(map[string]time.Time)}
}

func (r *stubAPIKeyRepo) Create(_ context.Context, k *model.APIKey) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	r.keys[k.KeyHash] = k
	return nil
}

func (r *stubAPIKeyRepo) FindActiveByHash(_ context.Context, keyHash string) (*model.APIKey, error) {
	k, ok := r.keys[keyHash]
	if !ok || !k.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return k, nil
}

func (r *stubAPIKeyRepo) TouchLastUsed(_ context.Context, keyHash string) error {
	r.lastUsed[keyHash] = time.Now()
	return nil
}

var _ repository.APIKeyRepository = (*stubAPIKeyRepo)(nil)

// ── Fixtures ─────────────────────────────────────────────────────────────────

func decp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

// newCostTable builds a retail table covering visa and mastercard: debit,
// credit, credit_2x and pix on POS, plus an anticipation line.
func newCostTable() model.CostTable {
	return model.CostTable{
		ID:           uuid.New(),
		SupplierID:   uuid.New(),
		Category:     "retail",
		DebitPos:     decp("0.9900"),
		CreditPos:    decp("2.5000"),
		Credit2xPos:  decp("3.1000"),
		PixPercent:   decp("0.7500"),
		Anticipation: decp("1.9900"),
		Brands:       "visa,mastercard",
		Version:      1,
	}
}

// fixture bundles the stub repositories and a ready-made tenant: one ISO with
// a configured Outbank margin, one draft link on a retail cost table, one
// operator with an explicit membership and one full-access outsider.
// stubIsoRepo is an in-memory IsoRepository.
type stubIsoRepo struct {
	isos map[uuid.UUID]*model.ISO
}

func newStubIsoRepo() *stubIsoRepo {
	return &stubIsoRepo{isos: make(map[uuid.UUID]*model.ISO)}
}

func (r *stubIsoRepo) Create(_ context.Context, iso *model.ISO) error {
	if iso.ID == uuid.Nil {
		iso.ID = uuid.New()
	}
	r.isos[iso.ID] = iso
	return nil
}

func (r *stubIsoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ISO, error) {
	iso, ok := r.isos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *iso
	return &cp, nil
}

func (r *stubIsoRepo) List(_ context.Context) ([]model.ISO, error) {
	out := make([]model.ISO, 0, len(r.isos))
	for _, iso := range r.isos {
		if iso.Active {
			out = append(out, *iso)
		}
	}
	return out, nil
}

func (r *stubIsoRepo) SetOutbankMargin(_ context.Context, id uuid.UUID, margin decimal.Decimal) error {
	iso, ok := r.isos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	iso.OutbankMargin = &margin
	return nil
}

var _ repository.IsoRepository = (*stubIsoRepo)(nil)

// stubTableRepo is an in-memory CostTableRepository.
type stubTableRepo struct {
	tables map[uuid.UUID]*model.CostTable
}

func newStubTableRepo() *stubTableRepo {
	return &stubTableRepo{tables: make(map[uuid.UUID]*model.CostTable)}
}

func (r *stubTableRepo) Create(_ context.Context, t *model.CostTable) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.tables[t.ID] = t
	return nil
}

func (r *stubTableRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CostTable, error) {
	t, ok := r.tables[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubTableRepo) ListBySupplier(_ context.Context, supplierID uuid.UUID) ([]model.CostTable, error) {
	var out []model.CostTable
	for _, t := range r.tables {
		if t.SupplierID == supplierID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTableRepo) Supersede(_ context.Context, oldID, newID uuid.UUID) error {
	old, ok := r.tables[oldID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	old.SupersededByID = &newID
	return nil
}

var _ repository.CostTableRepository = (*stubTableRepo)(nil)

type fixture struct {
	links     *stubLinkRepo
	margins   *stubMarginRepo
	snapshots *stubSnapshotRepo
	history   *stubHistoryRepo
	users     *stubUserRepo
	isoRepo   *stubIsoRepo
	tables    *stubTableRepo

	iso      model.ISO
	table    model.CostTable
	link     *model.IsoLink
	operator *model.User
	outsider *model.User
}

func newFixture() *fixture {
	f := &fixture{
		links:     newStubLinkRepo(),
		margins:   newStubMarginRepo(),
		snapshots: newStubSnapshotRepo(),
		history:   newStubHistoryRepo(),
		users:     newStubUserRepo(),
		isoRepo:   newStubIsoRepo(),
		tables:    newStubTableRepo(),
	}

	email := "ops@acme-iso.example"
	f.iso = model.ISO{
		ID:            uuid.New(),
		Name:          "Acme ISO",
		Document:      "12345678000100",
		Hostname:      "acme",
		ContactEmail:  &email,
		OutbankMargin: decp("2.5000"),
		Active:        true,
	}
	f.table = newCostTable()
	f.isoRepo.isos[f.iso.ID] = &f.iso
	f.tables.tables[f.table.ID] = &f.table

	f.link = &model.IsoLink{
		ID:          uuid.New(),
		IsoID:       f.iso.ID,
		CostTableID: f.table.ID,
		Status:      pricing.StatusDraft,
		Iso:         f.iso,
		CostTable:   f.table,
	}
	f.links.links[f.link.ID] = f.link
	f.snapshots.linkIso[f.link.ID] = f.iso.ID

	f.operator = &model.User{
		ID:       uuid.New(),
		Username: "operator",
		Name:     "Tenant Operator",
		Email:    "operator@acme-iso.example",
		Role:     model.RoleIsoOperator,
		Active:   true,
	}
	_ = f.users.Create(context.Background(), f.operator)
	_ = f.users.AddMembership(context.Background(), &model.IsoMembership{
		UserID: f.operator.ID,
		IsoID:  f.iso.ID,
		Kind:   model.MembershipOrdinary,
	})

	f.outsider = &model.User{
		ID:         uuid.New(),
		Username:   "auditor",
		Name:       "Global Auditor",
		Email:      "auditor@outbank.example",
		Role:       model.RoleOperator,
		FullAccess: true,
		Active:     true,
	}
	_ = f.users.Create(context.Background(), f.outsider)

	return f
}

// setOutbankMargin rewrites the ISO margin on the fixture and on the stored
// link's preloaded association.
func (f *fixture) setOutbankMargin(v *decimal.Decimal) {
	f.iso.OutbankMargin = v
	f.link.Iso.OutbankMargin = v
	f.links.links[f.link.ID].Iso.OutbankMargin = v
}
