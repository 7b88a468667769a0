package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	campaigndomain "github.com/promoforge/promoforge/internal/campaign/domain"
	campaignrepository "github.com/promoforge/promoforge/internal/campaign/repository"
	"github.com/promoforge/promoforge/internal/clock"
	"github.com/promoforge/promoforge/internal/formlink/domain"
	"github.com/promoforge/promoforge/internal/formlink/repository"
	"github.com/promoforge/promoforge/internal/tenantctx"
	"github.com/promoforge/promoforge/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type linkFixture struct {
	svc   domain.Service
	repo  domain.Repository
	clock *clock.FakeClock
	db    *gorm.DB
	node  *snowflake.Node
}

func newLinkFixture(t *testing.T) *linkFixture {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.FormLink{}, &campaigndomain.Campaign{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))
	linkRepo := repository.Provide()

	svc := New(Params{
		DB:        dbConn,
		Log:       zap.NewNop(),
		Clock:     fake,
		GenID:     node,
		Repo:      linkRepo,
		Campaigns: campaignrepository.Provide(),
	})
	return &linkFixture{svc: svc, repo: linkRepo, clock: fake, db: dbConn, node: node}
}

func (f *linkFixture) seedCampaign(t *testing.T, active bool, expiry *time.Time) (context.Context, campaigndomain.Campaign) {
	t.Helper()
	tenantID := f.node.Generate()
	campaign := campaigndomain.Campaign{
		ID:            f.node.Generate(),
		TenantID:      tenantID,
		CampaignCode:  "CODE" + tenantID.String()[:8],
		Name:          "welcome",
		Description:   "10% off your first order",
		DiscountType:  campaigndomain.DiscountPercent,
		DiscountValue: 10,
		IsActive:      active,
		ExpiryDate:    expiry,
		CreatedAt:     f.clock.Now(),
		UpdatedAt:     f.clock.Now(),
	}
	if err := f.db.Create(&campaign).Error; err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
	ctx := tenantctx.WithTenantID(context.Background(), int64(tenantID))
	return ctx, campaign
}

func TestGenerateLinks(t *testing.T) {
	f := newLinkFixture(t)
	ctx, campaign := f.seedCampaign(t, true, nil)

	links, err := f.svc.GenerateLinks(ctx, campaign.ID.String(), 5)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(links) != 5 {
		t.Fatalf("got %d links, want 5", len(links))
	}

	seen := map[string]bool{}
	for _, link := range links {
		if len(link.Token) != domain.TokenLength {
			t.Fatalf("token %q has length %d", link.Token, len(link.Token))
		}
		if seen[link.Token] {
			t.Fatalf("duplicate token %q", link.Token)
		}
		seen[link.Token] = true
		if link.Used() {
			t.Fatal("fresh link reads as used")
		}
	}
}

func TestGenerateLinksBounds(t *testing.T) {
	f := newLinkFixture(t)
	ctx, campaign := f.seedCampaign(t, true, nil)

	if _, err := f.svc.GenerateLinks(ctx, campaign.ID.String(), 0); err != domain.ErrInvalidCount {
		t.Fatalf("count 0: err = %v, want %v", err, domain.ErrInvalidCount)
	}
	if _, err := f.svc.GenerateLinks(ctx, campaign.ID.String(), domain.MaxBatchSize+1); err != domain.ErrInvalidCount {
		t.Fatalf("oversize: err = %v, want %v", err, domain.ErrInvalidCount)
	}
	if _, err := f.svc.GenerateLinks(ctx, f.node.Generate().String(), 1); err != domain.ErrCampaignNotFound {
		t.Fatalf("unknown campaign: err = %v, want %v", err, domain.ErrCampaignNotFound)
	}
	if _, err := f.svc.GenerateLinks(context.Background(), campaign.ID.String(), 1); err != domain.ErrInvalidTenant {
		t.Fatalf("missing tenant: err = %v, want %v", err, domain.ErrInvalidTenant)
	}
}

func TestListLinksStats(t *testing.T) {
	f := newLinkFixture(t)
	ctx, campaign := f.seedCampaign(t, true, nil)

	links, err := f.svc.GenerateLinks(ctx, campaign.ID.String(), 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	usedAt := f.clock.Now()
	couponID := f.node.Generate()
	links[0].UsedAt = &usedAt
	links[0].CouponID = &couponID
	if affected, err := f.repo.MarkUsed(ctx, f.db, &links[0]); err != nil || affected != 1 {
		t.Fatalf("mark used: affected=%d err=%v", affected, err)
	}

	listed, stats, err := f.svc.ListLinks(ctx, campaign.ID.String())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("got %d links", len(listed))
	}
	if stats.Total != 3 || stats.Used != 1 || stats.Available != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestResolveToken(t *testing.T) {
	f := newLinkFixture(t)
	ctx, campaign := f.seedCampaign(t, true, nil)

	links, err := f.svc.GenerateLinks(ctx, campaign.ID.String(), 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	view, err := f.svc.ResolveToken(context.Background(), links[0].Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.CampaignName != "welcome" || view.DiscountType != campaigndomain.DiscountPercent || view.DiscountValue != 10 {
		t.Fatalf("view = %+v", view)
	}
	if !view.FormConfig.Email.Visible {
		t.Fatal("form config missing from view")
	}

	if _, err := f.svc.ResolveToken(context.Background(), "NOSUCHTOKEN00000"); err != domain.ErrTokenNotFound {
		t.Fatalf("unknown token: err = %v, want %v", err, domain.ErrTokenNotFound)
	}
}

func TestResolveTokenUsed(t *testing.T) {
	f := newLinkFixture(t)
	ctx, campaign := f.seedCampaign(t, true, nil)

	links, err := f.svc.GenerateLinks(ctx, campaign.ID.String(), 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	usedAt := f.clock.Now()
	links[0].UsedAt = &usedAt
	if _, err := f.repo.MarkUsed(ctx, f.db, &links[0]); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	if _, err := f.svc.ResolveToken(context.Background(), links[0].Token); err != domain.ErrTokenUsed {
		t.Fatalf("err = %v, want %v", err, domain.ErrTokenUsed)
	}
}

func TestResolveTokenDormantCampaign(t *testing.T) {
	f := newLinkFixture(t)

	ctx, inactive := f.seedCampaign(t, false, nil)
	links, err := f.svc.GenerateLinks(ctx, inactive.ID.String(), 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := f.svc.ResolveToken(context.Background(), links[0].Token); err != domain.ErrTokenNotFound {
		t.Fatalf("inactive campaign: err = %v, want %v", err, domain.ErrTokenNotFound)
	}

	expiry := f.clock.Now().Add(time.Hour)
	ctx2, expiring := f.seedCampaign(t, true, &expiry)
	links2, err := f.svc.GenerateLinks(ctx2, expiring.ID.String(), 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	f.clock.Advance(2 * time.Hour)
	if _, err := f.svc.ResolveToken(context.Background(), links2[0].Token); err != domain.ErrTokenNotFound {
		t.Fatalf("expired campaign: err = %v, want %v", err, domain.ErrTokenNotFound)
	}
}

func TestMarkUsedIsSingleShot(t *testing.T) {
	f := newLinkFixture(t)
	ctx, campaign := f.seedCampaign(t, true, nil)

	links, err := f.svc.GenerateLinks(ctx, campaign.ID.String(), 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	usedAt := f.clock.Now()
	links[0].UsedAt = &usedAt
	if affected, err := f.repo.MarkUsed(ctx, f.db, &links[0]); err != nil || affected != 1 {
		t.Fatalf("first mark: affected=%d err=%v", affected, err)
	}
	if affected, err := f.repo.MarkUsed(ctx, f.db, &links[0]); err != nil || affected != 0 {
		t.Fatalf("second mark: affected=%d err=%v", affected, err)
	}
}

func TestTokenUniqueAcrossTenants(t *testing.T) {
	f := newLinkFixture(t)
	_, campaignA := f.seedCampaign(t, true, nil)
	_, campaignB := f.seedCampaign(t, true, nil)
	ctx := context.Background()

	link := func(c campaigndomain.Campaign) *domain.FormLink {
		return &domain.FormLink{
			ID:         f.node.Generate(),
			TenantID:   c.TenantID,
			CampaignID: c.ID,
			Token:      "TOKEN0123456789A",
			CreatedAt:  f.clock.Now(),
		}
	}

	if err := f.repo.Insert(ctx, f.db, link(campaignA)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := f.repo.Insert(ctx, f.db, link(campaignB))
	if !db.IsDuplicateKeyErr(err) {
		t.Fatalf("token reused across tenants: err = %v, want duplicate key", err)
	}
}
