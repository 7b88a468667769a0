package service

import (
	"bytes"
	"context"
	"math"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/analytics/domain"
	"github.com/promoforge/promoforge/internal/analytics/repository"
	campaigndomain "github.com/promoforge/promoforge/internal/campaign/domain"
	campaignrepository "github.com/promoforge/promoforge/internal/campaign/repository"
	coupondomain "github.com/promoforge/promoforge/internal/coupon/domain"
	couponrepository "github.com/promoforge/promoforge/internal/coupon/repository"
	enduserdomain "github.com/promoforge/promoforge/internal/enduser/domain"
	enduserrepository "github.com/promoforge/promoforge/internal/enduser/repository"
	productdomain "github.com/promoforge/promoforge/internal/product/domain"
	"github.com/promoforge/promoforge/internal/tenantctx"
	"github.com/promoforge/promoforge/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type analyticsFixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&campaigndomain.Campaign{},
		&coupondomain.Coupon{},
		&productdomain.Product{},
		&productdomain.CampaignProduct{},
		&enduserdomain.User{},
		&enduserdomain.CustomDatum{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	svc := New(Params{
		DB:        dbConn,
		Log:       zap.NewNop(),
		Repo:      repository.Provide(),
		Campaigns: campaignrepository.Provide(),
		Coupons:   couponrepository.Provide(),
		Users:     enduserrepository.Provide(),
	})
	return &analyticsFixture{svc: svc, db: dbConn, node: node}
}

// seedWorkedExample builds one campaign with two attached products
// (value 100 margin 30, value 200 margin 50), a 10 percent discount and
// three issued coupons of which two are redeemed. The averages are 150
// and 40, so each coupon is worth 15 of discount.
func (f *analyticsFixture) seedWorkedExample(t *testing.T) (context.Context, campaigndomain.Campaign) {
	t.Helper()
	tenantID := f.node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), int64(tenantID))

	campaign := campaigndomain.Campaign{
		ID:            f.node.Generate(),
		TenantID:      tenantID,
		CampaignCode:  "SPRING10SALE",
		Name:          "spring",
		DiscountType:  campaigndomain.DiscountPercent,
		DiscountValue: 10,
		IsActive:      true,
		CreatedAt:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := f.db.Create(&campaign).Error; err != nil {
		t.Fatalf("seed campaign: %v", err)
	}

	products := []productdomain.Product{
		{ID: f.node.Generate(), TenantID: tenantID, Name: "basic", Value: 100, MarginPrice: 30, SKU: "SKU-1"},
		{ID: f.node.Generate(), TenantID: tenantID, Name: "plus", Value: 200, MarginPrice: 50, SKU: "SKU-2"},
	}
	for i := range products {
		if err := f.db.Create(&products[i]).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
		link := productdomain.CampaignProduct{CampaignID: campaign.ID, ProductID: products[i].ID}
		if err := f.db.Create(&link).Error; err != nil {
			t.Fatalf("seed campaign product: %v", err)
		}
	}

	user := enduserdomain.User{
		ID: f.node.Generate(), TenantID: tenantID,
		Email: "jamie@example.com", FirstName: "Jamie", LastName: "Lee",
		CreatedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	issuedAt := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	redeemedAt := time.Date(2026, 4, 3, 15, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		coupon := coupondomain.Coupon{
			ID:            f.node.Generate(),
			TenantID:      tenantID,
			CampaignID:    campaign.ID,
			UserID:        user.ID,
			Code:          "COUPON00000" + string(rune('A'+i)),
			DiscountType:  campaigndomain.DiscountPercent,
			DiscountValue: 10,
			Status:        coupondomain.StatusActive,
			IssuedAt:      issuedAt.Add(time.Duration(i) * time.Minute),
			CreatedAt:     issuedAt,
		}
		if i < 2 {
			coupon.Status = coupondomain.StatusRedeemed
			at := redeemedAt
			coupon.RedeemedAt = &at
		}
		if err := f.db.Create(&coupon).Error; err != nil {
			t.Fatalf("seed coupon: %v", err)
		}
	}
	return ctx, campaign
}

func almost(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestSummaryWorkedExample(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx, _ := f.seedWorkedExample(t)

	report, err := f.svc.Summary(ctx, domain.Filter{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if report.TotalCampaigns != 1 {
		t.Fatalf("campaigns = %d", report.TotalCampaigns)
	}
	if report.TotalCouponsIssued != 3 || report.TotalCouponsRedeemed != 2 {
		t.Fatalf("issued=%d redeemed=%d", report.TotalCouponsIssued, report.TotalCouponsRedeemed)
	}
	if !almost(report.RedemptionRate, 2.0/3.0) {
		t.Fatalf("redemption rate = %v", report.RedemptionRate)
	}
	if !almost(report.EstimatedDiscountIssued, 45) {
		t.Fatalf("discount issued = %v, want 45", report.EstimatedDiscountIssued)
	}
	if !almost(report.EstimatedDiscountRedeemed, 30) {
		t.Fatalf("discount redeemed = %v, want 30", report.EstimatedDiscountRedeemed)
	}
	if !almost(report.EstimatedGrossMargin, 80) {
		t.Fatalf("gross margin = %v, want 80", report.EstimatedGrossMargin)
	}
	if !almost(report.EstimatedNetMargin, 50) {
		t.Fatalf("net margin = %v, want 50", report.EstimatedNetMargin)
	}
}

func TestSummaryStatusAndDateFilters(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx, _ := f.seedWorkedExample(t)

	redeemedOnly, err := f.svc.Summary(ctx, domain.Filter{Status: coupondomain.StatusRedeemed})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if redeemedOnly.TotalCouponsIssued != 2 {
		t.Fatalf("filtered issued = %d, want 2", redeemedOnly.TotalCouponsIssued)
	}

	// End is exclusive, so a window ending at issuance matches nothing.
	end := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	empty, err := f.svc.Summary(ctx, domain.Filter{End: &end})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if empty.TotalCouponsIssued != 0 {
		t.Fatalf("windowed issued = %d, want 0", empty.TotalCouponsIssued)
	}
	if empty.RedemptionRate != 0 {
		t.Fatalf("rate on empty set = %v", empty.RedemptionRate)
	}

	if _, err := f.svc.Summary(ctx, domain.Filter{Status: "torn"}); err != domain.ErrInvalidFilter {
		t.Fatalf("bad status: err = %v, want %v", err, domain.ErrInvalidFilter)
	}
	if _, err := f.svc.Summary(context.Background(), domain.Filter{}); err != domain.ErrInvalidTenant {
		t.Fatalf("missing tenant: err = %v, want %v", err, domain.ErrInvalidTenant)
	}
}

func TestCampaignReportsZeroFilled(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx, campaign := f.seedWorkedExample(t)

	tenantID, _ := tenantctx.TenantIDFromContext(ctx)
	idle := campaigndomain.Campaign{
		ID:            f.node.Generate(),
		TenantID:      tenantID,
		CampaignCode:  "IDLE00000000",
		Name:          "idle",
		DiscountType:  campaigndomain.DiscountFixed,
		DiscountValue: 5,
		CreatedAt:     time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
	}
	if err := f.db.Create(&idle).Error; err != nil {
		t.Fatalf("seed idle campaign: %v", err)
	}

	reports, err := f.svc.Campaigns(ctx, domain.Filter{})
	if err != nil {
		t.Fatalf("campaigns: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}

	byID := map[string]domain.CampaignReport{}
	for _, r := range reports {
		byID[r.CampaignID] = r
	}

	active := byID[campaign.ID.String()]
	if active.TotalCouponsIssued != 3 || !almost(active.EstimatedDiscountIssued, 45) {
		t.Fatalf("active report = %+v", active)
	}

	zero := byID[idle.ID.String()]
	if zero.CampaignCode != "IDLE00000000" {
		t.Fatalf("idle campaign missing from reports: %+v", reports)
	}
	if zero.TotalCouponsIssued != 0 || zero.EstimatedDiscountIssued != 0 || zero.RedemptionRate != 0 {
		t.Fatalf("idle report not zero filled: %+v", zero)
	}
}

func TestTemporalBuckets(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx, _ := f.seedWorkedExample(t)

	report, err := f.svc.Temporal(ctx, domain.Filter{}, domain.GranularityDay)
	if err != nil {
		t.Fatalf("temporal: %v", err)
	}
	if len(report.Buckets) != 2 {
		t.Fatalf("buckets = %+v", report.Buckets)
	}

	issued := report.Buckets[0]
	if issued.Period != "2026-04-02" || issued.Issued != 3 || issued.Redeemed != 0 {
		t.Fatalf("issuance bucket = %+v", issued)
	}
	if !almost(issued.DiscountApplied, 45) {
		t.Fatalf("discount applied = %v, want 45", issued.DiscountApplied)
	}

	redeemed := report.Buckets[1]
	if redeemed.Period != "2026-04-03" || redeemed.Issued != 0 || redeemed.Redeemed != 2 {
		t.Fatalf("redemption bucket = %+v", redeemed)
	}
	if !almost(redeemed.GrossMargin, 80) {
		t.Fatalf("gross margin = %v, want 80", redeemed.GrossMargin)
	}

	weekly, err := f.svc.Temporal(ctx, domain.Filter{}, domain.GranularityWeek)
	if err != nil {
		t.Fatalf("temporal week: %v", err)
	}
	if len(weekly.Buckets) != 1 || weekly.Buckets[0].Period != "2026-W14" {
		t.Fatalf("weekly buckets = %+v", weekly.Buckets)
	}

	if _, err := f.svc.Temporal(ctx, domain.Filter{}, "hourly"); err != domain.ErrInvalidGranularity {
		t.Fatalf("bad granularity: err = %v, want %v", err, domain.ErrInvalidGranularity)
	}
}

func TestExportCSVShape(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx, campaign := f.seedWorkedExample(t)

	name := `spring "flash" sale`
	if err := f.db.Model(&campaigndomain.Campaign{}).Where("id = ?", campaign.ID).Update("name", name).Error; err != nil {
		t.Fatalf("rename campaign: %v", err)
	}

	out, err := f.svc.ExportCSV(ctx, domain.Filter{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if !bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("missing UTF-8 BOM")
	}

	body := bytes.TrimPrefix(out, []byte{0xEF, 0xBB, 0xBF})
	lines := bytes.Split(bytes.TrimSuffix(body, []byte("\r\n")), []byte("\r\n"))
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header plus 3 rows", len(lines))
	}

	for i, line := range lines {
		if !bytes.HasPrefix(line, []byte(`"`)) || !bytes.HasSuffix(line, []byte(`"`)) {
			t.Fatalf("line %d not quoted: %s", i, line)
		}
	}
	if !bytes.HasPrefix(lines[0], []byte(`"code","status","issued_at"`)) {
		t.Fatalf("header = %s", lines[0])
	}
	if !bytes.Contains(body, []byte(`"spring ""flash"" sale"`)) {
		t.Fatalf("embedded quotes not doubled: %s", body)
	}
	if !bytes.Contains(body, []byte(`"15.00"`)) {
		t.Fatalf("discount amount missing: %s", body)
	}
}

func TestExportJSONMatchesSummary(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx, _ := f.seedWorkedExample(t)

	rows, err := f.svc.ExportJSON(ctx, domain.Filter{})
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	var total float64
	for _, row := range rows {
		if !almost(row.AvgValue, 150) || !almost(row.AvgMargin, 40) {
			t.Fatalf("averages = %v/%v, want 150/40", row.AvgValue, row.AvgMargin)
		}
		if row.UserEmail != "jamie@example.com" {
			t.Fatalf("user email = %q", row.UserEmail)
		}
		total += row.DiscountAmount
	}

	summary, err := f.svc.Summary(ctx, domain.Filter{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !almost(total, summary.EstimatedDiscountIssued) {
		t.Fatalf("export total %v != summary %v", total, summary.EstimatedDiscountIssued)
	}
}
