package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/analytics/domain"
	campaigndomain "github.com/promoforge/promoforge/internal/campaign/domain"
	coupondomain "github.com/promoforge/promoforge/internal/coupon/domain"
	enduserdomain "github.com/promoforge/promoforge/internal/enduser/domain"
	"github.com/promoforge/promoforge/internal/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// utf8BOM is prepended to CSV exports so spreadsheet tools detect the
// encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"code", "status", "issued_at", "redeemed_at",
	"campaign_name", "user_email", "user_first_name", "user_last_name",
	"discount_type", "discount_value", "discount_amount",
	"avg_value", "avg_margin",
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      domain.Repository
	Campaigns campaigndomain.Repository
	Coupons   coupondomain.Repository
	Users     enduserdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	campaigns campaigndomain.Repository
	coupons   coupondomain.Repository
	users     enduserdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("analytics.service"),
		repo:      p.Repo,
		campaigns: p.Campaigns,
		coupons:   p.Coupons,
		users:     p.Users,
	}
}

// snapshot is the shared working set behind every report: the tenant's
// campaigns, the filtered coupons and the precomputed averages map.
type snapshot struct {
	campaigns []*campaigndomain.Campaign
	coupons   []*coupondomain.Coupon
	averages  map[snowflake.ID]domain.Averages
}

func (s *Service) collect(ctx context.Context, filter domain.Filter) (*snapshot, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	if filter.Status != "" {
		switch filter.Status {
		case coupondomain.StatusActive, coupondomain.StatusRedeemed, coupondomain.StatusExpired:
		default:
			return nil, domain.ErrInvalidFilter
		}
	}

	campaigns, err := s.campaigns.List(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if filter.CampaignID != 0 {
		kept := campaigns[:0]
		for _, c := range campaigns {
			if c.ID == filter.CampaignID {
				kept = append(kept, c)
			}
		}
		campaigns = kept
	}

	coupons, err := s.coupons.ListByCampaign(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	coupons = applyFilter(coupons, filter)

	averages, err := s.repo.CampaignAverages(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	return &snapshot{campaigns: campaigns, coupons: coupons, averages: averages}, nil
}

func applyFilter(coupons []*coupondomain.Coupon, filter domain.Filter) []*coupondomain.Coupon {
	kept := make([]*coupondomain.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if filter.CampaignID != 0 && c.CampaignID != filter.CampaignID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Start != nil && c.IssuedAt.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && !c.IssuedAt.Before(*filter.End) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// discountOf applies the campaign's average product value to the
// coupon's frozen discount snapshot.
func discountOf(c *coupondomain.Coupon, avg domain.Averages) float64 {
	switch c.DiscountType {
	case campaigndomain.DiscountPercent:
		return avg.AvgValue * c.DiscountValue / 100
	case campaigndomain.DiscountFixed:
		return c.DiscountValue
	default:
		return 0
	}
}

func tally(coupons []*coupondomain.Coupon, averages map[snowflake.ID]domain.Averages) domain.SummaryReport {
	var report domain.SummaryReport
	for _, c := range coupons {
		avg := averages[c.CampaignID]
		discount := discountOf(c, avg)

		report.TotalCouponsIssued++
		report.EstimatedDiscountIssued += discount
		if c.Status != coupondomain.StatusRedeemed {
			continue
		}
		report.TotalCouponsRedeemed++
		report.EstimatedDiscountRedeemed += discount
		report.EstimatedGrossMargin += avg.AvgMargin
	}

	if report.TotalCouponsIssued > 0 {
		report.RedemptionRate = float64(report.TotalCouponsRedeemed) / float64(report.TotalCouponsIssued)
	}
	net := report.EstimatedGrossMargin - report.EstimatedDiscountRedeemed
	if net < 0 {
		net = 0
	}
	report.EstimatedNetMargin = net
	return report
}

func (s *Service) Summary(ctx context.Context, filter domain.Filter) (domain.SummaryReport, error) {
	snap, err := s.collect(ctx, filter)
	if err != nil {
		return domain.SummaryReport{}, err
	}

	report := tally(snap.coupons, snap.averages)
	report.TotalCampaigns = len(snap.campaigns)
	return report, nil
}

func (s *Service) Campaigns(ctx context.Context, filter domain.Filter) ([]domain.CampaignReport, error) {
	snap, err := s.collect(ctx, filter)
	if err != nil {
		return nil, err
	}

	byCampaign := make(map[snowflake.ID][]*coupondomain.Coupon)
	for _, c := range snap.coupons {
		byCampaign[c.CampaignID] = append(byCampaign[c.CampaignID], c)
	}

	reports := make([]domain.CampaignReport, 0, len(snap.campaigns))
	for _, campaign := range snap.campaigns {
		summary := tally(byCampaign[campaign.ID], snap.averages)
		summary.TotalCampaigns = 1
		reports = append(reports, domain.CampaignReport{
			CampaignID:    campaign.ID.String(),
			CampaignCode:  campaign.CampaignCode,
			Name:          campaign.Name,
			IsActive:      campaign.IsActive,
			SummaryReport: summary,
		})
	}
	return reports, nil
}

func (s *Service) Temporal(ctx context.Context, filter domain.Filter, granularity string) (domain.TemporalReport, error) {
	if granularity == "" {
		granularity = domain.GranularityDay
	}
	if granularity != domain.GranularityDay && granularity != domain.GranularityWeek {
		return domain.TemporalReport{}, domain.ErrInvalidGranularity
	}

	snap, err := s.collect(ctx, filter)
	if err != nil {
		return domain.TemporalReport{}, err
	}

	buckets := make(map[string]*domain.TemporalBucket)
	at := func(p string) *domain.TemporalBucket {
		b, ok := buckets[p]
		if !ok {
			b = &domain.TemporalBucket{Period: p}
			buckets[p] = b
		}
		return b
	}

	for _, c := range snap.coupons {
		avg := snap.averages[c.CampaignID]
		issued := at(period(c.IssuedAt, granularity))
		issued.Issued++
		issued.DiscountApplied += discountOf(c, avg)
		if c.RedeemedAt != nil {
			redeemed := at(period(*c.RedeemedAt, granularity))
			redeemed.Redeemed++
			redeemed.GrossMargin += avg.AvgMargin
		}
	}

	periods := make([]string, 0, len(buckets))
	for p := range buckets {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	report := domain.TemporalReport{
		Granularity: granularity,
		Buckets:     make([]domain.TemporalBucket, 0, len(periods)),
	}
	for _, p := range periods {
		report.Buckets = append(report.Buckets, *buckets[p])
	}
	return report, nil
}

func (s *Service) exportRows(ctx context.Context, filter domain.Filter) ([]domain.ExportRow, error) {
	snap, err := s.collect(ctx, filter)
	if err != nil {
		return nil, err
	}

	tenantID, _ := tenantctx.TenantIDFromContext(ctx)
	users, err := s.users.List(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	userByID := make(map[snowflake.ID]*enduserdomain.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}
	campaignByID := make(map[snowflake.ID]*campaigndomain.Campaign, len(snap.campaigns))
	for _, c := range snap.campaigns {
		campaignByID[c.ID] = c
	}

	rows := make([]domain.ExportRow, 0, len(snap.coupons))
	for _, coupon := range snap.coupons {
		avg := snap.averages[coupon.CampaignID]
		row := domain.ExportRow{
			Code:           coupon.Code,
			Status:         coupon.Status,
			IssuedAt:       coupon.IssuedAt,
			RedeemedAt:     coupon.RedeemedAt,
			DiscountType:   coupon.DiscountType,
			DiscountValue:  coupon.DiscountValue,
			DiscountAmount: discountOf(coupon, avg),
			AvgValue:       avg.AvgValue,
			AvgMargin:      avg.AvgMargin,
		}
		if campaign, ok := campaignByID[coupon.CampaignID]; ok {
			row.CampaignName = campaign.Name
		}
		if user, ok := userByID[coupon.UserID]; ok {
			row.UserEmail = user.Email
			row.UserFirstName = user.FirstName
			row.UserLastName = user.LastName
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Service) ExportJSON(ctx context.Context, filter domain.Filter) ([]domain.ExportRow, error) {
	return s.exportRows(ctx, filter)
}

func (s *Service) ExportCSV(ctx context.Context, filter domain.Filter) ([]byte, error) {
	rows, err := s.exportRows(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	writeCSVRow(&buf, csvHeader)
	for _, row := range rows {
		redeemedAt := ""
		if row.RedeemedAt != nil {
			redeemedAt = row.RedeemedAt.UTC().Format(time.RFC3339)
		}
		writeCSVRow(&buf, []string{
			row.Code,
			row.Status,
			row.IssuedAt.UTC().Format(time.RFC3339),
			redeemedAt,
			row.CampaignName,
			row.UserEmail,
			row.UserFirstName,
			row.UserLastName,
			row.DiscountType,
			formatFloat(row.DiscountValue),
			formatFloat(row.DiscountAmount),
			formatFloat(row.AvgValue),
			formatFloat(row.AvgMargin),
		})
	}
	return buf.Bytes(), nil
}

// writeCSVRow quotes every field unconditionally, doubling embedded
// quotes. encoding/csv only quotes when forced, which trips up the
// spreadsheet importers this export targets.
func writeCSVRow(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func period(t time.Time, granularity string) string {
	t = t.UTC()
	if granularity == domain.GranularityWeek {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return t.Format("2006-01-02")
}
