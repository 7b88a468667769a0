package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Averages holds a campaign's mean associated-product value and margin.
// Computed once per report in a single grouped query and shared by every
// consumer of that report, never recomputed per coupon.
type Averages struct {
	AvgValue  float64 `json:"avg_value"`
	AvgMargin float64 `json:"avg_margin"`
}

// Filter scopes a report. Zero values mean unfiltered.
type Filter struct {
	Start      *time.Time
	End        *time.Time
	CampaignID snowflake.ID
	Status     string
}

// SummaryReport aggregates the whole tenant under one filter.
type SummaryReport struct {
	TotalCampaigns            int     `json:"total_campaigns"`
	TotalCouponsIssued        int64   `json:"total_coupons_issued"`
	TotalCouponsRedeemed      int64   `json:"total_coupons_redeemed"`
	RedemptionRate            float64 `json:"redemption_rate"`
	EstimatedDiscountIssued   float64 `json:"estimated_discount_issued"`
	EstimatedDiscountRedeemed float64 `json:"estimated_discount_redeemed"`
	EstimatedGrossMargin      float64 `json:"estimated_gross_margin_on_redeemed"`
	EstimatedNetMargin        float64 `json:"estimated_net_margin_after_discount"`
}

// CampaignReport is the summary shape grouped by campaign. Campaigns
// without matching coupons still appear, zero filled.
type CampaignReport struct {
	CampaignID   string `json:"campaign_id"`
	CampaignCode string `json:"campaign_code"`
	Name         string `json:"name"`
	IsActive     bool   `json:"is_active"`
	SummaryReport
}

const (
	GranularityDay  = "day"
	GranularityWeek = "week"
)

// TemporalBucket counts issuance, redemption and money in one period.
type TemporalBucket struct {
	Period          string  `json:"period"`
	Issued          int64   `json:"issued"`
	Redeemed        int64   `json:"redeemed"`
	DiscountApplied float64 `json:"discount_applied"`
	GrossMargin     float64 `json:"gross_margin"`
}

// TemporalReport is the issuance/redemption series for a tenant.
type TemporalReport struct {
	Granularity string           `json:"granularity"`
	Buckets     []TemporalBucket `json:"buckets"`
}

// ExportRow is one coupon joined with its campaign, user and the
// precomputed campaign averages.
type ExportRow struct {
	Code           string     `json:"code"`
	Status         string     `json:"status"`
	IssuedAt       time.Time  `json:"issued_at"`
	RedeemedAt     *time.Time `json:"redeemed_at,omitempty"`
	CampaignName   string     `json:"campaign_name"`
	UserEmail      string     `json:"user_email"`
	UserFirstName  string     `json:"user_first_name"`
	UserLastName   string     `json:"user_last_name"`
	DiscountType   string     `json:"discount_type"`
	DiscountValue  float64    `json:"discount_value"`
	DiscountAmount float64    `json:"discount_amount"`
	AvgValue       float64    `json:"avg_value"`
	AvgMargin      float64    `json:"avg_margin"`
}
