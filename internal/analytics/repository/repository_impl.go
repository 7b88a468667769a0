package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/analytics/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type averageRow struct {
	CampaignID snowflake.ID `gorm:"column:campaign_id"`
	AvgValue   float64      `gorm:"column:avg_value"`
	AvgMargin  float64      `gorm:"column:avg_margin"`
}

func (r *repo) CampaignAverages(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (map[snowflake.ID]domain.Averages, error) {
	var rows []averageRow
	err := db.WithContext(ctx).Raw(`
		SELECT cp.campaign_id AS campaign_id,
		       AVG(p.value) AS avg_value,
		       AVG(p.margin_price) AS avg_margin
		FROM campaign_products cp
		JOIN products p ON p.id = cp.product_id
		WHERE p.tenant_id = ?
		GROUP BY cp.campaign_id`, tenantID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	averages := make(map[snowflake.ID]domain.Averages, len(rows))
	for _, row := range rows {
		averages[row.CampaignID] = domain.Averages{
			AvgValue:  row.AvgValue,
			AvgMargin: row.AvgMargin,
		}
	}
	return averages, nil
}
