package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// CampaignAverages computes every campaign's mean product value and
	// margin in one grouped query.
	CampaignAverages(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (map[snowflake.ID]Averages, error)
}
