package domain

import (
	"context"
	"errors"
)

type Service interface {
	Summary(ctx context.Context, filter Filter) (SummaryReport, error)
	Campaigns(ctx context.Context, filter Filter) ([]CampaignReport, error)
	Temporal(ctx context.Context, filter Filter, granularity string) (TemporalReport, error)

	// ExportCSV renders the per-coupon join as UTF-8 CSV with a BOM,
	// every field quoted, so spreadsheet tools import it cleanly.
	ExportCSV(ctx context.Context, filter Filter) ([]byte, error)
	ExportJSON(ctx context.Context, filter Filter) ([]ExportRow, error)
}

var (
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrInvalidGranularity = errors.New("invalid_granularity")
	ErrInvalidFilter      = errors.New("invalid_filter")
)
