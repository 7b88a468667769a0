package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	campaigndomain "github.com/promoforge/promoforge/internal/campaign/domain"
	"github.com/promoforge/promoforge/internal/clock"
	"github.com/promoforge/promoforge/internal/formlink/domain"
	"github.com/promoforge/promoforge/internal/tenantctx"
	pkgdb "github.com/promoforge/promoforge/pkg/db"
	"github.com/promoforge/promoforge/pkg/randcode"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// tokenRetries bounds regeneration attempts on a global token collision.
// Exceeding it means the randomness source is broken, not bad luck.
const tokenRetries = 10

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	GenID     *snowflake.Node
	Repo      domain.Repository
	Campaigns campaigndomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	genID     *snowflake.Node
	repo      domain.Repository
	campaigns campaigndomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("formlink.service"),
		clock:     p.Clock,
		genID:     p.GenID,
		repo:      p.Repo,
		campaigns: p.Campaigns,
	}
}

func (s *Service) GenerateLinks(ctx context.Context, campaignID string, count int) ([]domain.FormLink, error) {
	tenantID, campaign, err := s.loadCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if count < 1 || count > domain.MaxBatchSize {
		return nil, domain.ErrInvalidCount
	}

	now := s.clock.Now()
	links := make([]domain.FormLink, 0, count)
	for i := 0; i < count; i++ {
		link, err := s.mintLink(ctx, tenantID, campaign.ID, now)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, nil
}

// mintLink inserts one link, regenerating the token when the unique
// index rejects it.
func (s *Service) mintLink(ctx context.Context, tenantID, campaignID snowflake.ID, now time.Time) (*domain.FormLink, error) {
	for attempt := 0; attempt < tokenRetries; attempt++ {
		token, err := randcode.New(domain.TokenLength)
		if err != nil {
			return nil, err
		}

		link := domain.FormLink{
			ID:         s.genID.Generate(),
			TenantID:   tenantID,
			CampaignID: campaignID,
			Token:      token,
			CreatedAt:  now,
		}

		err = s.repo.Insert(ctx, s.db, &link)
		if err == nil {
			return &link, nil
		}
		if !pkgdb.IsDuplicateKeyErr(err) {
			return nil, err
		}
		s.log.Warn("form link token collision, retrying",
			zap.String("campaign_id", campaignID.String()),
			zap.Int("attempt", attempt+1))
	}
	return nil, domain.ErrTokenGeneration
}

func (s *Service) ListLinks(ctx context.Context, campaignID string) ([]domain.FormLink, domain.Stats, error) {
	tenantID, campaign, err := s.loadCampaign(ctx, campaignID)
	if err != nil {
		return nil, domain.Stats{}, err
	}

	items, err := s.repo.ListByCampaign(ctx, s.db, tenantID, campaign.ID)
	if err != nil {
		return nil, domain.Stats{}, err
	}

	total, used, err := s.repo.CountByCampaign(ctx, s.db, tenantID, campaign.ID)
	if err != nil {
		return nil, domain.Stats{}, err
	}

	links := make([]domain.FormLink, 0, len(items))
	for _, item := range items {
		links = append(links, *item)
	}
	stats := domain.Stats{Total: total, Used: used, Available: total - used}
	return links, stats, nil
}

func (s *Service) ResolveToken(ctx context.Context, token string) (domain.FormView, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.FormView{}, domain.ErrTokenNotFound
	}

	link, err := s.repo.FindByToken(ctx, s.db, token)
	if err != nil {
		return domain.FormView{}, err
	}
	if link == nil {
		return domain.FormView{}, domain.ErrTokenNotFound
	}
	if link.Used() {
		return domain.FormView{}, domain.ErrTokenUsed
	}

	campaign, err := s.campaigns.FindByID(ctx, s.db, link.TenantID, link.CampaignID)
	if err != nil {
		return domain.FormView{}, err
	}
	if campaign == nil || !campaign.IsActive || campaign.Expired(s.clock.Now()) {
		return domain.FormView{}, domain.ErrTokenNotFound
	}

	cfg, err := campaign.ParseFormConfig()
	if err != nil {
		return domain.FormView{}, err
	}

	return domain.FormView{
		CampaignName:  campaign.Name,
		Description:   campaign.Description,
		DiscountType:  campaign.DiscountType,
		DiscountValue: campaign.DiscountValue,
		FormConfig:    cfg,
	}, nil
}

func (s *Service) loadCampaign(ctx context.Context, raw string) (snowflake.ID, *campaigndomain.Campaign, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return 0, nil, domain.ErrInvalidTenant
	}

	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, nil, domain.ErrInvalidCampaignID
	}

	campaign, err := s.campaigns.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return 0, nil, err
	}
	if campaign == nil {
		return 0, nil, domain.ErrCampaignNotFound
	}
	return tenantID, campaign, nil
}
