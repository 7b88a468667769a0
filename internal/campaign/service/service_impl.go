package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/campaign/domain"
	"github.com/promoforge/promoforge/internal/clock"
	"github.com/promoforge/promoforge/internal/config"
	productdomain "github.com/promoforge/promoforge/internal/product/domain"
	"github.com/promoforge/promoforge/internal/tenantctx"
	pkgdb "github.com/promoforge/promoforge/pkg/db"
	"github.com/promoforge/promoforge/pkg/randcode"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// codeRetries bounds regeneration attempts on a per-tenant code collision.
const codeRetries = 5

type Params struct {
	fx.In

	Config   config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	Repo     domain.Repository
	Products productdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	genID        *snowflake.Node
	repo         domain.Repository
	products     productdomain.Repository
	strictUpdate bool
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("campaign.service"),
		clock:        p.Clock,
		genID:        p.GenID,
		repo:         p.Repo,
		products:     p.Products,
		strictUpdate: p.Config.StrictUpdate,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCampaignRequest) (domain.Campaign, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Campaign{}, domain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Campaign{}, domain.ErrInvalidName
	}
	if err := validateDiscount(req.DiscountType, req.DiscountValue); err != nil {
		return domain.Campaign{}, err
	}

	now := s.clock.Now()
	if req.ExpiryDate != nil && req.ExpiryDate.Before(now) {
		return domain.Campaign{}, domain.ErrInvalidExpiry
	}

	formConfig, err := domain.EncodeFormConfig(domain.DefaultFormConfig())
	if err != nil {
		return domain.Campaign{}, err
	}

	campaign := domain.Campaign{
		TenantID:         tenantID,
		Name:             name,
		Description:      strings.TrimSpace(req.Description),
		DiscountType:     req.DiscountType,
		DiscountValue:    req.DiscountValue,
		FormConfig:       formConfig,
		IsActive:         false,
		ExpiryDate:       req.ExpiryDate,
		CouponExpiryDate: req.CouponExpiryDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := randcode.New(domain.CodeLength)
		if err != nil {
			return domain.Campaign{}, err
		}
		campaign.ID = s.genID.Generate()
		campaign.CampaignCode = code

		err = s.repo.Insert(ctx, s.db, &campaign)
		if err == nil {
			return campaign, nil
		}
		if !pkgdb.IsDuplicateKeyErr(err) {
			return domain.Campaign{}, err
		}
		s.log.Warn("campaign code collision, retrying",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("attempt", attempt+1))
	}
	return domain.Campaign{}, domain.ErrCodeConflict
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCampaignRequest) (domain.Campaign, error) {
	_, campaign, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Campaign{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Campaign{}, domain.ErrInvalidName
		}
		campaign.Name = name
	}
	if req.Description != nil {
		campaign.Description = strings.TrimSpace(*req.Description)
	}
	if req.DiscountType != nil {
		campaign.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		campaign.DiscountValue = *req.DiscountValue
	}

	// Pairing re-validation is deliberately skipped unless strict mode
	// is on, preserving the permissive partial-update contract.
	if s.strictUpdate {
		if err := validateDiscount(campaign.DiscountType, campaign.DiscountValue); err != nil {
			return domain.Campaign{}, err
		}
	}

	if req.ExpiryDate != nil {
		if s.strictUpdate && req.ExpiryDate.Before(s.clock.Now()) {
			return domain.Campaign{}, domain.ErrInvalidExpiry
		}
		campaign.ExpiryDate = req.ExpiryDate
	}
	if req.CouponExpiryDate != nil {
		campaign.CouponExpiryDate = req.CouponExpiryDate
	}

	campaign.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, s.db, campaign); err != nil {
		return domain.Campaign{}, err
	}
	return *campaign, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Campaign, error) {
	if err := s.SettleExpiry(ctx); err != nil {
		return domain.Campaign{}, err
	}
	_, campaign, err := s.load(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	return *campaign, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Campaign, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	if err := s.SettleExpiry(ctx); err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	campaigns := make([]domain.Campaign, 0, len(items))
	for _, item := range items {
		campaigns = append(campaigns, *item)
	}
	return campaigns, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	parsed, err := parseID(id)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, tenantID, parsed)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) Activate(ctx context.Context, id string) (domain.Campaign, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) Deactivate(ctx context.Context, id string) (domain.Campaign, error) {
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id string, active bool) (domain.Campaign, error) {
	tenantID, campaign, err := s.load(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}

	now := s.clock.Now()
	if active && campaign.Expired(now) {
		return domain.Campaign{}, domain.ErrCampaignExpired
	}

	affected, err := s.repo.SetActive(ctx, s.db, tenantID, campaign.ID, active, now)
	if err != nil {
		return domain.Campaign{}, err
	}
	if affected > 0 {
		campaign.IsActive = active
		campaign.UpdatedAt = now
	}
	return *campaign, nil
}

func (s *Service) SetFormConfig(ctx context.Context, id string, cfg domain.FormConfig) (domain.Campaign, error) {
	_, campaign, err := s.load(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}

	raw, err := domain.EncodeFormConfig(cfg)
	if err != nil {
		return domain.Campaign{}, err
	}

	campaign.FormConfig = raw
	campaign.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, s.db, campaign); err != nil {
		return domain.Campaign{}, err
	}
	return *campaign, nil
}

func (s *Service) GetCustomFields(ctx context.Context, id string) ([]domain.CustomField, error) {
	_, campaign, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg, err := campaign.ParseFormConfig()
	if err != nil {
		return nil, err
	}
	return cfg.CustomFields, nil
}

func (s *Service) SetCustomFields(ctx context.Context, id string, fields []domain.CustomField) ([]domain.CustomField, error) {
	_, campaign, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg, err := campaign.ParseFormConfig()
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []domain.CustomField{}
	}
	cfg.CustomFields = fields

	raw, err := domain.EncodeFormConfig(cfg)
	if err != nil {
		return nil, err
	}

	campaign.FormConfig = raw
	campaign.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, s.db, campaign); err != nil {
		return nil, err
	}
	return fields, nil
}

// SetProducts replaces the campaign's product set. Ids that do not belong
// to the tenant are dropped without error.
func (s *Service) SetProducts(ctx context.Context, id string, productIDs []string) ([]string, error) {
	tenantID, campaign, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	requested := make([]snowflake.ID, 0, len(productIDs))
	for _, raw := range productIDs {
		pid, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil || pid == 0 {
			return nil, domain.ErrInvalidProductID
		}
		requested = append(requested, pid)
	}

	owned, err := s.products.FilterOwned(ctx, s.db, tenantID, requested)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.ReplaceProducts(ctx, tx, campaign.ID, owned)
	})
	if err != nil {
		return nil, err
	}

	if dropped := len(requested) - len(owned); dropped > 0 {
		s.log.Info("dropped foreign product ids",
			zap.String("campaign_id", campaign.ID.String()),
			zap.Int("dropped", dropped))
	}
	return formatIDs(owned), nil
}

func (s *Service) ListProducts(ctx context.Context, id string) ([]string, error) {
	_, campaign, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	ids, err := s.repo.ListProductIDs(ctx, s.db, campaign.ID)
	if err != nil {
		return nil, err
	}
	return formatIDs(ids), nil
}

func (s *Service) SettleExpiry(ctx context.Context) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	ids, err := s.repo.SettleExpiry(ctx, s.db, tenantID, s.clock.Now())
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		s.log.Info("deactivated expired campaigns",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("count", len(ids)))
	}
	return nil
}

func (s *Service) load(ctx context.Context, raw string) (snowflake.ID, *domain.Campaign, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return 0, nil, domain.ErrInvalidTenant
	}

	id, err := parseID(raw)
	if err != nil {
		return 0, nil, err
	}

	campaign, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return 0, nil, err
	}
	if campaign == nil {
		return 0, nil, domain.ErrNotFound
	}
	return tenantID, campaign, nil
}

func validateDiscount(discountType string, value float64) error {
	switch discountType {
	case domain.DiscountPercent:
		if value <= 0 || value > 100 {
			return domain.ErrInvalidDiscount
		}
	case domain.DiscountFixed:
		if value <= 0 {
			return domain.ErrInvalidDiscount
		}
	case domain.DiscountText:
		if value < 0 {
			return domain.ErrInvalidDiscount
		}
	default:
		return domain.ErrInvalidDiscountType
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func formatIDs(ids []snowflake.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
