package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	campaigndomain "github.com/promoforge/promoforge/internal/campaign/domain"
	"github.com/promoforge/promoforge/internal/clock"
	"github.com/promoforge/promoforge/internal/coupon/domain"
	enduserdomain "github.com/promoforge/promoforge/internal/enduser/domain"
	formlinkdomain "github.com/promoforge/promoforge/internal/formlink/domain"
	"github.com/promoforge/promoforge/internal/tenantctx"
	pkgdb "github.com/promoforge/promoforge/pkg/db"
	"github.com/promoforge/promoforge/pkg/db/pagination"
	"github.com/promoforge/promoforge/pkg/randcode"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	codeRetries = 10

	defaultPageSize = 50
	maxPageSize     = 200
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	GenID     *snowflake.Node
	Repo      domain.Repository
	Links     formlinkdomain.Repository
	Campaigns campaigndomain.Repository
	Users     enduserdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	genID     *snowflake.Node
	repo      domain.Repository
	links     formlinkdomain.Repository
	campaigns campaigndomain.Repository
	users     enduserdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("coupon.service"),
		clock:     p.Clock,
		genID:     p.GenID,
		repo:      p.Repo,
		links:     p.Links,
		campaigns: p.Campaigns,
		users:     p.Users,
	}
}

// RedeemLink is the public signup path. The token alone identifies the
// tenant and campaign, no session is involved.
func (s *Service) RedeemLink(ctx context.Context, req domain.RedeemLinkRequest) (domain.RedeemLinkResult, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return domain.RedeemLinkResult{}, domain.ErrLinkNotFound
	}

	link, err := s.links.FindByToken(ctx, s.db, token)
	if err != nil {
		return domain.RedeemLinkResult{}, err
	}
	if link == nil {
		return domain.RedeemLinkResult{}, domain.ErrLinkNotFound
	}
	if link.Used() {
		return domain.RedeemLinkResult{}, domain.ErrLinkUsed
	}

	campaign, err := s.campaigns.FindByID(ctx, s.db, link.TenantID, link.CampaignID)
	if err != nil {
		return domain.RedeemLinkResult{}, err
	}
	if campaign == nil {
		return domain.RedeemLinkResult{}, domain.ErrLinkNotFound
	}

	now := s.clock.Now()
	if campaign.Expired(now) {
		return domain.RedeemLinkResult{}, domain.ErrCampaignExpired
	}
	if !campaign.IsActive {
		return domain.RedeemLinkResult{}, domain.ErrCampaignInactive
	}

	cfg, err := campaign.ParseFormConfig()
	if err != nil {
		return domain.RedeemLinkResult{}, err
	}
	if err := validateForm(cfg, req); err != nil {
		return domain.RedeemLinkResult{}, err
	}

	var result domain.RedeemLinkResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.users.Upsert(ctx, tx, enduserdomain.UpsertUserRequest{
			TenantID:  link.TenantID,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Address:   req.Address,
			Custom:    req.Custom,
		})
		if err != nil {
			return err
		}

		coupon, err := s.issue(ctx, tx, campaign, user.ID, now)
		if err != nil {
			return err
		}

		link.UsedAt = &now
		link.CouponID = &coupon.ID
		affected, err := s.links.MarkUsed(ctx, tx, link)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrLinkUsed
		}

		result = domain.RedeemLinkResult{Coupon: *coupon, User: user}
		return nil
	})
	if err != nil {
		return domain.RedeemLinkResult{}, err
	}
	return result, nil
}

// issue snapshots the campaign's discount into a fresh coupon,
// regenerating the code when the unique index rejects it.
func (s *Service) issue(ctx context.Context, tx *gorm.DB, campaign *campaigndomain.Campaign, userID snowflake.ID, now time.Time) (*domain.Coupon, error) {
	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := randcode.New(domain.CodeLength)
		if err != nil {
			return nil, err
		}

		coupon := domain.Coupon{
			ID:            s.genID.Generate(),
			TenantID:      campaign.TenantID,
			CampaignID:    campaign.ID,
			UserID:        userID,
			Code:          code,
			DiscountType:  campaign.DiscountType,
			DiscountValue: campaign.DiscountValue,
			Status:        domain.StatusActive,
			IssuedAt:      now,
			CreatedAt:     now,
		}

		err = s.repo.Insert(ctx, tx, &coupon)
		if err == nil {
			return &coupon, nil
		}
		if !pkgdb.IsDuplicateKeyErr(err) {
			return nil, err
		}
		s.log.Warn("coupon code collision, retrying",
			zap.String("campaign_id", campaign.ID.String()),
			zap.Int("attempt", attempt+1))
	}
	return nil, domain.ErrCodeGeneration
}

func validateForm(cfg campaigndomain.FormConfig, req domain.RedeemLinkRequest) error {
	check := func(spec campaigndomain.FieldSpec, value string) error {
		if spec.Visible && spec.Required && strings.TrimSpace(value) == "" {
			return domain.ErrMissingField
		}
		return nil
	}

	if err := check(cfg.Email, req.Email); err != nil {
		return err
	}
	if err := check(cfg.FirstName, req.FirstName); err != nil {
		return err
	}
	if err := check(cfg.LastName, req.LastName); err != nil {
		return err
	}
	if err := check(cfg.Phone, req.Phone); err != nil {
		return err
	}
	if err := check(cfg.Address, req.Address); err != nil {
		return err
	}

	for _, field := range cfg.CustomFields {
		if field.Required && strings.TrimSpace(req.Custom[field.Name]) == "" {
			return domain.ErrMissingField
		}
	}
	return nil
}

func (s *Service) Redeem(ctx context.Context, raw string) (domain.Coupon, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Coupon{}, domain.ErrInvalidTenant
	}

	if err := s.SettleExpiry(ctx); err != nil {
		return domain.Coupon{}, err
	}

	id, err := parseID(raw)
	if err != nil {
		return domain.Coupon{}, err
	}

	coupon, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.Coupon{}, err
	}
	if coupon == nil {
		return domain.Coupon{}, domain.ErrNotFound
	}

	switch coupon.Status {
	case domain.StatusExpired:
		return domain.Coupon{}, domain.ErrCouponExpired
	case domain.StatusRedeemed:
		return domain.Coupon{}, domain.ErrAlreadyRedeemed
	}

	now := s.clock.Now()
	affected, err := s.repo.MarkRedeemed(ctx, s.db, tenantID, coupon.ID, now)
	if err != nil {
		return domain.Coupon{}, err
	}
	if affected == 0 {
		return domain.Coupon{}, domain.ErrAlreadyRedeemed
	}

	coupon.Status = domain.StatusRedeemed
	coupon.RedeemedAt = &now
	return *coupon, nil
}

func (s *Service) GetByID(ctx context.Context, raw string) (domain.Coupon, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Coupon{}, domain.ErrInvalidTenant
	}

	if err := s.SettleExpiry(ctx); err != nil {
		return domain.Coupon{}, err
	}

	id, err := parseID(raw)
	if err != nil {
		return domain.Coupon{}, err
	}

	coupon, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.Coupon{}, err
	}
	if coupon == nil {
		return domain.Coupon{}, domain.ErrNotFound
	}
	return *coupon, nil
}

func (s *Service) List(ctx context.Context, campaignID string, page pagination.Pagination) (domain.ListResult, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ListResult{}, domain.ErrInvalidTenant
	}

	if err := s.SettleExpiry(ctx); err != nil {
		return domain.ListResult{}, err
	}

	var cid snowflake.ID
	if raw := strings.TrimSpace(campaignID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed == 0 {
			return domain.ListResult{}, domain.ErrInvalidCampaignID
		}
		cid = parsed
	}

	var cursor *pagination.Cursor
	if page.PageToken != "" {
		decoded, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return domain.ListResult{}, domain.ErrInvalidPageToken
		}
		cursor = decoded
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, err := s.repo.List(ctx, s.db, tenantID, cid, cursor, limit)
	if err != nil {
		return domain.ListResult{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, limit, func(c *domain.Coupon) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: c.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})

	if len(items) > limit {
		items = items[:limit]
	}
	coupons := make([]domain.Coupon, 0, len(items))
	for _, item := range items {
		coupons = append(coupons, *item)
	}
	return domain.ListResult{Coupons: coupons, PageInfo: *pageInfo}, nil
}

func (s *Service) Delete(ctx context.Context, raw string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	id, err := parseID(raw)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, tenantID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) SettleExpiry(ctx context.Context) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	expired, err := s.repo.SettleExpiry(ctx, s.db, tenantID, s.clock.Now())
	if err != nil {
		return err
	}
	if expired > 0 {
		s.log.Info("expired coupons settled",
			zap.String("tenant_id", tenantID.String()),
			zap.Int64("count", expired))
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
