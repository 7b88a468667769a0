package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/promoforge/promoforge/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTenantRequest) (domain.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Tenant{}, domain.ErrInvalidName
	}

	tenantSlug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return domain.Tenant{}, err
	}

	now := time.Now().UTC()
	tenant := domain.Tenant{
		ID:            s.genID.Generate(),
		Slug:          tenantSlug,
		Name:          name,
		EmailFromName: strings.TrimSpace(req.EmailFromName),
		MailgunDomain: strings.TrimSpace(req.MailgunDomain),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &tenant); err != nil {
		return domain.Tenant{}, err
	}

	s.log.Info("tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
	)
	return tenant, nil
}

func (s *Service) ResolveSlug(ctx context.Context, raw string) (domain.Tenant, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return domain.Tenant{}, domain.ErrNotFound
	}

	tenant, err := s.repo.FindBySlug(ctx, s.db, value)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}
	return *tenant, nil
}

func (s *Service) GetByID(ctx context.Context, raw string) (domain.Tenant, error) {
	id, err := s.parseID(raw)
	if err != nil {
		return domain.Tenant{}, err
	}

	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}
	return *tenant, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTenantRequest) (domain.Tenant, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Tenant{}, err
	}

	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Tenant{}, domain.ErrInvalidName
		}
		tenant.Name = name
	}
	if req.EmailFromName != nil {
		tenant.EmailFromName = strings.TrimSpace(*req.EmailFromName)
	}
	if req.MailgunDomain != nil {
		tenant.MailgunDomain = strings.TrimSpace(*req.MailgunDomain)
	}
	tenant.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, tenant); err != nil {
		return domain.Tenant{}, err
	}
	return *tenant, nil
}

// uniqueSlug derives a URL slug from the tenant name and uniquifies it with
// a numeric suffix on collision.
func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", domain.ErrInvalidName
	}

	candidate := base
	for i := 2; ; i++ {
		exists, err := s.repo.SlugExists(ctx, s.db, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
