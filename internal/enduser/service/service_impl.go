package service

import (
	"context"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/clock"
	"github.com/promoforge/promoforge/internal/enduser/domain"
	"github.com/promoforge/promoforge/internal/tenantctx"
	pkgdb "github.com/promoforge/promoforge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("enduser.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Upsert(ctx context.Context, tx *gorm.DB, req domain.UpsertUserRequest) (domain.User, error) {
	if req.TenantID == 0 {
		return domain.User{}, domain.ErrInvalidTenant
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}

	user, err := s.repo.FindByEmail(ctx, tx, req.TenantID, email)
	if err != nil {
		return domain.User{}, err
	}

	if user == nil {
		user = &domain.User{
			ID:        s.genID.Generate(),
			TenantID:  req.TenantID,
			Email:     email,
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Phone:     strings.TrimSpace(req.Phone),
			Address:   strings.TrimSpace(req.Address),
			CreatedAt: s.clock.Now(),
		}
		err := s.repo.Insert(ctx, tx, user)
		if err != nil && pkgdb.IsDuplicateKeyErr(err) {
			// A concurrent signup won the insert. Fold into its row.
			user, err = s.repo.FindByEmail(ctx, tx, req.TenantID, email)
			if err == nil && user == nil {
				err = domain.ErrNotFound
			}
			if err != nil {
				return domain.User{}, err
			}
			return s.update(ctx, tx, user, req)
		}
		if err != nil {
			return domain.User{}, err
		}
	} else {
		return s.update(ctx, tx, user, req)
	}

	if err := s.repo.ReplaceCustomData(ctx, tx, user.ID, s.customData(user, req.Custom)); err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

func (s *Service) update(ctx context.Context, tx *gorm.DB, user *domain.User, req domain.UpsertUserRequest) (domain.User, error) {
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Phone = strings.TrimSpace(req.Phone)
	user.Address = strings.TrimSpace(req.Address)
	if err := s.repo.Update(ctx, tx, user); err != nil {
		return domain.User{}, err
	}
	if err := s.repo.ReplaceCustomData(ctx, tx, user.ID, s.customData(user, req.Custom)); err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

func (s *Service) customData(user *domain.User, custom map[string]string) []domain.CustomDatum {
	if len(custom) == 0 {
		return nil
	}

	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}
	sort.Strings(names)

	data := make([]domain.CustomDatum, 0, len(names))
	for _, name := range names {
		data = append(data, domain.CustomDatum{
			ID:         s.genID.Generate(),
			TenantID:   user.TenantID,
			UserID:     user.ID,
			FieldName:  name,
			FieldValue: custom[name],
		})
	}
	return data
}

func (s *Service) GetByID(ctx context.Context, raw string) (domain.User, []domain.CustomDatum, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.User{}, nil, domain.ErrInvalidTenant
	}

	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return domain.User{}, nil, domain.ErrInvalidID
	}

	user, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.User{}, nil, err
	}
	if user == nil {
		return domain.User{}, nil, domain.ErrNotFound
	}

	data, err := s.repo.ListCustomData(ctx, s.db, tenantID, user.ID)
	if err != nil {
		return domain.User{}, nil, err
	}
	return *user, data, nil
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	items, err := s.repo.List(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		users = append(users, *item)
	}
	return users, nil
}
