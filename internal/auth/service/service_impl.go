package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/promoforge/promoforge/internal/auth/domain"
	"github.com/promoforge/promoforge/internal/auth/password"
	"github.com/promoforge/promoforge/internal/clock"
	"github.com/promoforge/promoforge/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	repo       domain.Repository
	sessionTTL time.Duration
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("auth.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		repo:       p.Repo,
		sessionTTL: p.Cfg.SessionTTL,
	}
}

func (s *Service) CreateAdmin(ctx context.Context, req domain.CreateAdminRequest) (*domain.Admin, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return nil, domain.ErrInvalidPassword
	}

	existing, err := s.repo.FindAdminByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAdminExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = domain.RoleAdmin
	}

	admin := &domain.Admin{
		ID:           s.genID.Generate(),
		TenantID:     req.TenantID,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.repo.InsertAdmin(ctx, s.db, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	admin, err := s.repo.FindAdminByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if admin == nil || !password.Verify(admin.PasswordHash, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	session := &domain.Session{
		ID:        s.genID.Generate(),
		Token:     uuid.NewString(),
		AdminID:   admin.ID,
		TenantID:  admin.TenantID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.repo.InsertSession(ctx, s.db, session); err != nil {
		return nil, err
	}

	s.log.Info("admin logged in",
		zap.String("tenant_id", admin.TenantID.String()),
		zap.String("admin_id", admin.ID.String()),
	)
	return &domain.LoginResult{
		Session:  session,
		Admin:    admin,
		RawToken: session.Token,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	return s.repo.DeleteSession(ctx, s.db, rawToken)
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Session, *domain.Admin, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, nil, domain.ErrInvalidSession
	}

	session, err := s.repo.FindSessionByToken(ctx, s.db, rawToken)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, domain.ErrInvalidSession
	}
	if s.clock.Now().After(session.ExpiresAt) {
		return nil, nil, domain.ErrSessionExpired
	}

	admin, err := s.repo.FindAdminByID(ctx, s.db, session.AdminID)
	if err != nil {
		return nil, nil, err
	}
	if admin == nil {
		return nil, nil, domain.ErrInvalidSession
	}
	return session, admin, nil
}

func (s *Service) EnsureCSRF(ctx context.Context, session *domain.Session) (string, error) {
	if session.CSRFToken != "" {
		return session.CSRFToken, nil
	}

	token := uuid.NewString()
	if err := s.repo.UpdateSessionCSRF(ctx, s.db, session.ID, token); err != nil {
		return "", err
	}
	session.CSRFToken = token
	return token, nil
}
