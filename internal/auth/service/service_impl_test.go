package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/auth/domain"
	"github.com/promoforge/promoforge/internal/auth/repository"
	"github.com/promoforge/promoforge/internal/clock"
	"github.com/promoforge/promoforge/internal/config"
	"github.com/promoforge/promoforge/pkg/db"
	"go.uber.org/zap"
)

type authFixture struct {
	svc   domain.Service
	clock *clock.FakeClock
	node  *snowflake.Node
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.Admin{}, &domain.Session{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		Cfg:   config.Config{SessionTTL: 24 * time.Hour},
		Clock: fake,
		GenID: node,
		Repo:  repository.Provide(),
	})
	return &authFixture{svc: svc, clock: fake, node: node}
}

func TestCreateAdminValidation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	tenantID := f.node.Generate()

	if _, err := f.svc.CreateAdmin(ctx, domain.CreateAdminRequest{TenantID: tenantID, Email: "nope", Password: "longenough"}); err != domain.ErrInvalidEmail {
		t.Fatalf("bad email: err = %v, want %v", err, domain.ErrInvalidEmail)
	}
	if _, err := f.svc.CreateAdmin(ctx, domain.CreateAdminRequest{TenantID: tenantID, Email: "a@b.co", Password: "short"}); err != domain.ErrInvalidPassword {
		t.Fatalf("short password: err = %v, want %v", err, domain.ErrInvalidPassword)
	}

	admin, err := f.svc.CreateAdmin(ctx, domain.CreateAdminRequest{TenantID: tenantID, Email: "Owner@Shop.io", Password: "changeme123"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if admin.Email != "owner@shop.io" {
		t.Fatalf("email = %q, want lowercased", admin.Email)
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("role = %q", admin.Role)
	}

	if _, err := f.svc.CreateAdmin(ctx, domain.CreateAdminRequest{TenantID: tenantID, Email: "owner@shop.io", Password: "changeme123"}); err != domain.ErrAdminExists {
		t.Fatalf("duplicate: err = %v, want %v", err, domain.ErrAdminExists)
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	tenantID := f.node.Generate()

	if _, err := f.svc.CreateAdmin(ctx, domain.CreateAdminRequest{TenantID: tenantID, Email: "owner@shop.io", Password: "changeme123"}); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	if _, err := f.svc.Login(ctx, domain.LoginRequest{Email: "owner@shop.io", Password: "wrongwrong"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("bad password: err = %v, want %v", err, domain.ErrInvalidCredentials)
	}
	if _, err := f.svc.Login(ctx, domain.LoginRequest{Email: "ghost@shop.io", Password: "changeme123"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("unknown email: err = %v, want %v", err, domain.ErrInvalidCredentials)
	}

	result, err := f.svc.Login(ctx, domain.LoginRequest{Email: "Owner@Shop.io", Password: "changeme123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.RawToken == "" || result.Session.TenantID != tenantID {
		t.Fatalf("result = %+v", result)
	}

	session, admin, err := f.svc.Authenticate(ctx, result.RawToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if session.ID != result.Session.ID || admin.Email != "owner@shop.io" {
		t.Fatalf("session=%+v admin=%+v", session, admin)
	}

	if _, _, err := f.svc.Authenticate(ctx, "no-such-token"); err != domain.ErrInvalidSession {
		t.Fatalf("bad token: err = %v, want %v", err, domain.ErrInvalidSession)
	}
}

func TestSessionExpiry(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	tenantID := f.node.Generate()

	if _, err := f.svc.CreateAdmin(ctx, domain.CreateAdminRequest{TenantID: tenantID, Email: "owner@shop.io", Password: "changeme123"}); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	result, err := f.svc.Login(ctx, domain.LoginRequest{Email: "owner@shop.io", Password: "changeme123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	f.clock.Advance(25 * time.Hour)

	if _, _, err := f.svc.Authenticate(ctx, result.RawToken); err != domain.ErrSessionExpired {
		t.Fatalf("err = %v, want %v", err, domain.ErrSessionExpired)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	tenantID := f.node.Generate()

	if _, err := f.svc.CreateAdmin(ctx, domain.CreateAdminRequest{TenantID: tenantID, Email: "owner@shop.io", Password: "changeme123"}); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	result, err := f.svc.Login(ctx, domain.LoginRequest{Email: "owner@shop.io", Password: "changeme123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := f.svc.Logout(ctx, result.RawToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := f.svc.Authenticate(ctx, result.RawToken); err != domain.ErrInvalidSession {
		t.Fatalf("err = %v, want %v", err, domain.ErrInvalidSession)
	}
}

func TestEnsureCSRFIsStable(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	tenantID := f.node.Generate()

	if _, err := f.svc.CreateAdmin(ctx, domain.CreateAdminRequest{TenantID: tenantID, Email: "owner@shop.io", Password: "changeme123"}); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	result, err := f.svc.Login(ctx, domain.LoginRequest{Email: "owner@shop.io", Password: "changeme123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	first, err := f.svc.EnsureCSRF(ctx, result.Session)
	if err != nil {
		t.Fatalf("ensure csrf: %v", err)
	}
	if first == "" {
		t.Fatal("empty csrf token")
	}
	second, err := f.svc.EnsureCSRF(ctx, result.Session)
	if err != nil {
		t.Fatalf("ensure csrf again: %v", err)
	}
	if first != second {
		t.Fatalf("csrf token changed: %q != %q", first, second)
	}
}
