package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/clock"
	"github.com/promoforge/promoforge/internal/enduser/domain"
	"github.com/promoforge/promoforge/internal/enduser/repository"
	"github.com/promoforge/promoforge/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type userFixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newUserFixture(t *testing.T, repo domain.Repository) *userFixture {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.User{}, &domain.CustomDatum{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	svc := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)),
		GenID: node,
		Repo:  repo,
	})
	return &userFixture{svc: svc, db: dbConn, node: node}
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	f := newUserFixture(t, repository.Provide())
	ctx := context.Background()
	tenantID := f.node.Generate()

	created, err := f.svc.Upsert(ctx, f.db, domain.UpsertUserRequest{
		TenantID: tenantID, Email: " Jamie@Example.com ", FirstName: "Jamie", LastName: "Lee",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if created.Email != "jamie@example.com" {
		t.Fatalf("email = %q", created.Email)
	}

	updated, err := f.svc.Upsert(ctx, f.db, domain.UpsertUserRequest{
		TenantID: tenantID, Email: "jamie@example.com", FirstName: "Jamie", LastName: "Chen",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("repeat signup created a new row: %v vs %v", updated.ID, created.ID)
	}
	if updated.LastName != "Chen" {
		t.Fatalf("last name = %q", updated.LastName)
	}

	var count int64
	if err := f.db.Model(&domain.User{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d user rows, want 1", count)
	}
}

func TestEmailUniquePerTenant(t *testing.T) {
	repo := repository.Provide()
	f := newUserFixture(t, repo)
	ctx := context.Background()

	tenantA := f.node.Generate()
	tenantB := f.node.Generate()

	build := func(tenant snowflake.ID) *domain.User {
		return &domain.User{ID: f.node.Generate(), TenantID: tenant, Email: "jamie@example.com"}
	}

	if err := repo.Insert(ctx, f.db, build(tenantA)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := repo.Insert(ctx, f.db, build(tenantA))
	if !db.IsDuplicateKeyErr(err) {
		t.Fatalf("reused email in same tenant: err = %v, want duplicate key", err)
	}
	if err := repo.Insert(ctx, f.db, build(tenantB)); err != nil {
		t.Fatalf("same email in another tenant must be allowed: %v", err)
	}
}

// racingRepo simulates losing an insert race: the first lookup misses,
// the insert hits the unique index, the second lookup sees the winner's
// row.
type racingRepo struct {
	domain.Repository
	winner  *domain.User
	lookups int
	updated bool
}

func (r *racingRepo) FindByEmail(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, email string) (*domain.User, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, nil
	}
	return r.winner, nil
}

func (r *racingRepo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return gorm.ErrDuplicatedKey
}

func (r *racingRepo) Update(ctx context.Context, db *gorm.DB, user *domain.User) error {
	r.updated = true
	return nil
}

func (r *racingRepo) ReplaceCustomData(ctx context.Context, db *gorm.DB, userID snowflake.ID, data []domain.CustomDatum) error {
	return nil
}

func TestUpsertFoldsIntoRowFromLostInsertRace(t *testing.T) {
	repo := &racingRepo{}
	f := newUserFixture(t, repo)
	repo.winner = &domain.User{
		ID:        f.node.Generate(),
		TenantID:  f.node.Generate(),
		Email:     "jamie@example.com",
		FirstName: "Jamie",
	}

	user, err := f.svc.Upsert(context.Background(), f.db, domain.UpsertUserRequest{
		TenantID: repo.winner.TenantID, Email: "jamie@example.com", FirstName: "Jamie", LastName: "Chen",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if user.ID != repo.winner.ID {
		t.Fatalf("user id = %v, want the winning row %v", user.ID, repo.winner.ID)
	}
	if user.LastName != "Chen" {
		t.Fatalf("last name = %q, want the fresh payload applied", user.LastName)
	}
	if !repo.updated {
		t.Fatal("existing row was not refreshed")
	}
	if repo.lookups != 2 {
		t.Fatalf("lookups = %d, want 2", repo.lookups)
	}
}
