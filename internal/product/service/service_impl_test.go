package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/clock"
	"github.com/promoforge/promoforge/internal/product/domain"
	"github.com/promoforge/promoforge/internal/product/repository"
	"github.com/promoforge/promoforge/internal/tenantctx"
	"github.com/promoforge/promoforge/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProductService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node
}

func tenantContext(node *snowflake.Node) (context.Context, snowflake.ID) {
	tenantID := node.Generate()
	return tenantctx.WithTenantID(context.Background(), int64(tenantID)), tenantID
}

func TestCreateProduct(t *testing.T) {
	svc, node := newProductService(t)
	ctx, tenantID := tenantContext(node)

	product, err := svc.Create(ctx, domain.CreateProductRequest{
		Name: " Espresso Machine ", Value: 200, MarginPrice: 50, SKU: "EM-200",
	})
	require.NoError(t, err)
	require.Equal(t, tenantID, product.TenantID)
	require.Equal(t, "Espresso Machine", product.Name)
	require.Equal(t, 200.0, product.Value)

	_, err = svc.Create(ctx, domain.CreateProductRequest{Name: "", Value: 1, MarginPrice: 1, SKU: "X"})
	require.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = svc.Create(ctx, domain.CreateProductRequest{Name: "x", Value: -1, MarginPrice: 1, SKU: "X"})
	require.ErrorIs(t, err, domain.ErrInvalidValue)
	_, err = svc.Create(ctx, domain.CreateProductRequest{Name: "x", Value: 1, MarginPrice: 1, SKU: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidSKU)
	_, err = svc.Create(context.Background(), domain.CreateProductRequest{Name: "x", Value: 1, MarginPrice: 1, SKU: "X"})
	require.ErrorIs(t, err, domain.ErrInvalidTenant)
}

func TestUpdateProductPartial(t *testing.T) {
	svc, node := newProductService(t)
	ctx, _ := tenantContext(node)

	product, err := svc.Create(ctx, domain.CreateProductRequest{
		Name: "Grinder", Value: 80, MarginPrice: 20, SKU: "GR-80",
	})
	require.NoError(t, err)

	value := 90.0
	updated, err := svc.Update(ctx, domain.UpdateProductRequest{ID: product.ID.String(), Value: &value})
	require.NoError(t, err)
	require.Equal(t, 90.0, updated.Value)
	require.Equal(t, "Grinder", updated.Name)
	require.Equal(t, 20.0, updated.MarginPrice)
}

func TestProductTenantIsolation(t *testing.T) {
	svc, node := newProductService(t)
	ctxA, _ := tenantContext(node)
	ctxB, _ := tenantContext(node)

	product, err := svc.Create(ctxA, domain.CreateProductRequest{
		Name: "Kettle", Value: 40, MarginPrice: 10, SKU: "KT-40",
	})
	require.NoError(t, err)

	_, err = svc.GetByID(ctxB, product.ID.String())
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctxB, product.ID.String()), domain.ErrNotFound)

	listA, err := svc.List(ctxA)
	require.NoError(t, err)
	require.Len(t, listA, 1)
	listB, err := svc.List(ctxB)
	require.NoError(t, err)
	require.Empty(t, listB)
}

func TestDeleteProduct(t *testing.T) {
	svc, node := newProductService(t)
	ctx, _ := tenantContext(node)

	product, err := svc.Create(ctx, domain.CreateProductRequest{
		Name: "Mug", Value: 10, MarginPrice: 4, SKU: "MG-10",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, product.ID.String()))
	require.ErrorIs(t, svc.Delete(ctx, product.ID.String()), domain.ErrNotFound)
}

func TestCreateProductSKUUniquePerTenant(t *testing.T) {
	svc, node := newProductService(t)
	ctxA, _ := tenantContext(node)
	ctxB, _ := tenantContext(node)

	_, err := svc.Create(ctxA, domain.CreateProductRequest{
		Name: "Espresso Machine", Value: 200, MarginPrice: 50, SKU: "EM-200",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctxA, domain.CreateProductRequest{
		Name: "Espresso Machine v2", Value: 220, MarginPrice: 55, SKU: "EM-200",
	})
	require.ErrorIs(t, err, domain.ErrSKUConflict)

	_, err = svc.Create(ctxB, domain.CreateProductRequest{
		Name: "Espresso Machine", Value: 200, MarginPrice: 50, SKU: "EM-200",
	})
	require.NoError(t, err)
}
