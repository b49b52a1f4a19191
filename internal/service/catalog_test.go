package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestCatalog_CreateUpdateDelete(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ev := &fakeEvents{}
	idx := newFakeIndex()
	svc := &service.CatalogService{Repo: r, Events: ev, Index: idx}
	ctx := context.Background()

	price := decimal.RequireFromString("12.50")
	stock := 7
	created, err := svc.CreateProduct(ctx, transport.CreateProductRequest{
		Name:        "  Teapot ",
		Description: "Cast iron",
		Price:       &price,
		Category:    "kitchen",
		Stock:       &stock,
		Images:      []string{"https://img.example/teapot.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Teapot", created.Name)
	assert.Equal(t, 7, created.Stock)
	assert.Contains(t, idx.indexed, created.ID)

	name := "Teapot XL"
	images := []string{}
	updated, err := svc.UpdateProduct(ctx, created.ID, transport.UpdateProductRequest{Name: &name, Images: &images})
	require.NoError(t, err)
	assert.Equal(t, "Teapot XL", updated.Name)
	assert.True(t, price.Equal(updated.Price), "untouched fields keep their value")
	assert.Empty(t, updated.Images)
	assert.Equal(t, "Teapot XL", idx.indexed[created.ID].Name)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))
	_, err = svc.GetProduct(ctx, created.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, []uuid.UUID{created.ID}, idx.deleted)

	assert.Equal(t, []string{events.TypeProductCreated, events.TypeProductUpdated, events.TypeProductDeleted}, ev.types())

	t.Run("missing product", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, uuid.New(), transport.UpdateProductRequest{Name: &name})
		require.ErrorIs(t, err, service.ErrNotFound)
		require.ErrorIs(t, svc.DeleteProduct(ctx, uuid.New()), service.ErrNotFound)
	})
}

func TestCatalog_CreateProductValidation(t *testing.T) {
	t.Parallel()

	svc := &service.CatalogService{Repo: newRepo(t)}
	ctx := context.Background()
	price := decimal.RequireFromString("1.00")
	negative := decimal.RequireFromString("-1.00")
	badStock := -3

	cases := map[string]struct {
		req   transport.CreateProductRequest
		field string
	}{
		"missing name":   {transport.CreateProductRequest{Description: "d", Price: &price, Category: "c"}, "name"},
		"missing price":  {transport.CreateProductRequest{Name: "n", Description: "d", Category: "c"}, "price"},
		"negative price": {transport.CreateProductRequest{Name: "n", Description: "d", Price: &negative, Category: "c"}, "price"},
		"negative stock": {transport.CreateProductRequest{Name: "n", Description: "d", Price: &price, Category: "c", Stock: &badStock}, "stock"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tc.req)
			require.ErrorIs(t, err, service.ErrInvalidInput)
			var se *service.Error
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tc.field, se.ID)
		})
	}
}

func TestCatalog_ListProducts(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	svc := &service.CatalogService{Repo: r}
	ctx := context.Background()

	for i, price := range []string{"5.00", "15.00", "10.00"} {
		p := &models.Product{
			Name:        []string{"red mug", "blue mug", "green bowl"}[i],
			Description: "ceramic",
			Price:       decimal.RequireFromString(price),
			Category:    []string{"mugs", "mugs", "bowls"}[i],
			Stock:       1,
		}
		require.NoError(t, r.CreateProduct(ctx, p))
	}

	page, err := svc.ListProducts(ctx, transport.ProductListQuery{Category: "all", Sort: "price-low"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalProducts)
	assert.Equal(t, 1, page.CurrentPage)
	assert.EqualValues(t, 1, page.TotalPages)
	require.Len(t, page.Products, 3)
	assert.Equal(t, "red mug", page.Products[0].Name)

	page, err = svc.ListProducts(ctx, transport.ProductListQuery{Category: "mugs", Sort: "price-high", Limit: 1, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalProducts)
	assert.EqualValues(t, 2, page.TotalPages)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "red mug", page.Products[0].Name)

	page, err = svc.ListProducts(ctx, transport.ProductListQuery{Search: "BOWL"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "green bowl", page.Products[0].Name)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bowls", "mugs"}, cats)
}

func TestCatalog_SearchProducts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := (&service.CatalogService{Repo: newRepo(t)}).SearchProducts(ctx, "mug", 1, 10)
	require.ErrorIs(t, err, service.ErrUnavailable)

	idx := newFakeIndex()
	for i := 0; i < 3; i++ {
		idx.hits = append(idx.hits, models.Product{ID: uuid.New(), Name: "mug"})
	}
	svc := &service.CatalogService{Repo: newRepo(t), Index: idx}

	_, err = svc.SearchProducts(ctx, "  ", 1, 10)
	require.ErrorIs(t, err, service.ErrInvalidInput)

	page, err := svc.SearchProducts(ctx, "mug", 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalProducts)
	assert.EqualValues(t, 2, page.TotalPages)
	assert.Len(t, page.Products, 1)

	page, err = svc.SearchProducts(ctx, "mug", 5, 2)
	require.NoError(t, err)
	assert.NotNil(t, page.Products)
	assert.Empty(t, page.Products)
}
