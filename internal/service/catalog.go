package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const allCategories = "all"

type CatalogService struct {
	Repo CatalogRepo

	Events EventPublisher
	Index  ProductIndex
}

func (s *CatalogService) ListProducts(ctx context.Context, q transport.ProductListQuery) (*transport.ProductPage, error) {
	page, offset, limit := util.Calculate(q.Page, q.Limit)

	category := strings.TrimSpace(q.Category)
	if strings.EqualFold(category, allCategories) {
		category = ""
	}

	total, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{
		Category: category,
		Search:   q.Search,
		Sort:     q.Sort,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return &transport.ProductPage{
		Products:      items,
		CurrentPage:   page,
		TotalPages:    util.TotalPages(total, limit),
		TotalProducts: total,
	}, nil
}

// SearchProducts runs a relevance search against the product index.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, pageNum, size int) (*transport.ProductPage, error) {
	if s.Index == nil {
		return nil, newError(ErrUnavailable, "", "search is not configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidInput("q is required")
	}

	page, offset, limit := util.Calculate(pageNum, size)
	total, items, err := s.Index.Search(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	if items == nil {
		items = []models.Product{}
	}
	return &transport.ProductPage{
		Products:      items,
		CurrentPage:   page,
		TotalPages:    util.TotalPages(total, limit),
		TotalProducts: total,
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, id.String(), "Product %s not found", id)
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.Repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, &Error{Kind: ErrInvalidInput, ID: "price", Msg: "price must not be negative"}
	}

	prod := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Images:      models.ImageList(req.Images),
	}
	if req.Stock != nil {
		prod.Stock = *req.Stock
	}

	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.announce(ctx, *prod, events.TypeProductCreated)
	return prod, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.UpdateProductRequest) (*models.Product, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, &Error{Kind: ErrInvalidInput, ID: "price", Msg: "price must not be negative"}
		}
		fields["price"] = *req.Price
	}
	if req.Category != nil {
		fields["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Stock != nil {
		fields["stock"] = *req.Stock
	}
	if req.Images != nil {
		fields["images"] = models.ImageList(*req.Images)
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, id.String(), "Product %s not found", id)
		}
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}

	s.announce(ctx, *prod, events.TypeProductUpdated)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrNotFound, id.String(), "Product %s not found", id)
		}
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	s.announce(ctx, models.Product{ID: id}, events.TypeProductDeleted)
	return nil
}

// announce publishes the change and keeps the search index in step. Failures are logged only.
func (s *CatalogService) announce(ctx context.Context, p models.Product, eventType string) {
	l := logging.FromContext(ctx)
	ctx = context.WithoutCancel(ctx)

	if s.Events != nil {
		if err := s.Events.Publish(ctx, topicProducts, p.ID.String(), eventType, productPayload(p)); err != nil {
			l.Error("publish_failed", "event", eventType, "product_id", p.ID, "error", err)
		}
	}
	if s.Index == nil {
		return
	}
	var err error
	if eventType == events.TypeProductDeleted {
		err = s.Index.DeleteProduct(ctx, p.ID)
	} else {
		err = s.Index.IndexProduct(ctx, p)
	}
	if err != nil {
		l.Warn("index_product_failed", "product_id", p.ID, "error", err)
	}
}
