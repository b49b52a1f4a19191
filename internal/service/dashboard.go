package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/storefront/internal/models"
)

const recentOrdersLimit = 10

type DashboardStats struct {
	TotalProducts int64           `json:"totalProducts"`
	TotalOrders   int64           `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	PendingOrders int64           `json:"pendingOrders"`
}

type Dashboard struct {
	Stats        DashboardStats `json:"stats"`
	RecentOrders []models.Order `json:"recentOrders"`
}

type DashboardService struct {
	Repo DashboardRepo
}

// Dashboard gathers the admin overview. Revenue counts only orders whose payment completed.
func (s *DashboardService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.Repo.CountProducts(gctx)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		out.Stats.TotalProducts = n
		return nil
	})
	g.Go(func() error {
		n, err := s.Repo.CountOrders(gctx, "")
		if err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		out.Stats.TotalOrders = n
		return nil
	})
	g.Go(func() error {
		n, err := s.Repo.CountOrders(gctx, models.OrderStatusPending)
		if err != nil {
			return fmt.Errorf("count pending orders: %w", err)
		}
		out.Stats.PendingOrders = n
		return nil
	})
	g.Go(func() error {
		rev, err := s.Repo.Revenue(gctx, models.PaymentStatusCompleted)
		if err != nil {
			return fmt.Errorf("revenue: %w", err)
		}
		out.Stats.TotalRevenue = rev
		return nil
	})
	g.Go(func() error {
		orders, err := s.Repo.ListOrders(gctx, recentOrdersLimit)
		if err != nil {
			return fmt.Errorf("recent orders: %w", err)
		}
		out.RecentOrders = orders
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recent := ptrs(out.RecentOrders)
	populateOrders(ctx, s.Repo, recent...)
	attachUsers(ctx, s.Repo, recent...)
	return &out, nil
}
