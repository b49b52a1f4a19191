package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrStockConflict is returned by DecrementStock when the product holds fewer units than requested.
var ErrStockConflict = errors.New("stock conflict")

type GormRepo struct {
	DB *gorm.DB
}

type txKey struct{}

// WithTx runs fn inside one database transaction. Repo calls made with the context passed to fn
// join that transaction; fn returning an error (or ctx being cancelled) rolls everything back.
func (r *GormRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (r *GormRepo) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return r.DB.WithContext(ctx)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{})
}

// IsDuplicate reports a unique-constraint violation, whichever driver raised it.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
