package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ImageList is a postgres text[] column, encoded with lib/pq's array format.
// Other dialects keep the same literal in a text column.
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	return pq.StringArray(l).Value()
}

func (l *ImageList) Scan(src any) error {
	return (*pq.StringArray)(l).Scan(src)
}

func (ImageList) GormDataType() string {
	return "text"
}

func (ImageList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"               json:"id"`
	Name        string          `gorm:"size:200;not null"                  json:"name"`
	Description string          `gorm:"type:text;not null"                 json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"        json:"price"`
	Category    string          `gorm:"size:100;not null;index"            json:"category"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Images      ImageList       `                                          json:"images"`
	CreatedAt   time.Time       `gorm:"index"                              json:"createdAt"`
	UpdatedAt   time.Time       `                                          json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Images == nil {
		p.Images = ImageList{}
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}

// ProductSummary is the display subset attached to order lines on read.
type ProductSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Images []string  `json:"images"`
}

func (p Product) Summary() ProductSummary {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	return ProductSummary{ID: p.ID, Name: p.Name, Images: images}
}
