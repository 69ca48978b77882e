package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the orders bounded context. Intended to replace
// adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&orderLineRecord{},
		&stockRecord{},
		&idempotencyRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID        string          `gorm:"primaryKey;column:id;size:36"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(14,4)"`
	PlacedAt  time.Time       `gorm:"column:placed_at;index"`
	CreatedAt time.Time       `gorm:"column:created_at;index"`
	UpdatedAt time.Time       `gorm:"column:updated_at;index"`
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID         int64           `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID    string          `gorm:"column:order_id;size:36;index"`
	FigureType string          `gorm:"column:figure_type;type:varchar(32)"`
	Dimensions pq.Float64Array `gorm:"column:dimensions;type:double precision[]"`
	Quantity   int             `gorm:"column:quantity"`
	LineTotal  decimal.Decimal `gorm:"column:line_total;type:numeric(14,4)"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

// Stock schema mirrors the inventory counter store.
type stockRecord struct {
	FigureType string    `gorm:"primaryKey;column:figure_type;type:varchar(32)"`
	Count      int       `gorm:"column:count"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (stockRecord) TableName() string { return "stock_levels" }

// Idempotency schema mirrors the submission replay store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     string    `gorm:"column:order_id;size:36"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }
