package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
	"github.com/figurestore/go-order-api/internal/domains/orders/ports"
)

var (
	_ ports.InventoryStore  = (*InventoryStore)(nil)
	_ ports.CounterAdjuster = (*InventoryStore)(nil)
)

// InventoryStore keeps the per-variant counters in PostgreSQL. Besides the
// plain get/set contract it offers AdjustCount, a single conditional
// UPDATE, so reservations and releases issued by different processes (the
// API and the workflow worker share these rows) serialize in the database
// instead of in process-local mutexes.
type InventoryStore struct {
	db *gorm.DB
}

// NewInventoryStore wires the counter table. Caller manages DB lifecycle.
func NewInventoryStore(db *gorm.DB) *InventoryStore {
	store := &InventoryStore{db: db}
	if db != nil {
		_ = db.AutoMigrate(&stockRecord{})
	}
	return store
}

type stockRecord struct {
	FigureType string    `gorm:"primaryKey;column:figure_type;type:varchar(32)"`
	Count      int       `gorm:"column:count"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (stockRecord) TableName() string { return "stock_levels" }

// GetCount reads the counter; an absent row reads as zero stock.
func (s *InventoryStore) GetCount(ctx context.Context, kind domain.Kind) (int, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	var record stockRecord
	if err := s.db.WithContext(ctx).First(&record, "figure_type = ?", string(kind)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ports.ErrInventoryUnavailable, err)
	}
	return record.Count, nil
}

// SetCount upserts the counter row.
func (s *InventoryStore) SetCount(ctx context.Context, kind domain.Kind, count int) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	record := stockRecord{FigureType: string(kind), Count: count}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "figure_type"}},
			DoUpdates: clause.Assignments(map[string]any{"count": count, "updated_at": gorm.Expr("NOW()")}),
		}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrInventoryUnavailable, err)
	}
	return nil
}

// AdjustCount applies delta to the counter as one atomic statement. A
// decrement only lands when the row exists and covers it; the row-level
// lock the UPDATE takes serializes concurrent writers across processes.
func (s *InventoryStore) AdjustCount(ctx context.Context, kind domain.Kind, delta int) (bool, error) {
	if err := s.ensureDB(); err != nil {
		return false, err
	}
	if delta >= 0 {
		record := stockRecord{FigureType: string(kind), Count: delta}
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "figure_type"}},
				DoUpdates: clause.Assignments(map[string]any{
					"count":      gorm.Expr("stock_levels.count + ?", delta),
					"updated_at": gorm.Expr("NOW()"),
				}),
			}).Create(&record).Error
		if err != nil {
			return false, fmt.Errorf("%w: %v", ports.ErrInventoryUnavailable, err)
		}
		return true, nil
	}
	result := s.db.WithContext(ctx).Model(&stockRecord{}).
		Where("figure_type = ? AND count + ? >= 0", string(kind), delta).
		Updates(map[string]any{
			"count":      gorm.Expr("count + ?", delta),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return false, fmt.Errorf("%w: %v", ports.ErrInventoryUnavailable, result.Error)
	}
	// Zero rows means the counter is absent or would go negative.
	return result.RowsAffected > 0, nil
}

func (s *InventoryStore) ensureDB() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("%w: postgres inventory store not configured", ports.ErrInventoryUnavailable)
	}
	return nil
}
