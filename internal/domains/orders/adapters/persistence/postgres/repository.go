package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
	"github.com/figurestore/go-order-api/internal/domains/orders/ports"
	"github.com/figurestore/go-order-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{}, &orderLineRecord{})
	}
	return repo
}

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	ID        string            `gorm:"primaryKey;column:id;size:36"`
	Total     decimal.Decimal   `gorm:"column:total;type:numeric(14,4)"`
	PlacedAt  time.Time         `gorm:"column:placed_at"`
	Lines     []orderLineRecord `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt time.Time         `gorm:"column:created_at;index"`
	UpdatedAt time.Time         `gorm:"column:updated_at"`
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

// Save inserts or replaces an order together with its lines.
func (r *Repository) Save(ctx context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", record.ID).Delete(&orderLineRecord{}).Error; err != nil {
			return err
		}
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an order and its lines.
func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).Preload("Lines").First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection()
}

// Delete removes an order and its lines.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&orderLineRecord{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&orderRecord{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

// List returns all orders.
func (r *Repository) List(ctx context.Context) ([]*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).Preload("Lines").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*projection.Projection[*domain.Order], 0, len(records))
	for i := range records {
		order, err := records[i].toProjection()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	record := orderRecord{
		ID:       order.ID,
		Total:    order.Total,
		PlacedAt: order.PlacedAt,
		Lines:    make([]orderLineRecord, 0, len(order.Lines)),
	}
	for _, line := range order.Lines {
		record.Lines = append(record.Lines, orderLineRecord{
			OrderID:    order.ID,
			FigureType: string(line.Figure.Kind()),
			Dimensions: figureDimensions(line.Figure),
			Quantity:   line.Quantity,
			LineTotal:  line.LineTotal,
		})
	}
	return record
}

func (r orderRecord) toProjection() (*projection.Projection[*domain.Order], error) {
	order := &domain.Order{
		ID:       r.ID,
		Lines:    make([]domain.Line, 0, len(r.Lines)),
		Total:    r.Total,
		PlacedAt: r.PlacedAt,
	}
	for _, line := range r.Lines {
		kind, err := domain.ParseKind(line.FigureType)
		if err != nil {
			return nil, err
		}
		figure, err := domain.NewFigure(kind, dimensionsOf(line.Dimensions))
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, domain.Line{
			Figure:    figure,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
	}
	return projection.Of(order, r.CreatedAt, r.UpdatedAt), nil
}

func figureDimensions(figure domain.Figure) pq.Float64Array {
	switch f := figure.(type) {
	case domain.Triangle:
		return pq.Float64Array{f.SideA, f.SideB, f.SideC}
	case domain.Square:
		return pq.Float64Array{f.Side}
	case domain.Circle:
		return pq.Float64Array{f.Radius}
	default:
		return nil
	}
}

func dimensionsOf(dims pq.Float64Array) domain.Dimensions {
	var d domain.Dimensions
	if len(dims) > 0 {
		d.A = dims[0]
	}
	if len(dims) > 1 {
		d.B = dims[1]
	}
	if len(dims) > 2 {
		d.C = dims[2]
	}
	return d
}
