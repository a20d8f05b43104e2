package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/earthenstore/storefront-api/internal/domains/orders/domain"
	"github.com/earthenstore/storefront-api/internal/domains/orders/ports"
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
	ID            string    `gorm:"primaryKey;column:id;type:uuid"`
	UserID        *string   `gorm:"column:user_id;type:uuid;index"`
	CustomerName  string    `gorm:"column:customer_name"`
	CustomerEmail string    `gorm:"column:customer_email;index"`
	AddressLine   string    `gorm:"column:address_line"`
	City          string    `gorm:"column:city"`
	ZipCode       string    `gorm:"column:zip_code"`
	Total         int64     `gorm:"column:total"`
	Status        string    `gorm:"column:status;type:varchar(32);index"`
	CreatedAt     time.Time `gorm:"column:created_at;index"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID        string    `gorm:"primaryKey;column:id;type:uuid"`
	OrderID   string    `gorm:"column:order_id;type:uuid;index"`
	VariantID string    `gorm:"column:variant_id;type:uuid;index"`
	Quantity  int64     `gorm:"column:quantity"`
	Price     int64     `gorm:"column:price"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

type repositoryTx struct {
	db *gorm.DB
}

func (t *repositoryTx) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	record := toRecord(order)
	return t.db.WithContext(ctx).Create(&record).Error
}

func (t *repositoryTx) CreateOrderLines(ctx context.Context, orderID string, lines []domain.OrderLine) error {
	records := make([]orderLineRecord, 0, len(lines))
	for _, line := range lines {
		records = append(records, orderLineRecord{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}
	return t.db.WithContext(ctx).Create(&records).Error
}

// DecrementStock is the conditional, constraint-enforcing write the placement
// engine relies on: the WHERE clause makes check-and-decrement a single
// atomic statement, and zero affected rows means a concurrent order won the
// remaining stock. The variants table additionally carries a CHECK
// (stock >= 0) as a backstop.
func (t *repositoryTx) DecrementStock(ctx context.Context, variantID string, quantity int64) error {
	result := t.db.WithContext(ctx).
		Table("product_variants").
		Where("id = ? AND stock >= ?", variantID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &ports.StockConflictError{VariantID: variantID}
	}
	return nil
}

// RunInTransaction exposes the atomic commit boundary: order, lines, and
// stock decrements are one database transaction.
func (r *Repository) RunInTransaction(ctx context.Context, fn func(tx ports.OrderTx) error) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repositoryTx{db: tx})
	})
}

// GetByID fetches an order with its lines.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var lineRecords []orderLineRecord
	if err := r.db.WithContext(ctx).Find(&lineRecords, "order_id = ?", id).Error; err != nil {
		return nil, err
	}
	return record.toDomain(lineRecords), nil
}

// List returns all orders, newest first, without their lines.
func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain(nil))
	}
	return orders, nil
}

// UpdateStatus persists a status change validated by the application layer.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Stats aggregates the dashboard counters in three queries.
func (r *Repository) Stats(ctx context.Context, recentLimit int) (*ports.Stats, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	stats := &ports.Stats{}
	if err := r.db.WithContext(ctx).Model(&orderRecord{}).Count(&stats.Orders).Error; err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Select("COALESCE(SUM(total), 0)").
		Scan(&stats.Revenue).Error
	if err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if recentLimit > 0 {
		query = query.Limit(recentLimit)
	}
	var records []orderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	stats.Recent = make([]*domain.Order, 0, len(records))
	for i := range records {
		stats.Recent = append(stats.Recent, records[i].toDomain(nil))
	}
	return stats, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:            order.ID,
		UserID:        order.UserID,
		CustomerName:  order.Shipping.CustomerName,
		CustomerEmail: order.Shipping.CustomerEmail,
		AddressLine:   order.Shipping.AddressLine,
		City:          order.Shipping.City,
		ZipCode:       order.Shipping.ZipCode,
		Total:         order.Total,
		Status:        string(order.Status),
	}
}

func (r orderRecord) toDomain(lines []orderLineRecord) *domain.Order {
	order := &domain.Order{
		ID:     r.ID,
		UserID: r.UserID,
		Shipping: domain.ShippingDetails{
			CustomerName:  r.CustomerName,
			CustomerEmail: r.CustomerEmail,
			AddressLine:   r.AddressLine,
			City:          r.City,
			ZipCode:       r.ZipCode,
		},
		Total:     r.Total,
		Status:    domain.Status(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, line := range lines {
		order.Lines = append(order.Lines, domain.OrderLine{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}
	return order
}
