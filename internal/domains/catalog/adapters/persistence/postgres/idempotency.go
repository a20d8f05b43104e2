package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

type idempotencyRecord struct {
	Key         string    `gorm:"type:varchar(128);primaryKey"`
	RequestHash string    `gorm:"type:varchar(64);not null"`
	ProductID   string    `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (idempotencyRecord) TableName() string { return "product_idempotency_keys" }

// IdempotencyStore persists create-product idempotency records so retried
// requests across API instances replay the same product.
type IdempotencyStore struct {
	db *gorm.DB
}

func NewIdempotencyStore(db *gorm.DB) (*IdempotencyStore, error) {
	if db == nil {
		return nil, errors.New("gorm DB is required")
	}
	if err := db.AutoMigrate(&idempotencyRecord{}); err != nil {
		return nil, err
	}
	return &IdempotencyStore{db: db}, nil
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	var record idempotencyRecord
	err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ports.IdempotencyRecord{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		ProductID:   record.ProductID,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	now := time.Now().UTC()
	row := idempotencyRecord{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		ProductID:   record.ProductID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	if err == nil {
		record.CreatedAt = now
		record.UpdatedAt = now
		return &record, nil
	}
	if !isUniqueViolation(err) {
		return nil, err
	}
	// Lost a concurrent race for the key: the winner's record stands if it
	// matches this request, otherwise the key is being reused.
	existing, getErr := s.Get(ctx, record.Key)
	if getErr != nil {
		return nil, getErr
	}
	if existing == nil || existing.RequestHash != record.RequestHash || existing.ProductID != record.ProductID {
		return nil, ports.ErrIdempotencyConflict
	}
	return existing, nil
}
