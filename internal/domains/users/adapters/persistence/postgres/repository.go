package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/earthenstore/storefront-api/internal/domains/users/domain"
	"github.com/earthenstore/storefront-api/internal/domains/users/ports"
	"github.com/earthenstore/storefront-api/internal/shared/identity"
)

var _ ports.Repository = (*Repository)(nil)

type userRecord struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name         string `gorm:"type:varchar(255);not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Role         string `gorm:"type:varchar(16);not null"`
	CreatedAt    int64  `gorm:"autoCreateTime:milli"`
	UpdatedAt    int64  `gorm:"autoUpdateTime:milli"`
}

func (userRecord) TableName() string { return "users" }

// Repository persists users in PostgreSQL.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("gorm DB is required")
	}
	if err := db.AutoMigrate(&userRecord{}); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	record := toRecord(user)
	err := r.db.WithContext(ctx).Save(&record).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ports.ErrEmailTaken
		}
		return nil, err
	}
	saved := toDomain(record)
	return &saved, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var record userRecord
	err := r.db.WithContext(ctx).First(&record, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	user := toDomain(record)
	return &user, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var record userRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	user := toDomain(record)
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "duplicate key value")
}

func toRecord(user *domain.User) userRecord {
	return userRecord{
		ID:           user.ID,
		Email:        strings.ToLower(user.Email),
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
	}
}

func toDomain(record userRecord) domain.User {
	return domain.User{
		ID:           record.ID,
		Email:        record.Email,
		Name:         record.Name,
		PasswordHash: record.PasswordHash,
		Role:         identity.Role(record.Role),
	}
}
