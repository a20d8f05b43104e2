package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&categoryRecord{},
		&variantRecord{},
		&orderRecord{},
		&orderLineRecord{},
		&userRecord{},
		&sessionRecord{},
		&idempotencyRecord{},
	)
}

// Product schema mirrors the catalog Postgres adapter.
type productRecord struct {
	ID          string         `gorm:"type:uuid;primaryKey"`
	Name        string         `gorm:"type:varchar(255);not null"`
	Slug        string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string         `gorm:"type:text"`
	CategoryID  *string        `gorm:"type:uuid;index"`
	ImageKeys   pq.StringArray `gorm:"type:text[]"`
	Active      bool           `gorm:"not null;default:true"`
	Featured    bool           `gorm:"not null;default:false;index"`
	CreatedAt   int64          `gorm:"autoCreateTime:milli"`
	UpdatedAt   int64          `gorm:"autoUpdateTime:milli"`
}

func (productRecord) TableName() string { return "products" }

// Category schema mirrors the catalog Postgres adapter.
type categoryRecord struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"type:varchar(255);not null"`
	Slug        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli"`
	UpdatedAt   int64  `gorm:"autoUpdateTime:milli"`
}

func (categoryRecord) TableName() string { return "categories" }

// Variant schema carries the database-level stock floor.
type variantRecord struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	ProductID string `gorm:"type:uuid;not null;index"`
	SKU       string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Price     int64  `gorm:"not null"`
	Stock     int64  `gorm:"not null;check:chk_variant_stock,stock >= 0"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt int64  `gorm:"autoCreateTime:milli"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli"`
}

func (variantRecord) TableName() string { return "product_variants" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	UserID        *string   `gorm:"type:uuid;index"`
	CustomerName  string    `gorm:"type:varchar(255);not null"`
	CustomerEmail string    `gorm:"type:varchar(255);not null"`
	AddressLine   string    `gorm:"type:varchar(255);not null"`
	City          string    `gorm:"type:varchar(128);not null"`
	ZipCode       string    `gorm:"type:varchar(32);not null"`
	Total         int64     `gorm:"not null"`
	Status        string    `gorm:"type:varchar(32);not null;index"`
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	OrderID   string    `gorm:"type:uuid;not null;index"`
	VariantID string    `gorm:"type:uuid;not null;index"`
	Quantity  int64     `gorm:"not null"`
	Price     int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

// User schema mirrors the users Postgres adapter.
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

// Session schema mirrors the session store.
type sessionRecord struct {
	Token     string     `gorm:"primaryKey;column:token;size:512"`
	UserID    string     `gorm:"column:user_id;type:uuid;index"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Idempotency schema mirrors the catalog create-product store.
type idempotencyRecord struct {
	Key         string    `gorm:"type:varchar(128);primaryKey"`
	RequestHash string    `gorm:"type:varchar(64);not null"`
	ProductID   string    `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (idempotencyRecord) TableName() string { return "product_idempotency_keys" }
