package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userports "github.com/earthenstore/storefront-api/internal/domains/users/ports"
)

// DefaultSessionTTL provides the fallback TTL when none is configured.
const DefaultSessionTTL = 24 * time.Hour

type sessionRecord struct {
	Token     string     `gorm:"primaryKey;column:token;size:512"`
	UserID    string     `gorm:"column:user_id;type:uuid;index"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// SessionStore persists user sessions in PostgreSQL.
type SessionStore struct {
	db       *gorm.DB
	sessionT time.Duration
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB, sessionTTL time.Duration) (*SessionStore, error) {
	if db == nil {
		return nil, errors.New("gorm DB is required")
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, err
	}
	return &SessionStore{db: db, sessionT: sessionTTL}, nil
}

// Save upserts a session token keyed by the token value.
func (s *SessionStore) Save(ctx context.Context, userID, token string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	token = strings.TrimSpace(token)
	if userID == "" || token == "" {
		return errors.New("user id and token are required")
	}
	expiry := time.Now().Add(s.sessionT)
	rec := sessionRecord{UserID: userID, Token: token, ExpiresAt: &expiry}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "expires_at", "updated_at"}),
		}).
		Create(&rec).Error
}

// Delete removes every session for a user.
func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "user_id = ?", userID).Error
}

// IsActive reports whether a token is known and unexpired.
func (s *SessionStore) IsActive(ctx context.Context, token string) (bool, error) {
	if err := s.ensureDB(); err != nil {
		return false, err
	}
	var record sessionRecord
	err := s.db.WithContext(ctx).First(&record, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if record.ExpiresAt != nil && !record.ExpiresAt.After(time.Now()) {
		return false, nil
	}
	return true, nil
}

// PurgeExpired removes all expired sessions. Use for housekeeping or cron.
func (s *SessionStore) PurgeExpired(ctx context.Context) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	now := time.Now()
	return s.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", now).Delete(&sessionRecord{}).Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}

var _ userports.SessionStore = (*SessionStore)(nil)
