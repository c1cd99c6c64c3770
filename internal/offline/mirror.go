package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/jam-build-learnhub/internal/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Mirror is on-device key/value storage. Values are replaced whole; there is
// no merge, versioning or expiry.
type Mirror interface {
	// Get returns the stored value and whether one exists
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store is a Mirror that holds resources until closed
type Store interface {
	Mirror
	io.Closer
}

// MirrorEntry is one stored value
type MirrorEntry struct {
	Key       string `gorm:"column:mirror_key;primaryKey;size:128"`
	Value     []byte
	UpdatedAt time.Time
}

// TableName sets the mirror table name
func (MirrorEntry) TableName() string {
	return "mirror_entries"
}

// SQLiteMirror keeps mirrors in a local SQLite file
type SQLiteMirror struct {
	db *gorm.DB
}

// OpenSQLiteMirror opens (creating if needed) the mirror database at path.
// ":memory:" gives a private in-memory mirror.
func OpenSQLiteMirror(path string) (*SQLiteMirror, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	// One connection: writers serialize, and :memory: stays a single database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&MirrorEntry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate mirror: %w", err)
	}

	return &SQLiteMirror{db: db}, nil
}

// Get implements Mirror
func (m *SQLiteMirror) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry MirrorEntry
	err := m.db.WithContext(ctx).Where("mirror_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry.Value, true, nil
}

// Put implements Mirror
func (m *SQLiteMirror) Put(ctx context.Context, key string, value []byte) error {
	entry := MirrorEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mirror_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Close closes the database
func (m *SQLiteMirror) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// OpenStore opens the configured mirror: Redis when a URL is set, otherwise
// the SQLite file at CachePath.
func OpenStore(cfg *config.ClientConfig) (Store, error) {
	if cfg.RedisURL != "" {
		return NewRedisMirror(cfg.RedisURL, cfg.ProjectID)
	}
	return OpenSQLiteMirror(cfg.CachePath)
}
