package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Payphone-Digital/midas/config"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// document is the single table backing every collection.
type document struct {
	Collection string         `gorm:"primaryKey;size:64"`
	DocKey     string         `gorm:"column:doc_key;primaryKey;size:255"`
	Data       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (document) TableName() string {
	return "documents"
}

// PostgresStore keeps documents in a jsonb column keyed by (collection, doc_key).
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(ctx context.Context, cfg config.DatabaseConfig, dsn, environment string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var dbLogger gormLogger.Interface
	switch environment {
	case "production":
		dbLogger = gormLogger.Default.LogMode(gormLogger.Silent)
	default:
		dbLogger = gormLogger.Default.LogMode(gormLogger.Warn)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
		PrepareStmt:    true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&document{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate documents table: %w", err)
	}

	logger.Info("Successfully connected to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
	)

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Create(ctx context.Context, collection, key string, v any) error {
	if err := ValidateKey(collection, key); err != nil {
		return wrap("create", collection, key, err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return wrap("create", collection, key, err)
	}

	doc := document{Collection: collection, DocKey: key, Data: datatypes.JSON(data)}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return wrap("create", collection, key, ErrExists)
		}
		return wrap("create", collection, key, err)
	}
	return nil
}

func (s *PostgresStore) Read(ctx context.Context, collection, key string, out any) error {
	if err := ValidateKey(collection, key); err != nil {
		return wrap("read", collection, key, err)
	}

	var doc document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_key = ?", collection, key).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wrap("read", collection, key, ErrNotFound)
		}
		return wrap("read", collection, key, err)
	}

	if err := json.Unmarshal(doc.Data, out); err != nil {
		return wrap("read", collection, key, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, key string, v any) error {
	if err := ValidateKey(collection, key); err != nil {
		return wrap("update", collection, key, err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return wrap("update", collection, key, err)
	}

	result := s.db.WithContext(ctx).
		Model(&document{}).
		Where("collection = ? AND doc_key = ?", collection, key).
		Updates(map[string]any{"data": datatypes.JSON(data), "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return wrap("update", collection, key, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("update", collection, key, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, key string) error {
	if err := ValidateKey(collection, key); err != nil {
		return wrap("delete", collection, key, err)
	}

	result := s.db.WithContext(ctx).
		Where("collection = ? AND doc_key = ?", collection, key).
		Delete(&document{})
	if result.Error != nil {
		return wrap("delete", collection, key, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("delete", collection, key, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, collection, key string) (bool, error) {
	if err := ValidateKey(collection, key); err != nil {
		return false, wrap("exists", collection, key, err)
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&document{}).
		Where("collection = ? AND doc_key = ?", collection, key).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, wrap("exists", collection, key, err)
	}
	return count > 0, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance for closing: %w", err)
	}
	return sqlDB.Close()
}
