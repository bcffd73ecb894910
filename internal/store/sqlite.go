package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/filmlog/go-watchlist-backend/internal/domain"
)

// document is one named JSON document. The watchlist uses a single row, but
// the table is keyed by name so the same schema could hold other documents.
type document struct {
	Name      string `gorm:"primaryKey;type:varchar(255)"`
	Content   []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName returns the database table name for document.
func (document) TableName() string { return "documents" }

// OpenSQLite opens (or creates) the SQLite database backing the local
// document store and applies PRAGMAs and pool settings.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite
	// "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	return db, nil
}

// SQLiteStore keeps the collection document in a local SQLite row. It mirrors
// the blob store's replace-whole semantics, including the delete-then-insert
// write, so the two backends are interchangeable behind the Store interface.
type SQLiteStore struct {
	db   *gorm.DB
	name string
}

// NewSQLiteStore migrates the documents table and returns a store persisting
// under name (CollectionName when empty).
func NewSQLiteStore(db *gorm.DB, name string) (*SQLiteStore, error) {
	if name == "" {
		name = CollectionName
	}
	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, name: name}, nil
}

// GetAll loads and decodes the collection row. A missing row or a payload
// that is not a movie array yields an empty collection; database errors are
// returned to the caller as genuine storage faults.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]domain.Movie, error) {
	var doc document
	err := s.db.WithContext(ctx).Where("name = ?", s.name).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []domain.Movie{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite store: read collection: %w", err)
	}

	var movies []domain.Movie
	if err := json.Unmarshal(doc.Content, &movies); err != nil {
		log.Error().Err(err).Str("name", s.name).Msg("sqlite store: document is not a movie array, serving empty collection")
		return []domain.Movie{}, nil
	}
	if movies == nil {
		movies = []domain.Movie{}
	}
	return movies, nil
}

// ReplaceAll writes movies as the new document row inside one transaction,
// deleting the previous row first.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, movies []domain.Movie) error {
	if movies == nil {
		movies = []domain.Movie{}
	}
	payload, err := json.MarshalIndent(movies, "", "  ")
	if err != nil {
		return fmt.Errorf("sqlite store: encode collection: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", s.name).Delete(&document{}).Error; err != nil {
			return err
		}
		return tx.Create(&document{
			Name:      s.name,
			Content:   payload,
			UpdatedAt: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("sqlite store: write collection: %w", err)
	}
	return nil
}
