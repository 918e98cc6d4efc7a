// Package store persists keeper round history using Gorm + SQLite. Each
// dispatched relay task becomes one row, which is what the status API and
// post-incident digging need.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Kind string

const (
	KindSettlement  Kind = "settlement"
	KindLiquidation Kind = "liquidation"
)

// RoundRecord is one dispatched relay task. ItemIDs holds the order or
// position ids the task covered, as a JSON array.
type RoundRecord struct {
	ID        uint           `gorm:"primaryKey"`
	Kind      Kind           `gorm:"size:16;index"`
	TaskID    string         `gorm:"size:128"`
	Count     int            `gorm:"not null"`
	ItemIDs   datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time      `gorm:"index"`
}

func (RoundRecord) TableName() string { return "keeper_rounds" }

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store: database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&RoundRecord{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: allow a small amount of parallelism for concurrent HTTP
	// reads while keeping lock contention low.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

// RecordRound appends one dispatched task to the history.
func (s *Store) RecordRound(kind Kind, taskID string, itemIDs []string) error {
	items, err := json.Marshal(itemIDs)
	if err != nil {
		return err
	}
	record := RoundRecord{
		Kind:    kind,
		TaskID:  taskID,
		Count:   len(itemIDs),
		ItemIDs: datatypes.JSON(items),
	}
	return s.db.Create(&record).Error
}

// RecentRounds returns the newest rounds first, capped at limit.
func (s *Store) RecentRounds(limit int) ([]RoundRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []RoundRecord
	err := s.db.Order("id DESC").Limit(limit).Find(&records).Error
	return records, err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
