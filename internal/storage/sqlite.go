// Package storage keeps a catalog of completed transcriptions in SQLite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "notescribe.sqlite3"

var ErrNotFound = errors.New("transcription not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Transcription is one catalog row for a finished transcription run.
type Transcription struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Title       string `gorm:"index:idx_title" json:"title"`
	SourcePath  string `json:"source_path"`
	MIDIPath    string `json:"midi_path"`
	DurationSec float64 `json:"duration_sec"`
	NoteCount   int     `json:"note_count"`
	Tempo       float64 `json:"tempo"`
	CreatedAt   time.Time
}

// NewDBClient opens the catalog at NOTESCRIBE_DB_PATH or the default file.
func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("NOTESCRIBE_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Transcription{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RegisterTranscription stores a new catalog row and returns its ID.
func (c *DBClient) RegisterTranscription(rec Transcription) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New("db client is nil")
	}
	rec.ID = uuid.NewString()
	if err := c.DB.Create(&rec).Error; err != nil {
		return "", fmt.Errorf("creating transcription row: %w", err)
	}
	return rec.ID, nil
}

func (c *DBClient) GetTranscriptionByID(id string) (*Transcription, error) {
	var rec Transcription
	err := c.DB.Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying transcription: %w", err)
	}
	return &rec, nil
}

// ListTranscriptions returns all rows, most recent first.
func (c *DBClient) ListTranscriptions() ([]Transcription, error) {
	var recs []Transcription
	if err := c.DB.Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing transcriptions: %w", err)
	}
	return recs, nil
}

func (c *DBClient) DeleteTranscriptionByID(id string) error {
	res := c.DB.Where("id = ?", id).Delete(&Transcription{})
	if res.Error != nil {
		return fmt.Errorf("deleting transcription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
