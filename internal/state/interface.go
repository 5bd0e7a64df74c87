package state

import (
	"io"
	"time"

	"github.com/ShayCichocki/mdtasks/pkg/models"
)

// SettingsStore is the key-value store behind the task view's preferences.
type SettingsStore interface {
	GetSetting(key string) (string, bool, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
	SaveColumns(columns []models.Column) error
	LoadColumns() ([]models.Column, error)
}

// SaveLog records which files were written back and when.
type SaveLog interface {
	RecordSaves(batchID string, replaced map[string]int, at time.Time) error
	ListSaves(limit int) ([]SaveRecord, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Store composes everything the CLI and TUI persist.
type Store interface {
	io.Closer
	Migrator
	SettingsStore
	SaveLog
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store         = (*DB)(nil)
	_ Migrator      = (*DB)(nil)
	_ SettingsStore = (*DB)(nil)
	_ SaveLog       = (*DB)(nil)
)
