package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ShayCichocki/mdtasks/pkg/models"
)

// Well-known setting keys.
const (
	SettingColumns       = "columns"
	SettingLastWorkspace = "last_workspace"
	SettingLastFilter    = "last_filter"
)

// SaveRecord is one file written during a save.
type SaveRecord struct {
	ID       int64     `json:"id"`
	BatchID  string    `json:"batch_id"`
	File     string    `json:"file"`
	Replaced int       `json:"replaced"`
	SavedAt  time.Time `json:"saved_at"`
}

// GetSetting returns the stored value for key and whether it exists.
func (db *DB) GetSetting(key string) (string, bool, error) {
	row := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key)

	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes key. Deleting a missing key is not an error.
func (db *DB) DeleteSetting(key string) error {
	if _, err := db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

// SaveColumns stores the column layout of the task view.
func (db *DB) SaveColumns(columns []models.Column) error {
	data, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("marshal columns: %w", err)
	}
	return db.SetSetting(SettingColumns, string(data))
}

// LoadColumns returns the stored column layout, or the default layout when
// none has been saved.
func (db *DB) LoadColumns() ([]models.Column, error) {
	value, ok, err := db.GetSetting(SettingColumns)
	if err != nil {
		return nil, err
	}
	if !ok || value == "" {
		return models.DefaultColumns(), nil
	}

	var columns []models.Column
	if err := json.Unmarshal([]byte(value), &columns); err != nil {
		return nil, fmt.Errorf("unmarshal columns: %w", err)
	}
	return columns, nil
}

// RecordSaves logs the files written by one save, in a single transaction.
func (db *DB) RecordSaves(batchID string, replaced map[string]int, at time.Time) error {
	files := make([]string, 0, len(replaced))
	for f := range replaced {
		files = append(files, f)
	}
	sort.Strings(files)

	return db.Transaction(func(tx *sql.Tx) error {
		for _, f := range files {
			_, err := tx.Exec(`
				INSERT INTO saves (batch_id, file, replaced, saved_at) VALUES (?, ?, ?, ?)
			`, batchID, f, replaced[f], formatTime(at))
			if err != nil {
				return fmt.Errorf("record save of %s: %w", f, err)
			}
		}
		return nil
	})
}

// ListSaves returns the most recent save records, newest first.
// A limit of zero or less returns all records.
func (db *DB) ListSaves(limit int) ([]SaveRecord, error) {
	query := `SELECT id, batch_id, file, replaced, saved_at FROM saves ORDER BY saved_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var saves []SaveRecord
	for rows.Next() {
		var s SaveRecord
		var savedAt string
		if err := rows.Scan(&s.ID, &s.BatchID, &s.File, &s.Replaced, &savedAt); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		s.SavedAt, _ = parseTime(savedAt)
		saves = append(saves, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saves: %w", err)
	}
	return saves, nil
}
