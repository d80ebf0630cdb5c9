//go:build integration

package mock

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Db is a private in-memory sqlite database migrated with the models under test.
type Db struct {
	Conn *gorm.DB

	// tables in migration order, parents before children
	tables []string
	models map[string]any
}

// NewDb opens the database and migrates models. Pass parent tables before
// the tables that reference them.
func NewDb(models ...any) (*Db, error) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	// every new connection to :memory: would get an empty database
	sqlDB.SetMaxOpenConns(1)

	d := &Db{Conn: conn, models: make(map[string]any, len(models))}
	for _, model := range models {
		stmt := &gorm.Statement{DB: conn}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse %T: %w", model, err)
		}
		d.tables = append(d.tables, stmt.Schema.Table)
		d.models[stmt.Schema.Table] = model
	}
	if err := conn.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// Reset empties every table, children first.
func (d *Db) Reset() error {
	for i := len(d.tables) - 1; i >= 0; i-- {
		if err := d.Conn.Exec("DELETE FROM " + d.tables[i]).Error; err != nil {
			return fmt.Errorf("reset %s: %w", d.tables[i], err)
		}
	}
	return nil
}

// Model returns the model registered for table.
func (d *Db) Model(table string) (any, bool) {
	model, ok := d.models[table]
	return model, ok
}
