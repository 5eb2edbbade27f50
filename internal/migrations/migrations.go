// Package migrations tracks and applies versioned schema migrations.
// Each migration file registers itself from init(), so importing the
// versions package is enough to make every migration available.
package migrations

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// Migration is a row in the migration tracking table
type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `gorm:"size:255;not null;unique"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// MigrationFunc applies or rolls back one migration inside a transaction
type MigrationFunc func(*gorm.DB) error

// Definition couples a migration with its metadata
type Definition struct {
	Version  string
	Name     string
	Migrate  MigrationFunc
	Rollback MigrationFunc
}

var registered []Definition

// Register adds a migration with rollback capability
func Register(version, name string, migrate, rollback MigrationFunc) {
	registered = append(registered, Definition{
		Version:  version,
		Name:     name,
		Migrate:  migrate,
		Rollback: rollback,
	})
}

// Migrator applies registered migrations against one database
type Migrator struct {
	db *gorm.DB
}

func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{db: db}
}

func (m *Migrator) ensureTable() error {
	return m.db.AutoMigrate(&Migration{})
}

func (m *Migrator) applied() (map[string]Migration, []Migration, error) {
	var rows []Migration
	if err := m.db.Order("version").Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	byVersion := make(map[string]Migration, len(rows))
	for _, row := range rows {
		byVersion[row.Version] = row
	}
	return byVersion, rows, nil
}

func sortedDefinitions() []Definition {
	defs := make([]Definition, len(registered))
	copy(defs, registered)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Version < defs[j].Version })
	return defs
}

// MigrateUp applies all pending migrations in version order
func (m *Migrator) MigrateUp() error {
	if err := m.ensureTable(); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}

	appliedMap, _, err := m.applied()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, def := range sortedDefinitions() {
		if _, done := appliedMap[def.Version]; done {
			continue
		}
		fmt.Printf("Applying migration %s: %s\n", def.Version, def.Name)

		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := def.Migrate(tx); err != nil {
				return err
			}
			return tx.Create(&Migration{
				Version:   def.Version,
				Name:      def.Name,
				AppliedAt: time.Now(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration '%s': %w", def.Version, err)
		}
		fmt.Printf("Migration %s applied successfully\n", def.Version)
	}

	return nil
}

// MigrateDown rolls back the most recently applied migration
func (m *Migrator) MigrateDown() error {
	if err := m.ensureTable(); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}

	_, rows, err := m.applied()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	if len(rows) == 0 {
		fmt.Println("No migrations to roll back")
		return nil
	}

	last := rows[len(rows)-1]
	var target *Definition
	for _, def := range registered {
		if def.Version == last.Version {
			d := def
			target = &d
			break
		}
	}
	if target == nil {
		return fmt.Errorf("could not find migration with version %s to roll back", last.Version)
	}
	if target.Rollback == nil {
		return fmt.Errorf("migration %s does not support rollback", last.Version)
	}

	fmt.Printf("Rolling back migration %s: %s\n", last.Version, last.Name)

	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := target.Rollback(tx); err != nil {
			return err
		}
		return tx.Delete(&Migration{}, "version = ?", last.Version).Error
	})
	if err != nil {
		return fmt.Errorf("failed to roll back migration '%s': %w", last.Version, err)
	}

	fmt.Printf("Migration %s rolled back successfully\n", last.Version)
	return nil
}

// Status prints every registered migration and whether it is applied
func (m *Migrator) Status() error {
	if err := m.ensureTable(); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}

	appliedMap, _, err := m.applied()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	fmt.Println("Migration Status:")
	fmt.Println("================")
	for _, def := range sortedDefinitions() {
		if row, done := appliedMap[def.Version]; done {
			fmt.Printf("[x] %s: %s (applied at %s)\n", def.Version, def.Name, row.AppliedAt.Format(time.RFC3339))
		} else {
			fmt.Printf("[ ] %s: %s (pending)\n", def.Version, def.Name)
		}
	}

	return nil
}
