//go:build ignore

package versions

import (
	"tradecrm/internal/migrations"

	"gorm.io/gorm"
)

func init() {
	migrations.Register("{{VERSION}}", "{{NAME}}", {{FUNC_NAME}}, rollback{{FUNC_NAME}})
}

func {{FUNC_NAME}}(tx *gorm.DB) error {
	return tx.Exec(`
		-- Your SQL here
		-- For example:
		-- ALTER TABLE reminders ADD COLUMN new_column TEXT;
	`).Error
}

func rollback{{FUNC_NAME}}(tx *gorm.DB) error {
	return tx.Exec(`
		-- Undo the change above
	`).Error
}
