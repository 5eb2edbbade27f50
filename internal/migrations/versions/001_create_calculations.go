package versions

import (
	"tradecrm/internal/migrations"

	"gorm.io/gorm"
)

func init() {
	migrations.Register("001", "Create calculations table", createCalculationsTable, rollbackCalculationsTable)
}

func createCalculationsTable(tx *gorm.DB) error {
	return tx.Exec(`
		CREATE TABLE IF NOT EXISTS calculations (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			client_name VARCHAR(255) NOT NULL,
			total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			currency VARCHAR(8) NOT NULL DEFAULT 'USD',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_calculations_user_id ON calculations (user_id);
	`).Error
}

func rollbackCalculationsTable(tx *gorm.DB) error {
	return tx.Exec(`DROP TABLE IF EXISTS calculations;`).Error
}
