package versions

import (
	"tradecrm/internal/migrations"

	"gorm.io/gorm"
)

func init() {
	migrations.Register("002", "Create reminders table", createRemindersTable, rollbackRemindersTable)
}

func createRemindersTable(tx *gorm.DB) error {
	return tx.Exec(`
		-- Create related entity enum
		DROP TYPE IF EXISTS related_type;
		CREATE TYPE related_type AS ENUM (
			'CALCULATION',
			'ORDER',
			'CLIENT'
		);

		-- Create reminder type enum
		DROP TYPE IF EXISTS reminder_type;
		CREATE TYPE reminder_type AS ENUM (
			'FOLLOW_UP',
			'CALL_CLIENT',
			'SEND_PROPOSAL',
			'CHECK_PAYMENT',
			'DELIVERY_REMINDER',
			'GENERAL'
		);

		-- Create reminder status enum
		DROP TYPE IF EXISTS reminder_status;
		CREATE TYPE reminder_status AS ENUM (
			'PENDING',
			'SENT',
			'COMPLETED',
			'CANCELLED'
		);

		-- Create reminders table
		CREATE TABLE IF NOT EXISTS reminders (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			related_id BIGINT NOT NULL,
			related_type related_type NOT NULL,
			type reminder_type NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			status reminder_status NOT NULL DEFAULT 'PENDING',
			scheduled_for TIMESTAMP WITH TIME ZONE NOT NULL,
			frequency_days INTEGER NOT NULL DEFAULT 3,
			max_reminders INTEGER NOT NULL DEFAULT 10,
			occurrence INTEGER NOT NULL DEFAULT 1,
			recurring BOOLEAN NOT NULL DEFAULT FALSE,
			processed_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,

			CONSTRAINT chk_reminders_frequency CHECK (frequency_days BETWEEN 1 AND 30),
			CONSTRAINT chk_reminders_max CHECK (max_reminders BETWEEN 1 AND 50),
			CONSTRAINT chk_reminders_occurrence CHECK (occurrence BETWEEN 1 AND max_reminders)
		);

		-- The due-sweep scans by status and scheduled time
		CREATE INDEX IF NOT EXISTS idx_reminders_user_id ON reminders (user_id);
		CREATE INDEX IF NOT EXISTS idx_reminders_status ON reminders (status);
		CREATE INDEX IF NOT EXISTS idx_reminders_scheduled_for ON reminders (scheduled_for);
		CREATE INDEX IF NOT EXISTS idx_reminders_type ON reminders (type);
	`).Error
}

func rollbackRemindersTable(tx *gorm.DB) error {
	return tx.Exec(`
		DROP TABLE IF EXISTS reminders;
		DROP TYPE IF EXISTS reminder_status;
		DROP TYPE IF EXISTS reminder_type;
		DROP TYPE IF EXISTS related_type;
	`).Error
}
