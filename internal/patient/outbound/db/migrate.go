package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS patients (
		id                    BIGINT       PRIMARY KEY,
		first_name            VARCHAR(100) NOT NULL,
		last_name             VARCHAR(100) NOT NULL,
		date_of_birth         DATE         NOT NULL,
		medical_record_number VARCHAR(50)  NOT NULL UNIQUE,
		email                 VARCHAR(255),
		phone_number          VARCHAR(20),
		created_at            TIMESTAMPTZ  NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS patients_email_key ON patients (lower(email)) WHERE email IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS patients_name_idx ON patients (last_name, first_name, id)`,
}

// Migrate creates the patients schema. Every statement is idempotent.
func Migrate(ctx context.Context, conn *pgxpool.Pool) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range migrations {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}

	return tx.Commit(ctx)
}
