package database

import (
	"context"
	"fmt"

	"cabinbook/internal/models"
)

// UpsertAdmin stores an admin contact keyed by normalized phone. Called at
// startup to seed the table from config.
func (db *DB) UpsertAdmin(ctx context.Context, name, phone string) error {
	query := `INSERT INTO admins (name, phone)
              VALUES (?, ?)
              ON CONFLICT(phone) DO UPDATE SET name = excluded.name`

	_, err := db.ExecContext(ctx, query, name, models.NormalizePhone(phone))
	if err != nil {
		return fmt.Errorf("failed to upsert admin: %w", err)
	}
	return nil
}

// IsAdminPhone reports whether an admin record exists for the phone, trying
// both the raw and the normalized form.
func (db *DB) IsAdminPhone(ctx context.Context, phone string) (bool, error) {
	query := `SELECT COUNT(*) FROM admins WHERE phone IN (?, ?)`

	var count int
	err := db.QueryRowContext(ctx, query, phone, models.NormalizePhone(phone)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check admin phone: %w", err)
	}
	return count > 0, nil
}
