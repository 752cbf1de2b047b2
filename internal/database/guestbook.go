package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cabinbook/internal/events"
	"cabinbook/internal/models"
)

func (db *DB) AddGuestbookEntry(ctx context.Context, entry *models.GuestbookEntry) error {
	query := `INSERT INTO guestbook (id, guest_name, guest_phone, message, created_at)
              VALUES (?, ?, ?, ?, ?)`

	now := time.Now()
	_, err := db.ExecContext(ctx, query, entry.ID, entry.GuestName, entry.GuestPhone, entry.Message, now)
	if err != nil {
		return fmt.Errorf("failed to add guestbook entry: %w", err)
	}

	entry.CreatedAt = now
	db.publish(events.TableGuestbook, events.OpInsert)
	return nil
}

// ListGuestbookEntries returns entries newest first, up to limit (0 = all).
func (db *DB) ListGuestbookEntries(ctx context.Context, limit int) ([]models.GuestbookEntry, error) {
	query := `SELECT id, guest_name, guest_phone, message, created_at FROM guestbook ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list guestbook entries: %w", err)
	}
	defer rows.Close()

	var entries []models.GuestbookEntry
	for rows.Next() {
		var entry models.GuestbookEntry
		if err := rows.Scan(&entry.ID, &entry.GuestName, &entry.GuestPhone, &entry.Message, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guestbook entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read guestbook entries: %w", err)
	}

	return entries, nil
}

func (db *DB) GetGuestbookEntry(ctx context.Context, id string) (*models.GuestbookEntry, error) {
	query := `SELECT id, guest_name, guest_phone, message, created_at FROM guestbook WHERE id = ?`

	var entry models.GuestbookEntry
	err := db.QueryRowContext(ctx, query, id).Scan(
		&entry.ID, &entry.GuestName, &entry.GuestPhone, &entry.Message, &entry.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guestbook entry: %w", err)
	}
	return &entry, nil
}

func (db *DB) DeleteGuestbookEntry(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM guestbook WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete guestbook entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}

	db.publish(events.TableGuestbook, events.OpDelete)
	return nil
}
