package service

import (
	"context"
	"testing"

	"cabinbook/internal/database"
	"cabinbook/internal/events"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*database.DB, *events.Bus) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bus := events.NewBus()
	db.SetPublisher(bus)
	return db, bus
}

func openDays(t *testing.T, db *database.DB, dates ...string) {
	t.Helper()
	_, err := db.OpenDays(context.Background(), dates)
	require.NoError(t, err)
}
