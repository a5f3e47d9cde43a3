package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appliance-buddy-backend/config"
	"appliance-buddy-backend/internal/db"
	"appliance-buddy-backend/internal/store"
)

func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	gormDB, err := db.Init(&config.DatabaseConfig{
		DSN:      "sqlite://file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return store.NewGormStore(gormDB)
}

// Mutation rules must hold no matter which store persists the rows.
var storeFactories = map[string]func(t *testing.T) store.Store{
	"memory":      func(*testing.T) store.Store { return store.NewMemoryStore() },
	"gorm/sqlite": newSQLiteStore,
}

// assertSameTime compares instants; drivers may hand back a different Location.
func assertSameTime(t *testing.T, want, got *time.Time) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	assert.True(t, want.Equal(*got), "want %s, got %s", want, got)
}
