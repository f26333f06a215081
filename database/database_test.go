package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"recipe-api/config"
	"recipe-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := Dialector(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)

	for _, driver := range []string{"postgres", "mysql", "sqlite"} {
		d, err := Dialector(config.DatabaseConfig{Driver: driver, DSN: "x"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"receita.db", "receita.db?_foreign_keys=on"},
		{"receita.db?", "receita.db?_foreign_keys=on"},
		{"file:receita.db?_busy_timeout=5000", "file:receita.db?_busy_timeout=5000&_foreign_keys=on"},
		{"receita.db?_foreign_keys=off", "receita.db?_foreign_keys=off"},
		{"receita.db?mode=rwc&_fk=1", "receita.db?mode=rwc&_fk=1"},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.dsn))
		})
	}
}

func TestOpenSQLiteCascadesUserDelete(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "receita.db"),
		LogLevel: "silent",
	}
	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db))

	user := models.User{Email: "cook@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	category := models.Category{Tag: models.Tag{UserID: user.ID, Name: "Caldo"}}
	require.NoError(t, db.Create(&category).Error)
	recipe := models.Recipe{UserID: user.ID, Name: "Borsch", Categories: []models.Category{category}}
	require.NoError(t, db.Create(&recipe).Error)

	require.NoError(t, db.Delete(&user).Error)

	for _, table := range []string{"recipes", "categories", "recipe_categories"} {
		var n int64
		require.NoError(t, db.Table(table).Count(&n).Error)
		assert.Zero(t, n, table)
	}
}

func TestOpenTranslatesDuplicateKeys(t *testing.T) {
	db := NewTestDB(t)

	require.NoError(t, db.Create(&models.User{Email: "a@example.com", Password: "x"}).Error)
	err := db.Create(&models.User{Email: "a@example.com", Password: "y"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestTagNamesUniquePerOwner(t *testing.T) {
	db := NewTestDB(t)

	u1 := models.User{Email: "u1@example.com", Password: "x"}
	u2 := models.User{Email: "u2@example.com", Password: "x"}
	require.NoError(t, db.Create(&u1).Error)
	require.NoError(t, db.Create(&u2).Error)

	require.NoError(t, db.Create(&models.Category{Tag: models.Tag{UserID: u1.ID, Name: "Caldo"}}).Error)
	require.NoError(t, db.Create(&models.Category{Tag: models.Tag{UserID: u2.ID, Name: "Caldo"}}).Error)

	err := db.Create(&models.Category{Tag: models.Tag{UserID: u1.ID, Name: "Caldo"}}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestWaitForDB(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "wait.db"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := WaitForDB(ctx, cfg, 10*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, Ping(ctx, db))
}

func TestWaitForDBGivesUp(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "oracle"}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := WaitForDB(ctx, cfg, 10*time.Millisecond, zap.NewNop())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
