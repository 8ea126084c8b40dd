package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/carwashpos/backend/pkg/config"
)

func TestSchemaMigrationsContainTables(t *testing.T) {
	for _, driver := range []string{config.DriverPostgres, config.DriverSQLite} {
		matches, err := filepath.Glob(filepath.Join("migrations", driver, "*_create_carwash_schema.sql"))
		require.NoError(t, err)
		require.Len(t, matches, 1, "driver %s", driver)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		content := string(data)

		for _, table := range []string{"customers", "vehicles", "services", "appointments", "payments", "sales", "sale_items"} {
			assert.Contains(t, content, "CREATE TABLE IF NOT EXISTS "+table, "driver %s", driver)
			assert.Contains(t, content, "DROP TABLE IF EXISTS "+table, "driver %s", driver)
		}
		assert.Contains(t, content, "CONSTRAINT uq_vehicles_reg_no UNIQUE (reg_no)")
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	err := ValidateDir(dir)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid migration filename"))
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Loyalty Points")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_loyalty_points.sql"))
	require.NoError(t, ValidateDir(dir))
}

func TestUpAppliesSQLiteSchema(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "carwash.db")), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Up(context.Background(), sqlDB, config.DriverSQLite))

	for _, table := range []string{"customers", "vehicles", "services", "appointments", "payments", "sales", "sale_items"} {
		assert.True(t, conn.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestValidateDirRequiresAlignedDrivers(t *testing.T) {
	root := t.TempDir()
	body := []byte("-- +goose Up\n-- +goose Down\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "postgres"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sqlite"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "postgres", "20250101000000_init.sql"), body, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sqlite", "20250101000000_init.sql"), body, 0o644))
	require.NoError(t, ValidateDir(root))

	require.NoError(t, os.WriteFile(filepath.Join(root, "postgres", "20250201000000_loyalty.sql"), body, 0o644))
	err := ValidateDir(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "20250201000000")
}

func TestCreateSQLMigrationRejectsBlankName(t *testing.T) {
	_, err := CreateSQLMigration(t.TempDir(), " -- ")
	assert.Error(t, err)
}
