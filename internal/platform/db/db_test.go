package db

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataSource(t *testing.T) {
	t.Run("mysql counts matched rows", func(t *testing.T) {
		dsn, err := dataSource(DatabaseConfig{
			Driver: DialectMySQL, Host: "127.0.0.1", Port: 3306,
			Username: "lib", Password: "secret", DBName: "library",
		})
		require.NoError(t, err)

		cfg, err := mysql.ParseDSN(dsn)
		require.NoError(t, err)
		assert.True(t, cfg.ClientFoundRows)
		assert.True(t, cfg.ParseTime)
		assert.Equal(t, "library", cfg.DBName)
		assert.Equal(t, "127.0.0.1:3306", cfg.Addr)
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		_, err := dataSource(DatabaseConfig{Driver: DialectSQLite})
		assert.Error(t, err)
	})

	t.Run("sqlite enforces foreign keys", func(t *testing.T) {
		dsn, err := dataSource(DatabaseConfig{Driver: DialectSQLite, Path: "/tmp/lib.db"})
		require.NoError(t, err)
		assert.Contains(t, dsn, "_foreign_keys=1")
		assert.Contains(t, dsn, "_txlock=immediate")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := dataSource(DatabaseConfig{Driver: "postgres"})
		assert.Error(t, err)
	})
}
