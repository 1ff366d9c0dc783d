package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, DriverMySQL, cfg.Driver)
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, 100, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, 10, cfg.ConnectRetries)
	assert.Equal(t, 2*time.Second, cfg.RetryInterval)

	pg := Config{Driver: DriverPostgres}
	pg.ApplyDefaults()
	assert.Equal(t, 5432, pg.Port)
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Driver: DriverMySQL, Host: "db", Port: 3306, User: "root", Password: "secret", DBName: "ledger"}
	dsn, err := cfg.DSN()
	require.NoError(t, err)
	assert.Equal(t, "root:secret@tcp(db:3306)/ledger?charset=utf8mb4&parseTime=True&loc=Local", dsn)

	cfg.Driver = DriverPostgres
	cfg.Port = 5432
	dsn, err = cfg.DSN()
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=root password=secret dbname=ledger sslmode=disable TimeZone=UTC", dsn)

	cfg.Driver = "sqlite"
	_, err = cfg.DSN()
	assert.Error(t, err)
}
