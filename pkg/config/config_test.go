package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.DB.Driver)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "*", cfg.HTTP.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.Inventory.TxTimeout)
	assert.Equal(t, 100, cfg.Inventory.ListLimit)
	assert.Equal(t, 10, cfg.DB.MaxConns)
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_PASSWORD", "p@ss word")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_TX_TIMEOUT_MS", "250")
	t.Setenv("MOVEMENTS_LIST_LIMIT", "20")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, 250*time.Millisecond, cfg.Inventory.TxTimeout)
	assert.Equal(t, 20, cfg.Inventory.ListLimit)
	assert.Contains(t, cfg.DB.ConnectionString(), "db:6543")
	assert.Contains(t, cfg.DB.ConnectionString(), "p%40ss%20word")
}

func TestLoad_DatabaseURLTienePrioridad(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://u:p@remoto:5432/tienda")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@remoto:5432/tienda", cfg.DB.ConnectionString())
}

func TestValidate_RechazaValoresInvalidos(t *testing.T) {
	base := func() Config {
		return Config{
			DB:        DBConfig{Driver: DriverMemory, MaxConns: 1},
			HTTP:      HTTPConfig{Port: 8080},
			Inventory: InventoryConfig{TxTimeout: time.Second, ListLimit: 10},
		}
	}
	cases := map[string]func(c *Config){
		"driver":   func(c *Config) { c.DB.Driver = "sqlite" },
		"puerto":   func(c *Config) { c.HTTP.Port = 70000 },
		"timeout":  func(c *Config) { c.Inventory.TxTimeout = 0 },
		"límite":   func(c *Config) { c.Inventory.ListLimit = -1 },
		"maxconns": func(c *Config) { c.DB.MaxConns = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
	c := base()
	assert.NoError(t, c.Validate())
}
