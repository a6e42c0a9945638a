package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storefrontConfig struct {
	Port           int      `env:"SHOPCFG_HTTP_PORT" envDefault:"8080"`
	CatalogSource  string   `env:"SHOPCFG_CATALOG_SOURCE" envDefault:"embedded"`
	CatalogWatch   bool     `env:"SHOPCFG_CATALOG_WATCH"`
	AllowedOrigins []string `env:"SHOPCFG_CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	Redis          struct {
		Host string `env:"HOST" envDefault:"localhost"`
		Port int    `env:"PORT" envDefault:"6379"`
	} `envPrefix:"SHOPCFG_REDIS_"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg storefrontConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "embedded", cfg.CatalogSource)
	assert.False(t, cfg.CatalogWatch)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "localhost", cfg.Redis.Host)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("SHOPCFG_CATALOG_SOURCE", "file")
	t.Setenv("SHOPCFG_CATALOG_WATCH", "true")
	t.Setenv("SHOPCFG_CORS_ORIGINS", "https://shop.example,https://m.shop.example")
	t.Setenv("SHOPCFG_REDIS_PORT", "6380")

	var cfg storefrontConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "file", cfg.CatalogSource)
	assert.True(t, cfg.CatalogWatch)
	assert.Equal(t, []string{"https://shop.example", "https://m.shop.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 6380, cfg.Redis.Port)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SHOPCFG_CATALOG_WATCH", "sometimes")

	var cfg storefrontConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
	assert.Contains(t, err.Error(), "CatalogWatch")
}

func TestLoadWith_OverridesWinOverEnvironment(t *testing.T) {
	t.Setenv("SHOPCFG_HTTP_PORT", "9090")
	t.Setenv("SHOPCFG_CATALOG_SOURCE", "postgres")

	var cfg storefrontConfig
	require.NoError(t, LoadWith(&cfg, map[string]string{
		"SHOPCFG_HTTP_PORT":      "7070",
		"SHOPCFG_CATALOG_SOURCE": "",
	}))

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "postgres", cfg.CatalogSource, "empty overrides leave the environment value in place")
}
