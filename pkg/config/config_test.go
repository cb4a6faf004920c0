package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg := fromViper(viper.New())

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "postgres", cfg.App.StoreDriver)
	assert.Equal(t, 3, cfg.Ops.RecommendedCrewSize)
	assert.Equal(t, "buceo:events", cfg.Redis.Stream)
	assert.False(t, cfg.Redis.Enabled(), "sin REDIS_ADDR no hay publicación a Redis")
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_SobrescribeDesdeClaves(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "MEMORY")
	v.Set("OPS_RECOMMENDED_CREW_SIZE", "5")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("DB_PORT", "not-a-number")

	cfg := fromViper(v)

	assert.Equal(t, "memory", cfg.App.StoreDriver)
	assert.Equal(t, 5, cfg.Ops.RecommendedCrewSize)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 5432, cfg.DB.Port, "un entero inválido vuelve al valor por defecto")
}

func TestValidate_DriverDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "mongo")

	err := fromViper(v).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestValidate_ProduccionSinSecreto(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")

	assert.Error(t, fromViper(v).Validate())
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "buzo", Password: "p@ss:word", DBName: "buceo", SSLMode: "disable"}
	assert.Equal(t, "postgres://buzo:p%40ss%3Aword@db:5432/buceo?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
