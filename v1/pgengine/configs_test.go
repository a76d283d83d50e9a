package pgengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Connection: Connection{Host: "localhost", User: "postgres", DbName: "docs"}}
	require.NoError(t, cfg.Validate())

	missingHost := cfg
	missingHost.Connection.Host = ""
	assert.Error(t, missingHost.Validate())

	missingUser := cfg
	missingUser.Connection.User = ""
	assert.Error(t, missingUser.Validate())

	missingDb := cfg
	missingDb.Connection.DbName = ""
	assert.Error(t, missingDb.Validate())
}

func TestConfig_ConnStringDefaults(t *testing.T) {
	cfg := Config{Connection: Connection{Host: "db", User: "u", Password: "p", DbName: "d"}}

	s := cfg.connString()

	assert.Contains(t, s, "host=db")
	assert.Contains(t, s, "port=5432")
	assert.Contains(t, s, "sslmode=disable")
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("PGENGINE_HOST", "db.internal")
	t.Setenv("PGENGINE_PORT", "5433")
	t.Setenv("PGENGINE_USER", "svc")
	t.Setenv("PGENGINE_PASSWORD", "secret")
	t.Setenv("PGENGINE_DBNAME", "vectors")
	t.Setenv("PGENGINE_MAX_CONNS", "8")

	cfg := NewConfig()

	assert.Equal(t, "db.internal", cfg.Connection.Host)
	assert.Equal(t, "5433", cfg.Connection.Port)
	assert.Equal(t, "svc", cfg.Connection.User)
	assert.Equal(t, "secret", cfg.Connection.Password)
	assert.Equal(t, "vectors", cfg.Connection.DbName)
	assert.Equal(t, int32(8), cfg.Pool.MaxConns)
}
