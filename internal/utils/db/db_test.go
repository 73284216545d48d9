package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheerclub/billing-api/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.DB{Host: "db", Port: 5433, Name: "billing", SSLDisable: true}
	assert.Equal(t, "host=db user=u password=p dbname=billing port=5433 sslmode=disable", DSN(cfg, "u", "p"))

	cfg.SSLDisable = false
	assert.Equal(t, "host=db user=u password=p dbname=billing port=5433", DSN(cfg, "u", "p"))
}

func TestRetrieveCredentialsFromEnv(t *testing.T) {
	u, p, err := retrieveCredentials(context.Background(), config.DB{Username: "billing", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "billing", u)
	assert.Equal(t, "secret", p)
}

func TestRetrieveCredentialsMissing(t *testing.T) {
	_, _, err := retrieveCredentials(context.Background(), config.DB{})
	assert.Error(t, err)
}
