// Package testutil opens throwaway databases and signing keys for tests.
package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/utils"
	"github.com/cheerclub/billing-api/internal/utils/db"
)

func init() {
	utils.PasswordCost = bcrypt.MinCost
}

// OpenDB returns a SQLite database in t.TempDir() migrated for models.
// The pool holds a single connection so concurrent tests serialize instead
// of failing with SQLITE_BUSY.
func OpenDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	database, err := db.Open(sqlite.Open(filepath.Join(t.TempDir(), "billing.db")))
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		require.NoError(t, database.AutoMigrate(models...))
	}
	return database
}

// Keys returns freshly generated signing keys.
func Keys(t *testing.T) *auth.Keys {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return auth.NewKeys(priv, "test", "billing-test", "club")
}

// Bearer returns an Authorization header value for the given account.
func Bearer(t *testing.T, keys *auth.Keys, userID uint, role auth.Role) string {
	t.Helper()
	tok, err := keys.GenerateAccessToken(userID, role)
	require.NoError(t, err)
	return "Bearer " + tok
}
