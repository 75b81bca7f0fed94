package storefront

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"mobilehub/internal/config"
	"mobilehub/internal/db"
	"mobilehub/internal/localstore"
	"mobilehub/internal/router"
	"mobilehub/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "storefront-test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database, err := db.InitDB(db.DriverSQLite, filepath.Join(t.TempDir(), "api.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(database, db.DriverSQLite, zerolog.Nop()))
	require.NoError(t, db.SeedCatalog(database, zerolog.Nop()))

	bucket, err := services.OpenBucket("")
	require.NoError(t, err)

	cfg := config.Config{JWTSecret: testSecret, RateLimitRPS: 1000, RateLimitBurst: 1000}
	srv := httptest.NewServer(router.SetupRouter(database, bucket, cfg, zerolog.Nop()))
	t.Cleanup(func() {
		srv.Close()
		bucket.Close()
		database.Close()
	})
	return srv
}

func testConfig(apiURL string) config.Config {
	return config.Config{
		APIURL:     apiURL,
		JWTSecret:  testSecret,
		BcryptCost: bcrypt.MinCost,
	}
}

func newTestApp(t *testing.T, srv *httptest.Server, store localstore.Store) *App {
	t.Helper()
	if store == nil {
		store = localstore.NewMemoryStore()
	}
	app, err := New(testConfig(srv.URL), store, zerolog.Nop(), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return app
}
