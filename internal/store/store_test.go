// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"

	"standpress/internal/database"
	"standpress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "standpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "standpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := database.Connect(dsn)
	if err != nil {
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanTenant removes every row owned by a test tenant. Call in t.Cleanup().
func cleanTenant(t *testing.T, db *sql.DB, tenantID uuid.UUID) {
	t.Helper()
	db.Exec("DELETE FROM cover_designs WHERE tenant_id = $1", tenantID)
	db.Exec("DELETE FROM proposals WHERE tenant_id = $1", tenantID)
	db.Exec("DELETE FROM design_templates WHERE tenant_id = $1", tenantID)
}

// createTestProposal inserts a proposal for the tenant.
func createTestProposal(t *testing.T, db *sql.DB, tenantID uuid.UUID) *models.Proposal {
	t.Helper()
	p, err := NewProposalStore(db).Create(&models.Proposal{
		TenantID:       tenantID,
		ProposalNumber: "TKL-" + uuid.NewString()[:6],
		CompanyName:    "Acme Makina",
		FairName:       "WIN Eurasia",
	})
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	return p
}
