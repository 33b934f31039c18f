package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companyhouse/internal/domain"
)

// These tests need throwaway databases, one per pricing schema:
// COMPANYHOUSE_TEST_DIRECT_DATABASE_URL and COMPANYHOUSE_TEST_STATE_DATABASE_URL.
func connectForTest(t *testing.T, env string, schema domain.PricingSchema) *DB {
	t.Helper()
	url := os.Getenv(env)
	if url == "" {
		t.Skipf("%s not set", env)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := Connect(ctx, "test", url)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Migrate(ctx, schema)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, `TRUNCATE companies, reports RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

func TestIntegration_DirectAdapter(t *testing.T) {
	db := connectForTest(t, "COMPANYHOUSE_TEST_DIRECT_DATABASE_URL", domain.PricingDirect)
	ctx := context.Background()

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO companies (slug, name, registration_number) VALUES
		  ('acme', 'Acme Pte Ltd', '2019-ACME'),
		  ('zenith', 'Zenith Trading', 'ACME-001');
		INSERT INTO reports (name, amount, is_active, "order") VALUES
		  ('Profile', 25.00, true, 2),
		  ('Financials', 60.50, true, 1),
		  ('Retired', 5.00, false, 3);
	`)
	require.NoError(t, err)

	a := NewDirectAdapter(db, "sg")
	found, err := a.Search(ctx, "ACME", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	suggested, err := a.Suggest(ctx, "acme", 10)
	require.NoError(t, err)
	assert.Len(t, suggested, 1)

	c, err := a.FindBySlug(ctx, "zenith")
	require.NoError(t, err)
	assert.Equal(t, "sg", c.Country)

	_, err = a.FindByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	reports, err := a.ListReports(ctx, domain.PricingScope{})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "Financials", reports[0].Name)
	assert.Equal(t, "60.50", reports[0].Price.StringFixed(2))
}

func TestIntegration_StateScopedAdapter(t *testing.T) {
	db := connectForTest(t, "COMPANYHOUSE_TEST_STATE_DATABASE_URL", domain.PricingStateScoped)
	ctx := context.Background()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE states RESTART IDENTITY CASCADE;
		INSERT INTO states (name) VALUES ('Jalisco'), ('Nuevo Leon');
		INSERT INTO companies (state_id, slug, name, brand_name) VALUES
		  (1, 'tequilera', 'Tequilera del Valle', 'Valle Azul'),
		  (2, 'acero', 'Acero del Norte', NULL),
		  (NULL, 'sin-estado', 'Sin Estado', NULL);
		INSERT INTO reports (name, "order", status) VALUES ('Acta', 1, 1), ('Poderes', 2, 0);
		INSERT INTO report_state (report_id, state_id, amount) VALUES (1, 1, 700), (1, 2, 900), (2, 1, 100);
	`)
	require.NoError(t, err)

	a := NewStateScopedAdapter(db, "mx")
	found, err := a.Search(ctx, "valle azul", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.NotNil(t, found[0].StateName)
	assert.Equal(t, "Jalisco", *found[0].StateName)

	jalisco, norte := int64(1), int64(2)
	r1, err := a.ListReports(ctx, domain.PricingScope{StateID: &jalisco})
	require.NoError(t, err)
	require.Len(t, r1, 1)
	assert.Equal(t, "700.00", r1[0].Price.StringFixed(2))

	r2, err := a.ListReports(ctx, domain.PricingScope{StateID: &norte})
	require.NoError(t, err)
	require.Len(t, r2, 1)
	assert.Equal(t, "900.00", r2[0].Price.StringFixed(2))

	none, err := a.ListReports(ctx, domain.PricingScope{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
