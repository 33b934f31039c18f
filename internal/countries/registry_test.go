package countries

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companyhouse/internal/domain"
)

func TestDefault(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{"sg", "mx"}, r.Codes())

	mx, err := r.Get("MX")
	require.NoError(t, err)
	assert.Equal(t, domain.PricingStateScoped, mx.PricingSchema)
	assert.Equal(t, "MXN", mx.Currency)
}

func TestGet_UnknownCountry(t *testing.T) {
	_, err := Default().Get("fr")
	assert.ErrorIs(t, err, domain.ErrInvalidCountry)
	assert.False(t, Default().Has("fr"))
}

func TestNewRegistry_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfgs []domain.CountryConfig
	}{
		{"empty", nil},
		{"blank code", []domain.CountryConfig{{Code: " ", PricingSchema: domain.PricingDirect}}},
		{"bad schema", []domain.CountryConfig{{Code: "sg", PricingSchema: "tiered"}}},
		{"duplicate", []domain.CountryConfig{
			{Code: "sg", PricingSchema: domain.PricingDirect},
			{Code: "SG", PricingSchema: domain.PricingDirect},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.cfgs...)
			assert.Error(t, err)
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
countries:
  - code: MY
    display_name: Malaysia
    currency: MYR
    pricing_schema: direct
    database_url_env: MY_DATABASE_URL
  - code: mx
    display_name: Mexico
    currency: MXN
    pricing_schema: state-scoped
`), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"my", "mx"}, r.Codes())

	my, err := r.Get("my")
	require.NoError(t, err)
	assert.Equal(t, "Malaysia", my.DisplayName)
	assert.Equal(t, "MY_DATABASE_URL", my.DatabaseURLEnv)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().All(), r.All())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
