package companies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companyhouse/internal/adapters/memory"
	"companyhouse/internal/countries"
	"companyhouse/internal/domain"
	"companyhouse/internal/ports"
	"companyhouse/internal/services/pricing"
)

func newService(t *testing.T, adapters []ports.CountryAdapter) *Service {
	t.Helper()
	dir, err := countries.NewDirectory(countries.Default(), adapters, countries.GuardConfig{})
	require.NoError(t, err)
	return New(dir, pricing.New(dir))
}

func TestResolveBySlug(t *testing.T) {
	s := newService(t, memory.Demo())
	ctx := context.Background()

	c, err := s.ResolveBySlug(ctx, "tequilera-del-valle")
	require.NoError(t, err)
	assert.Equal(t, "mx", c.Country)
	require.NotNil(t, c.StateName)
	assert.Equal(t, "Jalisco", *c.StateName)

	_, err = s.ResolveBySlug(ctx, "no-such-company")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveBySlug_RegistryOrderWins(t *testing.T) {
	sg := memory.NewDirect("sg", []domain.Company{{ID: 7, Name: "Twin SG", Slug: "twin"}}, nil)
	mx := memory.NewStateScoped("mx", []domain.Company{{ID: 8, Name: "Twin MX", Slug: "twin"}}, nil, nil, nil)
	s := newService(t, []ports.CountryAdapter{mx, sg})

	c, err := s.ResolveBySlug(context.Background(), "twin")
	require.NoError(t, err)
	assert.Equal(t, "sg", c.Country)
}

func TestResolveBySlug_SkipsUnavailableCountry(t *testing.T) {
	adapters := memory.Demo()
	adapters[0].(*memory.Adapter).FailWith(assert.AnError)
	s := newService(t, adapters)

	c, err := s.ResolveBySlug(context.Background(), "acme-de-mexico")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	_, err = s.ResolveBySlug(context.Background(), "acme-pte-ltd")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindByID(t *testing.T) {
	s := newService(t, memory.Demo())

	c, err := s.FindByID(context.Background(), "SG", 2)
	require.NoError(t, err)
	assert.Equal(t, "Lion City Logistics", c.Name)

	_, err = s.FindByID(context.Background(), "xx", 2)
	assert.ErrorIs(t, err, domain.ErrInvalidCountry)
}

func TestDetail(t *testing.T) {
	s := newService(t, memory.Demo())

	d, err := s.Detail(context.Background(), "acme-de-mexico")
	require.NoError(t, err)
	assert.Equal(t, "Mexico", d.CountryName)
	assert.Equal(t, "MXN", d.Currency)
	require.Len(t, d.Reports, 2)
	assert.Equal(t, "850", d.Reports[0].Price.String())

	d, err = s.Detail(context.Background(), "sin-estado-sc")
	require.NoError(t, err)
	assert.Empty(t, d.Reports)
}

func TestFindByID_UnavailableCountry(t *testing.T) {
	adapters := memory.Demo()
	adapters[1].(*memory.Adapter).FailWith(assert.AnError)
	s := newService(t, adapters)

	_, err := s.FindByID(context.Background(), "mx", 1)
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	_, err = s.FindByID(context.Background(), "sg", 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrUnavailable)
}

func TestDetailByID(t *testing.T) {
	s := newService(t, memory.Demo())
	ctx := context.Background()

	d, err := s.DetailByID(ctx, "mx", 2)
	require.NoError(t, err)
	assert.Equal(t, "Tequilera del Valle", d.Company.Name)
	assert.Equal(t, "MXN", d.Currency)
	require.Len(t, d.Reports, 1)
	assert.Equal(t, "700", d.Reports[0].Price.String())

	d, err = s.DetailByID(ctx, "sg", 1)
	require.NoError(t, err)
	assert.Equal(t, "Singapore", d.CountryName)
	assert.Len(t, d.Reports, 2)

	_, err = s.DetailByID(ctx, "fr", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidCountry)
	_, err = s.DetailByID(ctx, "sg", 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
