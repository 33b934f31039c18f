package pricing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"companyhouse/internal/adapters/memory"
	"companyhouse/internal/countries"
	"companyhouse/internal/domain"
	"companyhouse/internal/ports"
)

func demoResolver(t *testing.T) (*Resolver, *countries.Directory) {
	t.Helper()
	dir, err := countries.NewDirectory(countries.Default(), memory.Demo(), countries.GuardConfig{Logger: zap.NewNop()})
	require.NoError(t, err)
	return New(dir), dir
}

func company(t *testing.T, dir *countries.Directory, country string, id int64) domain.Company {
	t.Helper()
	a, _, err := dir.Adapter(country)
	require.NoError(t, err)
	c, err := a.FindByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func ids(reports []domain.Report) []int64 {
	out := make([]int64, len(reports))
	for i, r := range reports {
		out[i] = r.ID
	}
	return out
}

func TestResolve_DirectIgnoresCompany(t *testing.T) {
	r, dir := demoResolver(t)
	ctx := context.Background()

	var first []domain.Report
	for _, id := range []int64{1, 2, 3} {
		got, err := r.Resolve(ctx, company(t, dir, "sg", id))
		require.NoError(t, err)
		if first == nil {
			first = got
			continue
		}
		assert.Equal(t, first, got, "company %d", id)
	}
	assert.Equal(t, []int64{1, 2}, ids(first), "inactive reports are not purchasable")
	assert.True(t, first[0].Price.Equal(decimal.RequireFromString("25")))
}

func TestResolve_StateScopedPricesByState(t *testing.T) {
	r, dir := demoResolver(t)
	ctx := context.Background()

	cdmx, err := r.Resolve(ctx, company(t, dir, "mx", 1))
	require.NoError(t, err)
	jalisco, err := r.Resolve(ctx, company(t, dir, "mx", 2))
	require.NoError(t, err)

	require.Equal(t, []int64{1, 2}, ids(cdmx))
	require.Equal(t, []int64{1}, ids(jalisco))
	assert.Equal(t, "850", cdmx[0].Price.String())
	assert.Equal(t, "700", jalisco[0].Price.String())
	assert.False(t, cdmx[0].Price.Equal(jalisco[0].Price))
}

func TestResolve_NoStateMeansNoReports(t *testing.T) {
	r, dir := demoResolver(t)

	got, err := r.Resolve(context.Background(), company(t, dir, "mx", 3))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResolve_UnknownCountry(t *testing.T) {
	r, _ := demoResolver(t)

	_, err := r.Resolve(context.Background(), domain.Company{ID: 1, Country: "fr"})
	assert.ErrorIs(t, err, domain.ErrInvalidCountry)
}

func TestResolve_SortsAndFilters(t *testing.T) {
	sg := memory.NewDirect("sg", []domain.Company{{ID: 1, Name: "A", Slug: "a"}}, []domain.Report{
		{ID: 5, Name: "Late", SortOrder: 9, Active: true},
		{ID: 2, Name: "Tie B", SortOrder: 1, Active: true},
		{ID: 1, Name: "Tie A", SortOrder: 1, Active: true},
		{ID: 3, Name: "Retired", SortOrder: 0, Active: false},
	})
	mx := memory.NewStateScoped("mx", nil, nil, nil, nil)
	dir, err := countries.NewDirectory(countries.Default(), []ports.CountryAdapter{sg, mx}, countries.GuardConfig{})
	require.NoError(t, err)

	got, err := New(dir).Resolve(context.Background(), domain.Company{ID: 1, Country: "sg"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 5}, ids(got))
}

func TestPrice(t *testing.T) {
	r, dir := demoResolver(t)
	ctx := context.Background()

	rep, err := r.Price(ctx, company(t, dir, "mx", 1), 2)
	require.NoError(t, err)
	assert.Equal(t, "Poderes", rep.Name)
	assert.Equal(t, "400", rep.Price.String())

	_, err = r.Price(ctx, company(t, dir, "mx", 2), 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.Price(ctx, company(t, dir, "sg", 1), 3)
	assert.ErrorIs(t, err, domain.ErrNotFound, "inactive report")
}

func TestResolve_FailingSourceYieldsNothing(t *testing.T) {
	adapters := memory.Demo()
	adapters[0].(*memory.Adapter).FailWith(assert.AnError)
	dir, err := countries.NewDirectory(countries.Default(), adapters, countries.GuardConfig{})
	require.NoError(t, err)

	got, err := New(dir).Resolve(context.Background(), domain.Company{ID: 1, Country: "sg"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
