package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companyhouse/internal/domain"
)

func demo(t *testing.T) (*Adapter, *Adapter) {
	t.Helper()
	adapters := Demo()
	return adapters[0].(*Adapter), adapters[1].(*Adapter)
}

func TestSearch_MatchesNameAndSecondaryFields(t *testing.T) {
	sg, mx := demo(t)
	ctx := context.Background()

	byReg, err := sg.Search(ctx, "199801", 10)
	require.NoError(t, err)
	require.Len(t, byReg, 1)
	assert.Equal(t, "lion-city-logistics", byReg[0].Slug)

	byFormer, err := sg.Search(ctx, "MERLION", 10)
	require.NoError(t, err)
	require.Len(t, byFormer, 1)

	byBrand, err := mx.Search(ctx, "valle azul", 10)
	require.NoError(t, err)
	require.Len(t, byBrand, 1)
	assert.Equal(t, "mx", byBrand[0].Country)
	require.NotNil(t, byBrand[0].StateName)
	assert.Equal(t, "Jalisco", *byBrand[0].StateName)
}

func TestSearch_EmptyAndLimit(t *testing.T) {
	sg, _ := demo(t)
	ctx := context.Background()

	none, err := sg.Search(ctx, "zzz", 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	capped, err := sg.Search(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestSuggest_NameOnly(t *testing.T) {
	sg, _ := demo(t)
	got, err := sg.Suggest(context.Background(), "merlion", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFind(t *testing.T) {
	sg, _ := demo(t)
	ctx := context.Background()

	c, err := sg.FindBySlug(ctx, "acme-pte-ltd")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	_, err = sg.FindByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListReports_StateScoped(t *testing.T) {
	_, mx := demo(t)
	ctx := context.Background()

	none, err := mx.ListReports(ctx, domain.PricingScope{})
	require.NoError(t, err)
	assert.Empty(t, none)

	jalisco := int64(14)
	got, err := mx.ListReports(ctx, domain.PricingScope{StateID: &jalisco})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "700", got[0].Price.String())
}

func TestFailureAndDelay(t *testing.T) {
	sg, _ := demo(t)
	boom := errors.New("connection refused")
	sg.FailWith(boom)
	_, err := sg.Search(context.Background(), "acme", 10)
	assert.ErrorIs(t, err, boom)
	sg.FailWith(nil)

	sg.SetDelay(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = sg.Search(ctx, "acme", 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
