package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companyhouse/internal/domain"
)

func TestScore_Tiers(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"Acme", ScoreExact},
		{"ACME", ScoreExact},
		{"Acme Holdings", ScorePrefix},
		{"Global Acme Corp", ScoreContains},
		{"Zenith Trading", ScoreSecondary},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.name, "acme"))
		})
	}
}

func TestScore_ShortQueries(t *testing.T) {
	assert.Equal(t, ScorePrefix, Score("Acme", ""))
	assert.Equal(t, ScoreExact, Score("", ""))
	assert.Equal(t, ScorePrefix, Score("Acme", "a"))
}

func TestRank_OrdersByScoreThenName(t *testing.T) {
	reg := "ACME-001"
	companies := []domain.Company{
		{ID: 4, Country: "sg", Name: "Zenith Trading", RegistrationNumber: &reg},
		{ID: 3, Country: "mx", Name: "Global Acme Corp"},
		{ID: 2, Country: "sg", Name: "Acme Holdings"},
		{ID: 5, Country: "sg", Name: "Acme Associates"},
		{ID: 1, Country: "sg", Name: "Acme"},
	}

	got := Rank(companies, "acme", func(code string) string { return "name-" + code })
	require.Len(t, got, 5)

	names := make([]string, len(got))
	for i, r := range got {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"Acme", "Acme Associates", "Acme Holdings", "Global Acme Corp", "Zenith Trading"}, names)
	assert.Equal(t, []int{100, 90, 90, 80, 70}, []int{got[0].RelevanceScore, got[1].RelevanceScore, got[2].RelevanceScore, got[3].RelevanceScore, got[4].RelevanceScore})
	assert.Equal(t, "name-mx", got[3].CountryName)
}

func TestRank_SameNameAcrossCountriesIsDeterministic(t *testing.T) {
	in := []domain.Company{
		{ID: 7, Country: "sg", Name: "Acme"},
		{ID: 2, Country: "mx", Name: "Acme"},
		{ID: 1, Country: "sg", Name: "Acme"},
	}
	got := Rank(in, "acme", nil)
	assert.Equal(t, "mx", got[0].Country)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, int64(7), got[2].ID)
}
