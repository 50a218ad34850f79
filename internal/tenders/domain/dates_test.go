package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		from string
		n    int
		want string
	}{
		{"2024-01-15", 1, "2024-02-15"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-03-31", -1, "2024-02-29"},
		{"2022-06-30", 24, "2024-06-30"},
		{"2024-05-10", -48, "2020-05-10"},
		{"2024-12-01", 19, "2026-07-01"},
	}
	for _, tc := range cases {
		got := domain.AddMonths(date(tc.from), tc.n).Format(time.DateOnly)
		require.Equal(t, tc.want, got, "%s %+d", tc.from, tc.n)
	}
}

func TestParseDate(t *testing.T) {
	d, ok := domain.ParseDate("2023-04-05")
	require.True(t, ok)
	require.Equal(t, "2023-04-05", d.Format(time.DateOnly))

	d, ok = domain.ParseDate("2023-04-05T10:00:00+02:00")
	require.True(t, ok)
	require.Equal(t, "2023-04-05", d.Format(time.DateOnly))

	for _, bad := range []string{"", "2023-13-01", "2023-02-30", "yesterday"} {
		_, ok := domain.ParseDate(bad)
		require.False(t, ok, bad)
	}
}

func TestSearchCriteria(t *testing.T) {
	c := domain.DefaultCriteria()
	require.NoError(t, c.Validate())
	require.Equal(t, 100, c.Limit(), "default 200 is capped")

	c.ResultLimit = 20
	require.Equal(t, 20, c.Limit())

	from, to := c.Window(date("2025-06-15"))
	require.Equal(t, "2021-06-15", from.Format(time.DateOnly))
	require.Equal(t, "2021-12-15", to.Format(time.DateOnly))

	require.ErrorIs(t, domain.SearchCriteria{ResultLimit: 0}.Validate(), domain.ErrInvalidCriteria)
	require.ErrorIs(t, domain.SearchCriteria{ResultLimit: 1, HorizonMonths: -1}.Validate(), domain.ErrInvalidCriteria)
}
