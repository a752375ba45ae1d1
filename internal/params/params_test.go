package params

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePaginationDefaults(t *testing.T) {
	p := ParsePagination(url.Values{})
	require.Equal(t, 10, p.Limit)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 0, p.Offset)
}

func TestParsePaginationOffset(t *testing.T) {
	q := url.Values{"page": {"3"}, "limit": {"20"}}
	p := ParsePagination(q)
	require.Equal(t, 20, p.Limit)
	require.Equal(t, 3, p.Page)
	require.Equal(t, 40, p.Offset)
}

func TestParsePaginationClampsLimit(t *testing.T) {
	q := url.Values{"limit": {"500"}}
	require.Equal(t, 50, ParsePagination(q).Limit)

	q = url.Values{"limit": {"-1"}}
	require.Equal(t, 10, ParsePagination(q).Limit)
}

func TestParsePaginationIgnoresJunk(t *testing.T) {
	q := url.Values{"page": {"abc"}, "limit": {"xyz"}}
	p := ParsePagination(q)
	require.Equal(t, 10, p.Limit)
	require.Equal(t, 1, p.Page)
}

func TestComputeMeta(t *testing.T) {
	p := Pagination{Limit: 10, Page: 2, Offset: 10}
	p.ComputeMeta(25)

	require.Equal(t, 25, p.Total)
	require.Equal(t, 3, p.TotalPages)
	require.True(t, p.HasNext)
	require.True(t, p.HasPrev)

	p = Pagination{Limit: 10, Page: 3, Offset: 20}
	p.ComputeMeta(25)
	require.False(t, p.HasNext)
}
