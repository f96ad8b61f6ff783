package filter

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageFromValues(t *testing.T) {
	t.Parallel()

	cfg := PageConfig{Default: 20, Max: 100}

	cases := []struct {
		values url.Values
		want   Page
	}{
		{values: url.Values{}, want: Page{Number: 1, Size: 20}},
		{values: url.Values{"page": {"3"}, "per_page": {"10"}}, want: Page{Number: 3, Size: 10}},
		{values: url.Values{"page": {"-2"}, "per_page": {"0"}}, want: Page{Number: 1, Size: 20}},
		{values: url.Values{"page": {"two"}, "per_page": {"500"}}, want: Page{Number: 1, Size: 100}},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, PageFromValues(tc.values, cfg), tc.values.Encode())
	}
}

func TestPageOffsetDoesNotOverflow(t *testing.T) {
	t.Parallel()

	cfg := PageConfig{Default: 20, Max: 100}

	page := PageFromValues(url.Values{"page": {strconv.Itoa(math.MaxInt)}, "per_page": {"100"}}, cfg)
	require.Equal(t, math.MaxInt/100*100, page.Offset())

	page = NewPage(math.MaxInt, 1, cfg)
	require.Equal(t, math.MaxInt-1, page.Offset())
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	page := NewPage(2, 3, PageConfig{Default: 20, Max: 100})
	require.Equal(t, 3, page.Offset())

	require.Equal(t, Pagination{Total: 7, Page: 2, PerPage: 3, TotalPages: 3, HasMore: true}, Paginate(page, 7))
	require.Equal(t, Pagination{Total: 0, Page: 2, PerPage: 3, TotalPages: 0, HasMore: false}, Paginate(page, 0))
}
