package catalog

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine-storefront/internal/domain"
)

func strip(items []PageItem) []any {
	out := make([]any, len(items))
	for i, it := range items {
		if it.IsEllipsis() {
			out[i] = Ellipsis
		} else {
			out[i] = it.Number
		}
	}
	return out
}

func TestPageStripWindows(t *testing.T) {
	cases := []struct {
		current, total int
		want           []any
	}{
		{1, 10, []any{1, 2, 3, 4, "…", 10}},
		{3, 10, []any{1, 2, 3, 4, "…", 10}},
		{9, 10, []any{1, "…", 7, 8, 9, 10}},
		{8, 10, []any{1, "…", 7, 8, 9, 10}},
		{5, 10, []any{1, "…", 4, 5, 6, "…", 10}},
		{4, 10, []any{1, "…", 3, 4, 5, "…", 10}},
		{1, 5, []any{1, 2, 3, 4, 5}},
		{2, 3, []any{1, 2, 3}},
		{1, 1, []any{1}},
		{40, 10, []any{1, "…", 7, 8, 9, 10}},
		{-3, 10, []any{1, 2, 3, 4, "…", 10}},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d_of_%d", tc.current, tc.total), func(t *testing.T) {
			assert.Equal(t, tc.want, strip(PageStrip(tc.current, tc.total)))
		})
	}
	assert.Empty(t, PageStrip(1, 0))
}

func TestPageStripJSON(t *testing.T) {
	raw, err := json.Marshal(PageStrip(5, 10))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,"…",4,5,6,"…",10]`, string(raw))

	var back []PageItem
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, PageStrip(5, 10), back)
	assert.Error(t, json.Unmarshal([]byte(`["x"]`), &back))
}

func makeProducts(n int) []domain.Product {
	out := make([]domain.Product, n)
	for i := range out {
		out[i] = product(i+1, fmt.Sprintf("P%d", i+1), "Cards", "1")
	}
	return out
}

func TestPaginate(t *testing.T) {
	items := makeProducts(40)

	p := Paginate(items, 1)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 40, p.TotalItems)
	require.Len(t, p.Items, PageSize)
	assert.Equal(t, "static:1", p.Items[0].ID.String())

	last := Paginate(items, 3)
	require.Len(t, last.Items, 8)
	assert.Equal(t, "static:33", last.Items[0].ID.String())

	clampedHigh := Paginate(items, 99)
	assert.Equal(t, 3, clampedHigh.Number)
	clampedLow := Paginate(items, 0)
	assert.Equal(t, 1, clampedLow.Number)
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(nil, 4)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 0, p.TotalPages)
	assert.Empty(t, p.Items)
	assert.Empty(t, p.Strip)
}
