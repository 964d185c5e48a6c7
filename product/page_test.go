package product

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		in   PageRequest
		want PageRequest
	}{
		{PageRequest{}, PageRequest{Page: 0, Size: DefaultPageSize, Sort: SortCreatedAt, Desc: true}},
		{PageRequest{Page: -2, Size: 500, Sort: SortName}, PageRequest{Page: 0, Size: MaxPageSize, Sort: SortName}},
		{PageRequest{Page: math.MaxInt, Size: 50, Sort: SortSKU}, PageRequest{Page: MaxPage, Size: 50, Sort: SortSKU}},
		{PageRequest{Page: 3, Size: 10, Sort: "bogus"}, PageRequest{Page: 3, Size: 10, Sort: SortCreatedAt, Desc: true}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Normalize())
	}
}

func TestNewPageRequest(t *testing.T) {
	req, err := NewPageRequest(1, 5, SortPrice, "ASC")
	require.NoError(t, err)
	assert.Equal(t, PageRequest{Page: 1, Size: 5, Sort: SortPrice, Desc: false}, req)
	assert.Equal(t, 5, req.Offset())

	req, err = NewPageRequest(0, 0, "", "")
	require.NoError(t, err)
	assert.True(t, req.Desc)
	assert.Equal(t, SortCreatedAt, req.Sort)

	_, err = NewPageRequest(0, 10, "password", "asc")
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestPageRequest_OffsetDoesNotOverflow(t *testing.T) {
	req, err := NewPageRequest(461168601842738791, MaxPageSize, "", "")
	require.NoError(t, err)
	assert.Equal(t, MaxPage, req.Page)
	assert.Equal(t, MaxPage*MaxPageSize, req.Offset())

	raw := PageRequest{Page: math.MaxInt, Size: math.MaxInt}
	assert.GreaterOrEqual(t, raw.Offset(), 0)
}

func TestNewPage(t *testing.T) {
	items := make([]Product, 5)

	p := NewPage(items, PageRequest{Page: 0, Size: 5}, 12)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.First)
	assert.False(t, p.Last)
	assert.False(t, p.Empty)

	p = NewPage(items[:2], PageRequest{Page: 2, Size: 5}, 12)
	assert.True(t, p.Last)
	assert.False(t, p.First)

	p = NewPage(nil, PageRequest{Page: 0, Size: 20}, 0)
	assert.NotNil(t, p.Content)
	assert.True(t, p.Empty)
	assert.True(t, p.First)
	assert.True(t, p.Last)
	assert.Zero(t, p.TotalPages)
}
