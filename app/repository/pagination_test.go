package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestNormalize(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, PerPage: DefaultPerPage}, PageRequest{}.Normalize())
	assert.Equal(t, PageRequest{Page: 3, PerPage: MaxPerPage}, PageRequest{Page: 3, PerPage: 1000}.Normalize())
	assert.Equal(t, 20, PageRequest{Page: 3, PerPage: 10}.Offset())
}

func TestNewPage(t *testing.T) {
	page := NewPage([]int{11, 12, 13}, PageRequest{Page: 2, PerPage: 10}, 23)

	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.LastPage)
	assert.Equal(t, int64(23), page.Total)
	require.NotNil(t, page.From)
	require.NotNil(t, page.To)
	assert.Equal(t, 11, *page.From)
	assert.Equal(t, 13, *page.To)
}

func TestNewPageEmpty(t *testing.T) {
	page := NewPage[int](nil, PageRequest{}, 0)

	assert.Equal(t, 1, page.LastPage)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Nil(t, page.From)
	assert.Nil(t, page.To)
}
