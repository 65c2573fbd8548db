package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadingTimeFor(t *testing.T) {
	assert.Equal(t, 1, ReadingTimeFor(""))
	assert.Equal(t, 1, ReadingTimeFor("<p>short</p>"))
	assert.Equal(t, 1, ReadingTimeFor(strings.Repeat("word ", 200)))
	assert.Equal(t, 2, ReadingTimeFor(strings.Repeat("word ", 201)))
	assert.Equal(t, 3, ReadingTimeFor("<p>"+strings.Repeat("census data ", 250)+"</p>"))
}

func TestDeriveExcerpt(t *testing.T) {
	body := "<h1>Census</h1><p>" + strings.Repeat("a", 300) + "</p>"
	excerpt := DeriveExcerpt(body)

	assert.True(t, strings.HasPrefix(excerpt, "Census aaa"))
	assert.True(t, strings.HasSuffix(excerpt, "..."))
	assert.Equal(t, 203, len([]rune(excerpt)))
}

func TestDeriveExcerptShortBodyStillAppendsEllipsis(t *testing.T) {
	assert.Equal(t, "Hello world...", DeriveExcerpt("<b>Hello</b> world"))
}

func TestDisplayExcerptPrefersExplicit(t *testing.T) {
	explicit := "Custom summary"
	n := &News{Body: "Body text", Excerpt: &explicit}
	assert.Equal(t, "Custom summary", n.DisplayExcerpt())

	empty := ""
	n.Excerpt = &empty
	assert.Equal(t, "Body text...", n.DisplayExcerpt())
}

func TestNewsSetBodyRecomputesReadingTime(t *testing.T) {
	n := &News{}
	n.SetBody(strings.Repeat("w ", 450))
	assert.Equal(t, 3, n.ReadingTime)
}

func TestNewsIsPublishedAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&News{Status: NewsStatusPublished, PublishedAt: &past}).IsPublishedAt(now))
	assert.True(t, (&News{Status: NewsStatusPublished, PublishedAt: &now}).IsPublishedAt(now))
	assert.False(t, (&News{Status: NewsStatusPublished, PublishedAt: &future}).IsPublishedAt(now))
	assert.False(t, (&News{Status: NewsStatusPublished}).IsPublishedAt(now))
	assert.False(t, (&News{Status: NewsStatusPending, PublishedAt: &past}).IsPublishedAt(now))
}

func TestNewsStatusValid(t *testing.T) {
	assert.True(t, NewsStatusArchived.Valid())
	assert.False(t, NewsStatus("deleted").Valid())
}
