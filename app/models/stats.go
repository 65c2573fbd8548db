package models

// DailyStats is a count for a single calendar day.
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// LabelCount is a generic bucket used for role, status, category and file type breakdowns.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// AuthorCount ranks authors by the number of articles they wrote.
type AuthorCount struct {
	AuthorID  uint   `json:"author_id"`
	Name      string `json:"name"`
	NewsCount int64  `json:"news_count"`
}
