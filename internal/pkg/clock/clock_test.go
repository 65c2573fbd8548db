package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	at := time.Date(2024, 2, 29, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, at, Fixed(at).Now())
	assert.NotNil(t, Or(nil))
}

func TestMonthStart(t *testing.T) {
	at := time.Date(2024, 3, 17, 22, 45, 10, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), MonthStart(at))
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), MonthStart(at).AddDate(0, -1, 0))
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), DayStart(at))
}
