package text_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avetra/support-bot-backend/internal/core/text"
)

func TestDeclension(t *testing.T) {
	singular, few, many := "обращение", "обращения", "обращений"

	tests := []struct {
		num  int
		want string
	}{
		{1, "1 обращение"},
		{2, "2 обращения"},
		{3, "3 обращения"},
		{4, "4 обращения"},
		{5, "5 обращений"},
		{10, "10 обращений"},
		{11, "11 обращений"},
		{12, "12 обращений"},
		{14, "14 обращений"},
		{19, "19 обращений"},
		{20, "20 обращений"},
		{21, "21 обращение"},
		{22, "22 обращения"},
		{25, "25 обращений"},
		{101, "101 обращение"},
		{111, "111 обращений"},
		{0, "0 обращений"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, text.Declension(tt.num, singular, few, many))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30 секунд"},
		{time.Second, "1 секунда"},
		{90 * time.Second, "1 минута"},
		{30 * time.Minute, "30 минут"},
		{2 * time.Minute, "2 минуты"},
		{time.Hour, "1 час"},
		{3 * time.Hour, "3 часа"},
		{12 * time.Hour, "12 часов"},
		{24 * time.Hour, "1 день"},
		{48 * time.Hour, "2 дня"},
		{7 * 24 * time.Hour, "7 дней"},
		// The coarsest non-zero unit wins, the remainder is dropped.
		{25 * time.Hour, "1 день"},
		{time.Hour + 30*time.Minute, "1 час"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, text.FormatDuration(tt.d), tt.d.String())
	}
}
