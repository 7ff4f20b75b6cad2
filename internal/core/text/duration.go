package text

import "time"

// FormatDuration renders a duration as a human phrase using the coarsest
// non-zero unit: days, else hours, else minutes, else seconds.
func FormatDuration(d time.Duration) string {
	seconds := int(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	remainingSeconds := seconds % 60
	remainingMinutes := minutes % 60
	remainingHours := hours % 24

	switch {
	case days > 0:
		return Declension(days, "день", "дня", "дней")
	case remainingHours > 0:
		return Declension(remainingHours, "час", "часа", "часов")
	case remainingMinutes > 0:
		return Declension(remainingMinutes, "минута", "минуты", "минут")
	default:
		return Declension(remainingSeconds, "секунда", "секунды", "секунд")
	}
}
