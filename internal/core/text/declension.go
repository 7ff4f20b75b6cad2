// Package text renders the bot's user-visible Russian strings: plural
// declension, duration phrases, reply templates and the ticket log export.
package text

import "fmt"

// Declension picks the grammatically correct Russian plural form for num.
// Forms are (singular, few, many), e.g. ("обращение", "обращения",
// "обращений"). Teens (11-19) always take the many form; otherwise the last
// digit decides: 1 -> singular, 2-4 -> few, everything else -> many.
func Declension(num int, singular, few, many string) string {
	absNum := num
	if absNum < 0 {
		absNum = -absNum
	}
	absNum %= 100
	lastDigit := absNum % 10

	form := many
	switch {
	case absNum > 10 && absNum < 20:
		form = many
	case lastDigit > 1 && lastDigit < 5:
		form = few
	case lastDigit == 1:
		form = singular
	}
	return fmt.Sprintf("%d %s", num, form)
}
