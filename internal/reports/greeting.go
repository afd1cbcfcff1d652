package reports

import "time"

// Greeting returns the salutation for the local hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 23 || h < 4:
		return "Доброй ночи!"
	case h < 12:
		return "Доброе утро!"
	case h < 16:
		return "Добрый день!"
	default:
		return "Добрый вечер!"
	}
}
