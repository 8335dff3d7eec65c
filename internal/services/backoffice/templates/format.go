package templates

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	truncateLimit = 60
	ellipsis      = "..."
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Truncate cuts value to 60 characters, appending "...".
func Truncate(value string) string {
	if utf8.RuneCountInString(value) <= truncateLimit {
		return value
	}
	runes := []rune(value)
	return string(runes[:truncateLimit]) + ellipsis
}

// ParseDecimal reads a decimal that may use a comma separator.
func ParseDecimal(value string) (float64, bool) {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	if value == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// FormatDecimal renders value with two decimals, or returns it unchanged
// when it is not a number.
func FormatDecimal(value string) string {
	parsed, ok := ParseDecimal(value)
	if !ok {
		return value
	}
	return strconv.FormatFloat(parsed, 'f', 2, 64)
}

// FormatMoney renders an amount with two decimals using the locale's
// grouping rules.
func FormatMoney(lang string, amount float64) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprintf("%.2f", amount)
}

// FormatDate renders the date part of a timestamp; unparseable values are
// returned unchanged.
func FormatDate(value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return value
}

// safeURL reports whether value may be used as an href or src.
func safeURL(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "http://") ||
		(strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "//"))
}

// FormatCount renders an integer with the locale's digit grouping.
func FormatCount(lang string, count int) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprintf("%d", count)
}
