package output

import "strings"

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns "key: value".
func FormatKeyValue(key, value string) string {
	return key + ": " + value
}
