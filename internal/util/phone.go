package util

import (
	"regexp"
	"strings"
)

// NormalizePhone tries to normalize user input into E.164-like format.
// Bare 10-digit numbers are assumed to be US/Canada.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	re := regexp.MustCompile(`[^\d\+]+`)
	s = re.ReplaceAllString(s, "")

	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	} else if strings.HasPrefix(s, "1") && len(s) == 11 {
		s = "+" + s
	} else if len(s) == 10 {
		s = "+1" + s
	}

	return s
}
