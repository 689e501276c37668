package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// months maps lowercase month names and abbreviations to month numbers.
// Covers English, Norwegian, Danish, Swedish, German, French, Spanish and
// Dutch.
var months = map[string]int{
	// English
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
	"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7, "aug": 8,
	"sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,

	// Norwegian, Danish
	"januar": 1, "februar": 2, "mars": 3, "marts": 3, "mai": 5, "maj": 5, "juni": 6,
	"juli": 7, "oktober": 10, "desember": 12, "okt": 10, "des": 12,

	// Swedish, Dutch
	"januari": 1, "februari": 2, "augusti": 8, "maart": 3, "mei": 5, "augustus": 8,

	// German
	"märz": 3, "maerz": 3, "dezember": 12, "jän": 1, "jänner": 1, "dez": 12, "mär": 3,

	// French
	"janvier": 1, "février": 2, "fevrier": 2, "avril": 4, "juin": 6, "juillet": 7,
	"août": 8, "aout": 8, "septembre": 9, "octobre": 10, "novembre": 11, "décembre": 12, "decembre": 12,

	// Spanish
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4, "mayo": 5, "junio": 6, "julio": 7,
	"agosto": 8, "septiembre": 9, "setiembre": 9, "octubre": 10, "noviembre": 11, "diciembre": 12,
}

var (
	// 14. oktober 2026, 14 Oct 2026, 1er juin 2026, 3 de mayo de 2026
	dayMonthYear = regexp.MustCompile(`(?i)\b(\d{1,2})(?:\.|er|st|nd|rd|th)?\s+(?:de\s+)?(\p{L}+)\.?,?\s+(?:de\s+)?(\d{4})\b`)

	// October 14, 2026; Oct. 14th 2026
	monthDayYear = regexp.MustCompile(`(?i)\b(\p{L}+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
)

// NormalizeDate converts a month-name date found in s to yyyy-mm-dd.
// Input without a recognizable date is returned unchanged.
func NormalizeDate(s string) string {
	if m := dayMonthYear.FindStringSubmatch(s); m != nil {
		if iso, ok := isoDate(m[3], m[2], m[1]); ok {
			return iso
		}
	}
	if m := monthDayYear.FindStringSubmatch(s); m != nil {
		if iso, ok := isoDate(m[3], m[1], m[2]); ok {
			return iso
		}
	}
	return s
}

func isoDate(year, month, day string) (string, bool) {
	mon, ok := months[strings.ToLower(month)]
	if !ok {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	// time.Date normalizes overflow, so 31 February comes back as March.
	if t := time.Date(y, time.Month(mon), d, 0, 0, 0, 0, time.UTC); t.Day() != d || int(t.Month()) != mon {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, mon, d), true
}
