package variables

import (
	"fmt"
	"strings"
	"time"
)

// Date format discriminators accepted by FormatDate.
const (
	DateNumeric = "numeric" // 01/01/2026
	DateLong    = "long"    // 01 Janvier 2026
	DateShort   = "short"   // 1 Jan 2026
	DateFull    = "full"    // Jeudi 01 Janvier 2026
)

// Locale supplies month and weekday names.
type Locale struct {
	Name        string
	Months      [12]string
	ShortMonths [12]string
	Weekdays    [7]string // Sunday first, like time.Weekday
}

// French is the default locale.
var French = Locale{
	Name: "fr",
	Months: [12]string{"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
		"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre"},
	ShortMonths: [12]string{"Jan", "Fév", "Mar", "Avr", "Mai", "Juin",
		"Juil", "Août", "Sep", "Oct", "Nov", "Déc"},
	Weekdays: [7]string{"Dimanche", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi"},
}

// English locale.
var English = Locale{
	Name: "en",
	Months: [12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	ShortMonths: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	Weekdays: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
}

// LocaleByName returns the locale for a name, falling back to French.
func LocaleByName(name string) Locale {
	switch strings.ToLower(name) {
	case "en", "en-us", "en-gb", "english":
		return English
	}
	return French
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// ParseDate parses the date representations found in records. Only the
// calendar date is kept; the wall-clock date of the value is used as is so a
// stored "2026-01-01T00:00:00+01:00" stays on the 1st.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

// FormatDate formats v in the French locale. See Locale.FormatDate.
func FormatDate(v any, format string) string {
	return French.FormatDate(v, format)
}

// FormatDate formats a date value with one of the DateNumeric, DateLong,
// DateShort or DateFull formats; an empty or unknown format means DateLong.
// Values that are not dates format as the empty string.
func (l Locale) FormatDate(v any, format string) string {
	d, ok := ParseDate(v)
	if !ok {
		return ""
	}
	day, month, year := d.Day(), d.Month(), d.Year()
	switch format {
	case DateNumeric:
		return fmt.Sprintf("%02d/%02d/%04d", day, int(month), year)
	case DateShort:
		return fmt.Sprintf("%d %s %04d", day, l.ShortMonths[month-1], year)
	case DateFull:
		return fmt.Sprintf("%s %02d %s %04d", l.Weekdays[d.Weekday()], day, l.Months[month-1], year)
	default:
		return fmt.Sprintf("%02d %s %04d", day, l.Months[month-1], year)
	}
}
