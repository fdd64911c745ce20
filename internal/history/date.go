package history

import (
	"fmt"
	"strings"
	"time"
)

// DateParser converts the date field of a record into a time.
type DateParser interface {
	ParseDate(value string) (time.Time, error)
}

// DefaultLayouts are the date layouts the tf client is known to print,
// covering the invariant format and common English and German locales.
var DefaultLayouts = []string{
	"2006-Jan-02 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"Monday, January 2, 2006 3:04:05 PM",
	"January 2, 2006 3:04:05 PM",
	"Jan 2, 2006 3:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"2 Jan 2006 15:04:05",
	"02.01.2006 15:04:05",
	"2006-01-02",
}

// LayoutParser tries a list of layouts in order.
type LayoutParser struct {
	Layouts  []string
	Location *time.Location // nil means time.Local
}

// NewDateParser returns a parser trying extra layouts before the defaults.
func NewDateParser(extra []string, loc *time.Location) LayoutParser {
	layouts := make([]string, 0, len(extra)+len(DefaultLayouts))
	layouts = append(layouts, extra...)
	layouts = append(layouts, DefaultLayouts...)
	return LayoutParser{Layouts: layouts, Location: loc}
}

// ParseDate implements DateParser.
func (p LayoutParser) ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range p.Layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
