// Package view holds the toolkit-neutral pieces of the presentation layer:
// date display, title filtering, and the list/detail view-models.
package view

import (
	"strings"
	"time"
	_ "time/tzdata"
)

// Layouts accepted for a raw pubDate. Days may have one or two digits.
const (
	pubDateNamedZone   = "Mon, 2 Jan 2006 15:04:05 MST"
	pubDateNumericZone = "Mon, 2 Jan 2006 15:04:05 -0700"
)

// DisplayLayout is how dates are shown to the user.
const DisplayLayout = "Mon, 02 Jan 2006 03:04 PM"

// DisplayZone is the zone dates are shown in.
const DisplayZone = "America/New_York"

// zoneOffsets resolves the abbreviations Go cannot place on its own.
var zoneOffsets = map[string]int{
	"WET":  0,
	"BST":  1 * 3600,
	"CET":  1 * 3600,
	"CEST": 2 * 3600,
	"EST":  -5 * 3600,
	"EDT":  -4 * 3600,
	"CST":  -6 * 3600,
	"CDT":  -5 * 3600,
	"MST":  -7 * 3600,
	"MDT":  -6 * 3600,
	"PST":  -8 * 3600,
	"PDT":  -7 * 3600,
}

var displayLoc = mustLoad(DisplayZone)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// FormatDate converts a feed pubDate to the display format in New York time.
// Anything that does not parse is returned unchanged.
func FormatDate(raw string) string {
	t, ok := parsePubDate(raw)
	if !ok {
		return raw
	}
	return t.In(displayLoc).Format(DisplayLayout)
}

func parsePubDate(raw string) (time.Time, bool) {
	if t, err := time.Parse(pubDateNumericZone, raw); err == nil {
		return t, true
	}
	t, err := time.Parse(pubDateNamedZone, raw)
	if err != nil {
		return time.Time{}, false
	}

	name, _ := t.Zone()
	if name == "UTC" || strings.HasPrefix(name, "GMT") {
		return t, true
	}
	offset, ok := zoneOffsets[name]
	if !ok {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(),
		t.Nanosecond(), time.FixedZone(name, offset)), true
}
