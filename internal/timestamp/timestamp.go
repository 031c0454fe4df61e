// Package timestamp normalises the timestamp shapes found in exported
// content documents into time.Time.
//
// The recognised inputs are a closed set, see Variant. Anything else is
// reported as ErrUnparseable rather than guessed at.
package timestamp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrUnparseable = errors.New("unparseable timestamp")

// Variant tells which input shape a timestamp was parsed from.
type Variant int

const (
	Unknown Variant = iota
	Native          // time.Time
	ISO             // RFC 3339 / ISO 8601 string, optionally zoneless or date only
	Legacy          // Spanish console string: "15 de marzo de 2024 a las 10:30:00 a.m. UTC-3"
	Object          // exported timestamp object: {"_seconds": n, "_nanoseconds": n}
	Unix            // number of seconds since the epoch
)

func (v Variant) String() string {
	switch v {
	case Native:
		return "native"
	case ISO:
		return "iso"
	case Legacy:
		return "legacy"
	case Object:
		return "object"
	case Unix:
		return "unix"
	default:
		return "unknown"
	}
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var months = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"setiembre": time.September, "octubre": time.October,
	"noviembre": time.November, "diciembre": time.December,
}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
	"agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var legacyRe = regexp.MustCompile(
	`^(\d{1,2}) de (\p{L}+) de (\d{4})` +
		`(?:,? (?:a las )?(\d{1,2}):(\d{2})(?::(\d{2}))?(?: ?([ap])\.? ?m\.?)?)?` +
		`(?: utc([+-]\d{1,2})(?::?(\d{2}))?)?$`)

// Parse normalises v. Results are in UTC unless the input carried an
// explicit offset.
func Parse(v any) (time.Time, Variant, error) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, Unknown, ErrUnparseable
		}

		return x, Native, nil
	case *time.Time:
		if x == nil {
			return time.Time{}, Unknown, ErrUnparseable
		}

		return Parse(*x)
	case string:
		return parseString(x)
	case map[string]any:
		return parseObject(x)
	case float64, int, int64, json.Number:
		secs, ok := number(x)
		if !ok {
			return time.Time{}, Unknown, fmt.Errorf("%w: %v", ErrUnparseable, v)
		}

		return fromSeconds(secs, 0), Unix, nil
	}

	return time.Time{}, Unknown, fmt.Errorf("%w: %T", ErrUnparseable, v)
}

func parseString(s string) (time.Time, Variant, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, Unknown, ErrUnparseable
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, ISO, nil
		}
	}

	if t, ok := parseLegacy(s); ok {
		return t, Legacy, nil
	}

	return time.Time{}, Unknown, fmt.Errorf("%w: %q", ErrUnparseable, s)
}

func parseLegacy(s string) (time.Time, bool) {
	// console output uses narrow no-break spaces around the period marker
	s = strings.NewReplacer("\u202f", " ", "\u00a0", " ").Replace(strings.ToLower(s))
	s = strings.Join(strings.Fields(s), " ")

	m := legacyRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	month, ok := months[m[2]]
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])

	var hour, minute, sec int
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		if m[6] != "" {
			sec, _ = strconv.Atoi(m[6])
		}
		switch m[7] {
		case "p":
			if hour < 12 {
				hour += 12
			}
		case "a":
			if hour == 12 {
				hour = 0
			}
		}
		if hour > 23 || minute > 59 || sec > 59 {
			return time.Time{}, false
		}
	}

	loc := time.UTC
	if m[8] != "" {
		h, _ := strconv.Atoi(m[8])
		mins := 0
		if m[9] != "" {
			mins, _ = strconv.Atoi(m[9])
		}
		offset := h*3600 + mins*60
		if strings.HasPrefix(m[8], "-") {
			offset = h*3600 - mins*60
		}
		loc = time.FixedZone("UTC"+m[8], offset)
	}

	t := time.Date(year, month, day, hour, minute, sec, 0, loc)
	if t.Day() != day || t.Month() != month {
		// 31 de febrero and friends
		return time.Time{}, false
	}

	return t, true
}

func parseObject(o map[string]any) (time.Time, Variant, error) {
	raw, ok := o["_seconds"]
	if !ok {
		raw, ok = o["seconds"]
	}
	if !ok {
		return time.Time{}, Unknown, fmt.Errorf("%w: object without seconds", ErrUnparseable)
	}
	secs, ok := number(raw)
	if !ok {
		return time.Time{}, Unknown, fmt.Errorf("%w: seconds %v", ErrUnparseable, raw)
	}

	var nanos float64
	if rn, ok := o["_nanoseconds"]; ok {
		nanos, _ = number(rn)
	} else if rn, ok := o["nanoseconds"]; ok {
		nanos, _ = number(rn)
	}

	return fromSeconds(secs, int64(nanos)), Object, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	}

	return 0, false
}

func fromSeconds(secs float64, nanos int64) time.Time {
	whole, frac := math.Modf(secs)

	return time.Unix(int64(whole), int64(frac*1e9)+nanos).UTC()
}

// FormatSpanish renders t the way the public pages show publication dates,
// e.g. "15 de marzo de 2024, 10:30". The zero time renders as "".
func FormatSpanish(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return fmt.Sprintf("%d de %s de %d, %02d:%02d",
		t.Day(), monthNames[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}
