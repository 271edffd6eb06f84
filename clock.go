package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// ClockTime is a time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// SecondsOfDay is the number of seconds elapsed since midnight.
func (c ClockTime) SecondsOfDay() int {
	return c.Hour*3600 + c.Minute*60
}

func parseClock(s string) (ClockTime, error) {
	t := strings.TrimSpace(s)
	parts := strings.Split(t, ":")
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return ClockTime{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// clockFromSeconds splits an absolute second count (relative to midnight of
// day 0) into a time of day and a day offset. Seconds are dropped.
func clockFromSeconds(sec int) (ClockTime, int) {
	days := floorDiv(sec, secondsPerDay)
	sec = mod(sec, secondsPerDay)
	return ClockTime{Hour: sec / 3600, Minute: (sec % 3600) / 60}, days
}

func hoursToSeconds(h float64) int {
	return int(math.Round(h * 3600))
}

// ClockStyle selects how a time of day is rendered.
type ClockStyle string

const (
	Clock12h  ClockStyle = "12h"
	Clock24h  ClockStyle = "24h"
	ClockAuto ClockStyle = "auto"
)

func parseClockStyle(s string) (ClockStyle, error) {
	switch ClockStyle(strings.ToLower(strings.TrimSpace(s))) {
	case Clock12h:
		return Clock12h, nil
	case Clock24h:
		return Clock24h, nil
	case ClockAuto, "":
		return ClockAuto, nil
	}
	return "", fmt.Errorf("invalid clock style %q, expected 12h, 24h or auto", s)
}

// Regions that conventionally write the time with AM/PM.
var twelveHourRegions = map[string]bool{
	"US": true, "CA": true, "AU": true, "NZ": true, "PH": true,
	"IN": true, "PK": true, "EG": true, "SA": true,
}

// resolve turns auto into a concrete style using the host locale.
func (s ClockStyle) resolve(getenv func(string) string) ClockStyle {
	if s != ClockAuto {
		return s
	}
	if getenv == nil {
		getenv = os.Getenv
	}

	var locale string
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			locale = v
			break
		}
	}
	return styleForLocale(locale)
}

// styleForLocale maps a POSIX locale such as "en_GB.UTF-8" to a clock style.
func styleForLocale(locale string) ClockStyle {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return Clock12h
	}

	_, region, ok := strings.Cut(strings.ReplaceAll(locale, "-", "_"), "_")
	if !ok {
		return Clock24h
	}
	if twelveHourRegions[strings.ToUpper(region)] {
		return Clock12h
	}
	return Clock24h
}

// formatShortTime renders c like a platform short time style.
func formatShortTime(c ClockTime, style ClockStyle) string {
	t := time.Date(2000, time.January, 1, c.Hour, c.Minute, 0, 0, time.UTC)
	if style == Clock24h {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

func floorDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	q := a / b
	r := a % b
	if (r != 0) && ((r > 0) != (b > 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
