package report

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeVanOut turns loose time-of-day input into HH:MM.
//
//	"9"     -> "09:00"
//	"930"   -> "09:30"
//	"1530"  -> "15:30"
//	"7.5"   -> "07:05"
//	"14h10" -> "14:10"
//
// Input that does not describe a valid time is returned trimmed but otherwise
// untouched so free text is never lost.
func NormalizeVanOut(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	var hourPart, minutePart string
	if idx := strings.IndexAny(value, ":.hH "); idx >= 0 {
		hourPart = strings.TrimSpace(value[:idx])
		minutePart = strings.TrimSpace(value[idx+1:])
	} else {
		if !allDigits(value) {
			return value
		}
		switch len(value) {
		case 1, 2:
			hourPart, minutePart = value, "0"
		case 3:
			hourPart, minutePart = value[:1], value[1:]
		case 4:
			hourPart, minutePart = value[:2], value[2:]
		default:
			return value
		}
	}

	if !allDigits(hourPart) || len(hourPart) > 2 {
		return value
	}
	if minutePart == "" {
		minutePart = "0"
	}
	if !allDigits(minutePart) || len(minutePart) > 2 {
		return value
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour > 23 {
		return value
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || minute > 59 {
		return value
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
