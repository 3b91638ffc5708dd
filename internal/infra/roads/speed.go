package roads

import (
	"strconv"
	"strings"
)

const (
	fallbackSpeedKmh = 30.0
	mphToKmh         = 1.609344
)

var highwaySpeeds = map[string]float64{
	"motorway":       110.0,
	"motorway_link":  80.0,
	"trunk":          80.0,
	"trunk_link":     60.0,
	"primary":        60.0,
	"primary_link":   50.0,
	"secondary":      50.0,
	"secondary_link": 40.0,
	"tertiary":       40.0,
	"tertiary_link":  30.0,
	"residential":    30.0,
	"living_street":  20.0,
	"service":        20.0,
	"unclassified":   30.0,
	"road":           30.0,
}

// speedForHighway returns the default speed in km/h of a highway class.
func speedForHighway(highway string) float64 {
	if speed, ok := highwaySpeeds[highway]; ok {
		return speed
	}

	return fallbackSpeedKmh
}

// parseMaxSpeed reads maxspeed values such as "70", "50 mph" or "none".
// Zone codes like "SE:urban" are not understood and report false.
func parseMaxSpeed(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	factor := 1.0
	if trimmed, ok := strings.CutSuffix(value, "mph"); ok {
		value = strings.TrimSpace(trimmed)
		factor = mphToKmh
	} else if trimmed, ok := strings.CutSuffix(value, "km/h"); ok {
		value = strings.TrimSpace(trimmed)
	}

	// Multiple lanes or conditional values: the first one applies.
	if i := strings.IndexAny(value, ";|"); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}

	speed, err := strconv.ParseFloat(value, 64)
	if err != nil || speed <= 0 {
		return 0, false
	}

	return speed * factor, true
}

// leadingNumber returns the first run of digits in s, e.g. 4 for "E 4;222".
func leadingNumber(s string) int32 {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}

	n, err := strconv.ParseInt(s[start:end], 10, 32)
	if err != nil {
		return 0
	}

	return int32(n)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
