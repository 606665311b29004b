package timezone

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"cafebook/config"
)

var (
	appLocation *time.Location
)

func init() {
	cfg := config.Get()

	loc, err := ParseOffset(cfg.App.UTCOffset)
	if err != nil {
		log.Error().
			Err(err).
			Str("offset", cfg.App.UTCOffset).
			Msg("Failed to parse UTC offset, falling back to UTC. Use the form '+09:00'")
		appLocation = time.UTC

		return
	}

	appLocation = loc
	log.Info().
		Str("offset", cfg.App.UTCOffset).
		Str("location", loc.String()).
		Msg("Application offset initialized")
}

// ParseOffset turns "+09:00", "-0330", "+9" or "" (UTC) into a fixed zone.
func ParseOffset(value string) (*time.Location, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "UTC") || value == "Z" {
		return time.UTC, nil
	}

	sign := 1

	switch value[0] {
	case '+':
		value = value[1:]
	case '-':
		sign = -1
		value = value[1:]
	default:
		return nil, fmt.Errorf("offset %q must start with + or -", value)
	}

	hoursPart, minutesPart := value, "0"
	if idx := strings.IndexByte(value, ':'); idx >= 0 {
		hoursPart, minutesPart = value[:idx], value[idx+1:]
	} else if len(value) == 4 {
		hoursPart, minutesPart = value[:2], value[2:]
	}

	hours, err := strconv.Atoi(hoursPart)
	if err != nil || hours < 0 || hours > 14 {
		return nil, fmt.Errorf("invalid offset hours %q", hoursPart)
	}

	minutes, err := strconv.Atoi(minutesPart)
	if err != nil || minutes < 0 || minutes > 59 {
		return nil, fmt.Errorf("invalid offset minutes %q", minutesPart)
	}

	seconds := sign * (hours*3600 + minutes*60)
	name := fmt.Sprintf("UTC%+03d:%02d", sign*hours, minutes)

	if sign < 0 && hours == 0 {
		name = fmt.Sprintf("UTC-00:%02d", minutes)
	}

	return time.FixedZone(name, seconds), nil
}

// Now returns the current time in the application offset
func Now() time.Time {
	return time.Now().In(GetLocation())
}

// ToAppTime converts a time to the application offset
func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// GetLocation returns the fixed application location
func GetLocation() *time.Location {
	if appLocation == nil {
		log.Warn().Msg("Timezone not initialized, returning UTC")

		return time.UTC
	}

	return appLocation
}

// Parse parses a time string in the application offset
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, GetLocation())
}

// Format formats a time in the application offset
func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}
