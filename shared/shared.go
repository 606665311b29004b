package shared

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const cacheKeySeparator = ":"

func ConvertStringToBool(value string) *bool {
	if value == "" {
		return nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to bool")

		return nil
	}

	return &boolValue
}

// BuildCacheKey joins a prefix and its parts with ":". Empty parts are kept
// so keys stay positional.
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), cacheKeySeparator)
}

// ClampLimit returns def for limit <= 0 and caps the result at maxLimit.
func ClampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		limit = def
	}

	return min(limit, maxLimit)
}

// ParseLimit reads a limit query value; unparsable input is treated as unset.
func ParseLimit(value string, def, maxLimit int) int {
	limit, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		limit = 0
	}

	return ClampLimit(limit, def, maxLimit)
}
