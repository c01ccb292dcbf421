package deploy

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MinExpiration is the shortest lifetime a deployment may be given.
const MinExpiration = 30 * time.Minute

// ErrInvalidExpiration is returned for unparseable or too short lifetimes.
var ErrInvalidExpiration = errors.New("invalid expiration")

// ParseExpiration turns a lifetime such as "45m", "2h" or "7d" into an
// instant relative to now.
func ParseExpiration(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if len(value) < 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidExpiration, value)
	}

	n, err := strconv.Atoi(value[:len(value)-1])
	if err != nil || n <= 0 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidExpiration, value)
	}

	var unit time.Duration
	switch value[len(value)-1] {
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	default:
		return time.Time{}, fmt.Errorf("%w: %q has no m, h or d suffix", ErrInvalidExpiration, value)
	}

	if int64(n) > math.MaxInt64/int64(unit) {
		return time.Time{}, fmt.Errorf("%w: %q is too long", ErrInvalidExpiration, value)
	}
	d := time.Duration(n) * unit
	if d < MinExpiration {
		return time.Time{}, fmt.Errorf("%w: %q is shorter than %s", ErrInvalidExpiration, value, MinExpiration)
	}
	return now.Add(d), nil
}
