package shell

import (
	"math"
	"strconv"
	"strings"
	"time"

	ierr "github.com/mark3labs/clocktail/internal/errors"
)

// ParseSnooze reads a snooze length: a bare integer is minutes, anything
// else must be a Go duration such as 1h30m. Negative values are allowed and
// yield a snooze that has already elapsed.
func ParseSnooze(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ierr.NewValidation("duration", s, "enter minutes or a duration like 1h30m")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > math.MaxInt64/int64(time.Minute) || n < math.MinInt64/int64(time.Minute) {
			return 0, ierr.NewValidation("duration", s, "too long")
		}
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, ierr.NewValidation("duration", s, "enter minutes or a duration like 1h30m")
	}
	return d, nil
}

// ParseChoice reads a 1-based selection from a list of n items.
func ParseChoice(s string, n int) (int, error) {
	s = strings.TrimSpace(s)
	idx, err := strconv.Atoi(s)
	if err != nil || idx < 1 || idx > n {
		return 0, ierr.NewValidation("selection", s, "enter a number from the list")
	}
	return idx - 1, nil
}
