package suntime

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

const localDateTimeWithSeconds = "2006-01-02T15:04:05"

// LocalToUTC переводит локальное время без смещения ("2026-01-17T05:49") в UTC,
// трактуя его как настенное время в часовом поясе loc
func LocalToUTC(local string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(domain.LocalDateTimeFormat, local, loc)
	if err != nil {
		t, err = time.ParseInLocation(localDateTimeWithSeconds, local, loc)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidLocalTime, local, err)
	}
	return t.UTC(), nil
}

// UTCToLocal форматирует момент как настенное время в часовом поясе loc
func UTCToLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(domain.LocalDateTimeFormat)
}
