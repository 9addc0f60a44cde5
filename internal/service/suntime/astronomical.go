package suntime

import (
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

// astronomicalDay вычисляет рассвет и закат для гражданской даты в поясе loc
// go-sunrise считает по UTC-дате, поэтому берем соседние UTC-даты
// и выбираем ту, у которой солнечный полдень ближе всего к местному полудню
func astronomicalDay(lat, lon float64, date time.Time, loc *time.Location) (domain.SunDay, bool) {
	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, loc)

	var (
		best      domain.SunDay
		bestDelta time.Duration
		found     bool
	)

	for _, shift := range []int{-1, 0, 1} {
		d := noon.UTC().AddDate(0, 0, shift)
		rise, set := sunrise.SunriseSunset(lat, lon, d.Year(), d.Month(), d.Day())
		if rise.IsZero() || set.IsZero() || !rise.Before(set) {
			continue
		}

		mid := rise.Add(set.Sub(rise) / 2)
		delta := mid.Sub(noon)
		if delta < 0 {
			delta = -delta
		}
		if found && delta >= bestDelta {
			continue
		}

		best = domain.SunDay{
			Date:         noon.Format(domain.DateFormat),
			Sunrise:      rise.UTC(),
			Sunset:       set.UTC(),
			SunriseLocal: UTCToLocal(rise, loc),
			SunsetLocal:  UTCToLocal(set, loc),
			Source:       domain.SunSourceAstronomical,
		}
		bestDelta = delta
		found = true
	}

	// Кандидат от соседних суток (полярные широты) не относится к этой дате
	if found && bestDelta > 12*time.Hour {
		return domain.SunDay{}, false
	}

	return best, found
}
