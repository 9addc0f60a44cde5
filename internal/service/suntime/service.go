package suntime

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/integrations/openmeteo"
)

// MaxRangeDays максимальная длина запрашиваемого диапазона
const MaxRangeDays = 366

// Resolver вычисляет рассвет и закат по диапазону дат:
// прогноз там, где он есть, астрономический расчет для остальных дат
type Resolver struct {
	forecast ForecastSource
	metrics  Metrics
	logger   Logger
}

// NewResolver создает новый экземпляр резолвера
// forecast может быть nil - тогда используется только астрономический расчет
func NewResolver(forecast ForecastSource, metrics Metrics, logger Logger) *Resolver {
	return &Resolver{
		forecast: forecast,
		metrics:  metrics,
		logger:   logger,
	}
}

// Resolve возвращает SunDay для каждой даты диапазона, для которой есть корректная пара sunrise < sunset
// Результат упорядочен по дате
func (r *Resolver) Resolve(ctx context.Context, req Request) ([]domain.SunDay, error) {
	if !domain.ValidCoordinates(req.Latitude, req.Longitude) {
		return nil, fmt.Errorf("%w: Resolve - lat=%v, lon=%v", ErrInvalidCoordinates, req.Latitude, req.Longitude)
	}

	loc, err := time.LoadLocation(req.TimeZone)
	if err != nil || req.TimeZone == "" {
		return nil, fmt.Errorf("%w: Resolve - %q: %v", ErrInvalidTimeZone, req.TimeZone, err)
	}

	dates, err := dateRange(req.StartDate, req.EndDate, loc)
	if err != nil {
		return nil, err
	}

	forecast := r.fetchForecast(ctx, req)
	index := r.forecastIndex(forecast, loc)

	result := make([]domain.SunDay, 0, len(dates))
	fallback := 0
	for _, date := range dates {
		key := date.Format(domain.DateFormat)

		if day, ok := index[key]; ok {
			result = append(result, day)
			continue
		}

		day, ok := astronomicalDay(req.Latitude, req.Longitude, date, loc)
		if !ok {
			r.logger.Warn("Resolve: no valid sunrise/sunset for %s (lat=%v, lon=%v), day dropped",
				key, req.Latitude, req.Longitude)
			continue
		}
		fallback++
		result = append(result, day)
	}

	if fallback > 0 && r.metrics != nil {
		r.metrics.FallbackDays(fallback)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: Resolve - %s..%s tz=%s", ErrNoSunDataAvailable, req.StartDate, req.EndDate, req.TimeZone)
	}

	r.logger.Info("Resolve: %d of %d days resolved for %s..%s (forecast=%d, fallback=%d)",
		len(result), len(dates), req.StartDate, req.EndDate, len(result)-fallback, fallback)

	return result, nil
}

// fetchForecast запрашивает прогноз один раз на весь диапазон
// Ошибка источника означает отсутствие прогноза, а не отказ всего разрешения
func (r *Resolver) fetchForecast(ctx context.Context, req Request) *openmeteo.DailyResponse {
	if r.forecast == nil {
		return &openmeteo.DailyResponse{}
	}

	resp, err := r.forecast.FetchDaily(ctx, openmeteo.DailyRequest{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		TimeZone:  req.TimeZone,
	})
	if err != nil {
		r.logger.Warn("Resolve: forecast unavailable for %s..%s, using astronomical fallback: %v",
			req.StartDate, req.EndDate, err)
		if r.metrics != nil {
			r.metrics.ForecastFailed()
		}
		return &openmeteo.DailyResponse{}
	}
	if resp == nil {
		return &openmeteo.DailyResponse{}
	}
	return resp
}

// forecastIndex переводит строки прогноза в UTC и отбрасывает некорректные дни
func (r *Resolver) forecastIndex(resp *openmeteo.DailyResponse, loc *time.Location) map[string]domain.SunDay {
	index := make(map[string]domain.SunDay, resp.Len())

	for i := 0; i < resp.Len(); i++ {
		date := resp.Dates[i]

		rise, err := LocalToUTC(resp.SunriseLocal[i], loc)
		if err != nil {
			r.logger.Warn("Resolve: bad forecast sunrise for %s: %v", date, err)
			continue
		}
		set, err := LocalToUTC(resp.SunsetLocal[i], loc)
		if err != nil {
			r.logger.Warn("Resolve: bad forecast sunset for %s: %v", date, err)
			continue
		}

		day := domain.SunDay{
			Date:         date,
			Sunrise:      rise,
			Sunset:       set,
			SunriseLocal: resp.SunriseLocal[i],
			SunsetLocal:  resp.SunsetLocal[i],
			Source:       domain.SunSourceForecast,
		}
		if !day.IsValid() {
			r.logger.Warn("Resolve: forecast day %s has sunrise %s not before sunset %s, ignored",
				date, day.SunriseLocal, day.SunsetLocal)
			continue
		}
		index[date] = day
	}

	return index
}

// dateRange возвращает гражданские даты [start, end] в поясе loc
func dateRange(startDate, endDate string, loc *time.Location) ([]time.Time, error) {
	start, err := time.ParseInLocation(domain.DateFormat, startDate, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: Resolve - start %q: %v", ErrInvalidDateRange, startDate, err)
	}
	end, err := time.ParseInLocation(domain.DateFormat, endDate, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: Resolve - end %q: %v", ErrInvalidDateRange, endDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: Resolve - end %s is before start %s", ErrInvalidDateRange, endDate, startDate)
	}

	var dates []time.Time
	for d := start; !d.After(end); d = time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, loc) {
		if len(dates) >= MaxRangeDays {
			return nil, fmt.Errorf("%w: Resolve - range exceeds %d days", ErrInvalidDateRange, MaxRangeDays)
		}
		dates = append(dates, d)
	}
	return dates, nil
}
