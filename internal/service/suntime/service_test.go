package suntime

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/integrations/openmeteo"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeForecast struct {
	resp  *openmeteo.DailyResponse
	err   error
	calls int
}

func (f *fakeForecast) FetchDaily(_ context.Context, _ openmeteo.DailyRequest) (*openmeteo.DailyResponse, error) {
	f.calls++
	return f.resp, f.err
}

type countingMetrics struct {
	failed   int
	fallback int
}

func (m *countingMetrics) ForecastFailed()    { m.failed++ }
func (m *countingMetrics) FallbackDays(n int) { m.fallback += n }

func sydney(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)
	return loc
}

func TestLocalToUTC_RoundTrip(t *testing.T) {
	zones := []string{"Australia/Sydney", "America/New_York", "Asia/Kolkata", "Pacific/Chatham", "UTC", "Europe/Moscow"}
	locals := []string{
		"2026-01-17T05:49",
		"2026-06-15T17:02",
		"2026-04-05T02:30", // Сидней: повторяющийся час при переходе на зимнее время
		"2026-11-01T01:30", // Нью-Йорк: повторяющийся час
		"2026-12-31T23:59",
	}

	for _, zone := range zones {
		loc, err := time.LoadLocation(zone)
		require.NoError(t, err)

		for _, local := range locals {
			utc, err := LocalToUTC(local, loc)
			require.NoError(t, err, "%s %s", zone, local)
			assert.Equal(t, time.UTC, utc.Location())
			assert.Equal(t, local, UTCToLocal(utc, loc), "%s %s", zone, local)
		}
	}
}

func TestLocalToUTC_Sydney(t *testing.T) {
	utc, err := LocalToUTC("2026-01-17T05:49", sydney(t))
	require.NoError(t, err)
	// Январь - летнее время, +11:00
	assert.Equal(t, time.Date(2026, 1, 16, 18, 49, 0, 0, time.UTC), utc)

	utc, err = LocalToUTC("2026-06-15T07:00:00", sydney(t))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 14, 21, 0, 0, 0, time.UTC), utc)

	_, err = LocalToUTC("17/01/2026 05:49", sydney(t))
	assert.ErrorIs(t, err, ErrInvalidLocalTime)
}

func TestResolver_SydneyWinterWithoutForecast(t *testing.T) {
	forecast := &fakeForecast{err: errors.New("connection refused")}
	metrics := &countingMetrics{}
	r := NewResolver(forecast, metrics, nopLogger{})

	days, err := r.Resolve(context.Background(), Request{
		Latitude:  -33.87,
		Longitude: 151.21,
		TimeZone:  "Australia/Sydney",
		StartDate: "2026-06-15",
		EndDate:   "2026-06-15",
	})
	require.NoError(t, err)
	require.Len(t, days, 1)

	day := days[0]
	assert.Equal(t, "2026-06-15", day.Date)
	assert.Equal(t, domain.SunSourceAstronomical, day.Source)

	loc := sydney(t)
	rise := day.Sunrise.In(loc)
	set := day.Sunset.In(loc)

	_, offset := rise.Zone()
	assert.Equal(t, 10*3600, offset)

	assert.Equal(t, 15, rise.Day())
	assert.Equal(t, 15, set.Day())
	riseMin := rise.Hour()*60 + rise.Minute()
	setMin := set.Hour()*60 + set.Minute()
	assert.True(t, riseMin >= 6*60+45 && riseMin <= 7*60+15, "sunrise %s", rise.Format(time.Kitchen))
	assert.True(t, setMin >= 16*60+40 && setMin <= 17*60+15, "sunset %s", set.Format(time.Kitchen))

	assert.Equal(t, 1, metrics.failed)
	assert.Equal(t, 1, metrics.fallback)
}

func TestResolver_FallbackCoverage(t *testing.T) {
	forecast := &fakeForecast{resp: &openmeteo.DailyResponse{
		Dates:        []string{"2026-01-17", "2026-01-18"},
		SunriseLocal: []string{"2026-01-17T05:49", "2026-01-18T05:50"},
		SunsetLocal:  []string{"2026-01-17T20:06", "2026-01-18T20:06"},
	}}
	r := NewResolver(forecast, nil, nopLogger{})

	days, err := r.Resolve(context.Background(), Request{
		Latitude:  -33.87,
		Longitude: 151.21,
		TimeZone:  "Australia/Sydney",
		StartDate: "2026-01-17",
		EndDate:   "2026-02-15",
	})
	require.NoError(t, err)
	require.Len(t, days, 30)
	assert.Equal(t, 1, forecast.calls)

	assert.Equal(t, domain.SunSourceForecast, days[0].Source)
	assert.Equal(t, "2026-01-17T05:49", days[0].SunriseLocal)
	assert.Equal(t, domain.SunSourceForecast, days[1].Source)

	for i, day := range days[2:] {
		assert.Equal(t, domain.SunSourceAstronomical, day.Source, day.Date)
		expected := time.Date(2026, 1, 19+i, 0, 0, 0, 0, time.UTC).Format(domain.DateFormat)
		assert.Equal(t, expected, day.Date)
	}
}

func TestResolver_Monotonicity(t *testing.T) {
	forecast := &fakeForecast{resp: &openmeteo.DailyResponse{
		Dates:        []string{"2026-03-01", "2026-03-02"},
		SunriseLocal: []string{"2026-03-01T19:00", "2026-03-02T06:40"},
		SunsetLocal:  []string{"2026-03-01T07:00", "2026-03-02T19:30"},
	}}
	r := NewResolver(forecast, nil, nopLogger{})

	days, err := r.Resolve(context.Background(), Request{
		Latitude:  40.71,
		Longitude: -74.0,
		TimeZone:  "America/New_York",
		StartDate: "2026-03-01",
		EndDate:   "2026-03-02",
	})
	require.NoError(t, err)
	require.Len(t, days, 2)

	// Некорректный день прогноза заменяется расчетом, а не исправляется
	assert.Equal(t, domain.SunSourceAstronomical, days[0].Source)
	assert.Equal(t, domain.SunSourceForecast, days[1].Source)

	for _, day := range days {
		assert.True(t, day.Sunrise.Before(day.Sunset), day.Date)
	}
}

func TestResolver_PolarNightDropsDays(t *testing.T) {
	r := NewResolver(nil, nil, nopLogger{})

	// Лонгйир, полярная ночь
	_, err := r.Resolve(context.Background(), Request{
		Latitude:  78.22,
		Longitude: 15.65,
		TimeZone:  "Arctic/Longyearbyen",
		StartDate: "2026-12-20",
		EndDate:   "2026-12-22",
	})
	assert.ErrorIs(t, err, ErrNoSunDataAvailable)
}

func TestResolver_Validation(t *testing.T) {
	r := NewResolver(nil, nil, nopLogger{})

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "nan latitude",
			req:     Request{Latitude: math.NaN(), TimeZone: "UTC", StartDate: "2026-01-01", EndDate: "2026-01-01"},
			wantErr: ErrInvalidCoordinates,
		},
		{
			name:    "longitude out of range",
			req:     Request{Longitude: 200, TimeZone: "UTC", StartDate: "2026-01-01", EndDate: "2026-01-01"},
			wantErr: ErrInvalidCoordinates,
		},
		{
			name:    "unknown zone",
			req:     Request{TimeZone: "Nowhere/City", StartDate: "2026-01-01", EndDate: "2026-01-01"},
			wantErr: ErrInvalidTimeZone,
		},
		{
			name:    "reversed range",
			req:     Request{TimeZone: "UTC", StartDate: "2026-01-02", EndDate: "2026-01-01"},
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "unparsable date",
			req:     Request{TimeZone: "UTC", StartDate: "01.01.2026", EndDate: "2026-01-01"},
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "too long",
			req:     Request{TimeZone: "UTC", StartDate: "2026-01-01", EndDate: "2027-06-01"},
			wantErr: ErrInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
