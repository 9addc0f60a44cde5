package domain

import "time"

// SunSource источник времени солнечных событий
type SunSource string

const (
	SunSourceForecast     SunSource = "forecast"
	SunSourceAstronomical SunSource = "astronomical"
)

// SunDay рассвет и закат для одной гражданской даты в часовом поясе студии
type SunDay struct {
	Date    string    // YYYY-MM-DD
	Sunrise time.Time // UTC
	Sunset  time.Time // UTC

	// Исходные локальные строки (для аудита и отладки)
	SunriseLocal string
	SunsetLocal  string

	Source SunSource
}

// IsValid проверяет sunrise < sunset
func (d SunDay) IsValid() bool {
	return !d.Sunrise.IsZero() && !d.Sunset.IsZero() && d.Sunrise.Before(d.Sunset)
}

// Event возвращает момент события для типа слота
func (d SunDay) Event(t SlotType) (time.Time, bool) {
	switch t {
	case SlotTypeSunrise:
		return d.Sunrise, true
	case SlotTypeDusk:
		return d.Sunset, true
	case SlotTypeNone:
		return time.Time{}, false
	}
	return time.Time{}, false
}

// Weekday день недели гражданской даты
func (d SunDay) Weekday() (time.Weekday, error) {
	date, err := time.Parse(DateFormat, d.Date)
	if err != nil {
		return 0, err
	}
	return date.Weekday(), nil
}
