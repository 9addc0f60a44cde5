package openmeteo

// DailyRequest параметры запроса дневного прогноза
type DailyRequest struct {
	Latitude  float64
	Longitude float64
	StartDate string // YYYY-MM-DD, включительно
	EndDate   string // YYYY-MM-DD, включительно
	TimeZone  string // IANA
}

// DailyResponse рассвет и закат по дням
// Время - локальные строки без смещения, например "2026-01-17T05:49"
type DailyResponse struct {
	Dates        []string
	SunriseLocal []string
	SunsetLocal  []string
}

// Len возвращает количество дней, для которых есть полные данные
func (r *DailyResponse) Len() int {
	if r == nil {
		return 0
	}
	n := len(r.Dates)
	if len(r.SunriseLocal) < n {
		n = len(r.SunriseLocal)
	}
	if len(r.SunsetLocal) < n {
		n = len(r.SunsetLocal)
	}
	return n
}

// forecastResponse ответ /v1/forecast
type forecastResponse struct {
	Daily struct {
		Time    []string  `json:"time"`
		Sunrise []*string `json:"sunrise"`
		Sunset  []*string `json:"sunset"`
	} `json:"daily"`
}

// errorResponse модель ошибки от Open-Meteo
type errorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}
