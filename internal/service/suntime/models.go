package suntime

// Request параметры разрешения солнечных событий
type Request struct {
	Latitude  float64
	Longitude float64
	TimeZone  string // IANA
	StartDate string // YYYY-MM-DD, включительно
	EndDate   string // YYYY-MM-DD, включительно
}
