package rangecache

import (
	"strings"
	"time"
)

// Key ключ диапазона
// Для данных, зависящих от солнца, дополнительно содержит часовой пояс и отпечаток настроек
type Key struct {
	Start       string
	End         string
	TimeZone    string
	Fingerprint string
}

// RangeKey ключ диапазона бронирований [start, end)
func RangeKey(start, end time.Time) Key {
	return Key{
		Start: start.UTC().Format(time.RFC3339),
		End:   end.UTC().Format(time.RFC3339),
	}
}

// SunKey ключ солнечных данных по гражданским датам
func SunKey(startDate, endDate, timeZone, fingerprint string) Key {
	return Key{
		Start:       startDate,
		End:         endDate,
		TimeZone:    timeZone,
		Fingerprint: fingerprint,
	}
}

// IsSunDerived возвращает true для ключей солнечных данных
func (k Key) IsSunDerived() bool {
	return k.TimeZone != "" || k.Fingerprint != ""
}

// String строковое представление, используется как ключ in-flight запроса
func (k Key) String() string {
	parts := []string{k.Start, k.End}
	if k.IsSunDerived() {
		parts = append(parts, k.TimeZone, k.Fingerprint)
	}
	return strings.Join(parts, "|")
}
