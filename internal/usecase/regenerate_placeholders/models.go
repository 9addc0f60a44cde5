package regenerate_placeholders

import "time"

// Request запрос перегенерации
type Request struct {
	TenantID int64
}

// Response результат перегенерации
type Response struct {
	TenantID    int64
	WindowStart time.Time // начало сегодняшнего дня в поясе студии
	WindowEnd   time.Time // начало дня, следующего за окном

	Deleted int64
	Created int

	RequestedDays int
	ResolvedDays  int

	// Partial - часть дней не разрешена; Warnings содержит ErrPartial с деталями
	Partial  bool
	Warnings []error
}
