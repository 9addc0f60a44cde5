package capacity

import (
	"fmt"
	"sort"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

// Engine вычисляет солнечные окна и оставшуюся емкость
// Не хранит состояния: настройки и бронирования передаются в каждый вызов
type Engine struct {
	logger Logger
}

// NewEngine создает новый экземпляр движка емкости
func NewEngine(logger Logger) *Engine {
	return &Engine{logger: logger}
}

// Candidates генерирует все окна по настроенной емкости, без учета бронирований
func (e *Engine) Candidates(days []domain.SunDay, cfg domain.BusinessHoursConfig) []domain.SlotWindow {
	var windows []domain.SlotWindow

	for _, day := range days {
		wd, err := day.Weekday()
		if err != nil {
			e.logger.Warn("Candidates: bad date %q: %v", day.Date, err)
			continue
		}

		for _, slotType := range domain.SunSlotTypes {
			count := cfg.SlotCount(wd, slotType)
			if count == 0 {
				continue
			}
			event, ok := day.Event(slotType)
			if !ok {
				continue
			}

			for i := 1; i <= count; i++ {
				windows = append(windows, domain.SlotWindow{
					Date:     day.Date,
					SlotType: slotType,
					StartAt:  event.Add(-domain.SlotWindowPadding),
					EndAt:    event.Add(domain.SlotWindowPadding),
					Capacity: count,
					Index:    i,
				})
			}
		}
	}

	return windows
}

// Availability считает занятость каждой группы (дата, тип слота) с ненулевой емкостью
func (e *Engine) Availability(days []domain.SunDay, cfg domain.BusinessHoursConfig, bookings []domain.Booking) []domain.SlotAvailability {
	var result []domain.SlotAvailability

	for _, group := range groupWindows(e.Candidates(days, cfg)) {
		first := group[0]
		used := e.usedIndexes(first, bookings)

		booked := len(used)
		remaining := first.Capacity - booked
		if remaining < 0 {
			remaining = 0
		}

		result = append(result, domain.SlotAvailability{
			Date:      first.Date,
			SlotType:  first.SlotType,
			StartAt:   first.StartAt,
			EndAt:     first.EndAt,
			Capacity:  first.Capacity,
			Booked:    booked,
			Remaining: remaining,
			NextIndex: nextIndex(used, first.Capacity),
		})
	}

	return result
}

// Offerable возвращает окна, которые еще можно предложить:
// для каждой группы первые remaining окон по возрастанию Index
func (e *Engine) Offerable(days []domain.SunDay, cfg domain.BusinessHoursConfig, bookings []domain.Booking) []domain.SlotWindow {
	var result []domain.SlotWindow

	for _, group := range groupWindows(e.Candidates(days, cfg)) {
		booked := len(e.usedIndexes(group[0], bookings))
		remaining := group[0].Capacity - booked
		if remaining <= 0 {
			continue
		}
		result = append(result, group[:remaining]...)
	}

	return result
}

// Remaining возвращает точную оставшуюся емкость для (date, slotType)
func (e *Engine) Remaining(days []domain.SunDay, cfg domain.BusinessHoursConfig, bookings []domain.Booking, date string, slotType domain.SlotType) (*domain.SlotAvailability, error) {
	if !slotType.IsSun() {
		return nil, fmt.Errorf("%w: Remaining - %q", ErrNotSunSlot, slotType)
	}

	var day *domain.SunDay
	for i := range days {
		if days[i].Date == date {
			day = &days[i]
			break
		}
	}
	if day == nil {
		return nil, fmt.Errorf("%w: Remaining - %s", ErrDayNotResolved, date)
	}

	for _, a := range e.Availability([]domain.SunDay{*day}, cfg, bookings) {
		if a.SlotType == slotType {
			return &a, nil
		}
	}

	// Емкость 0: окна нет, свободных мест тоже
	event, _ := day.Event(slotType)
	return &domain.SlotAvailability{
		Date:     date,
		SlotType: slotType,
		StartAt:  event.Add(-domain.SlotWindowPadding),
		EndAt:    event.Add(domain.SlotWindowPadding),
	}, nil
}

// usedIndexes возвращает номера единиц емкости, занятых бронированиями окна
// Бронирование без номера занимает наименьший свободный
func (e *Engine) usedIndexes(window domain.SlotWindow, bookings []domain.Booking) map[int]struct{} {
	used := make(map[int]struct{})
	unindexed := 0

	for i := range bookings {
		b := &bookings[i]
		if !e.counts(b, window) {
			continue
		}

		if b.SlotIndex != nil && *b.SlotIndex >= 1 && *b.SlotIndex <= window.Capacity {
			if _, dup := used[*b.SlotIndex]; !dup {
				used[*b.SlotIndex] = struct{}{}
				continue
			}
		}
		unindexed++
	}

	for idx := 1; unindexed > 0; idx++ {
		if _, ok := used[idx]; ok {
			continue
		}
		used[idx] = struct{}{}
		unindexed--
	}

	return used
}

// counts проверяет, занимает ли бронирование емкость окна
func (e *Engine) counts(b *domain.Booking, window domain.SlotWindow) bool {
	if b.IsPlaceholder || !b.IsActive() {
		return false
	}
	// Локальная копия клиента без записи в хранилище емкость не занимает
	if !b.IsPersisted() {
		return false
	}
	if b.SlotType.Normalize() != window.SlotType {
		return false
	}
	if !b.HasValidInterval() {
		e.logger.Warn("Availability: booking %s has invalid interval [%v, %v), skipped",
			b.Key(), b.StartAt, b.EndAt)
		return false
	}
	return b.Overlaps(window.StartAt, window.EndAt)
}

// groupWindows группирует окна по (дата, тип слота), сохраняя порядок по Index
func groupWindows(windows []domain.SlotWindow) [][]domain.SlotWindow {
	var groups [][]domain.SlotWindow
	index := make(map[string]int)

	for _, w := range windows {
		key := w.Date + "|" + string(w.SlotType)
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, nil)
		}
		groups[pos] = append(groups[pos], w)
	}

	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool { return g[i].Index < g[j].Index })
	}
	return groups
}

// nextIndex возвращает наименьший свободный номер, 0 если свободных нет
func nextIndex(used map[int]struct{}, capacity int) int {
	for i := 1; i <= capacity; i++ {
		if _, ok := used[i]; !ok {
			return i
		}
	}
	return 0
}
