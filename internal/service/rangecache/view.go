package rangecache

import (
	"sort"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

// View упорядоченное представление бронирований без дублей по ключу
// Значение неизменяемо: Merge и Without возвращают новое представление
type View struct {
	order []string
	items map[string]domain.Booking
}

// NewView создает представление из списка
func NewView(bookings ...domain.Booking) View {
	return Merge(View{}, bookings)
}

// Merge объединяет существующее представление с новыми записями
// Запись с тем же ключом заменяется на месте, новые добавляются в конец
func Merge(existing View, incoming []domain.Booking) View {
	merged := View{
		order: make([]string, len(existing.order), len(existing.order)+len(incoming)),
		items: make(map[string]domain.Booking, len(existing.items)+len(incoming)),
	}
	copy(merged.order, existing.order)
	for k, v := range existing.items {
		merged.items[k] = v
	}

	for _, b := range incoming {
		key := b.Key()
		if _, ok := merged.items[key]; !ok {
			merged.order = append(merged.order, key)
		}
		merged.items[key] = b
	}

	return merged
}

// Without возвращает представление без указанных ключей
func (v View) Without(keys ...string) View {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}

	result := View{
		order: make([]string, 0, len(v.order)),
		items: make(map[string]domain.Booking, len(v.items)),
	}
	for _, k := range v.order {
		if _, ok := drop[k]; ok {
			continue
		}
		result.order = append(result.order, k)
		result.items[k] = v.items[k]
	}
	return result
}

// Get возвращает запись по ключу
func (v View) Get(key string) (domain.Booking, bool) {
	b, ok := v.items[key]
	return b, ok
}

// Len возвращает количество записей
func (v View) Len() int {
	return len(v.order)
}

// Bookings возвращает записи в порядке добавления
func (v View) Bookings() []domain.Booking {
	result := make([]domain.Booking, 0, len(v.order))
	for _, k := range v.order {
		result = append(result, v.items[k])
	}
	return result
}

// Sorted возвращает записи, упорядоченные по началу
func (v View) Sorted() []domain.Booking {
	result := v.Bookings()
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartAt.Before(result[j].StartAt)
	})
	return result
}
