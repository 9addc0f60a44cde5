package domain

import "time"

// SlotWindow окно солнечного слота, вычисляется при каждом чтении и не сохраняется
// Окна одной группы (Date, SlotType) совпадают по времени и отличаются только Index
type SlotWindow struct {
	Date     string
	SlotType SlotType
	StartAt  time.Time // событие - SlotWindowPadding
	EndAt    time.Time // событие + SlotWindowPadding
	Capacity int
	Index    int // 1..Capacity
}

// Placeholder возвращает поля плейсхолдера, который материализует это окно в хранилище
func (w SlotWindow) Placeholder(tenantID int64) BookingFields {
	index := w.Index
	return BookingFields{
		TenantID:      tenantID,
		StartAt:       w.StartAt,
		EndAt:         w.EndAt,
		Status:        StatusRequested,
		SlotType:      w.SlotType,
		SlotIndex:     &index,
		IsPlaceholder: true,
	}
}

// SlotAvailability остаток емкости группы (Date, SlotType)
type SlotAvailability struct {
	Date      string
	SlotType  SlotType
	StartAt   time.Time
	EndAt     time.Time
	Capacity  int
	Booked    int
	Remaining int
	NextIndex int // первый свободный номер единицы емкости, 0 если свободных нет
}

// IsFull возвращает true, если свободных мест нет
func (a *SlotAvailability) IsFull() bool {
	return a.Remaining <= 0
}

// OccupancyRate возвращает заполненность в процентах (0-100)
func (a *SlotAvailability) OccupancyRate() float64 {
	if a.Capacity == 0 {
		return 0
	}
	return float64(a.Capacity-a.Remaining) / float64(a.Capacity) * 100
}
