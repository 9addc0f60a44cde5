package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/m04kA/SMC-StudioScheduler/pkg/types"
)

// DaySchedule настройки одного дня недели
type DaySchedule struct {
	Open         bool             `json:"open"`
	Start        types.TimeString `json:"start"`
	End          types.TimeString `json:"end"`
	SunriseCount int              `json:"sunriseCount"`
	DuskCount    int              `json:"duskCount"`
}

// BusinessHoursConfig расписание студии по дням недели, индекс 0 (воскресенье) - 6 (суббота)
// Значение неизменяемо: при обновлении настроек заменяется целиком
type BusinessHoursConfig struct {
	Days [7]DaySchedule `json:"days"`
}

// ForWeekday возвращает настройки дня недели
func (c BusinessHoursConfig) ForWeekday(wd time.Weekday) DaySchedule {
	if wd < time.Sunday || wd > time.Saturday {
		return DaySchedule{}
	}
	return c.Days[wd]
}

// SlotCount возвращает емкость солнечного окна для дня недели, ограниченную [0, MaxSlotCount]
func (c BusinessHoursConfig) SlotCount(wd time.Weekday, slotType SlotType) int {
	day := c.ForWeekday(wd)

	var n int
	switch slotType {
	case SlotTypeSunrise:
		n = day.SunriseCount
	case SlotTypeDusk:
		n = day.DuskCount
	case SlotTypeNone:
		return 0
	default:
		return 0
	}

	return clampCount(n)
}

// Validate проверяет корректность настроек
func (c BusinessHoursConfig) Validate() error {
	for i, day := range c.Days {
		wd := time.Weekday(i)
		if day.SunriseCount < 0 || day.SunriseCount > MaxSlotCount {
			return fmt.Errorf("%s: sunriseCount must be in [0, %d]", wd, MaxSlotCount)
		}
		if day.DuskCount < 0 || day.DuskCount > MaxSlotCount {
			return fmt.Errorf("%s: duskCount must be in [0, %d]", wd, MaxSlotCount)
		}
		if !day.Open {
			continue
		}
		if err := day.Start.Validate(); err != nil {
			return fmt.Errorf("%s: start: %w", wd, err)
		}
		if err := day.End.Validate(); err != nil {
			return fmt.Errorf("%s: end: %w", wd, err)
		}
		if !day.Start.IsBefore(day.End) {
			return fmt.Errorf("%s: start %s must be before end %s", wd, day.Start, day.End)
		}
	}
	return nil
}

// Fingerprint отпечаток настроек емкости, используется только для инвалидации кэша
func (c BusinessHoursConfig) Fingerprint() string {
	// Ошибка невозможна: структура состоит из простых типов
	data, _ := json.Marshal(c)
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxSlotCount {
		return MaxSlotCount
	}
	return n
}
