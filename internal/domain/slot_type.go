package domain

import "fmt"

// SlotType тип солнечного слота
type SlotType string

const (
	SlotTypeNone    SlotType = "none"
	SlotTypeSunrise SlotType = "sunrise"
	SlotTypeDusk    SlotType = "dusk"
)

// SunSlotTypes типы, для которых генерируются окна
var SunSlotTypes = []SlotType{SlotTypeSunrise, SlotTypeDusk}

// ParseSlotType конвертирует строку в SlotType, пустая строка означает none
func ParseSlotType(s string) (SlotType, error) {
	switch SlotType(s) {
	case "", SlotTypeNone:
		return SlotTypeNone, nil
	case SlotTypeSunrise:
		return SlotTypeSunrise, nil
	case SlotTypeDusk:
		return SlotTypeDusk, nil
	}
	return "", fmt.Errorf("unknown slot type %q", s)
}

// IsSun возвращает true для рассвета и заката
func (t SlotType) IsSun() bool {
	switch t {
	case SlotTypeSunrise, SlotTypeDusk:
		return true
	case SlotTypeNone:
		return false
	}
	return false
}

// Normalize приводит пустое значение к none
func (t SlotType) Normalize() SlotType {
	if t == "" {
		return SlotTypeNone
	}
	return t
}
