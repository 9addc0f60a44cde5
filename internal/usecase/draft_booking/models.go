package draft_booking

import (
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

const (
	// DedupWindow повторный жест с тем же ключом в пределах окна игнорируется
	DedupWindow = 750 * time.Millisecond

	// DragThreshold выделение длиннее порога считается настоящим перетаскиванием
	DragThreshold = 30 * time.Minute
)

// State состояние черновика
type State string

const (
	StateIdle          State = "idle"
	StatePendingCreate State = "pending_create"
	StateCreated       State = "created"
	StatePromoted      State = "promoted"
	StateDeleted       State = "deleted"
)

// GestureKind тип жеста
type GestureKind string

const (
	GesturePointer GestureKind = "pointer"
	GestureRange   GestureKind = "range"
)

// Point координаты указателя на экране
type Point struct {
	X float64
	Y float64
}

// Rect границы отрисованного элемента
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// PointerRequest клик по сетке планировщика
type PointerRequest struct {
	At       time.Time
	SlotType domain.SlotType
	Role     domain.Role
	UserID   int64
	Pointer  Point
}

// RangeRequest выделение диапазона
type RangeRequest struct {
	Start    time.Time
	End      time.Time
	SlotType domain.SlotType
	Role     domain.Role
	UserID   int64
	Pointer  Point
}

// Result результат жеста или перехода
type Result struct {
	// Ignored - жест отброшен защитой от двойного срабатывания
	Ignored bool

	// Deferred - создана только локальная копия, запись в хранилище будет при сохранении
	Deferred bool

	State       State
	Booking     *domain.Booking
	AnchorToken string
}

// Draft черновик сессии
type Draft struct {
	Key      string
	Booking  domain.Booking
	State    State
	Deferred bool
	Role     domain.Role
}

// Anchor привязка всплывающего элемента к черновику
type Anchor struct {
	Token   string
	Key     string
	Pointer Point
	Bounds  *Rect // nil, пока элемент не отрисован
}

// IsMounted возвращает true, если привязка переведена на границы элемента
func (a *Anchor) IsMounted() bool {
	return a.Bounds != nil
}

type gesture struct {
	kind     GestureKind
	start    time.Time
	end      time.Time
	slotType domain.SlotType
	role     domain.Role
	userID   int64
	pointer  Point
}
