package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/simpleminer/internal/world"
)

// Порог покоя для |Δp|²
const stationaryThresholdSq = 1e-4

// Сопротивление в режиме NOCLIP фиксировано
const noclipDrag = 0.1

// FixedTimestep - шаг симуляции в секундах
const FixedTimestep = 0.016

// Raycaster - мир, против которого считаются коллизии
type Raycaster interface {
	RaycastVsBlocks(origin, dir mgl64.Vec3, maxDist float64) world.RaycastResult
}

// Observer получает события физики (метрики)
type Observer interface {
	ObserveStep()
	ObserveCollision(axis string)
}

// Config - настройки физики. Проверка диапазонов выполняется при загрузке
// конфигурации, здесь значения принимаются как есть.
type Config struct {
	Gravity              float64
	GroundedDrag         float64
	AirborneDrag         float64
	GroundedAcceleration float64
	AirborneAcceleration float64
	SpeedLimit           float64
	JumpImpulse          float64
}

// DefaultConfig возвращает настройки физики по умолчанию
func DefaultConfig() Config {
	return Config{
		Gravity:              9.8,
		GroundedDrag:         8.0,
		AirborneDrag:         0.5,
		GroundedAcceleration: 10.0,
		AirborneAcceleration: 2.0,
		SpeedLimit:           10.0,
		JumpImpulse:          5.0,
	}
}

// Body - физическое тело сущности
type Body struct {
	Position     mgl64.Vec3
	Velocity     mgl64.Vec3
	Acceleration mgl64.Vec3 // Накопитель на один шаг, обнуляется в Step
	Mode         Mode
	Grounded     bool
	Bounds       Bounds

	cfg      Config
	world    Raycaster
	observer Observer
}

// NewBody создаёт тело с габаритами игрока. world может быть nil:
// тогда нет ни гравитации, ни коллизий, ни опоры.
func NewBody(position mgl64.Vec3, cfg Config, w Raycaster) *Body {
	return &Body{
		Position: position,
		Mode:     ModeWalking,
		Bounds:   PlayerBounds(),
		cfg:      cfg,
		world:    w,
	}
}

// Config возвращает настройки тела
func (b *Body) Config() Config { return b.cfg }

// SetWorld меняет мир тела
func (b *Body) SetWorld(w Raycaster) { b.world = w }

// SetObserver подключает наблюдателя метрик
func (b *Body) SetObserver(o Observer) { b.observer = o }

// AddAcceleration добавляет ускорение на текущий шаг
func (b *Body) AddAcceleration(a mgl64.Vec3) {
	b.Acceleration = b.Acceleration.Add(a)
}

// CycleMode переключает режим физики по кругу
func (b *Body) CycleMode() {
	b.Mode = b.Mode.Next()
}

func (b *Body) dragCoefficient() float64 {
	if b.Mode == ModeNoclip {
		return noclipDrag
	}
	if b.Grounded {
		return b.cfg.GroundedDrag
	}
	return b.cfg.AirborneDrag
}

// Step выполняет один шаг интеграции длительностью dt секунд.
//
// Ранний выход только при покое без внешних сил: тело почти не движется,
// гравитация не действует и накопленное ускорение нулевое. Покоящееся тело
// с вводом или в падении интегрирует скорость, иначе оно не смогло бы
// стронуться с места. Не заменять на выход по одной лишь малой скорости.
func (b *Body) Step(dt float64) {
	if b.observer != nil {
		b.observer.ObserveStep()
	}

	deltaPosition := b.Velocity.Mul(dt)
	stationary := deltaPosition.LenSqr() < stationaryThresholdSq
	gravity := b.Mode == ModeWalking && !b.Grounded && b.world != nil

	// Покой без внешних сил: ничего не меняется
	if stationary && !gravity && b.Acceleration.LenSqr() == 0 {
		b.Acceleration = mgl64.Vec3{}
		return
	}

	if gravity {
		b.Acceleration[2] -= b.cfg.Gravity
	}

	// Сопротивление только по горизонтали
	k := b.dragCoefficient()
	b.Acceleration = b.Acceleration.Add(mgl64.Vec3{-k * b.Velocity.X(), -k * b.Velocity.Y(), 0})

	b.Velocity = b.Velocity.Add(b.Acceleration.Mul(dt))

	// Ограничение горизонтальной скорости, вертикальная не ограничивается
	horizontal := mgl64.Vec2{b.Velocity.X(), b.Velocity.Y()}
	if speed := horizontal.Len(); speed > b.cfg.SpeedLimit && speed > 0 {
		scale := b.cfg.SpeedLimit / speed
		b.Velocity[0] *= scale
		b.Velocity[1] *= scale
	}

	if !stationary {
		if b.Mode != ModeNoclip {
			deltaPosition = b.ResolveCollisions(deltaPosition)
		}
		b.Position = b.Position.Add(deltaPosition)
	}

	b.Acceleration = mgl64.Vec3{}
}
