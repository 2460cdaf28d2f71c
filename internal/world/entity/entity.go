package entity

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/annel0/simpleminer/internal/physics"
)

// EntityType представляет тип сущности
type EntityType uint16

const (
	EntityTypePlayer EntityType = iota // Управляемая сущность
	EntityTypeItem                     // Предмет: только физика
)

func (t EntityType) String() string {
	switch t {
	case EntityTypePlayer:
		return "player"
	case EntityTypeItem:
		return "item"
	default:
		return "unknown"
	}
}

// Entity - сущность мира: физическое тело и необязательное управление
type Entity struct {
	ID      uuid.UUID
	Type    EntityType
	Body    *physics.Body
	Control *PlayerControl // nil для сущностей без управления
	Active  bool
}

// NewEntity создаёт сущность с новым ID
func NewEntity(entityType EntityType, body *physics.Body) *Entity {
	return &Entity{
		ID:     uuid.New(),
		Type:   entityType,
		Body:   body,
		Active: true,
	}
}

// NewPlayer создаёт игрока в позиции position
func NewPlayer(position mgl64.Vec3, cfg physics.Config, world physics.Raycaster) *Entity {
	e := NewEntity(EntityTypePlayer, physics.NewBody(position, cfg, world))
	e.Control = &PlayerControl{}
	return e
}

// Update выполняет один кадр: ввод -> ускорение, шаг физики, проверка опоры
func (e *Entity) Update(dt float64) {
	if !e.Active || e.Body == nil {
		return
	}
	if e.Control != nil {
		e.Control.Apply(e.Body)
	}
	e.Body.Step(dt)
	e.Body.UpdateGrounded()
}
