package entity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/simpleminer/internal/physics"
	"github.com/annel0/simpleminer/internal/vec"
	"github.com/annel0/simpleminer/internal/world"
	"github.com/annel0/simpleminer/internal/world/block"
)

// Множитель ускорения при спринте
const sprintMultiplier = 20.0

// Параметры взаимодействия с блоками
const (
	EyeHeight = 1.65 // Глаза над ступнями
	ReachDist = 16.0 // Дальность луча выбора блока
)

// BlockEditor - мир, в котором игрок копает и ставит блоки
type BlockEditor interface {
	RaycastVsBlocks(origin, dir mgl64.Vec3, maxDist float64) world.RaycastResult
	DigBlock(pos vec.Vec3) bool
	PlaceBlock(pos vec.Vec3, id block.BlockID) bool
}

// MovementInput - состояние управления на один кадр
type MovementInput struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Up       bool // Только вне режима WALKING
	Down     bool
	Sprint   bool

	// Одноразовые нажатия, сбрасываются после применения
	Jump      bool
	CycleMode bool
	Dig       bool // Выкопать блок под прицелом
	Place     bool // Поставить выбранный блок перед гранью под прицелом
}

// PlayerControl переводит ввод игрока в ускорение тела
type PlayerControl struct {
	Input        MovementInput
	YawDegrees   float64 // Поворот вокруг Z, 0 = +X
	PitchDegrees float64 // Положительный наклон смотрит вниз

	World    BlockEditor   // nil - копать и ставить нельзя
	Selected block.BlockID // Блок для установки
}

// SetInput задаёт ввод на следующий кадр
func (c *PlayerControl) SetInput(in MovementInput) {
	c.Input = in
}

// aimVectors возвращает направления "вперёд" и "влево" по углам обзора
func (c *PlayerControl) aimVectors() (forward, left mgl64.Vec3) {
	yaw := mgl64.DegToRad(c.YawDegrees)
	pitch := mgl64.DegToRad(c.PitchDegrees)
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cp, sp := math.Cos(pitch), math.Sin(pitch)

	forward = mgl64.Vec3{cy * cp, sy * cp, -sp}
	left = mgl64.Vec3{-sy, cy, 0}
	return forward, left
}

// Apply применяет ввод к телу: смена режима, ускорение движения, прыжок
func (c *PlayerControl) Apply(b *physics.Body) {
	in := c.Input
	c.Input.Jump = false
	c.Input.CycleMode = false
	c.Input.Dig = false
	c.Input.Place = false

	if in.CycleMode {
		b.CycleMode()
	}
	if in.Dig || in.Place {
		c.interact(b, in)
	}

	var local mgl64.Vec2
	if in.Forward {
		local[0]++
	}
	if in.Backward {
		local[0]--
	}
	if in.Left {
		local[1]++
	}
	if in.Right {
		local[1]--
	}
	if local.LenSqr() > 0 {
		local = local.Normalize()
	}

	forward, left := c.aimVectors()
	move := forward.Mul(local[0]).Add(left.Mul(local[1]))

	if b.Mode == physics.ModeWalking {
		move[2] = 0
		if move.LenSqr() > 0 {
			move = move.Normalize()
		}
	} else {
		if in.Up {
			move[2]++
		}
		if in.Down {
			move[2]--
		}
	}

	sprint := 1.0
	if in.Sprint {
		sprint = sprintMultiplier
	}

	cfg := b.Config()
	drag, accel := cfg.AirborneDrag, cfg.AirborneAcceleration
	if b.Grounded {
		drag, accel = cfg.GroundedDrag, cfg.GroundedAcceleration
	}
	b.AddAcceleration(move.Mul(sprint * drag * accel))

	if in.Jump && b.Mode == physics.ModeWalking && b.Grounded {
		b.Velocity[2] += cfg.JumpImpulse
	}
}

// Aim возвращает луч взгляда: точку глаз и направление
func (c *PlayerControl) Aim(b *physics.Body) (origin, dir mgl64.Vec3) {
	forward, _ := c.aimVectors()
	return b.Position.Add(mgl64.Vec3{0, 0, EyeHeight}), forward
}

// interact копает или ставит блок по лучу взгляда
func (c *PlayerControl) interact(b *physics.Body, in MovementInput) {
	if c.World == nil {
		return
	}
	origin, dir := c.Aim(b)
	hit := c.World.RaycastVsBlocks(origin, dir, ReachDist)
	if !hit.DidImpact {
		return
	}

	if in.Dig {
		c.World.DigBlock(hit.HitBlock)
		return
	}

	target := hit.PlacementBlock()
	if overlapsBody(b, target) {
		return
	}
	c.World.PlaceBlock(target, c.Selected)
}

// overlapsBody проверяет, пересекает ли блок габариты тела
func overlapsBody(b *physics.Body, cell vec.Vec3) bool {
	mins, maxs := b.Bounds.AABB(b.Position)
	lo := [3]float64{float64(cell.X), float64(cell.Y), float64(cell.Z)}
	for i := 0; i < 3; i++ {
		if mins[i] >= lo[i]+1 || maxs[i] <= lo[i] {
			return false
		}
	}
	return true
}
