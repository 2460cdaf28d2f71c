package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Размеры игрока и отступы лучей, в блоках
const (
	PlayerWidth  = 0.6
	PlayerHeight = 1.8

	// CornerOffset - отступ углов внутрь коробки, чтобы лучи не скользили по граням
	CornerOffset = 0.1
	// RaycastOffset - запас длины луча и высота лучей опоры над ступнями
	RaycastOffset = 0.2
)

// Bounds - габариты коллайдера сущности. Начало координат - центр ступней.
type Bounds struct {
	Width  float64
	Height float64
}

// PlayerBounds возвращает габариты игрока
func PlayerBounds() Bounds {
	return Bounds{Width: PlayerWidth, Height: PlayerHeight}
}

// AABB возвращает коробку коллайдера в мировых координатах
func (b Bounds) AABB(position mgl64.Vec3) (mins, maxs mgl64.Vec3) {
	half := b.Width * 0.5
	mins = position.Add(mgl64.Vec3{-half, -half, 0})
	maxs = position.Add(mgl64.Vec3{half, half, b.Height})
	return mins, maxs
}

func (b Bounds) insetHalfWidth() float64 {
	return b.Width*0.5 - CornerOffset
}

// CollisionCorners возвращает 12 локальных углов: 3 высоты по 4 угла
func (b Bounds) CollisionCorners() [12]mgl64.Vec3 {
	h := b.insetHalfWidth()
	heights := [3]float64{CornerOffset, b.Height * 0.5, b.Height - CornerOffset}

	var corners [12]mgl64.Vec3
	for layer, z := range heights {
		corners[layer*4+0] = mgl64.Vec3{-h, -h, z}
		corners[layer*4+1] = mgl64.Vec3{+h, -h, z}
		corners[layer*4+2] = mgl64.Vec3{+h, +h, z}
		corners[layer*4+3] = mgl64.Vec3{-h, +h, z}
	}
	return corners
}

// GroundCorners возвращает 4 нижних угла для проверки опоры
func (b Bounds) GroundCorners() [4]mgl64.Vec3 {
	h := b.insetHalfWidth()
	return [4]mgl64.Vec3{
		{-h, -h, RaycastOffset},
		{+h, -h, RaycastOffset},
		{+h, +h, RaycastOffset},
		{-h, +h, RaycastOffset},
	}
}

var axisNames = [3]string{"x", "y", "z"}

// ResolveCollisions пускает 12 угловых лучей по направлению перемещения и
// обнуляет компоненты скорости и перемещения по заблокированным осям.
// Оси разрешаются независимо, что позволяет скользить вдоль стены.
func (b *Body) ResolveCollisions(deltaPosition mgl64.Vec3) mgl64.Vec3 {
	if deltaPosition.LenSqr() < stationaryThresholdSq || b.world == nil {
		return deltaPosition
	}

	rayDir := deltaPosition.Normalize()
	rayDist := deltaPosition.Len() + RaycastOffset

	// 1 - столкновения нет
	closest := [3]float64{1, 1, 1}

	for _, corner := range b.Bounds.CollisionCorners() {
		res := b.world.RaycastVsBlocks(b.Position.Add(corner), rayDir, rayDist)
		if !res.DidImpact {
			continue
		}
		// Грань, обращённая от луча, уже пройдена
		if res.ImpactNormal.Dot(rayDir) >= 0 {
			continue
		}

		fraction := res.ImpactDistance / rayDist
		for axis := 0; axis < 3; axis++ {
			if math.Abs(res.ImpactNormal[axis]) > 0.5 && fraction < closest[axis] {
				closest[axis] = fraction
			}
		}
	}

	for axis := 0; axis < 3; axis++ {
		if closest[axis] < 1 {
			b.Velocity[axis] = 0
			deltaPosition[axis] = 0
			if b.observer != nil {
				b.observer.ObserveCollision(axisNames[axis])
			}
		}
	}
	return deltaPosition
}
