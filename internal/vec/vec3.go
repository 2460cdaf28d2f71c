package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 представляет позицию блока в мире. Z - вертикальная ось.
type Vec3 struct {
	X int
	Y int
	Z int
}

// FloorVec3 возвращает блок, содержащий точку p
func FloorVec3(p mgl64.Vec3) Vec3 {
	return Vec3{
		X: int(math.Floor(p.X())),
		Y: int(math.Floor(p.Y())),
		Z: int(math.Floor(p.Z())),
	}
}

// ToVec2 преобразует Vec3 в Vec2, отбрасывая вертикаль
func (v Vec3) ToVec2() Vec2 {
	return Vec2{
		X: v.X,
		Y: v.Y,
	}
}

// ChunkCoords возвращает координаты колонны чанков, содержащей блок
func (v Vec3) ChunkCoords() Vec2 {
	return v.ToVec2().ToChunkCoords()
}

// LocalInChunk возвращает локальные координаты блока внутри чанка (Z не меняется)
func (v Vec3) LocalInChunk() Vec3 {
	return Vec3{X: v.X & 0xF, Y: v.Y & 0xF, Z: v.Z}
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}
