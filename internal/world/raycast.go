package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/simpleminer/internal/vec"
)

// RaycastResult - результат луча против блоков мира
type RaycastResult struct {
	DidImpact      bool
	ImpactDistance float64
	ImpactNormal   mgl64.Vec3
	ImpactPosition mgl64.Vec3
	HitBlock       vec.Vec3 // Твёрдый блок, в который попал луч
}

// PlacementBlock - соседний с HitBlock блок со стороны, откуда пришёл луч
func (r RaycastResult) PlacementBlock() vec.Vec3 {
	return r.HitBlock.Add(vec.Vec3{
		X: int(math.Round(r.ImpactNormal.X())),
		Y: int(math.Round(r.ImpactNormal.Y())),
		Z: int(math.Round(r.ImpactNormal.Z())),
	})
}

// RaycastVsBlocks пускает луч из origin в направлении dir не дальше maxDist.
// Незагруженные чанки прозрачны.
func (wm *WorldManager) RaycastVsBlocks(origin, dir mgl64.Vec3, maxDist float64) RaycastResult {
	return RaycastVoxels(wm.IsSolid, origin, dir, maxDist)
}

// RaycastVoxels обходит воксели вдоль луча (Amanatides-Woo) и останавливается
// на первом твёрдом. Если луч начинается внутри твёрдого блока, попадание
// на расстоянии 0 с нормалью против главной оси направления.
func RaycastVoxels(isSolid func(vec.Vec3) bool, origin, dir mgl64.Vec3, maxDist float64) RaycastResult {
	if maxDist <= 0 || dir.Len() == 0 {
		return RaycastResult{}
	}
	dir = dir.Normalize()

	start := vec.FloorVec3(origin)
	cell := [3]int{start.X, start.Y, start.Z}

	if isSolid(start) {
		return RaycastResult{
			DidImpact:      true,
			ImpactNormal:   dominantAxisNormal(dir),
			ImpactPosition: origin,
			HitBlock:       start,
		}
	}

	var step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		switch {
		case dir[i] > 0:
			step[i] = 1
			tMax[i] = (float64(cell[i]+1) - origin[i]) / dir[i]
			tDelta[i] = 1 / dir[i]
		case dir[i] < 0:
			step[i] = -1
			tMax[i] = (origin[i] - float64(cell[i])) / -dir[i]
			tDelta[i] = -1 / dir[i]
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	for {
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}

		t := tMax[axis]
		if t > maxDist {
			return RaycastResult{}
		}

		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]

		hit := vec.Vec3{X: cell[0], Y: cell[1], Z: cell[2]}
		if isSolid(hit) {
			var normal mgl64.Vec3
			normal[axis] = float64(-step[axis])
			return RaycastResult{
				DidImpact:      true,
				ImpactDistance: t,
				ImpactNormal:   normal,
				ImpactPosition: origin.Add(dir.Mul(t)),
				HitBlock:       hit,
			}
		}
	}
}

func dominantAxisNormal(dir mgl64.Vec3) mgl64.Vec3 {
	axis := 0
	for i := 1; i < 3; i++ {
		if math.Abs(dir[i]) > math.Abs(dir[axis]) {
			axis = i
		}
	}
	var n mgl64.Vec3
	if dir[axis] > 0 {
		n[axis] = -1
	} else {
		n[axis] = 1
	}
	return n
}
