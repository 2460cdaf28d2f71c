package physics

import "github.com/go-gl/mathgl/mgl64"

var down = mgl64.Vec3{0, 0, -1}

// IsGrounded проверяет опору четырьмя короткими лучами вниз от нижних углов.
// Вне режима WALKING и без мира опоры нет.
func (b *Body) IsGrounded() bool {
	if b.Mode != ModeWalking || b.world == nil {
		return false
	}

	for _, corner := range b.Bounds.GroundCorners() {
		res := b.world.RaycastVsBlocks(b.Position.Add(corner), down, 2*RaycastOffset)
		if res.DidImpact {
			return true
		}
	}
	return false
}

// UpdateGrounded пересчитывает флаг опоры, вызывается после Step каждый кадр
func (b *Body) UpdateGrounded() {
	b.Grounded = b.IsGrounded()
}
