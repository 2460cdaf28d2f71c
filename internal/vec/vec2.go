package vec

// Vec2 представляет 2D координаты (горизонтальная плоскость XY)
type Vec2 struct {
	X, Y int
}

// ToChunkCoords преобразует глобальные координаты в координаты чанка
func (v Vec2) ToChunkCoords() Vec2 {
	return Vec2{X: v.X >> 4, Y: v.Y >> 4} // Деление на 16
}

// ChunkOrigin возвращает глобальные координаты угла чанка с координатами v
func (v Vec2) ChunkOrigin() Vec2 {
	return Vec2{X: v.X << 4, Y: v.Y << 4}
}
