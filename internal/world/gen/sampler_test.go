package gen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSubSeeds(t *testing.T) {
	s := DeriveSubSeeds(100)
	assert.Equal(t, SubSeeds{
		Terrain:     100,
		Humidity:    101,
		Temperature: 102,
		Hilliness:   103,
		Oceanness:   104,
		DirtDepth:   105,
	}, s)

	// Переполнение uint32 заворачивается
	wrapped := DeriveSubSeeds(math.MaxUint32)
	assert.Equal(t, uint32(math.MaxUint32), wrapped.Terrain)
	assert.Equal(t, uint32(0), wrapped.Humidity)
	assert.Equal(t, uint32(4), wrapped.DirtDepth)
}

func TestSample_OriginColumnGolden(t *testing.T) {
	// На начале координат все когерентные каналы равны нулю:
	// hill = 0.5, |raw| = 0 -> -8, высота 64 - 4 = 60
	for _, seed := range []uint32{0, 1, 42, 123456} {
		col := Sample(0, 0, seed)
		assert.Equal(t, 60, col.TerrainHeight, "seed %d", seed)
		assert.InDelta(t, 0.5, col.Humidity, 1e-12)
	}
}

func TestSample_ColumnGolden(t *testing.T) {
	// Колонны вдали от узлов решётки: здесь каждый канал шума вносит свой вклад
	cases := []struct {
		x, y int
		want ColumnDescriptor
	}{
		{37, -91, ColumnDescriptor{TerrainHeight: 71, DirtDepth: 3, Humidity: 0.5461243010895221, Temperature: 0.5621020935303285}},
		{-500, 260, ColumnDescriptor{TerrainHeight: 75, DirtDepth: 3, Humidity: 0.49325520709229875, Temperature: 0.3927408107378766}},
		{1234, 777, ColumnDescriptor{TerrainHeight: 66, DirtDepth: 4, Humidity: 0.42740687512718356, Temperature: 0.5335809763561886}},
		{80, 112, ColumnDescriptor{TerrainHeight: 66, DirtDepth: 3, Humidity: 0.4766467039635184, Temperature: 0.6619743436768646}},
	}

	for _, tc := range cases {
		got := Sample(tc.x, tc.y, 2024)
		assert.Equal(t, tc.want.TerrainHeight, got.TerrainHeight, "(%d, %d)", tc.x, tc.y)
		assert.Equal(t, tc.want.DirtDepth, got.DirtDepth, "(%d, %d)", tc.x, tc.y)
		assert.InDelta(t, tc.want.Humidity, got.Humidity, 1e-9, "(%d, %d)", tc.x, tc.y)
		assert.InDelta(t, tc.want.Temperature, got.Temperature, 1e-9, "(%d, %d)", tc.x, tc.y)
	}
}

func TestSample_Deterministic(t *testing.T) {
	for _, p := range [][2]int{{0, 0}, {17, -5}, {-300, 1200}, {4096, 4096}} {
		a := Sample(p[0], p[1], 9001)
		b := Sample(p[0], p[1], 9001)
		assert.Equal(t, a, b)
	}
}

func TestSample_Ranges(t *testing.T) {
	for x := -256; x < 256; x += 7 {
		for y := -256; y < 256; y += 11 {
			col := Sample(x, y, 77)
			assert.Contains(t, []int{3, 4}, col.DirtDepth)
			assert.GreaterOrEqual(t, col.Humidity, 0.0)
			assert.LessOrEqual(t, col.Humidity, 1.0)
			// 64 + hill*[-8, 64] - [0, 30]
			assert.GreaterOrEqual(t, col.TerrainHeight, int(BaseHeight-riverDepth-oceanDepth))
			assert.LessOrEqual(t, col.TerrainHeight, 2*BaseHeight)
		}
	}
}

func TestSample_SeedChangesTerrain(t *testing.T) {
	differs := false
	for x := 0; x < 512 && !differs; x += 16 {
		if Sample(x, x/2+3, 1) != Sample(x, x/2+3, 2) {
			differs = true
		}
	}
	assert.True(t, differs, "разные сиды должны давать разный рельеф")
}
