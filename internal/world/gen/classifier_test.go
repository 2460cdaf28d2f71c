package gen

import (
	"testing"

	"github.com/annel0/simpleminer/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestOreForNoise(t *testing.T) {
	tests := []struct {
		v    float64
		want BlockType
		ok   bool
	}{
		{0, BlockDiamondOre, true},
		{0.00009, BlockDiamondOre, true},
		{0.0001, BlockGoldOre, true},
		{0.0049, BlockGoldOre, true},
		{0.005, BlockIronOre, true},
		{0.0199, BlockIronOre, true},
		{0.02, BlockCoalOre, true},
		{0.0499, BlockCoalOre, true},
		{0.05, BlockStone, false},
		{0.9, BlockStone, false},
	}
	for _, tt := range tests {
		got, ok := OreForNoise(tt.v)
		assert.Equal(t, tt.want, got, "v=%v", tt.v)
		assert.Equal(t, tt.ok, ok, "v=%v", tt.v)
	}
}

func TestIceDepth(t *testing.T) {
	assert.Equal(t, 64, IceDepth(0.5))
	assert.Equal(t, 64, IceDepth(0.37))
	assert.Equal(t, 56, IceDepth(0.0))
	assert.Equal(t, 56, IceDepth(-1.0))
	assert.Equal(t, 59, IceDepth(0.1))
}

func TestClassify_AboveSurface(t *testing.T) {
	warm := ColumnDescriptor{TerrainHeight: 50, DirtDepth: 3, Humidity: 0.8, Temperature: 0.5}
	assert.Equal(t, BlockWater, Classify(vec.Vec3{Z: 60}, warm, IceDepth(warm.Temperature)))
	assert.Equal(t, BlockAir, Classify(vec.Vec3{Z: SeaLevel}, warm, IceDepth(warm.Temperature)))
	assert.Equal(t, BlockAir, Classify(vec.Vec3{Z: 100}, warm, IceDepth(warm.Temperature)))

	cold := ColumnDescriptor{TerrainHeight: 50, DirtDepth: 3, Humidity: 0.8, Temperature: 0.1}
	ice := IceDepth(cold.Temperature)
	assert.Equal(t, BlockIce, Classify(vec.Vec3{Z: 60}, cold, ice))
	assert.Equal(t, BlockWater, Classify(vec.Vec3{Z: ice}, cold, ice))
	assert.Equal(t, BlockWater, Classify(vec.Vec3{Z: 51}, cold, ice))
}

func TestClassify_Surface(t *testing.T) {
	tests := []struct {
		name     string
		height   int
		humidity float64
		want     BlockType
	}{
		{"сухо", 80, 0.3, BlockSand},
		{"пляж", 64, 0.6, BlockSand},
		{"высоко", 70, 0.6, BlockGrass},
		{"влажно", 60, 0.8, BlockGrass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := ColumnDescriptor{TerrainHeight: tt.height, DirtDepth: 3, Humidity: tt.humidity, Temperature: 0.5}
			got := Classify(vec.Vec3{Z: tt.height}, col, IceDepth(col.Temperature))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_SubsurfaceBand(t *testing.T) {
	// Влажность 0: глубина песка 6 перекрывает всю полосу грунта
	dry := ColumnDescriptor{TerrainHeight: 70, DirtDepth: 4, Humidity: 0.0, Temperature: 0.5}
	for z := 66; z < 70; z++ {
		assert.Equal(t, BlockSand, Classify(vec.Vec3{Z: z}, dry, 64), "z=%d", z)
	}

	// Влажность выше 0.4: песка нет
	wet := ColumnDescriptor{TerrainHeight: 70, DirtDepth: 3, Humidity: 0.9, Temperature: 0.5}
	for z := 67; z < 70; z++ {
		assert.Equal(t, BlockDirt, Classify(vec.Vec3{Z: z}, wet, 64), "z=%d", z)
	}

	// Промежуточная влажность: песок сверху, грунт снизу
	mid := ColumnDescriptor{TerrainHeight: 70, DirtDepth: 4, Humidity: 0.2, Temperature: 0.5}
	assert.Equal(t, BlockSand, Classify(vec.Vec3{Z: 69}, mid, 64))
	assert.Equal(t, BlockSand, Classify(vec.Vec3{Z: 67}, mid, 64))
	assert.Equal(t, BlockDirt, Classify(vec.Vec3{Z: 66}, mid, 64))
}

func TestClassify_Deep(t *testing.T) {
	col := ColumnDescriptor{TerrainHeight: 70, DirtDepth: 3, Humidity: 0.9, Temperature: 0.5}
	assert.Equal(t, BlockObsidian, Classify(vec.Vec3{X: 5, Y: 5, Z: 1}, col, 64))
	assert.Equal(t, BlockLava, Classify(vec.Vec3{X: 5, Y: 5, Z: 0}, col, 64))

	for z := 2; z < 67; z++ {
		got := Classify(vec.Vec3{X: 3, Y: 9, Z: z}, col, 64)
		assert.Contains(t, []BlockType{BlockStone, BlockCoalOre, BlockIronOre, BlockGoldOre, BlockDiamondOre}, got)
	}
}

func TestClassify_LayeringInvariants(t *testing.T) {
	for x := -64; x < 64; x += 5 {
		for y := -64; y < 64; y += 9 {
			col := Sample(x, y, 31337)
			ice := IceDepth(col.Temperature)

			surface := Classify(vec.Vec3{X: x, Y: y, Z: col.TerrainHeight}, col, ice)
			assert.Contains(t, []BlockType{BlockGrass, BlockSand}, surface)

			for z := col.TerrainHeight - 1; z >= 0; z-- {
				got := Classify(vec.Vec3{X: x, Y: y, Z: z}, col, ice)
				assert.NotEqual(t, BlockWater, got)
				assert.NotEqual(t, BlockIce, got)
				assert.NotEqual(t, BlockAir, got)
			}
		}
	}
}

func TestBlockTypeName(t *testing.T) {
	assert.Equal(t, "air", BlockAir.Name())
	assert.Equal(t, "diamond_ore", BlockDiamondOre.Name())
	assert.Equal(t, "unknown", BlockType(200).String())
}
