package gen

import (
	"math"

	"github.com/annel0/simpleminer/internal/util"
)

// Высоты мира
const (
	SeaLevel   = 64 // Уровень моря (z)
	BaseHeight = 64 // Базовая высота рельефа
)

// Константы рельефа
const (
	riverDepth            = 8.0
	oceanDepth            = 30.0
	oceanStartThreshold   = 0.0
	oceanEndThreshold     = 0.5
	temperatureRawScale   = 0.0075
	minDirtDepth          = 3
	maxDirtDepth          = 4
	terrainNoiseScale     = 200.0
	terrainNoiseOctaves   = 5
	humidityNoiseScale    = 800.0
	humidityNoiseOctaves  = 4
	temperatureNoiseScale = 400.0
	temperatureOctaves    = 4
	hillinessNoiseScale   = 250.0
	hillinessNoiseOctaves = 4
	oceannessNoiseScale   = 600.0
	oceannessNoiseOctaves = 3
)

// ColumnDescriptor описывает одну колонну (x, y) мира
type ColumnDescriptor struct {
	TerrainHeight int
	DirtDepth     int
	Humidity      float64 // [0, 1]
	Temperature   float64 // обычно [0, 1], но не ограничена
}

// SubSeeds - сиды отдельных каналов шума.
// Порядок каналов фиксирован: его изменение меняет все миры с тем же сидом.
type SubSeeds struct {
	Terrain     uint32
	Humidity    uint32
	Temperature uint32
	Hilliness   uint32
	Oceanness   uint32
	DirtDepth   uint32
}

// DeriveSubSeeds выводит сиды каналов последовательным инкрементом
func DeriveSubSeeds(seed uint32) SubSeeds {
	return SubSeeds{
		Terrain:     seed,
		Humidity:    seed + 1,
		Temperature: seed + 2,
		Hilliness:   seed + 3,
		Oceanness:   seed + 4,
		DirtDepth:   seed + 5,
	}
}

func coherent(x, y, scale float64, octaves int, seed uint32) float64 {
	return util.CoherentNoise2D(x, y, scale, octaves, util.DefaultPersistence, util.DefaultLacunarity, seed)
}

// Sample вычисляет описание колонны в мировых координатах.
// Одинаковые аргументы всегда дают побитово одинаковый результат.
func Sample(globalX, globalY int, seed uint32) ColumnDescriptor {
	return sampleWithSeeds(globalX, globalY, DeriveSubSeeds(seed))
}

func sampleWithSeeds(globalX, globalY int, s SubSeeds) ColumnDescriptor {
	fx, fy := float64(globalX), float64(globalY)

	humidity := 0.5 + 0.5*coherent(fx, fy, humidityNoiseScale, humidityNoiseOctaves, s.Humidity)

	temperature := util.RawNoise2DNegOneToOne(globalX, globalY, s.Temperature) * temperatureRawScale
	temperature += 0.5 + 0.5*coherent(fx, fy, temperatureNoiseScale, temperatureOctaves, s.Temperature)

	rawHill := coherent(fx, fy, hillinessNoiseScale, hillinessNoiseOctaves, s.Hilliness)
	hill := util.SmoothStep3(util.RangeMap(rawHill, -1, 1, 0, 1))

	ocean := coherent(fx, fy, oceannessNoiseScale, oceannessNoiseOctaves, s.Oceanness)
	rawTerrain := coherent(fx, fy, terrainNoiseScale, terrainNoiseOctaves, s.Terrain)

	// |rawTerrain| около нуля даёт русла рек
	heightF := BaseHeight + hill*util.RangeMap(math.Abs(rawTerrain), 0, 1, -riverDepth, BaseHeight)

	if ocean > oceanStartThreshold {
		blend := util.RangeMapClamped(ocean, oceanStartThreshold, oceanEndThreshold, 0, 1)
		heightF -= util.Lerp(0, oceanDepth, blend)
	}

	dirtPct := util.RawNoise2DZeroToOne(globalX, globalY, s.DirtDepth)
	dirtDepth := minDirtDepth + int(math.Round(dirtPct*(maxDirtDepth-minDirtDepth)))

	return ColumnDescriptor{
		TerrainHeight: int(math.Floor(heightF)),
		DirtDepth:     dirtDepth,
		Humidity:      humidity,
		Temperature:   temperature,
	}
}
