package gen

import (
	"math"

	"github.com/annel0/simpleminer/internal/util"
	"github.com/annel0/simpleminer/internal/vec"
	"github.com/annel0/simpleminer/internal/world/block"
)

// BlockType - тип блока, который выбирает классификатор
type BlockType uint8

const (
	BlockAir BlockType = iota
	BlockWater
	BlockIce
	BlockGrass
	BlockSand
	BlockDirt
	BlockStone
	BlockObsidian
	BlockLava
	BlockCoalOre
	BlockIronOre
	BlockGoldOre
	BlockDiamondOre

	blockTypeCount
)

var blockTypeNames = [blockTypeCount]string{
	BlockAir:        block.NameAir,
	BlockWater:      block.NameWater,
	BlockIce:        block.NameIce,
	BlockGrass:      block.NameGrass,
	BlockSand:       block.NameSand,
	BlockDirt:       block.NameDirt,
	BlockStone:      block.NameStone,
	BlockObsidian:   block.NameObsidian,
	BlockLava:       block.NameLava,
	BlockCoalOre:    block.NameCoalOre,
	BlockIronOre:    block.NameIronOre,
	BlockGoldOre:    block.NameGoldOre,
	BlockDiamondOre: block.NameDiamondOre,
}

// Name возвращает имя блока в реестре (пространство simpleminer)
func (t BlockType) Name() string {
	if t >= blockTypeCount {
		return ""
	}
	return blockTypeNames[t]
}

func (t BlockType) String() string {
	if name := t.Name(); name != "" {
		return name
	}
	return "unknown"
}

// Пороговые значения классификатора
const (
	iceTemperatureCutoff = 0.38
	iceTemperatureMax    = 0.37
	iceTemperatureMin    = 0.0
	iceDepthMin          = 0.0
	iceDepthMax          = 8.0

	minSandHumidity = 0.4
	maxSandHumidity = 0.7

	// Диапазон влажности перевёрнут (0.4 -> 0.0), так сложилось исторически
	minSandDepthHumidity = 0.4
	maxSandDepthHumidity = 0.0
	sandDepthMin         = 0.0
	sandDepthMax         = 6.0

	obsidianZ = 1
	lavaZ     = 0

	diamondChance = 0.0001
	goldChance    = 0.005
	ironChance    = 0.02
	coalChance    = 0.05
)

// IceDepth возвращает нижнюю границу льда для колонны с данной температурой.
// Не зависит от z, поэтому считается один раз на колонну.
func IceDepth(temperature float64) int {
	depth := util.RangeMapClamped(temperature, iceTemperatureMax, iceTemperatureMin, iceDepthMin, iceDepthMax)
	return BaseHeight - int(math.Floor(depth))
}

// OreForNoise выбирает руду по значению шума в [0, 1].
// Проверка идёт от самой редкой руды к самой частой.
func OreForNoise(v float64) (BlockType, bool) {
	switch {
	case v < diamondChance:
		return BlockDiamondOre, true
	case v < goldChance:
		return BlockGoldOre, true
	case v < ironChance:
		return BlockIronOre, true
	case v < coalChance:
		return BlockCoalOre, true
	}
	return BlockStone, false
}

// oreNoise - некоррелированный 3D шум, сид не используется
func oreNoise(pos vec.Vec3) float64 {
	return util.RawNoise3DZeroToOne(pos.X, pos.Y, pos.Z, 0)
}

// Classify определяет тип блока в мировой позиции pos.
// Правила проверяются сверху вниз, срабатывает первое подходящее.
func Classify(pos vec.Vec3, col ColumnDescriptor, iceDepth int) BlockType {
	z := pos.Z
	h := col.TerrainHeight

	// Над поверхностью: воздух, вода или лёд
	if z > h {
		if z < SeaLevel {
			if col.Temperature < iceTemperatureCutoff && z > iceDepth {
				return BlockIce
			}
			return BlockWater
		}
		return BlockAir
	}

	// Поверхность
	if z == h {
		if col.Humidity < minSandHumidity {
			return BlockSand
		}
		if col.Humidity < maxSandHumidity && h <= BaseHeight {
			return BlockSand
		}
		return BlockGrass
	}

	dirtTopZ := h - col.DirtDepth
	if z >= dirtTopZ {
		sandDepth := util.RangeMapClamped(col.Humidity, minSandDepthHumidity, maxSandDepthHumidity, sandDepthMin, sandDepthMax)
		sandTopZ := h - int(math.Floor(sandDepth))
		if z >= sandTopZ {
			return BlockSand
		}
		return BlockDirt
	}

	// Глубоко под землёй
	switch z {
	case obsidianZ:
		return BlockObsidian
	case lavaZ:
		return BlockLava
	}

	if ore, ok := OreForNoise(oreNoise(pos)); ok {
		return ore
	}
	return BlockStone
}
