package util

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/aquilax/go-perlin"
	"github.com/cespare/xxhash/v2"
)

// Параметры октав по умолчанию для всех каналов генерации
const (
	DefaultPersistence = 0.5
	DefaultLacunarity  = 2.0
)

// perlinKey идентифицирует набор параметров генератора Перлина
type perlinKey struct {
	octaves     int
	persistence float64
	lacunarity  float64
	seed        uint32
}

// perlinCache хранит генераторы по параметрам. Генератор после создания
// только читается, поэтому безопасен для параллельных воркеров.
var perlinCache sync.Map

func perlinFor(octaves int, persistence, lacunarity float64, seed uint32) *perlin.Perlin {
	key := perlinKey{octaves: octaves, persistence: persistence, lacunarity: lacunarity, seed: seed}
	if p, ok := perlinCache.Load(key); ok {
		return p.(*perlin.Perlin)
	}

	// alpha в go-perlin - делитель амплитуды на каждой октаве, т.е. 1/persistence
	alpha := 2.0
	if persistence > 0 {
		alpha = 1.0 / persistence
	}
	p := perlin.NewPerlin(alpha, lacunarity, int32(octaves), int64(seed))

	actual, _ := perlinCache.LoadOrStore(key, p)
	return actual.(*perlin.Perlin)
}

// amplitudeSum возвращает сумму амплитуд всех октав
func amplitudeSum(octaves int, persistence float64) float64 {
	sum := 0.0
	amp := 1.0
	for i := 0; i < octaves; i++ {
		sum += amp
		amp *= persistence
	}
	return sum
}

// renormalize растягивает нормированный шум к краям диапазона [-1, 1]
func renormalize(v float64) float64 {
	v = Clamp(v, -1, 1)
	return SmoothStep3(v*0.5+0.5)*2 - 1
}

// CoherentNoise2D возвращает сглаженный фрактальный шум Перлина в диапазоне [-1, 1].
// scale задаёт размер "волны" в блоках.
func CoherentNoise2D(x, y, scale float64, octaves int, persistence, lacunarity float64, seed uint32) float64 {
	if octaves <= 0 || scale == 0 {
		return 0
	}
	p := perlinFor(octaves, persistence, lacunarity, seed)
	return renormalize(p.Noise2D(x/scale, y/scale) / amplitudeSum(octaves, persistence))
}

// CoherentNoise3D - трёхмерный вариант CoherentNoise2D
func CoherentNoise3D(x, y, z, scale float64, octaves int, persistence, lacunarity float64, seed uint32) float64 {
	if octaves <= 0 || scale == 0 {
		return 0
	}
	p := perlinFor(octaves, persistence, lacunarity, seed)
	return renormalize(p.Noise3D(x/scale, y/scale, z/scale) / amplitudeSum(octaves, persistence))
}

// hashCoords детерминированно хеширует целочисленные координаты и сид.
// Кодировка little-endian фиксирована, результат одинаков на всех платформах.
func hashCoords(x, y, z int32, seed uint32) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(x))
	binary.LittleEndian.PutUint32(buf[4:], uint32(y))
	binary.LittleEndian.PutUint32(buf[8:], uint32(z))
	binary.LittleEndian.PutUint32(buf[12:], seed)
	return xxhash.Sum64(buf[:])
}

// toUnit переводит 53 старших бита хеша в [0, 1)
func toUnit(h uint64) float64 {
	return float64(h>>11) / float64(uint64(1)<<53)
}

// RawNoise2DZeroToOne - некоррелированный шум по целой сетке в диапазоне [0, 1)
func RawNoise2DZeroToOne(x, y int, seed uint32) float64 {
	return toUnit(hashCoords(int32(x), int32(y), 0, seed))
}

// RawNoise2DNegOneToOne - некоррелированный шум в диапазоне [-1, 1)
func RawNoise2DNegOneToOne(x, y int, seed uint32) float64 {
	return RawNoise2DZeroToOne(x, y, seed)*2 - 1
}

// RawNoise3DZeroToOne - трёхмерный некоррелированный шум в диапазоне [0, 1)
func RawNoise3DZeroToOne(x, y, z int, seed uint32) float64 {
	// z сдвигаем, чтобы срез z=0 не совпадал с двумерным шумом того же сида
	return toUnit(hashCoords(int32(x), int32(y), int32(z)^math.MinInt32, seed))
}
