package gen

import (
	"errors"
	"reflect"
	"time"

	"github.com/annel0/simpleminer/internal/logging"
	"github.com/annel0/simpleminer/internal/vec"
	"github.com/annel0/simpleminer/internal/world/block"
)

// Размеры генерируемого чанка
const (
	ChunkSizeX = 16
	ChunkSizeY = 16
	ChunkSizeZ = 128
)

// ErrNilChunk возвращается, если генератору передан nil вместо чанка
var ErrNilChunk = errors.New("gen: nil chunk")

// ChunkTarget - чанк, в который пишет генератор
type ChunkTarget interface {
	SetBlock(x, y, z int, id block.BlockID)
	LocalToWorld(x, y, z int) vec.Vec3
	SetGenerated(generated bool)
	MarkDirty()
}

// Observer получает длительность генерации каждого чанка (метрики)
type Observer interface {
	ObserveChunkGenerated(d time.Duration)
}

// Option настраивает генератор
type Option func(*SimpleMinerGenerator)

// WithLogger задаёт логгер генератора
func WithLogger(l *logging.Logger) Option {
	return func(g *SimpleMinerGenerator) { g.logger = l }
}

// WithObserver подключает наблюдателя метрик
func WithObserver(o Observer) Option {
	return func(g *SimpleMinerGenerator) { g.observer = o }
}

// SimpleMinerGenerator - детерминированный генератор рельефа с биомами, реками,
// океанами и рудами. Один экземпляр можно использовать из нескольких воркеров:
// общее состояние после создания только читается.
type SimpleMinerGenerator struct {
	seed     uint32
	ids      *BlockIDCache
	logger   *logging.Logger
	observer Observer
}

var supportedFeatures = map[string]bool{
	"biomes": true,
	"rivers": true,
	"oceans": true,
	"ores":   true,
}

// NewSimpleMinerGenerator создаёт генератор и заполняет кэш ID блоков.
// Кэш строится здесь, до запуска воркеров.
func NewSimpleMinerGenerator(reg BlockLookup, opts ...Option) *SimpleMinerGenerator {
	g := &SimpleMinerGenerator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logging.GetWorldgenLogger()
	}

	g.ids = NewBlockIDCache(reg)
	g.logger.Info("Кэш блоков инициализирован: %d блоков", g.ids.Len())
	return g
}

// Initialize задаёт сид, используемый когда GenerateChunk получает нулевой сид
func (g *SimpleMinerGenerator) Initialize(seed uint32) {
	g.seed = seed
}

// Seed возвращает сохранённый сид
func (g *SimpleMinerGenerator) Seed() uint32 { return g.seed }

func (g *SimpleMinerGenerator) Name() string        { return "simpleminer_generator" }
func (g *SimpleMinerGenerator) DisplayName() string { return "SimpleMiner Generator" }
func (g *SimpleMinerGenerator) Description() string {
	return "Generates varied terrain with humidity/temperature-based biomes, rivers, oceans, and underground ores"
}
func (g *SimpleMinerGenerator) SeaLevel() int32   { return SeaLevel }
func (g *SimpleMinerGenerator) BaseHeight() int32 { return BaseHeight }

// SupportsFeature сообщает, умеет ли генератор данную особенность рельефа
func (g *SimpleMinerGenerator) SupportsFeature(name string) bool {
	return supportedFeatures[name]
}

// isNilTarget ловит и пустой интерфейс, и интерфейс с nil-указателем внутри
func isNilTarget(chunk ChunkTarget) bool {
	if chunk == nil {
		return true
	}
	v := reflect.ValueOf(chunk)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// GenerateChunk заполняет все блоки чанка (chunkX, chunkZ).
// Нулевой worldSeed заменяется сидом из Initialize.
func (g *SimpleMinerGenerator) GenerateChunk(chunk ChunkTarget, chunkX, chunkZ int32, worldSeed uint32) error {
	if isNilTarget(chunk) {
		g.logger.Error("GenerateChunk: передан nil чанк (%d, %d)", chunkX, chunkZ)
		return ErrNilChunk
	}

	start := time.Now()

	seed := worldSeed
	if seed == 0 {
		seed = g.seed
	}
	seeds := DeriveSubSeeds(seed)

	// Проход 1: описания колонн, индекс y*ChunkSizeX + x
	var columns [ChunkSizeX * ChunkSizeY]ColumnDescriptor
	var iceDepths [ChunkSizeX * ChunkSizeY]int
	baseX := int(chunkX) * ChunkSizeX
	baseY := int(chunkZ) * ChunkSizeY
	for y := 0; y < ChunkSizeY; y++ {
		for x := 0; x < ChunkSizeX; x++ {
			idx := y*ChunkSizeX + x
			columns[idx] = sampleWithSeeds(baseX+x, baseY+y, seeds)
			iceDepths[idx] = IceDepth(columns[idx].Temperature)
		}
	}

	// Проход 2: каждый воксель
	for z := 0; z < ChunkSizeZ; z++ {
		for y := 0; y < ChunkSizeY; y++ {
			for x := 0; x < ChunkSizeX; x++ {
				idx := y*ChunkSizeX + x
				pos := chunk.LocalToWorld(x, y, z)

				t := Classify(pos, columns[idx], iceDepths[idx])
				id, ok := g.ids.ID(t)
				if !ok {
					// Воздух не зарегистрирован, воксель остаётся как есть
					continue
				}
				chunk.SetBlock(x, y, z, id)
			}
		}
	}

	chunk.SetGenerated(true)
	chunk.MarkDirty()

	elapsed := time.Since(start)
	if g.observer != nil {
		g.observer.ObserveChunkGenerated(elapsed)
	}
	g.logger.Debug("Сгенерирован чанк (%d, %d) за %v", chunkX, chunkZ, elapsed)
	return nil
}
