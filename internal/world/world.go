package world

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/annel0/simpleminer/internal/logging"
	"github.com/annel0/simpleminer/internal/vec"
	"github.com/annel0/simpleminer/internal/world/block"
	"github.com/annel0/simpleminer/internal/world/gen"
)

// ErrNoGenerator возвращается, если чанка нет в хранилище, а генератор не задан
var ErrNoGenerator = errors.New("world: no generator configured")

// Generator заполняет блоки чанка
type Generator interface {
	GenerateChunk(chunk gen.ChunkTarget, chunkX, chunkY int32, worldSeed uint32) error
}

// ChunkSource загружает ранее сохранённые чанки. found=false означает, что чанка нет.
type ChunkSource interface {
	LoadChunk(ctx context.Context, coords vec.Vec2, chunk *Chunk) (found bool, err error)
}

// ChunkSink сохраняет изменённые чанки
type ChunkSink interface {
	SaveChunk(ctx context.Context, chunk *Chunk) error
}

// SolidityLookup сообщает, является ли блок твёрдым
type SolidityLookup interface {
	IsSolid(id block.BlockID) bool
}

// LoadObserver получает события загрузки чанков (метрики)
type LoadObserver interface {
	ObserveChunkLoaded(source string)
}

// Источники чанка для LoadObserver
const (
	SourceStorage   = "storage"
	SourceGenerator = "generator"
)

// Option настраивает WorldManager
type Option func(*WorldManager)

// WithSource подключает хранилище, из которого чанки читаются до генерации
func WithSource(src ChunkSource) Option {
	return func(wm *WorldManager) { wm.source = src }
}

// WithSink подключает хранилище для сохранения изменённых чанков
func WithSink(sink ChunkSink) Option {
	return func(wm *WorldManager) { wm.sink = sink }
}

// WithWorkers ограничивает число параллельно генерируемых чанков в LoadArea
func WithWorkers(n int) Option {
	return func(wm *WorldManager) {
		if n > 0 {
			wm.workers = n
		}
	}
}

// WithAutoSaveInterval задаёт период автосохранения в Run
func WithAutoSaveInterval(d time.Duration) Option {
	return func(wm *WorldManager) { wm.autoSaveInterval = d }
}

// WithLoadObserver подключает наблюдателя загрузки чанков
func WithLoadObserver(o LoadObserver) Option {
	return func(wm *WorldManager) { wm.observer = o }
}

// WithWorldLogger задаёт логгер мира
func WithWorldLogger(l *logging.Logger) Option {
	return func(wm *WorldManager) { wm.logger = l }
}

// WorldManager хранит загруженные чанки и координирует их загрузку,
// генерацию и сохранение
type WorldManager struct {
	chunks    map[vec.Vec2]*Chunk // Загруженные чанки
	seed      uint32              // Сид мира
	blocks    SolidityLookup
	generator Generator
	source    ChunkSource
	sink      ChunkSink
	observer  LoadObserver
	logger    *logging.Logger

	workers          int
	autoSaveInterval time.Duration

	loads  singleflight.Group // Одна загрузка на чанк
	mu     sync.RWMutex       // Мьютекс карты чанков
	saveMu sync.Mutex         // Мьютекс для операций сохранения
}

// NewWorldManager создаёт менеджер мира с указанным сидом
func NewWorldManager(seed uint32, blocks SolidityLookup, generator Generator, opts ...Option) *WorldManager {
	wm := &WorldManager{
		chunks:           make(map[vec.Vec2]*Chunk),
		seed:             seed,
		blocks:           blocks,
		generator:        generator,
		workers:          4,
		autoSaveInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(wm)
	}
	if wm.logger == nil {
		wm.logger = logging.GetWorldLogger()
	}
	return wm
}

// Seed возвращает сид мира
func (wm *WorldManager) Seed() uint32 { return wm.seed }

// Run запускает автосохранение до отмены контекста
func (wm *WorldManager) Run(ctx context.Context) {
	if wm.sink == nil || wm.autoSaveInterval <= 0 {
		return
	}
	go wm.autoSaveLoop(ctx)
}

// autoSaveLoop запускает периодическое сохранение мира
func (wm *WorldManager) autoSaveLoop(ctx context.Context) {
	ticker := time.NewTicker(wm.autoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := wm.SaveWorld(ctx); err != nil {
				wm.logger.Warn("Автосохранение не удалось: %v", err)
			}
		}
	}
}

// GetChunk возвращает загруженный чанк или nil
func (wm *WorldManager) GetChunk(coords vec.Vec2) *Chunk {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return wm.chunks[coords]
}

// AddChunk регистрирует готовый чанк (замещая существующий)
func (wm *WorldManager) AddChunk(chunk *Chunk) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.chunks[chunk.Coords] = chunk
}

// ChunkCount возвращает число загруженных чанков
func (wm *WorldManager) ChunkCount() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.chunks)
}

// LoadChunk возвращает чанк, загружая его из хранилища или генерируя.
// Параллельные вызовы для одного чанка выполняют работу один раз.
func (wm *WorldManager) LoadChunk(ctx context.Context, coords vec.Vec2) (*Chunk, error) {
	if c := wm.GetChunk(coords); c != nil {
		return c, nil
	}

	key := fmt.Sprintf("%d:%d", coords.X, coords.Y)
	v, err, _ := wm.loads.Do(key, func() (interface{}, error) {
		if c := wm.GetChunk(coords); c != nil {
			return c, nil
		}
		c, err := wm.loadOrGenerate(ctx, coords)
		if err != nil {
			return nil, err
		}
		wm.AddChunk(c)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Chunk), nil
}

func (wm *WorldManager) loadOrGenerate(ctx context.Context, coords vec.Vec2) (*Chunk, error) {
	chunk := NewChunk(coords)

	if wm.source != nil {
		found, err := wm.source.LoadChunk(ctx, coords, chunk)
		if err != nil {
			// Повреждённые данные не блокируют мир: чанк будет сгенерирован заново
			wm.logger.Warn("Ошибка загрузки чанка %v, генерируем заново: %v", coords, err)
		} else if found {
			wm.observe(SourceStorage)
			return chunk, nil
		}
	}

	if wm.generator == nil {
		return nil, fmt.Errorf("load chunk %v: %w", coords, ErrNoGenerator)
	}
	if err := wm.generator.GenerateChunk(chunk, int32(coords.X), int32(coords.Y), wm.seed); err != nil {
		return nil, fmt.Errorf("generate chunk %v: %w", coords, err)
	}
	wm.observe(SourceGenerator)
	return chunk, nil
}

func (wm *WorldManager) observe(source string) {
	if wm.observer != nil {
		wm.observer.ObserveChunkLoaded(source)
	}
}

// LoadArea загружает квадрат чанков радиуса radius вокруг center.
// Чанки генерируются параллельно, но каждый в одной горутине.
func (wm *WorldManager) LoadArea(ctx context.Context, center vec.Vec2, radius int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wm.workers)

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			coords := vec.Vec2{X: center.X + dx, Y: center.Y + dy}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				_, err := wm.LoadChunk(gctx, coords)
				return err
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	wm.logger.Debug("Загружена область %v радиуса %d", center, radius)
	return nil
}

// UnloadChunk выгружает чанк из памяти и сохраняет его, если он изменён.
// После удаления из карты запись в чанк невозможна, поэтому снимок полный.
func (wm *WorldManager) UnloadChunk(ctx context.Context, coords vec.Vec2) error {
	wm.mu.Lock()
	chunk, ok := wm.chunks[coords]
	delete(wm.chunks, coords)
	wm.mu.Unlock()

	if !ok || wm.sink == nil || !chunk.HasChanges() {
		return nil
	}
	if err := wm.sink.SaveChunk(ctx, chunk); err != nil {
		return fmt.Errorf("save chunk %v: %w", coords, err)
	}
	return nil
}

// SaveWorld сохраняет все чанки с изменениями
func (wm *WorldManager) SaveWorld(ctx context.Context) error {
	if wm.sink == nil {
		return nil
	}

	wm.saveMu.Lock()
	defer wm.saveMu.Unlock()

	wm.mu.RLock()
	pending := make([]*Chunk, 0, len(wm.chunks))
	for _, c := range wm.chunks {
		if c.HasChanges() {
			pending = append(pending, c)
		}
	}
	wm.mu.RUnlock()

	for _, c := range pending {
		saved := c.Changes()
		if err := wm.sink.SaveChunk(ctx, c); err != nil {
			return fmt.Errorf("save chunk %v: %w", c.Coords, err)
		}
		c.CommitChanges(saved)
	}

	wm.logger.Info("Сохранено чанков: %d", len(pending))
	return nil
}

// GetBlock возвращает блок в мировой позиции. Незагруженные чанки и
// позиции вне высоты мира считаются воздухом.
func (wm *WorldManager) GetBlock(pos vec.Vec3) block.BlockID {
	if pos.Z < 0 || pos.Z >= ChunkSizeZ {
		return block.AirBlockID
	}
	chunk := wm.GetChunk(pos.ChunkCoords())
	if chunk == nil {
		return block.AirBlockID
	}
	local := pos.LocalInChunk()
	return chunk.GetBlock(local.X, local.Y, local.Z)
}

// SetBlock меняет блок в загруженном чанке. Возвращает false, если чанк не загружен.
func (wm *WorldManager) SetBlock(pos vec.Vec3, id block.BlockID) bool {
	return wm.editBlock(pos, func(block.BlockID) (block.BlockID, bool) { return id, true })
}

// DigBlock заменяет твёрдый блок воздухом. Возвращает false, если копать нечего.
func (wm *WorldManager) DigBlock(pos vec.Vec3) bool {
	return wm.editBlock(pos, func(cur block.BlockID) (block.BlockID, bool) {
		return block.AirBlockID, wm.isSolidID(cur)
	})
}

// PlaceBlock ставит блок id на место воздуха или жидкости.
// В твёрдый блок поставить нельзя.
func (wm *WorldManager) PlaceBlock(pos vec.Vec3, id block.BlockID) bool {
	return wm.editBlock(pos, func(cur block.BlockID) (block.BlockID, bool) {
		return id, !wm.isSolidID(cur)
	})
}

// editBlock применяет правку к блоку загруженного чанка. Карта чанков
// держится на чтение всё время записи, чтобы UnloadChunk не потерял правку.
func (wm *WorldManager) editBlock(pos vec.Vec3, edit func(cur block.BlockID) (block.BlockID, bool)) bool {
	if pos.Z < 0 || pos.Z >= ChunkSizeZ {
		return false
	}

	wm.mu.RLock()
	defer wm.mu.RUnlock()

	chunk := wm.chunks[pos.ChunkCoords()]
	if chunk == nil {
		return false
	}
	local := pos.LocalInChunk()
	id, ok := edit(chunk.GetBlock(local.X, local.Y, local.Z))
	if !ok {
		return false
	}
	chunk.SetBlock(local.X, local.Y, local.Z, id)
	chunk.MarkDirty()
	return true
}

func (wm *WorldManager) isSolidID(id block.BlockID) bool {
	return wm.blocks != nil && wm.blocks.IsSolid(id)
}

// IsSolid проверяет, твёрдый ли блок в мировой позиции
func (wm *WorldManager) IsSolid(pos vec.Vec3) bool {
	return wm.isSolidID(wm.GetBlock(pos))
}

// TopSolidZ возвращает z самого верхнего твёрдого блока колонны (x, y)
func (wm *WorldManager) TopSolidZ(x, y int) (int, bool) {
	for z := ChunkSizeZ - 1; z >= 0; z-- {
		if wm.IsSolid(vec.Vec3{X: x, Y: y, Z: z}) {
			return z, true
		}
	}
	return 0, false
}
