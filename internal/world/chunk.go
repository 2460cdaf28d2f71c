package world

import (
	"fmt"
	"sync"

	"github.com/annel0/simpleminer/internal/vec"
	"github.com/annel0/simpleminer/internal/world/block"
)

// Размеры чанка в блоках
const (
	ChunkSizeX  = 16
	ChunkSizeY  = 16
	ChunkSizeZ  = 128
	ChunkArea   = ChunkSizeX * ChunkSizeY
	ChunkVolume = ChunkArea * ChunkSizeZ
)

// Chunk представляет колонну мира 16x16x128 блоков
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире

	blocks    [ChunkVolume]block.BlockID
	generated bool
	dirty     bool

	ChangeCounter int          // Счетчик изменений
	Mu            sync.RWMutex // Мьютекс для безопасного доступа
}

// NewChunk создаёт новый чанк с указанными координатами, заполненный воздухом
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{
		Coords: coords,
	}
}

// CoordsToIndex возвращает индекс блока в плоском массиве чанка
func CoordsToIndex(x, y, z int) int {
	return z*ChunkArea + y*ChunkSizeX + x
}

// InBounds проверяет, что локальные координаты лежат внутри чанка
func InBounds(x, y, z int) bool {
	return x >= 0 && x < ChunkSizeX && y >= 0 && y < ChunkSizeY && z >= 0 && z < ChunkSizeZ
}

// SetBlock устанавливает блок по локальным координатам.
// Координаты вне чанка игнорируются.
func (c *Chunk) SetBlock(x, y, z int, id block.BlockID) {
	if !InBounds(x, y, z) {
		return
	}

	c.Mu.Lock()
	defer c.Mu.Unlock()

	c.blocks[CoordsToIndex(x, y, z)] = id
	c.ChangeCounter++
}

// GetBlock возвращает ID блока по локальным координатам (воздух вне чанка)
func (c *Chunk) GetBlock(x, y, z int) block.BlockID {
	if !InBounds(x, y, z) {
		return block.AirBlockID
	}

	c.Mu.RLock()
	defer c.Mu.RUnlock()

	return c.blocks[CoordsToIndex(x, y, z)]
}

// LocalToWorld переводит локальные координаты блока в мировые
func (c *Chunk) LocalToWorld(x, y, z int) vec.Vec3 {
	origin := c.Coords.ChunkOrigin()
	return vec.Vec3{X: origin.X + x, Y: origin.Y + y, Z: z}
}

// SetGenerated отмечает чанк как сгенерированный
func (c *Chunk) SetGenerated(generated bool) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.generated = generated
}

// IsGenerated возвращает true, если генерация чанка завершена
func (c *Chunk) IsGenerated() bool {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.generated
}

// MarkDirty помечает чанк для перестроения меша
func (c *Chunk) MarkDirty() {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.dirty = true
}

// IsDirty возвращает true, если чанк требует перестроения
func (c *Chunk) IsDirty() bool {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.dirty
}

// ClearDirty снимает флаг перестроения
func (c *Chunk) ClearDirty() {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.dirty = false
}

// HasChanges возвращает true, если в чанке есть изменения
func (c *Chunk) HasChanges() bool {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	return c.ChangeCounter > 0
}

// Changes возвращает значение счётчика изменений
func (c *Chunk) Changes() int {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	return c.ChangeCounter
}

// CommitChanges вычитает из счётчика изменения, попавшие в сохранение.
// Записи, сделанные во время сохранения, остаются в счётчике.
func (c *Chunk) CommitChanges(saved int) {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	c.ChangeCounter -= saved
	if c.ChangeCounter < 0 {
		c.ChangeCounter = 0
	}
}

// Snapshot возвращает копию всех блоков чанка
func (c *Chunk) Snapshot() []block.BlockID {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	out := make([]block.BlockID, ChunkVolume)
	copy(out, c.blocks[:])
	return out
}

// Restore заменяет все блоки чанка и помечает его сгенерированным
func (c *Chunk) Restore(blocks []block.BlockID) error {
	if len(blocks) != ChunkVolume {
		return fmt.Errorf("restore chunk %v: expected %d blocks, got %d", c.Coords, ChunkVolume, len(blocks))
	}

	c.Mu.Lock()
	defer c.Mu.Unlock()

	copy(c.blocks[:], blocks)
	c.generated = true
	c.dirty = true
	c.ChangeCounter = 0
	return nil
}
