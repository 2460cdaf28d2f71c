package gen

import (
	"encoding/binary"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/simpleminer/internal/logging"
	"github.com/annel0/simpleminer/internal/vec"
	"github.com/annel0/simpleminer/internal/world/block"
)

const volume = ChunkSizeX * ChunkSizeY * ChunkSizeZ

// recordingChunk запоминает все записи генератора
type recordingChunk struct {
	coords    vec.Vec2
	blocks    [volume]block.BlockID
	writes    [volume]int
	generated bool
	dirty     bool
}

func newRecordingChunk(x, y int) *recordingChunk {
	return &recordingChunk{coords: vec.Vec2{X: x, Y: y}}
}

func index(x, y, z int) int { return z*ChunkSizeX*ChunkSizeY + y*ChunkSizeX + x }

func (c *recordingChunk) SetBlock(x, y, z int, id block.BlockID) {
	i := index(x, y, z)
	c.blocks[i] = id
	c.writes[i]++
}

func (c *recordingChunk) LocalToWorld(x, y, z int) vec.Vec3 {
	o := c.coords.ChunkOrigin()
	return vec.Vec3{X: o.X + x, Y: o.Y + y, Z: z}
}

func (c *recordingChunk) SetGenerated(g bool) { c.generated = g }
func (c *recordingChunk) MarkDirty()          { c.dirty = true }

type countingObserver struct{ n atomic.Int32 }

func (o *countingObserver) ObserveChunkGenerated(time.Duration) { o.n.Add(1) }

func quietLogger() *logging.Logger {
	return logging.NewWriterLogger("worldgen", io.Discard, logging.ERROR)
}

func newTestGenerator(t *testing.T, reg BlockLookup, opts ...Option) *SimpleMinerGenerator {
	t.Helper()
	return NewSimpleMinerGenerator(reg, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func TestGenerateChunk_NilChunk(t *testing.T) {
	g := newTestGenerator(t, block.NewDefaultRegistry())
	err := g.GenerateChunk(nil, 0, 0, 1)
	assert.ErrorIs(t, err, ErrNilChunk)

	var typed *recordingChunk
	assert.NotPanics(t, func() {
		err = g.GenerateChunk(typed, 0, 0, 1)
	})
	assert.ErrorIs(t, err, ErrNilChunk)
}

// blocksChecksum - xxhash блоков чанка в порядке z, y, x (little-endian uint16)
func blocksChecksum(blocks []block.BlockID) uint64 {
	buf := make([]byte, 2*len(blocks))
	for i, id := range blocks {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(id))
	}
	return xxhash.Sum64(buf)
}

// Эталонные чанки фиксируют порядок сидов каналов и правила классификатора:
// любое изменение меняет все сохранённые миры.
func TestGenerateChunk_Golden(t *testing.T) {
	cases := []struct {
		x, y     int
		seed     uint32
		checksum uint64
		stone    int
		diamonds int
	}{
		{x: 5, y: 7, seed: 2024, checksum: 0xdaf3433601e44b85, stone: 14455, diamonds: 1},
		{x: -3, y: 2, seed: 42, checksum: 0xf876dfc89d021edb, stone: 14286, diamonds: 3},
	}

	reg := block.NewDefaultRegistry()
	g := newTestGenerator(t, reg)
	stone, _ := reg.GetBlockId(block.Namespace, block.NameStone)
	diamond, _ := reg.GetBlockId(block.Namespace, block.NameDiamondOre)

	for _, tc := range cases {
		c := newRecordingChunk(tc.x, tc.y)
		require.NoError(t, g.GenerateChunk(c, int32(tc.x), int32(tc.y), tc.seed))

		counts := map[block.BlockID]int{}
		for _, id := range c.blocks {
			counts[id]++
		}
		assert.Equal(t, tc.stone, counts[stone], "чанк (%d, %d)", tc.x, tc.y)
		assert.Equal(t, tc.diamonds, counts[diamond], "чанк (%d, %d)", tc.x, tc.y)
		assert.Equal(t, tc.checksum, blocksChecksum(c.blocks[:]), "чанк (%d, %d)", tc.x, tc.y)
	}
}

func TestGenerateChunk_WritesEveryVoxelOnce(t *testing.T) {
	obs := &countingObserver{}
	g := newTestGenerator(t, block.NewDefaultRegistry(), WithObserver(obs))

	c := newRecordingChunk(2, -3)
	require.NoError(t, g.GenerateChunk(c, 2, -3, 12345))

	for i, n := range c.writes {
		if n != 1 {
			t.Fatalf("воксель %d записан %d раз", i, n)
		}
	}
	assert.True(t, c.generated)
	assert.True(t, c.dirty)
	assert.Equal(t, int32(1), obs.n.Load())
}

func TestGenerateChunk_Deterministic(t *testing.T) {
	g := newTestGenerator(t, block.NewDefaultRegistry())

	a := newRecordingChunk(5, 7)
	b := newRecordingChunk(5, 7)
	require.NoError(t, g.GenerateChunk(a, 5, 7, 2024))
	require.NoError(t, g.GenerateChunk(b, 5, 7, 2024))
	assert.Equal(t, a.blocks, b.blocks)

	other := newRecordingChunk(5, 7)
	require.NoError(t, g.GenerateChunk(other, 5, 7, 2025))
	assert.NotEqual(t, a.blocks, other.blocks)
}

func TestGenerateChunk_ZeroSeedUsesStored(t *testing.T) {
	g := newTestGenerator(t, block.NewDefaultRegistry())
	g.Initialize(77)
	assert.Equal(t, uint32(77), g.Seed())

	a := newRecordingChunk(1, 1)
	b := newRecordingChunk(1, 1)
	require.NoError(t, g.GenerateChunk(a, 1, 1, 0))
	require.NoError(t, g.GenerateChunk(b, 1, 1, 77))
	assert.Equal(t, a.blocks, b.blocks)
}

func TestGenerateChunk_OriginColumn(t *testing.T) {
	reg := block.NewDefaultRegistry()
	g := newTestGenerator(t, reg)

	c := newRecordingChunk(0, 0)
	require.NoError(t, g.GenerateChunk(c, 0, 0, 0))

	// Колонна (0,0) имеет высоту 60 при любом сиде
	air, _ := reg.GetBlockId(block.Namespace, block.NameAir)
	water, _ := reg.GetBlockId(block.Namespace, block.NameWater)
	lava, _ := reg.GetBlockId(block.Namespace, block.NameLava)
	obsidian, _ := reg.GetBlockId(block.Namespace, block.NameObsidian)

	surface := c.blocks[index(0, 0, 60)]
	def, ok := reg.GetBlockById(surface)
	require.True(t, ok)
	assert.Contains(t, []string{block.NameGrass, block.NameSand}, def.Name)

	// 61..63 ниже уровня моря: вода или лёд
	for z := 61; z < SeaLevel; z++ {
		assert.NotEqual(t, air, c.blocks[index(0, 0, z)], "z=%d", z)
	}
	assert.NotEqual(t, water, c.blocks[index(0, 0, 59)])
	assert.Equal(t, air, c.blocks[index(0, 0, SeaLevel)])
	assert.Equal(t, obsidian, c.blocks[index(0, 0, 1)])
	assert.Equal(t, lava, c.blocks[index(0, 0, 0)])
}

func TestGenerateChunk_MissingBlocksFallBackToAir(t *testing.T) {
	reg := block.NewRegistry()
	_, err := reg.Register(block.Definition{Namespace: block.Namespace, Name: block.NameAir})
	require.NoError(t, err)

	g := newTestGenerator(t, reg)
	c := newRecordingChunk(0, 0)
	require.NoError(t, g.GenerateChunk(c, 0, 0, 3))

	for i, id := range c.blocks {
		require.Equal(t, block.AirBlockID, id, "воксель %d", i)
		require.Equal(t, 1, c.writes[i])
	}
}

func TestGenerateChunk_NoAirLeavesVoxelsUnset(t *testing.T) {
	g := newTestGenerator(t, block.NewRegistry())
	c := newRecordingChunk(0, 0)
	require.NoError(t, g.GenerateChunk(c, 0, 0, 3))

	for _, n := range c.writes {
		require.Zero(t, n)
	}
	assert.True(t, c.generated, "генерация не прерывается")
}

func TestBlockIDCache(t *testing.T) {
	reg := block.NewDefaultRegistry()
	cache := NewBlockIDCache(reg)

	assert.Equal(t, reg.Len(), cache.Len())
	for bt := BlockType(0); bt < blockTypeCount; bt++ {
		id, ok := cache.ID(bt)
		require.True(t, ok)
		want, _ := reg.GetBlockId(block.Namespace, bt.Name())
		assert.Equal(t, want, id, bt.String())

		def, ok := cache.Definition(id)
		require.True(t, ok)
		assert.Equal(t, bt.Name(), def.Name)
	}

	empty := NewBlockIDCache(nil)
	_, ok := empty.ID(BlockStone)
	assert.False(t, ok)
}

func TestGeneratorDescription(t *testing.T) {
	g := newTestGenerator(t, block.NewDefaultRegistry())
	assert.Equal(t, int32(64), g.SeaLevel())
	assert.Equal(t, int32(64), g.BaseHeight())
	assert.Equal(t, "simpleminer_generator", g.Name())
	assert.True(t, g.SupportsFeature("oceans"))
	assert.False(t, g.SupportsFeature("caves"))
}

func BenchmarkGenerateChunk(b *testing.B) {
	g := NewSimpleMinerGenerator(block.NewDefaultRegistry(), WithLogger(quietLogger()))
	c := newRecordingChunk(0, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.GenerateChunk(c, int32(i), 0, 42)
	}
}
