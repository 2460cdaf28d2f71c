package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/simpleminer/internal/cache"
	"github.com/annel0/simpleminer/internal/logging"
	"github.com/annel0/simpleminer/internal/vec"
	"github.com/annel0/simpleminer/internal/world"
	"github.com/annel0/simpleminer/internal/world/block"
	"github.com/annel0/simpleminer/internal/world/gen"
)

func quietLogger() *logging.Logger {
	return logging.NewWriterLogger("storage", io.Discard, logging.ERROR)
}

func setupTestStorage(t *testing.T) *ChunkStore {
	t.Helper()
	store, err := NewChunkStore(Options{InMemory: true, Logger: quietLogger()})
	require.NoError(t, err, "Не удалось создать хранилище")
	t.Cleanup(func() { store.Close() })
	return store
}

func testChunk(coords vec.Vec2) *world.Chunk {
	c := world.NewChunk(coords)
	for z := 0; z < 40; z++ {
		for y := 0; y < world.ChunkSizeY; y++ {
			for x := 0; x < world.ChunkSizeX; x++ {
				c.SetBlock(x, y, z, block.BlockID(1+(x+y+z)%5))
			}
		}
	}
	return c
}

// memCache - ChunkCache в памяти
type memCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	hits   int
	misses int
	getErr error
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		m.misses++
		return nil, cache.ErrCacheMiss
	}
	m.hits++
	return v, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

// statsCache добавляет к memCache счётчики попаданий
type statsCache struct {
	*memCache
}

func (s statsCache) GetMetrics() cache.CacheMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cache.CacheMetrics{CacheHits: int64(s.hits), CacheMisses: int64(s.misses)}
}

func TestCodec_RoundTripAndCorruption(t *testing.T) {
	codec, err := newChunkCodec()
	require.NoError(t, err)
	defer codec.Close()

	blocks := testChunk(vec.Vec2{}).Snapshot()
	data := codec.Encode(blocks)
	assert.Less(t, len(data), len(blocks)*2, "данные сжаты")

	decoded, err := codec.Decode(data, world.ChunkVolume)
	require.NoError(t, err)
	assert.Equal(t, blocks, decoded)

	_, err = codec.Decode(data[:4], world.ChunkVolume)
	assert.ErrorIs(t, err, ErrCorruptChunk)

	badVersion := append([]byte(nil), data...)
	badVersion[0] = 99
	_, err = codec.Decode(badVersion, world.ChunkVolume)
	assert.ErrorIs(t, err, ErrCorruptChunk)

	badSum := append([]byte(nil), data...)
	badSum[1] ^= 0xFF
	_, err = codec.Decode(badSum, world.ChunkVolume)
	assert.ErrorIs(t, err, ErrCorruptChunk)

	_, err = codec.Decode(data, 10)
	assert.ErrorIs(t, err, ErrCorruptChunk)
}

func TestSaveAndLoadChunk(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	coords := vec.Vec2{X: 10, Y: -20}
	saved := testChunk(coords)
	require.NoError(t, store.SaveChunk(ctx, saved))

	loaded := world.NewChunk(coords)
	found, err := store.LoadChunk(ctx, coords, loaded)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, saved.Snapshot(), loaded.Snapshot())
	assert.True(t, loaded.IsGenerated())
	assert.False(t, loaded.HasChanges())

	n, err := store.CountChunks()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.DeleteChunk(coords))
	found, err = store.LoadChunk(ctx, coords, world.NewChunk(coords))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadNonExistentChunk(t *testing.T) {
	store := setupTestStorage(t)

	found, err := store.LoadChunk(context.Background(), vec.Vec2{X: 999, Y: 999}, world.NewChunk(vec.Vec2{X: 999, Y: 999}))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestChunkStore_PersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	coords := vec.Vec2{X: 1, Y: 2}

	store, err := NewChunkStore(Options{Path: dir, Logger: quietLogger()})
	require.NoError(t, err)
	saved := testChunk(coords)
	require.NoError(t, store.SaveChunk(ctx, saved))
	require.NoError(t, store.Close())

	reopened, err := NewChunkStore(Options{Path: dir, Logger: quietLogger()})
	require.NoError(t, err)
	defer reopened.Close()

	loaded := world.NewChunk(coords)
	found, err := reopened.LoadChunk(ctx, coords, loaded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, saved.Snapshot(), loaded.Snapshot())
}

func TestChunkStore_Closed(t *testing.T) {
	store, err := NewChunkStore(Options{InMemory: true, Logger: quietLogger()})
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "повторное закрытие безопасно")

	ctx := context.Background()
	assert.ErrorIs(t, store.SaveChunk(ctx, world.NewChunk(vec.Vec2{})), ErrNotReady)
	_, err = store.LoadChunk(ctx, vec.Vec2{}, world.NewChunk(vec.Vec2{}))
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestChunkStore_CancelledContext(t *testing.T) {
	store := setupTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.SaveChunk(ctx, world.NewChunk(vec.Vec2{})), context.Canceled)
}

func TestCachedChunkStore(t *testing.T) {
	store := setupTestStorage(t)
	c := newMemCache()
	cached := NewCachedChunkStore(store, c, time.Minute)
	ctx := context.Background()

	coords := vec.Vec2{X: 3, Y: 4}
	saved := testChunk(coords)
	require.NoError(t, cached.SaveChunk(ctx, saved))
	assert.Contains(t, c.data, "chunk:3:4", "запись обновляет кеш")

	// Чтение из кеша, даже если в BadgerDB чанка уже нет
	require.NoError(t, store.DeleteChunk(coords))
	loaded := world.NewChunk(coords)
	found, err := cached.LoadChunk(ctx, coords, loaded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, saved.Snapshot(), loaded.Snapshot())
}

func TestCachedChunkStore_FillsCacheOnMiss(t *testing.T) {
	store := setupTestStorage(t)
	c := newMemCache()
	cached := NewCachedChunkStore(store, c, time.Minute)
	ctx := context.Background()

	coords := vec.Vec2{X: -1, Y: 0}
	require.NoError(t, store.SaveChunk(ctx, testChunk(coords)))
	assert.Empty(t, c.data)

	found, err := cached.LoadChunk(ctx, coords, world.NewChunk(coords))
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, c.data, "chunk:-1:0")

	found, err = cached.LoadChunk(ctx, vec.Vec2{X: 50, Y: 50}, world.NewChunk(vec.Vec2{X: 50, Y: 50}))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCachedChunkStore_CacheFailures(t *testing.T) {
	store := setupTestStorage(t)
	c := newMemCache()
	cached := NewCachedChunkStore(store, c, time.Minute)
	ctx := context.Background()

	coords := vec.Vec2{X: 7, Y: 7}
	saved := testChunk(coords)
	require.NoError(t, store.SaveChunk(ctx, saved))

	// Мусор в кеше удаляется, чанк читается из хранилища
	c.data["chunk:7:7"] = []byte{1, 2, 3}
	loaded := world.NewChunk(coords)
	found, err := cached.LoadChunk(ctx, coords, loaded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, saved.Snapshot(), loaded.Snapshot())

	// Недоступный кеш не мешает загрузке
	c.getErr = errors.New("redis down")
	found, err = cached.LoadChunk(ctx, coords, world.NewChunk(coords))
	require.NoError(t, err)
	assert.True(t, found)
}

func TestWorldManager_WithChunkStore(t *testing.T) {
	store := setupTestStorage(t)
	reg := block.NewDefaultRegistry()
	generator := gen.NewSimpleMinerGenerator(reg, gen.WithLogger(quietLogger()))
	ctx := context.Background()

	wm := world.NewWorldManager(5, reg, generator,
		world.WithSource(store), world.WithSink(store),
		world.WithWorldLogger(quietLogger()))
	first, err := wm.LoadChunk(ctx, vec.Vec2{})
	require.NoError(t, err)
	require.NoError(t, wm.SaveWorld(ctx))

	other := world.NewWorldManager(5, reg, nil,
		world.WithSource(store), world.WithWorldLogger(quietLogger()))
	second, err := other.LoadChunk(ctx, vec.Vec2{})
	require.NoError(t, err, "чанк читается из хранилища без генератора")
	assert.Equal(t, first.Snapshot(), second.Snapshot())
}

func TestCachedChunkStore_CloseReportsCacheStats(t *testing.T) {
	var buf bytes.Buffer
	store, err := NewChunkStore(Options{
		InMemory: true,
		Logger:   logging.NewWriterLogger("storage", &buf, logging.INFO),
	})
	require.NoError(t, err)

	c := statsCache{newMemCache()}
	cached := NewCachedChunkStore(store, c, time.Minute)
	ctx := context.Background()

	coords := vec.Vec2{X: 1, Y: 1}
	require.NoError(t, store.SaveChunk(ctx, testChunk(coords)))
	_, err = cached.LoadChunk(ctx, coords, world.NewChunk(coords))
	require.NoError(t, err)
	_, err = cached.LoadChunk(ctx, coords, world.NewChunk(coords))
	require.NoError(t, err)

	require.NoError(t, cached.Close())
	assert.Contains(t, buf.String(), "попаданий 1, промахов 1")
}
