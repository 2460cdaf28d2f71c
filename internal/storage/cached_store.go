package storage

import (
	"context"
	"time"

	"github.com/annel0/simpleminer/internal/cache"
	"github.com/annel0/simpleminer/internal/logging"
	"github.com/annel0/simpleminer/internal/vec"
	"github.com/annel0/simpleminer/internal/world"
)

// CachedChunkStore читает чанки сначала из горячего кеша, затем из BadgerDB.
// Ошибки кеша не прерывают загрузку: хранилище остаётся источником истины.
type CachedChunkStore struct {
	store  *ChunkStore
	cache  cache.ChunkCache
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedChunkStore оборачивает хранилище кешем
func NewCachedChunkStore(store *ChunkStore, c cache.ChunkCache, ttl time.Duration) *CachedChunkStore {
	return &CachedChunkStore{
		store:  store,
		cache:  c,
		ttl:    ttl,
		logger: store.logger,
	}
}

// LoadChunk загружает чанк из кеша или хранилища
func (s *CachedChunkStore) LoadChunk(ctx context.Context, coords vec.Vec2, chunk *world.Chunk) (bool, error) {
	key := string(chunkKey(coords))

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		decodeErr := s.store.DecodeInto(data, chunk)
		if decodeErr == nil {
			return true, nil
		}
		s.logger.Warn("Повреждённый чанк %v в кеше: %v", coords, decodeErr)
		_ = s.cache.Delete(ctx, key)
	case !cache.IsCacheMiss(err):
		s.logger.Warn("Ошибка чтения кеша для чанка %v: %v", coords, err)
	}

	data, found, err := s.store.loadRaw(ctx, coords)
	if err != nil || !found {
		return false, err
	}
	if err := s.store.DecodeInto(data, chunk); err != nil {
		return false, err
	}

	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("Не удалось закешировать чанк %v: %v", coords, err)
	}
	return true, nil
}

// SaveChunk сохраняет чанк в хранилище и обновляет кеш
func (s *CachedChunkStore) SaveChunk(ctx context.Context, chunk *world.Chunk) error {
	data, err := s.store.saveChunk(ctx, chunk)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, string(chunkKey(chunk.Coords)), data, s.ttl); err != nil {
		s.logger.Warn("Не удалось обновить кеш чанка %v: %v", chunk.Coords, err)
	}
	return nil
}

// Close закрывает кеш и хранилище. Итоговая статистика кеша пишется в лог.
func (s *CachedChunkStore) Close() error {
	if mp, ok := s.cache.(cache.MetricsProvider); ok {
		m := mp.GetMetrics()
		s.logger.Info("Кеш чанков: попаданий %d, промахов %d, доля попаданий %.2f",
			m.CacheHits, m.CacheMisses, m.HitRatio)
	}
	cacheErr := s.cache.Close()
	if err := s.store.Close(); err != nil {
		return err
	}
	return cacheErr
}
