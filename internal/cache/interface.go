package cache

import (
	"context"
	"errors"
	"time"
)

// ChunkCache определяет интерфейс горячего кэша сжатых чанков.
//
// Использование:
//
//	data, err := cache.Get(ctx, "chunk:0:0")
//	err = cache.Set(ctx, "chunk:0:0", data, 10*time.Minute)
type ChunkCache interface {
	// Get получает значение по ключу из кеша.
	// Возвращает ErrCacheMiss если ключ не найден.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с указанным TTL.
	// TTL = 0 означает TTL по умолчанию.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет ключ из кеша.
	Delete(ctx context.Context, key string) error

	// Close закрывает соединение с кешем.
	Close() error
}

// MetricsProvider - кеш, который ведёт счётчики попаданий
type MetricsProvider interface {
	GetMetrics() CacheMetrics
}

// CacheMetrics содержит метрики попаданий кеша
type CacheMetrics struct {
	CacheHits   int64   `json:"cache_hits"`
	CacheMisses int64   `json:"cache_misses"`
	HitRatio    float64 `json:"hit_ratio"`
}

// Ошибки кеша
var (
	ErrCacheMiss  = NewCacheError("cache miss")
	ErrInvalidKey = NewCacheError("invalid key")
)

// CacheError представляет ошибку кеша.
type CacheError struct {
	Message string
}

func (e *CacheError) Error() string {
	return e.Message
}

func NewCacheError(message string) *CacheError {
	return &CacheError{Message: message}
}

// IsCacheMiss проверяет, является ли ошибка промахом кеша.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
