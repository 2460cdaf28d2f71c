package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/annel0/simpleminer/internal/logging"
	"github.com/annel0/simpleminer/internal/vec"
	"github.com/annel0/simpleminer/internal/world"
)

// ErrNotReady возвращается после закрытия хранилища
var ErrNotReady = errors.New("storage: not ready")

// Options настраивает ChunkStore
type Options struct {
	Path     string // Каталог данных, база хранится в Path/world
	InMemory bool   // Только память, без файлов (тесты)
	Logger   *logging.Logger
}

// ChunkStore хранит блоки чанков в BadgerDB
type ChunkStore struct {
	db      *badger.DB
	dbPath  string
	codec   *chunkCodec
	logger  *logging.Logger
	mutex   sync.RWMutex
	isReady bool
}

// NewChunkStore открывает хранилище чанков
func NewChunkStore(opts Options) (*ChunkStore, error) {
	dbPath := filepath.Join(opts.Path, "world")
	badgerOpts := badger.DefaultOptions(dbPath)
	if opts.InMemory {
		dbPath = ""
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	badgerOpts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	codec, err := newChunkCodec()
	if err != nil {
		db.Close()
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.GetStorageLogger()
	}
	logger.Info("Хранилище чанков открыто: %q (in-memory: %v)", dbPath, opts.InMemory)

	return &ChunkStore{
		db:      db,
		dbPath:  dbPath,
		codec:   codec,
		logger:  logger,
		isReady: true,
	}, nil
}

// chunkKey возвращает ключ BadgerDB для чанка
func chunkKey(coords vec.Vec2) []byte {
	return []byte(fmt.Sprintf("chunk:%d:%d", coords.X, coords.Y))
}

// Close закрывает хранилище данных
func (cs *ChunkStore) Close() error {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if !cs.isReady {
		return nil
	}

	cs.isReady = false
	cs.codec.Close()
	return cs.db.Close()
}

// EncodeChunk упаковывает блоки чанка для записи или кэширования
func (cs *ChunkStore) EncodeChunk(chunk *world.Chunk) []byte {
	return cs.codec.Encode(chunk.Snapshot())
}

// DecodeInto распаковывает данные и восстанавливает блоки чанка
func (cs *ChunkStore) DecodeInto(data []byte, chunk *world.Chunk) error {
	blocks, err := cs.codec.Decode(data, world.ChunkVolume)
	if err != nil {
		return fmt.Errorf("chunk %v: %w", chunk.Coords, err)
	}
	return chunk.Restore(blocks)
}

// SaveChunk сохраняет все блоки чанка
func (cs *ChunkStore) SaveChunk(ctx context.Context, chunk *world.Chunk) error {
	_, err := cs.saveChunk(ctx, chunk)
	return err
}

// saveChunk записывает чанк и возвращает записанные данные
func (cs *ChunkStore) saveChunk(ctx context.Context, chunk *world.Chunk) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	if !cs.isReady {
		return nil, ErrNotReady
	}

	data := cs.EncodeChunk(chunk)
	err := cs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(chunk.Coords), data)
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	cs.logger.Trace("Чанк %v сохранён (%d байт)", chunk.Coords, len(data))
	return data, nil
}

// LoadChunk читает чанк в chunk. found=false, если чанк ещё не сохранялся.
func (cs *ChunkStore) LoadChunk(ctx context.Context, coords vec.Vec2, chunk *world.Chunk) (bool, error) {
	data, found, err := cs.loadRaw(ctx, coords)
	if err != nil || !found {
		return false, err
	}
	if err := cs.DecodeInto(data, chunk); err != nil {
		return false, err
	}
	return true, nil
}

// loadRaw читает сжатые данные чанка
func (cs *ChunkStore) loadRaw(ctx context.Context, coords vec.Vec2) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	if !cs.isReady {
		return nil, false, ErrNotReady
	}

	var data []byte
	err := cs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(coords))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return data, true, nil
}

// DeleteChunk удаляет сохранённый чанк
func (cs *ChunkStore) DeleteChunk(coords vec.Vec2) error {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	if !cs.isReady {
		return ErrNotReady
	}

	return cs.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(chunkKey(coords))
	})
}

// CountChunks возвращает число сохранённых чанков
func (cs *ChunkStore) CountChunks() (int, error) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	if !cs.isReady {
		return 0, ErrNotReady
	}

	count := 0
	err := cs.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte("chunk:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
