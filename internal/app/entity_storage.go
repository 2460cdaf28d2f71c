package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/annel0/simpleminer/internal/physics"
	"github.com/annel0/simpleminer/internal/world/entity"
)

// EntityData содержит данные о сущности для хранения
type EntityData struct {
	ID       uuid.UUID  `json:"id"`       // Уникальный ID сущности
	Type     uint16     `json:"type"`     // Тип сущности
	Position [3]float64 `json:"position"` // Позиция в мире
	Velocity [3]float64 `json:"velocity"`
	Mode     string     `json:"mode"`
	Yaw      float64    `json:"yaw,omitempty"`
	Pitch    float64    `json:"pitch,omitempty"`
}

// EntityStorage управляет хранением сущностей в BadgerDB
type EntityStorage struct {
	db     *badger.DB
	dbPath string
	mutex  sync.RWMutex
	ready  bool
}

// NewEntityStorage создает новое хранилище сущностей
func NewEntityStorage(dataPath string, inMemory bool) (*EntityStorage, error) {
	storage := &EntityStorage{
		dbPath: filepath.Join(dataPath, "entities"),
	}

	opts := badger.DefaultOptions(storage.dbPath)
	if inMemory {
		storage.dbPath = ""
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	var err error
	storage.db, err = badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	storage.ready = true
	return storage, nil
}

func entityKey(id uuid.UUID) []byte {
	return []byte("entity:" + id.String())
}

// Snapshot снимает сохраняемое состояние сущности
func Snapshot(e *entity.Entity) EntityData {
	data := EntityData{
		ID:       e.ID,
		Type:     uint16(e.Type),
		Position: e.Body.Position,
		Velocity: e.Body.Velocity,
		Mode:     e.Body.Mode.String(),
	}
	if e.Control != nil {
		data.Yaw = e.Control.YawDegrees
		data.Pitch = e.Control.PitchDegrees
	}
	return data
}

// Restore создаёт сущность из сохранённых данных
func (d EntityData) Restore(cfg physics.Config, w physics.Raycaster) (*entity.Entity, error) {
	mode, err := physics.ParseMode(d.Mode)
	if err != nil {
		return nil, err
	}

	body := physics.NewBody(mgl64.Vec3(d.Position), cfg, w)
	body.Velocity = mgl64.Vec3(d.Velocity)
	body.Mode = mode

	e := entity.NewEntity(entity.EntityType(d.Type), body)
	e.ID = d.ID
	if e.Type == entity.EntityTypePlayer {
		e.Control = &entity.PlayerControl{YawDegrees: d.Yaw, PitchDegrees: d.Pitch}
	}
	return e, nil
}

// SaveEntities сохраняет сущности одной транзакцией
func (s *EntityStorage) SaveEntities(entities []*entity.Entity) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.ready {
		return fmt.Errorf("хранилище не готово")
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, e := range entities {
			data, err := json.Marshal(Snapshot(e))
			if err != nil {
				return fmt.Errorf("ошибка сериализации сущности %s: %w", e.ID, err)
			}
			if err := txn.Set(entityKey(e.ID), data); err != nil {
				return fmt.Errorf("ошибка сохранения сущности в BadgerDB: %w", err)
			}
		}
		return nil
	})
}

// LoadEntity загружает данные сущности. found=false, если сущность не сохранялась.
func (s *EntityStorage) LoadEntity(id uuid.UUID) (EntityData, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var data EntityData
	if !s.ready {
		return data, false, fmt.Errorf("хранилище не готово")
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entityKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &data)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return data, false, nil
	}
	if err != nil {
		return data, false, fmt.Errorf("ошибка чтения сущности из BadgerDB: %w", err)
	}
	return data, true, nil
}

// LoadAll загружает все сохранённые сущности
func (s *EntityStorage) LoadAll() ([]EntityData, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.ready {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var out []EntityData
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("entity:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var data EntityData
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &data)
			})
			if err != nil {
				return fmt.Errorf("ошибка десериализации сущности: %w", err)
			}
			out = append(out, data)
		}
		return nil
	})
	return out, err
}

// Close закрывает хранилище
func (s *EntityStorage) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.ready {
		return nil
	}

	s.ready = false
	return s.db.Close()
}
