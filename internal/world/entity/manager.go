package entity

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/annel0/simpleminer/internal/physics"
)

// maxStepsPerUpdate ограничивает число шагов за один Update после долгой паузы
const maxStepsPerUpdate = 10

// EntityManager управляет всеми сущностями мира и шагает их физику
// фиксированным шагом. Update вызывается из одного потока симуляции.
type EntityManager struct {
	entities    map[uuid.UUID]*Entity // Хранилище всех сущностей
	timestep    float64
	accumulator float64
	mu          sync.RWMutex // Мьютекс для безопасного доступа
}

// NewEntityManager создаёт менеджер с шагом physics.FixedTimestep
func NewEntityManager() *EntityManager {
	return &EntityManager{
		entities: make(map[uuid.UUID]*Entity),
		timestep: physics.FixedTimestep,
	}
}

// Spawn добавляет сущность в мир
func (em *EntityManager) Spawn(e *Entity) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	if _, exists := em.entities[e.ID]; exists {
		return fmt.Errorf("entity %s already spawned", e.ID)
	}
	em.entities[e.ID] = e
	return nil
}

// Despawn удаляет сущность. Возвращает false, если её не было.
func (em *EntityManager) Despawn(id uuid.UUID) bool {
	em.mu.Lock()
	defer em.mu.Unlock()

	if _, exists := em.entities[id]; !exists {
		return false
	}
	delete(em.entities, id)
	return true
}

// Get возвращает сущность по ID
func (em *EntityManager) Get(id uuid.UUID) (*Entity, bool) {
	em.mu.RLock()
	defer em.mu.RUnlock()
	e, ok := em.entities[id]
	return e, ok
}

// Count возвращает число сущностей
func (em *EntityManager) Count() int {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return len(em.entities)
}

// All возвращает сущности в стабильном порядке
func (em *EntityManager) All() []*Entity {
	em.mu.RLock()
	list := make([]*Entity, 0, len(em.entities))
	for _, e := range em.entities {
		list = append(list, e)
	}
	em.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].ID.String() < list[j].ID.String()
	})
	return list
}

// Update продвигает симуляцию на frameSeconds, выполняя целое число
// фиксированных шагов. Возвращает число выполненных шагов.
func (em *EntityManager) Update(frameSeconds float64) int {
	if frameSeconds <= 0 {
		return 0
	}
	em.accumulator += frameSeconds

	steps := 0
	entities := em.All()
	for em.accumulator >= em.timestep {
		if steps == maxStepsPerUpdate {
			// Симуляция не успевает: отбрасываем остаток
			em.accumulator = 0
			break
		}
		for _, e := range entities {
			e.Update(em.timestep)
		}
		em.accumulator -= em.timestep
		steps++
	}
	return steps
}
