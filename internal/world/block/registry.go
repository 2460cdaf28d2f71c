package block

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// BlockID представляет идентификатор блока. Идентификаторы выдаются
// последовательно при регистрации и не меняются до конца жизни процесса.
type BlockID uint16

// AirBlockID - воздух всегда регистрируется первым (см. RegisterDefaults),
// поэтому нулевое значение ячейки чанка означает воздух.
const AirBlockID BlockID = 0

var (
	ErrDuplicateBlock = errors.New("block already registered")
	ErrRegistryFull   = errors.New("block registry is full")
	ErrInvalidBlock   = errors.New("invalid block definition")
)

// Definition описывает тип блока
type Definition struct {
	ID        BlockID
	Namespace string
	Name      string
	Solid     bool // Участвует в коллизиях и лучах
	Hardness  float64
}

// RegistryName возвращает полное имя "namespace:name"
func (d *Definition) RegistryName() string {
	return d.Namespace + ":" + d.Name
}

// Registry - арена определений блоков, адресуемая целочисленным ID.
// Чанки и сущности хранят только ID, владелец определений - реестр.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]BlockID
	defs   []*Definition // индекс = ID
}

// NewRegistry создаёт пустой реестр
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]BlockID),
	}
}

func registryKey(namespace, name string) string {
	return namespace + ":" + name
}

// Register добавляет определение и возвращает выданный ID.
// Поле ID переданного определения игнорируется.
func (r *Registry) Register(def Definition) (BlockID, error) {
	if def.Namespace == "" || def.Name == "" {
		return 0, fmt.Errorf("%w: empty namespace or name", ErrInvalidBlock)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey(def.Namespace, def.Name)
	if _, exists := r.byName[key]; exists {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateBlock, key)
	}
	if len(r.defs) > math.MaxUint16 {
		return 0, ErrRegistryFull
	}

	id := BlockID(len(r.defs))
	stored := def
	stored.ID = id
	r.defs = append(r.defs, &stored)
	r.byName[key] = id
	return id, nil
}

// GetBlockId возвращает ID блока по пространству имён и имени
func (r *Registry) GetBlockId(namespace, name string) (BlockID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[registryKey(namespace, name)]
	return id, ok
}

// GetBlockById возвращает определение по ID
func (r *Registry) GetBlockById(id BlockID) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if int(id) >= len(r.defs) {
		return nil, false
	}
	return r.defs[id], true
}

// GetBlocksByNamespace возвращает все блоки пространства имён в порядке ID
func (r *Registry) GetBlocksByNamespace(namespace string) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Definition, 0, len(r.defs))
	for _, def := range r.defs {
		if def.Namespace == namespace {
			result = append(result, def)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// IsSolid сообщает, твёрдый ли блок. Незарегистрированный ID считается пустым.
func (r *Registry) IsSolid(id BlockID) bool {
	def, ok := r.GetBlockById(id)
	return ok && def.Solid
}

// Len возвращает количество зарегистрированных блоков
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
